// Package auth issues and verifies sessions: password hashing, the signed
// token codec, revocation and the Service tying them to the user store.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vaughan-dsouza/cinnamart/internal/common"
	"github.com/vaughan-dsouza/cinnamart/internal/models"
)

const minSecretLength = 32

// Claims is the verified content of a session token. The middleware stores
// it in the request context as the caller's identity.
type Claims struct {
	UserID    string
	Role      models.Role
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// wireClaims is the JWT payload: sub, role, iat, exp, jti.
type wireClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies HS256 tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenCodec(secret string, ttl time.Duration) (*TokenCodec, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("auth: secret must be at least %d bytes", minSecretLength)
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token ttl must be positive")
	}
	return &TokenCodec{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL is the lifetime of issued tokens.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// NewClaims stamps a fresh token id and validity window for a user.
func (c *TokenCodec) NewClaims(userID string, role models.Role) Claims {
	now := c.now().Truncate(time.Second)
	return Claims{
		UserID:    userID,
		Role:      role,
		TokenID:   uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}
}

func (c *TokenCodec) Encode(cl Claims) (string, error) {
	if cl.UserID == "" || !cl.Role.Valid() {
		return "", fmt.Errorf("%w: subject and role are required", common.ErrInvalidToken)
	}

	wc := wireClaims{
		Role: string(cl.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   cl.UserID,
			ID:        cl.TokenID,
			IssuedAt:  jwt.NewNumericDate(cl.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(cl.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, wc).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies signature, algorithm and expiry. Expired tokens yield
// common.ErrTokenExpired; every other failure is common.ErrInvalidToken.
func (c *TokenCodec) Decode(token string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)

	var wc wireClaims
	_, err := parser.ParseWithClaims(token, &wc, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	role := models.Role(wc.Role)
	if wc.Subject == "" || !role.Valid() {
		return nil, fmt.Errorf("%w: missing subject or role", common.ErrInvalidToken)
	}

	cl := &Claims{
		UserID:    wc.Subject,
		Role:      role,
		TokenID:   wc.ID,
		ExpiresAt: wc.ExpiresAt.Time,
	}
	if wc.IssuedAt != nil {
		cl.IssuedAt = wc.IssuedAt.Time
	}
	return cl, nil
}
