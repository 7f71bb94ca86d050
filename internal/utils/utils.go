package utils

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/vaughan-dsouza/cinnamart/internal/auth"
	"github.com/vaughan-dsouza/cinnamart/internal/models"
)

// context key
type ctxKey string

const CtxClaimsKey ctxKey = "claims"

const (
	TokenCookie = "token"
	UserCookie  = "user"
)

// WithClaims stores the verified caller in ctx.
func WithClaims(ctx context.Context, cl *auth.Claims) context.Context {
	return context.WithValue(ctx, CtxClaimsKey, cl)
}

// ClaimsFrom returns the verified caller, or nil for anonymous requests.
func ClaimsFrom(ctx context.Context) *auth.Claims {
	cl, _ := ctx.Value(CtxClaimsKey).(*auth.Claims)
	return cl
}

// CallerRole is the caller's role or "" when anonymous.
func CallerRole(ctx context.Context) models.Role {
	if cl := ClaimsFrom(ctx); cl != nil {
		return cl.Role
	}
	return ""
}

// BearerToken extracts the token from the Authorization header, falling back
// to the token cookie.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// CookieOptions controls the session cookie attributes.
type CookieOptions struct {
	Secure bool
	MaxAge int
}

// SetSessionCookies writes the token (HttpOnly) and the profile cookie.
func SetSessionCookies(w http.ResponseWriter, token string, user models.Profile, opts CookieOptions) error {
	encoded, err := EncodeUserCookie(user)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   opts.MaxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     UserCookie,
		Value:    encoded,
		Path:     "/",
		MaxAge:   opts.MaxAge,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearSessionCookies expires both session cookies.
func ClearSessionCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{TokenCookie, UserCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: name == TokenCookie,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// EncodeUserCookie is URI-encoded JSON, readable by browser scripts.
func EncodeUserCookie(p models.Profile) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return url.PathEscape(string(b)), nil
}

// DecodeUserCookie parses the profile cookie. ok is false for anything malformed.
func DecodeUserCookie(v string) (p models.Profile, ok bool) {
	if v == "" {
		return p, false
	}
	raw, err := url.PathUnescape(v)
	if err != nil {
		return p, false
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return p, false
	}
	return p, true
}
