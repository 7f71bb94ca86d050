package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vaughan-dsouza/cinnamart/internal/common"
	"github.com/vaughan-dsouza/cinnamart/internal/logging"
	"github.com/vaughan-dsouza/cinnamart/internal/metrics"
	"github.com/vaughan-dsouza/cinnamart/internal/models"
	"github.com/vaughan-dsouza/cinnamart/internal/store"
	"github.com/vaughan-dsouza/cinnamart/internal/validation"
)

// Session is the result of a successful login or registration.
type Session struct {
	Token  string
	Claims Claims
	User   models.Profile
}

// Service issues, verifies and revokes sessions against the user store.
type Service struct {
	store  store.Store
	codec  *TokenCodec
	deny   Denylist
	hasher *Hasher
}

func NewService(s store.Store, codec *TokenCodec, deny Denylist, hasher *Hasher) *Service {
	return &Service{store: s, codec: codec, deny: deny, hasher: hasher}
}

// TokenTTL is the lifetime of issued sessions, for cookie max-age.
func (s *Service) TokenTTL() int { return int(s.codec.TTL().Seconds()) }

func (s *Service) issue(u *models.User) (*Session, error) {
	cl := s.codec.NewClaims(u.ID, u.Role)
	token, err := s.codec.Encode(cl)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Claims: cl, User: u.Profile()}, nil
}

// Login exchanges credentials for a session. Unknown email and wrong password
// are indistinguishable to the caller. A disabled account is reported only
// after the password has been verified.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, validation.Errorf("email", "email and password are required")
	}

	u, err := s.store.FindUserByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		s.hasher.Equalize(password)
		metrics.LoginAttempts.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, common.ErrInvalidCredentials
	}
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("auth: login lookup: %w", err)
	}

	if !s.hasher.Check(u.PasswordHash, password) {
		metrics.LoginAttempts.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, common.ErrInvalidCredentials
	}
	if !u.IsActive {
		metrics.LoginAttempts.WithLabelValues(metrics.OutcomeDisabled).Inc()
		return nil, common.ErrAccountDisabled
	}

	sess, err := s.issue(u)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	metrics.LoginAttempts.WithLabelValues(metrics.OutcomeSuccess).Inc()
	logging.Ctx(ctx).Info().Str("user_id", u.ID).Str("role", u.Role.String()).Msg("login succeeded")
	return sess, nil
}

// Register creates an account and returns a session for it. Only an admin
// caller may create another admin; callerRole is empty for anonymous sign-up.
func (s *Service) Register(ctx context.Context, in models.NewUser, callerRole models.Role) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = models.NormalizeEmail(in.Email)
	if in.Role == "" {
		in.Role = models.RoleCustomer
	}

	if err := validation.Struct(&in); err != nil {
		metrics.Registrations.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, err
	}
	if len(in.Password) > MaxPasswordBytes {
		metrics.Registrations.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, validation.Errorf("password", "password cannot be more than 72 bytes")
	}
	if in.Role == models.RoleAdmin && callerRole != models.RoleAdmin {
		metrics.Registrations.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, common.Errorf(common.ErrForbidden, "only an admin can create admin accounts")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		metrics.Registrations.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	u := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		BusinessName: strings.TrimSpace(in.BusinessName),
		Phone:        strings.TrimSpace(in.Phone),
		Address:      in.Address,
		ProfileImage: in.ProfileImage,
		IsActive:     true,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, common.ErrConflict) {
			metrics.Registrations.WithLabelValues(metrics.OutcomeConflict).Inc()
			return nil, common.Errorf(common.ErrConflict, "user already exists with this email")
		}
		metrics.Registrations.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("auth: create user: %w", err)
	}

	sess, err := s.issue(u)
	if err != nil {
		metrics.Registrations.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	metrics.Registrations.WithLabelValues(metrics.OutcomeSuccess).Inc()
	logging.Ctx(ctx).Info().Str("user_id", u.ID).Str("role", u.Role.String()).Msg("user registered")
	return sess, nil
}

// Logout revokes the session's token id. Repeating it is harmless.
func (s *Service) Logout(ctx context.Context, cl *Claims) error {
	if cl == nil || cl.TokenID == "" {
		return nil
	}
	if err := s.deny.Revoke(ctx, cl.TokenID, cl.ExpiresAt); err != nil {
		return fmt.Errorf("auth: revoke: %w", err)
	}
	metrics.Logouts.Inc()
	logging.Ctx(ctx).Info().Str("user_id", cl.UserID).Msg("logout")
	return nil
}

// Verify decodes a bearer token and checks it against revocations and the
// current user record. The returned claims carry the user's current role.
func (s *Service) Verify(ctx context.Context, token string) (*Claims, error) {
	cl, err := s.codec.Decode(token)
	if err != nil {
		reason := "invalid"
		if errors.Is(err, common.ErrTokenExpired) {
			reason = "expired"
		}
		metrics.TokenRejections.WithLabelValues(reason).Inc()
		return nil, err
	}

	revoked, err := s.deny.IsRevoked(ctx, cl.TokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		metrics.TokenRejections.WithLabelValues("revoked").Inc()
		return nil, common.ErrTokenRevoked
	}

	u, err := s.store.FindUserByID(ctx, cl.UserID)
	if errors.Is(err, common.ErrNotFound) {
		metrics.TokenRejections.WithLabelValues("unknown_user").Inc()
		return nil, common.Errorf(common.ErrInvalidToken, "user no longer exists")
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		metrics.TokenRejections.WithLabelValues("disabled").Inc()
		return nil, common.ErrAccountDisabled
	}

	cl.Role = u.Role
	return cl, nil
}

// CurrentUser returns the profile behind verified claims.
func (s *Service) CurrentUser(ctx context.Context, cl *Claims) (models.Profile, error) {
	u, err := s.store.FindUserByID(ctx, cl.UserID)
	if err != nil {
		return models.Profile{}, err
	}
	return u.Profile(), nil
}

// ChangePassword replaces the password after re-checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < 6 {
		return validation.Errorf("newPassword", "newPassword must be at least 6 characters")
	}
	if len(next) > MaxPasswordBytes {
		return validation.Errorf("newPassword", "newPassword cannot be more than 72 bytes")
	}

	u, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Check(u.PasswordHash, current) {
		return common.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	logging.Ctx(ctx).Info().Str("user_id", userID).Msg("password changed")
	return nil
}

// ChangeRole is the only path that alters a user's role. Admins only.
func (s *Service) ChangeRole(ctx context.Context, actor *Claims, targetID string, role models.Role) (models.Profile, error) {
	if actor == nil || actor.Role != models.RoleAdmin {
		return models.Profile{}, common.Errorf(common.ErrForbidden, "only an admin can change roles")
	}
	if !role.Valid() {
		return models.Profile{}, validation.Errorf("role", "role must be one of customer, vendor, admin")
	}

	u, err := s.store.UpdateRole(ctx, targetID, role)
	if err != nil {
		return models.Profile{}, err
	}

	logging.Ctx(ctx).Warn().
		Str("actor_id", actor.UserID).
		Str("target_id", targetID).
		Str("new_role", role.String()).
		Msg("role changed")
	return u.Profile(), nil
}
