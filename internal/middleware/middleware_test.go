package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaughan-dsouza/cinnamart/internal/auth"
	"github.com/vaughan-dsouza/cinnamart/internal/authz"
	"github.com/vaughan-dsouza/cinnamart/internal/common"
	"github.com/vaughan-dsouza/cinnamart/internal/logging"
	"github.com/vaughan-dsouza/cinnamart/internal/models"
	"github.com/vaughan-dsouza/cinnamart/internal/utils"
)

type fakeVerifier map[string]*auth.Claims

func (f fakeVerifier) Verify(_ context.Context, token string) (*auth.Claims, error) {
	switch token {
	case "revoked":
		return nil, common.ErrTokenRevoked
	case "disabled":
		return nil, common.ErrAccountDisabled
	case "down":
		return nil, common.ErrStoreUnavailable
	}
	if cl, ok := f[token]; ok {
		return cl, nil
	}
	return nil, common.ErrInvalidToken
}

var verifier = fakeVerifier{
	"cust":   {UserID: "c1", Role: models.RoleCustomer},
	"vendor": {UserID: "v1", Role: models.RoleVendor},
	"admin":  {UserID: "a1", Role: models.RoleAdmin},
}

func echoCaller() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cl := utils.ClaimsFrom(r.Context())
		if cl == nil {
			_, _ = w.Write([]byte("anonymous"))
			return
		}
		_, _ = w.Write([]byte(cl.UserID))
	})
}

func do(h http.Handler, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	h := Authenticate(verifier, false)(echoCaller())

	cases := []struct {
		token  string
		status int
		body   string
	}{
		{"", http.StatusUnauthorized, "not authorized, no token"},
		{"garbage", http.StatusUnauthorized, "invalid token"},
		{"revoked", http.StatusUnauthorized, "token revoked"},
		{"disabled", http.StatusForbidden, "account disabled"},
		{"down", http.StatusInternalServerError, "service temporarily unavailable"},
		{"cust", http.StatusOK, "c1"},
	}
	for _, tc := range cases {
		rec := do(h, http.MethodGet, "/api/auth/me", tc.token)
		assert.Equal(t, tc.status, rec.Code, tc.token)
		assert.Contains(t, rec.Body.String(), tc.body, tc.token)
	}
}

func TestAuthenticate_CookieToken(t *testing.T) {
	h := Authenticate(verifier, false)(echoCaller())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: utils.TokenCookie, Value: "vendor"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v1", rec.Body.String())
}

func TestOptionalAuthenticate(t *testing.T) {
	h := OptionalAuthenticate(verifier)(echoCaller())

	assert.Equal(t, "anonymous", do(h, http.MethodGet, "/api/products", "").Body.String())
	assert.Equal(t, "anonymous", do(h, http.MethodGet, "/api/products", "garbage").Body.String())
	assert.Equal(t, "a1", do(h, http.MethodGet, "/api/products", "admin").Body.String())
}

func TestAuthorize(t *testing.T) {
	e, err := authz.NewEnforcer("")
	require.NoError(t, err)

	h := OptionalAuthenticate(verifier)(Authorize(e, "/api", false)(echoCaller()))

	cases := []struct {
		method, path, token string
		status              int
	}{
		{http.MethodGet, "/api/products", "", http.StatusOK},
		{http.MethodGet, "/api/products/", "", http.StatusOK},
		{http.MethodGet, "/api/users", "", http.StatusOK},
		{http.MethodGet, "/api/auth/me", "", http.StatusUnauthorized},
		{http.MethodPatch, "/api/users/c1/role", "", http.StatusUnauthorized},
		{http.MethodPatch, "/api/users/c1/role", "cust", http.StatusForbidden},
		{http.MethodPost, "/api/products", "cust", http.StatusForbidden},
		{http.MethodPost, "/api/products", "vendor", http.StatusOK},
		{http.MethodPatch, "/api/users/c1/role", "vendor", http.StatusForbidden},
		{http.MethodPatch, "/api/users/c1/role", "admin", http.StatusOK},
	}
	for _, tc := range cases {
		rec := do(h, tc.method, tc.path, tc.token)
		assert.Equal(t, tc.status, rec.Code, "%s %s as %q", tc.method, tc.path, tc.token)
	}

	rec := do(h, http.MethodPatch, "/api/users/c1/role", "cust")
	assert.Contains(t, rec.Body.String(), "user role customer is not authorized to access this route")
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestIDFromContext(r.Context())
	}))

	rec := do(h, http.MethodGet, "/", "")
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRequestLoggerAndMetricsPassThrough(t *testing.T) {
	h := RequestLogger(Metrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))
	assert.Equal(t, http.StatusTeapot, do(h, http.MethodGet, "/", "").Code)
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(2, time.Minute)(echoCaller())

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/auth/login", "").Code)
	}
	rec := do(h, http.MethodPost, "/api/auth/login", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	open := RateLimit(0, time.Minute)(echoCaller())
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, do(open, http.MethodPost, "/", "").Code)
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS([]string{"https://shop.example.com"})(echoCaller())

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
