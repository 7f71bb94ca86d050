package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaughan-dsouza/cinnamart/internal/auth"
	"github.com/vaughan-dsouza/cinnamart/internal/common"
	"github.com/vaughan-dsouza/cinnamart/internal/models"
	"github.com/vaughan-dsouza/cinnamart/internal/validation"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{validation.Errorf("x", "bad"), http.StatusBadRequest},
		{common.ErrInvalidCredentials, http.StatusUnauthorized},
		{common.ErrTokenExpired, http.StatusUnauthorized},
		{common.ErrTokenRevoked, http.StatusUnauthorized},
		{common.ErrAccountDisabled, http.StatusForbidden},
		{common.Errorf(common.ErrForbidden, "no"), http.StatusForbidden},
		{fmt.Errorf("lookup: %w", common.ErrNotFound), http.StatusNotFound},
		{common.Errorf(common.ErrConflict, "dup"), http.StatusConflict},
		{fmt.Errorf("op: %w", common.ErrStoreUnavailable), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), tc.err.Error())
	}
}

func TestWriteError_PublicMessages(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	rec := httptest.NewRecorder()
	WriteError(rec, r, common.Errorf(common.ErrConflict, "user already exists with this email"), false)
	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeError(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "user already exists with this email", resp.Error)

	rec = httptest.NewRecorder()
	WriteError(rec, r, fmt.Errorf("auth: login: %w", common.ErrInvalidCredentials), false)
	assert.Equal(t, "invalid email or password", decodeError(t, rec).Error)

	rec = httptest.NewRecorder()
	WriteError(rec, r, validation.Errorf("email", "email is required"), false)
	resp = decodeError(t, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "email", resp.Errors[0].Field)
}

func TestWriteError_DetailOnlyInDevelopment(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	err := fmt.Errorf("postgres: list users: %w", errors.New("relation users does not exist"))

	rec := httptest.NewRecorder()
	WriteError(rec, r, err, false)
	resp := decodeError(t, rec)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", resp.Error)
	assert.Empty(t, resp.Detail)
	assert.NotContains(t, rec.Body.String(), "relation")

	rec = httptest.NewRecorder()
	WriteError(rec, r, err, true)
	assert.Contains(t, decodeError(t, rec).Detail, "relation users does not exist")
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Email string `json:"email"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@x.com"}`))
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, "a@x.com", v.Email)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@x.com","admin":true}`))
	assert.ErrorIs(t, DecodeJSON(r, &v), common.ErrValidation)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.ErrorIs(t, DecodeJSON(r, &v), common.ErrValidation)

	r = httptest.NewRequest(http.MethodPost, "/", nil)
	assert.ErrorIs(t, DecodeJSON(r, &v), common.ErrValidation)
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, BearerToken(r))

	r.AddCookie(&http.Cookie{Name: TokenCookie, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", BearerToken(r))

	r.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", BearerToken(r))

	r.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, BearerToken(r))
}

func TestClaimsContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, ClaimsFrom(ctx))
	assert.Equal(t, models.Role(""), CallerRole(ctx))

	ctx = WithClaims(ctx, &auth.Claims{UserID: "u1", Role: models.RoleVendor})
	assert.Equal(t, "u1", ClaimsFrom(ctx).UserID)
	assert.Equal(t, models.RoleVendor, CallerRole(ctx))
}

func TestSessionCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	p := models.Profile{ID: "u1", Name: "Ann Perera", Email: "ann@example.com", Role: models.RoleCustomer}
	require.NoError(t, SetSessionCookies(rec, "tok", p, CookieOptions{Secure: true, MaxAge: 604800}))

	cookies := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c
	}
	require.Contains(t, cookies, TokenCookie)
	require.Contains(t, cookies, UserCookie)

	tok := cookies[TokenCookie]
	assert.True(t, tok.HttpOnly)
	assert.True(t, tok.Secure)
	assert.Equal(t, http.SameSiteLaxMode, tok.SameSite)
	assert.Equal(t, 604800, tok.MaxAge)
	assert.Equal(t, "/", tok.Path)

	user := cookies[UserCookie]
	assert.False(t, user.HttpOnly)
	got, ok := DecodeUserCookie(user.Value)
	require.True(t, ok)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, models.RoleCustomer, got.Role)
	assert.NotContains(t, user.Value, "password")

	rec = httptest.NewRecorder()
	ClearSessionCookies(rec, false)
	for _, c := range rec.Result().Cookies() {
		assert.Equal(t, -1, c.MaxAge, c.Name)
	}
}

func TestDecodeUserCookie_Malformed(t *testing.T) {
	for _, v := range []string{"", "%zz", "not-json", "%7Bbroken"} {
		_, ok := DecodeUserCookie(v)
		assert.False(t, ok, v)
	}
}
