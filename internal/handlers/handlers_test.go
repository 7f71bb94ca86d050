package handlers_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaughan-dsouza/cinnamart/internal/auth"
	"github.com/vaughan-dsouza/cinnamart/internal/authz"
	"github.com/vaughan-dsouza/cinnamart/internal/handlers"
	"github.com/vaughan-dsouza/cinnamart/internal/models"
	"github.com/vaughan-dsouza/cinnamart/internal/store/memory"
	"github.com/vaughan-dsouza/cinnamart/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type env struct {
	t      *testing.T
	srv    *httptest.Server
	store  *memory.Store
	hasher *auth.Hasher
	client *http.Client
}

func newEnv(t *testing.T, opts handlers.Options) *env {
	t.Helper()

	st := memory.New()
	codec, err := auth.NewTokenCodec(testSecret, time.Hour)
	require.NoError(t, err)
	deny, err := auth.OpenBadgerDenylist("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = deny.Close() })
	hasher := auth.NewHasher(bcrypt.MinCost)
	enforcer, err := authz.NewEnforcer("")
	require.NoError(t, err)

	svc := auth.NewService(st, codec, deny, hasher)
	srv := httptest.NewServer(handlers.NewHandler(svc, st, enforcer, opts).Routes())
	t.Cleanup(srv.Close)

	client := srv.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	return &env{t: t, srv: srv, store: st, hasher: hasher, client: client}
}

func devEnv(t *testing.T) *env {
	return newEnv(t, handlers.Options{BasePath: "/api", Dev: true})
}

func (e *env) send(req *http.Request) (*http.Response, map[string]any) {
	e.t.Helper()
	resp, err := e.client.Do(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)

	var body map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(e.t, json.Unmarshal(raw, &body), string(raw))
	}
	return resp, body
}

func (e *env) do(method, path, token string, payload any) (*http.Response, map[string]any) {
	e.t.Helper()
	var rd io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(e.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(e.t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.send(req)
}

// seed stores a user directly, bypassing the registration rules.
func (e *env) seed(email, password string, role models.Role) *models.User {
	e.t.Helper()
	hash, err := e.hasher.Hash(password)
	require.NoError(e.t, err)
	u := &models.User{Name: string(role) + " user", Email: email, PasswordHash: hash, Role: role, IsActive: true}
	if role == models.RoleVendor {
		u.BusinessName = "Spice Co"
	}
	require.NoError(e.t, e.store.CreateUser(context.Background(), u))
	return u
}

func (e *env) login(email, password string) string {
	e.t.Helper()
	resp, body := e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(e.t, http.StatusOK, resp.StatusCode, body)
	return body["token"].(string)
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, body)
	return d
}

func cookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRegisterLoginMeLogout(t *testing.T) {
	e := devEnv(t)

	resp, body := e.do(http.MethodPost, "/api/users", "", map[string]any{
		"name":     "Nimal",
		"email":    "Nimal@Example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	created := data(t, body)
	assert.Equal(t, "nimal@example.com", created["email"])
	assert.Equal(t, "customer", created["role"])
	assert.NotContains(t, created, "password")
	assert.NotEmpty(t, body["token"])
	require.NotNil(t, cookie(resp, utils.TokenCookie))

	resp, body = e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nimal@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Login successful", body["message"])
	token := body["token"].(string)

	tc := cookie(resp, utils.TokenCookie)
	require.NotNil(t, tc)
	assert.True(t, tc.HttpOnly)
	assert.False(t, tc.Secure)
	assert.Equal(t, 3600, tc.MaxAge)
	uc := cookie(resp, utils.UserCookie)
	require.NotNil(t, uc)
	assert.False(t, uc.HttpOnly)
	p, ok := utils.DecodeUserCookie(uc.Value)
	require.True(t, ok)
	assert.Equal(t, models.RoleCustomer, p.Role)

	resp, body = e.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, created["id"], data(t, body)["id"])

	resp, _ = e.do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, -1, cookie(resp, utils.TokenCookie).MaxAge)
	assert.Equal(t, -1, cookie(resp, utils.UserCookie).MaxAge)

	resp, body = e.do(http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "token revoked", body["error"])

	// logging out again is harmless
	resp, _ = e.do(http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = e.do(http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	e := devEnv(t)
	e.seed("kamal@example.com", "secret123", models.RoleCustomer)

	r1, b1 := e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "kamal@example.com", "password": "wrong-pass"})
	r2, b2 := e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@example.com", "password": "secret123"})

	assert.Equal(t, http.StatusUnauthorized, r1.StatusCode)
	assert.Equal(t, r1.StatusCode, r2.StatusCode)
	assert.Equal(t, b1, b2)
	assert.Nil(t, cookie(r1, utils.TokenCookie))
}

func TestLogin_SecureCookiesInProduction(t *testing.T) {
	e := newEnv(t, handlers.Options{BasePath: "/api", SecureCookies: true})
	e.seed("prod@example.com", "secret123", models.RoleCustomer)

	resp, _ := e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "prod@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, cookie(resp, utils.TokenCookie).Secure)
	assert.True(t, cookie(resp, utils.UserCookie).Secure)
}

func TestRegister_Errors(t *testing.T) {
	e := devEnv(t)
	e.seed("taken@example.com", "secret123", models.RoleCustomer)

	resp, body := e.do(http.MethodPost, "/api/users", "", map[string]any{
		"name": "Dup", "email": "TAKEN@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "user already exists with this email", body["error"])

	resp, body = e.do(http.MethodPost, "/api/users", "", map[string]any{
		"email": "new@example.com", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Len(t, body["errors"], 2)

	resp, body = e.do(http.MethodPost, "/api/users", "", map[string]any{
		"name": "Wide", "email": "wide@example.com", "password": strings.Repeat("é", 60),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "password cannot be more than 72 bytes", body["error"])
	assert.NotContains(t, body, "detail")

	resp, _ = e.do(http.MethodPost, "/api/users", "", map[string]any{
		"name": "Vee", "email": "vee@example.com", "password": "secret123", "role": "vendor",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = e.do(http.MethodPost, "/api/users", "", map[string]any{
		"name": "Root", "email": "root@example.com", "password": "secret123", "role": "admin",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "only an admin can create admin accounts", body["error"])
}

func TestRegisterVendor_LoginAndFetchOwnRecord(t *testing.T) {
	e := devEnv(t)

	resp, body := e.do(http.MethodPost, "/api/users", "", map[string]any{
		"name": "Vee", "email": "vee@example.com", "password": "secret123",
		"role": "vendor", "businessName": "Ceylon Bark",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	id := data(t, body)["id"].(string)

	token := e.login("vee@example.com", "secret123")
	resp, body = e.do(http.MethodGet, "/api/users/"+id, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	got := data(t, body)
	assert.Equal(t, "vendor", got["role"])
	assert.Equal(t, "Ceylon Bark", got["businessName"])
}

func TestRegister_ByAdminKeepsAdminSession(t *testing.T) {
	e := devEnv(t)
	e.seed("admin@example.com", "secret123", models.RoleAdmin)
	admin := e.login("admin@example.com", "secret123")

	resp, body := e.do(http.MethodPost, "/api/users", admin, map[string]any{
		"name": "Second", "email": "second@example.com", "password": "secret123", "role": "admin",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "admin", data(t, body)["role"])
	assert.NotContains(t, body, "token")
	assert.Nil(t, cookie(resp, utils.TokenCookie))
}

func TestListUsers_VendorDirectoryIsPublic(t *testing.T) {
	e := devEnv(t)
	e.seed("vee@example.com", "secret123", models.RoleVendor)
	e.seed("cee@example.com", "secret123", models.RoleCustomer)
	cust := e.login("cee@example.com", "secret123")

	for _, token := range []string{"", cust} {
		req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/api/users?role=vendor", nil)
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		raw, err := e.client.Do(req)
		require.NoError(t, err)
		b, err := io.ReadAll(raw.Body)
		raw.Body.Close()
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, raw.StatusCode, string(b))
		assert.NotContains(t, strings.ToLower(string(b)), "password")

		var body map[string]any
		require.NoError(t, json.Unmarshal(b, &body))
		assert.EqualValues(t, 1, body["count"])
		list := body["data"].([]any)
		require.Len(t, list, 1)
		assert.Equal(t, "vee@example.com", list[0].(map[string]any)["email"])
		assert.Equal(t, "Spice Co", list[0].(map[string]any)["businessName"])
	}
}

func TestListUsers_OtherListingsAdminOnly(t *testing.T) {
	e := devEnv(t)
	e.seed("admin@example.com", "secret123", models.RoleAdmin)
	e.seed("vee@example.com", "secret123", models.RoleVendor)
	e.seed("cee@example.com", "secret123", models.RoleCustomer)
	admin := e.login("admin@example.com", "secret123")
	cust := e.login("cee@example.com", "secret123")
	vendor := e.login("vee@example.com", "secret123")

	resp, body := e.do(http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "not authorized, no token", body["error"])

	resp, _ = e.do(http.MethodGet, "/api/users?role=customer", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = e.do(http.MethodGet, "/api/users", cust, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "only an admin can list all accounts", body["error"])

	resp, body = e.do(http.MethodGet, "/api/users?role=customer", vendor, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "only an admin can list customer accounts", body["error"])

	req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/api/users", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+admin)
	raw, err := e.client.Do(req)
	require.NoError(t, err)
	b, err := io.ReadAll(raw.Body)
	raw.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, raw.StatusCode)
	assert.NotContains(t, strings.ToLower(string(b)), "password")

	resp, body = e.do(http.MethodGet, "/api/users?role=vendor", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["count"])

	resp, _ = e.do(http.MethodGet, "/api/users?role=root", admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUserRecord_SelfOrAdmin(t *testing.T) {
	e := devEnv(t)
	e.seed("admin@example.com", "secret123", models.RoleAdmin)
	a := e.seed("a@example.com", "secret123", models.RoleCustomer)
	b := e.seed("b@example.com", "secret123", models.RoleCustomer)
	admin := e.login("admin@example.com", "secret123")
	tokA := e.login("a@example.com", "secret123")

	resp, _ := e.do(http.MethodGet, "/api/users/"+a.ID, tokA, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.do(http.MethodGet, "/api/users/"+b.ID, tokA, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = e.do(http.MethodPut, "/api/users/"+b.ID, tokA, map[string]any{"name": "Hijack"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = e.do(http.MethodGet, "/api/users/"+b.ID, admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.do(http.MethodGet, "/api/users/missing", admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateUser_IgnoresPasswordAndRole(t *testing.T) {
	e := devEnv(t)
	u := e.seed("a@example.com", "secret123", models.RoleCustomer)
	tok := e.login("a@example.com", "secret123")

	resp, body := e.do(http.MethodPut, "/api/users/"+u.ID, tok, map[string]any{
		"name":     "Renamed",
		"password": "hijacked1",
		"role":     "admin",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "Renamed", data(t, body)["name"])
	assert.Equal(t, "customer", data(t, body)["role"])

	// old password still works, new one does not
	e.login("a@example.com", "secret123")
	resp, _ = e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@example.com", "password": "hijacked1"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = e.do(http.MethodPut, "/api/users/"+u.ID, tok, map[string]any{"isActive": false})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = e.do(http.MethodPut, "/api/users/"+u.ID, tok, map[string]any{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChangeRoleAndPassword(t *testing.T) {
	e := devEnv(t)
	e.seed("admin@example.com", "secret123", models.RoleAdmin)
	u := e.seed("a@example.com", "secret123", models.RoleCustomer)
	admin := e.login("admin@example.com", "secret123")
	tok := e.login("a@example.com", "secret123")

	resp, _ := e.do(http.MethodPatch, "/api/users/"+u.ID+"/role", tok, map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := e.do(http.MethodPatch, "/api/users/"+u.ID+"/role", admin, map[string]string{"role": "vendor"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "vendor", data(t, body)["role"])

	// the old token now carries the new role
	resp, _ = e.do(http.MethodPost, "/api/products", tok, map[string]any{
		"name": "Alba", "description": "Finest quills", "category": "Cinnamon Sticks", "price": 12.5,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = e.do(http.MethodPut, "/api/auth/password", tok, map[string]string{"currentPassword": "nope", "newPassword": "another1"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = e.do(http.MethodPut, "/api/auth/password", tok, map[string]string{"currentPassword": "secret123", "newPassword": "another1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	e.login("a@example.com", "another1")
}

func TestProducts_Ownership(t *testing.T) {
	e := devEnv(t)
	adminUser := e.seed("admin@example.com", "secret123", models.RoleAdmin)
	va := e.seed("va@example.com", "secret123", models.RoleVendor)
	vb := e.seed("vb@example.com", "secret123", models.RoleVendor)
	cu := e.seed("cee@example.com", "secret123", models.RoleCustomer)
	admin := e.login("admin@example.com", "secret123")
	tokA := e.login("va@example.com", "secret123")
	tokB := e.login("vb@example.com", "secret123")
	cust := e.login("cee@example.com", "secret123")

	product := map[string]any{
		"name":        "Ceylon Alba",
		"description": "Hand-rolled quills",
		"category":    "Cinnamon Sticks",
		"price":       20,
		"vendorId":    vb.ID,
	}

	resp, _ := e.do(http.MethodPost, "/api/products", "", product)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = e.do(http.MethodPost, "/api/products", cust, product)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := e.do(http.MethodPost, "/api/products", tokA, product)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	created := data(t, body)
	assert.Equal(t, va.ID, created["vendorId"])
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, "kg", created["unit"])
	vendor, ok := created["vendor"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Spice Co", vendor["businessName"])
	id := created["id"].(string)

	resp, _ = e.do(http.MethodPut, "/api/products/"+id, tokB, map[string]any{"price": 1})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = e.do(http.MethodDelete, "/api/products/"+id, tokB, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = e.do(http.MethodPut, "/api/products/"+id, tokA, map[string]any{"price": 25, "status": "active"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.EqualValues(t, 25, data(t, body)["price"])

	resp, _ = e.do(http.MethodPut, "/api/products/"+id, tokA, map[string]any{"status": "sold"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = e.do(http.MethodPost, "/api/products", admin, product)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, vb.ID, data(t, body)["vendorId"])

	// an admin can only assign products to vendor accounts
	for owner, msg := range map[string]string{
		"":           "vendorId is required",
		cu.ID:        "vendorId must reference a vendor account",
		adminUser.ID: "vendorId must reference a vendor account",
	} {
		bad := map[string]any{"name": "Stray", "description": "x", "category": "Cinnamon Sticks", "price": 1, "vendorId": owner}
		resp, body = e.do(http.MethodPost, "/api/products", admin, bad)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, owner)
		assert.Equal(t, msg, body["error"])
	}

	resp, body = e.do(http.MethodGet, "/api/products?vendor="+va.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["count"])

	resp, body = e.do(http.MethodGet, "/api/products?search=QUILLS", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["count"])

	resp, _ = e.do(http.MethodGet, "/api/products/"+id, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.do(http.MethodDelete, "/api/products/"+id, admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = e.do(http.MethodGet, "/api/products/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteSelf_EndsSession(t *testing.T) {
	e := devEnv(t)
	u := e.seed("a@example.com", "secret123", models.RoleCustomer)
	tok := e.login("a@example.com", "secret123")

	resp, _ := e.do(http.MethodDelete, "/api/users/"+u.ID, tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, -1, cookie(resp, utils.TokenCookie).MaxAge)

	resp, _ = e.do(http.MethodGet, "/api/auth/me", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	e := devEnv(t)
	resp, body := e.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestMalformedBody(t *testing.T) {
	e := devEnv(t)
	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/api/auth/login", strings.NewReader(`{"email":`))
	require.NoError(t, err)
	resp, body := e.send(req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestPages_RouteGuard(t *testing.T) {
	e := devEnv(t)
	e.seed("va@example.com", "secret123", models.RoleVendor)

	get := func(path string, cookies ...*http.Cookie) *http.Response {
		req, err := http.NewRequest(http.MethodGet, e.srv.URL+path, nil)
		require.NoError(t, err)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		resp, _ := e.send(req)
		return resp
	}

	resp := get("/vendor/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp = get("/shop")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	login, _ := e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "va@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, login.StatusCode)
	tc, uc := cookie(login, utils.TokenCookie), cookie(login, utils.UserCookie)

	resp = get("/login", tc, uc)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/vendor/dashboard", resp.Header.Get("Location"))

	resp = get("/admin/dashboard", tc, uc)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp = get("/vendor/dashboard", tc, uc)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
