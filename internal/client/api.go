// Package client is the programmatic counterpart of the browser session:
// an HTTP API client with retry, a sqlite-backed store for the token and
// profile, and a Session that keeps them in step.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/vaughan-dsouza/cinnamart/internal/logging"
	"github.com/vaughan-dsouza/cinnamart/internal/models"
)

const (
	defaultTimeout = 15 * time.Second
	pingTimeout    = 5 * time.Second
)

// RetryPolicy bounds the exponential backoff applied to failed calls.
type RetryPolicy struct {
	MaxRetries uint64
	Initial    time.Duration
	Max        time.Duration
}

// DefaultRetry waits 1s then 2s before giving up; no wait exceeds 5s.
var DefaultRetry = RetryPolicy{MaxRetries: 2, Initial: time.Second, Max: 5 * time.Second}

func (p RetryPolicy) backoff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Initial
	b.Multiplier = 2
	b.MaxInterval = p.Max
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx)
}

// APIError is a failed call. Network is set when no HTTP response arrived.
type APIError struct {
	Status  int
	Message string
	Network bool
	Err     error
}

func (e *APIError) Error() string {
	if e.Network {
		return "network error: " + e.Message
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err means the server could not be reached.
func IsNetworkError(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Network
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

// retryable is false for 401, 403 and 404; every other failure is retried.
func retryable(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return false
	}
	return true
}

type Option func(*API)

func WithHTTPClient(c *http.Client) Option {
	return func(a *API) { a.http = c }
}

func WithRetry(p RetryPolicy) Option {
	return func(a *API) { a.retry = p }
}

// API talks to the REST surface under a base URL such as
// http://localhost:4000/api.
type API struct {
	base  *url.URL
	http  *http.Client
	retry RetryPolicy

	mu    sync.RWMutex
	token string
}

func NewAPI(baseURL string, opts ...Option) (*API, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("client: base url %q must be absolute", baseURL)
	}

	a := &API{base: u, retry: DefaultRetry}
	for _, opt := range opts {
		opt(a)
	}
	if a.http == nil {
		a.http = &http.Client{Timeout: defaultTimeout}
	}
	if a.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		a.http.Jar = jar
	}
	return a, nil
}

// SetToken sets the bearer token sent with every call. Empty clears it.
func (a *API) SetToken(token string) {
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
}

func (a *API) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

// ClearCookies drops every cookie the server has set.
func (a *API) ClearCookies() {
	if jar, err := cookiejar.New(nil); err == nil {
		a.http.Jar = jar
	}
}

// Cookies returns the cookies held for the API origin.
func (a *API) Cookies() []*http.Cookie {
	return a.http.Jar.Cookies(a.base)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Do sends one call, retrying transient failures, and decodes a 2xx body
// into out when out is non-nil.
func (a *API) Do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode %s %s: %w", method, path, err)
		}
		payload = b
	}

	attempt := 0
	op := func() error {
		attempt++
		err := a.once(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}
		var ae *APIError
		if errors.As(err, &ae) && !ae.Network && !retryable(ae.Status) {
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		logging.Ctx(ctx).Debug().Err(err).Int("attempt", attempt).Str("path", path).Msg("request failed, retrying")
		return err
	}

	return backoff.Retry(op, a.retry.backoff(ctx))
}

func (a *API) once(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.base.String()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := a.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return &APIError{Network: true, Message: "please check your connection or try again later", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Network: true, Message: "connection dropped while reading response", Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		msg := eb.Error
		if msg == "" {
			msg = eb.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}

// Ping reports whether the server origin answers at all within five seconds.
func (a *API) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	origin := url.URL{Scheme: a.base.Scheme, Host: a.base.Host, Path: "/"}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, origin.String(), nil)
	if err != nil {
		return err
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return &APIError{Network: true, Message: "unable to connect to the server", Err: err}
	}
	_ = resp.Body.Close()
	return nil
}

// ----------- Endpoints -------------

// AuthResult is what login and anonymous registration hand back.
type AuthResult struct {
	Token string
	User  models.Profile
}

func (a *API) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var resp struct {
		Token string         `json:"token"`
		User  models.Profile `json:"user"`
	}
	in := map[string]string{"email": email, "password": password}
	if err := a.Do(ctx, http.MethodPost, "/auth/login", in, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &APIError{Status: http.StatusUnauthorized, Message: "invalid login credentials"}
	}
	return &AuthResult{Token: resp.Token, User: resp.User}, nil
}

func (a *API) Register(ctx context.Context, in models.NewUser) (*AuthResult, error) {
	var resp struct {
		Token string         `json:"token"`
		Data  models.Profile `json:"data"`
	}
	if err := a.Do(ctx, http.MethodPost, "/users", in, &resp); err != nil {
		return nil, err
	}
	return &AuthResult{Token: resp.Token, User: resp.Data}, nil
}

func (a *API) Logout(ctx context.Context) error {
	return a.Do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (a *API) Me(ctx context.Context) (models.Profile, error) {
	var resp struct {
		Data models.Profile `json:"data"`
	}
	err := a.Do(ctx, http.MethodGet, "/auth/me", nil, &resp)
	return resp.Data, err
}

func (a *API) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (models.Profile, error) {
	var resp struct {
		Data models.Profile `json:"data"`
	}
	err := a.Do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), upd, &resp)
	return resp.Data, err
}
