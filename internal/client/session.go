package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/vaughan-dsouza/cinnamart/internal/logging"
	"github.com/vaughan-dsouza/cinnamart/internal/models"
)

// ErrNotSignedIn is returned by operations that need a current user.
var ErrNotSignedIn = errors.New("client: not signed in")

// Listener receives the current user after every change; nil means signed out.
type Listener func(user *models.Profile)

// Session caches the signed-in user. Its state lives in a KV so that other
// processes sharing the store see the same session; the last write wins and
// Reconcile picks up writes made elsewhere.
type Session struct {
	api *API
	kv  KV

	mu    sync.RWMutex
	token string
	user  *models.Profile
	raw   []byte

	subMu   sync.Mutex
	subs    map[int]Listener
	nextSub int
}

// NewSession restores any session persisted in kv.
func NewSession(ctx context.Context, api *API, kv KV) (*Session, error) {
	s := &Session{api: api, kv: kv, subs: make(map[int]Listener)}
	if _, err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns a copy of the signed-in user.
func (s *Session) Current() (models.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.Profile{}, false
	}
	return *s.user, true
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

func (s *Session) Login(ctx context.Context, email, password string) (models.Profile, error) {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return models.Profile{}, err
	}
	if err := s.save(ctx, res.Token, &res.User); err != nil {
		return models.Profile{}, err
	}
	return res.User, nil
}

// Register creates an account and, when the server signs the new user in,
// adopts that session.
func (s *Session) Register(ctx context.Context, in models.NewUser) (models.Profile, error) {
	res, err := s.api.Register(ctx, in)
	if err != nil {
		return models.Profile{}, err
	}
	if res.Token != "" {
		if err := s.save(ctx, res.Token, &res.User); err != nil {
			return models.Profile{}, err
		}
	}
	return res.User, nil
}

// Logout always ends the local session. Telling the server is best effort,
// so calling it while signed out or offline is harmless.
func (s *Session) Logout(ctx context.Context) error {
	if s.IsAuthenticated() {
		if err := s.api.Logout(ctx); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("server logout failed")
		}
	}
	s.api.ClearCookies()
	return s.save(ctx, "", nil)
}

// UpdateProfile merges upd into the cached user at once, then confirms it
// with the server. A rejected update restores the previous profile.
func (s *Session) UpdateProfile(ctx context.Context, upd models.UserUpdate) (models.Profile, error) {
	s.mu.RLock()
	token, prev := s.token, s.user
	s.mu.RUnlock()
	if prev == nil {
		return models.Profile{}, ErrNotSignedIn
	}

	next := *prev
	next.Merge(upd)
	if err := s.save(ctx, token, &next); err != nil {
		return models.Profile{}, err
	}

	confirmed, err := s.api.UpdateUser(ctx, prev.ID, upd)
	if err != nil {
		if rerr := s.save(ctx, token, prev); rerr != nil {
			return models.Profile{}, errors.Join(err, rerr)
		}
		return models.Profile{}, err
	}
	if err := s.save(ctx, token, &confirmed); err != nil {
		return models.Profile{}, err
	}
	return confirmed, nil
}

// Refresh replaces the cached user with the server's view. A session the
// server no longer accepts is dropped.
func (s *Session) Refresh(ctx context.Context) (models.Profile, error) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token == "" {
		return models.Profile{}, ErrNotSignedIn
	}

	p, err := s.api.Me(ctx)
	if err != nil {
		switch StatusOf(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			if cerr := s.save(ctx, "", nil); cerr != nil {
				return models.Profile{}, errors.Join(err, cerr)
			}
		}
		return models.Profile{}, err
	}
	if err := s.save(ctx, token, &p); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// Subscribe registers fn for session changes and returns its cancel func.
func (s *Session) Subscribe(fn Listener) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Reconcile re-reads the store and notifies listeners if another writer
// changed the session.
func (s *Session) Reconcile(ctx context.Context) error {
	changed, err := s.load(ctx)
	if err != nil {
		return err
	}
	if changed {
		s.notify()
	}
	return nil
}

// Watch reconciles every interval until ctx is done.
func (s *Session) Watch(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.Reconcile(ctx); err != nil && ctx.Err() == nil {
				logging.Ctx(ctx).Warn().Err(err).Msg("session reconcile failed")
			}
		}
	}
}

// load adopts the persisted state and reports whether it differed.
func (s *Session) load(ctx context.Context) (bool, error) {
	token, err := s.kv.Get(ctx, KeyToken)
	if err != nil {
		return false, err
	}
	raw, err := s.kv.Get(ctx, KeyUser)
	if err != nil {
		return false, err
	}

	var user *models.Profile
	if len(raw) > 0 {
		var p models.Profile
		if err := json.Unmarshal(raw, &p); err != nil {
			// same rule as the browser: an unreadable profile is no profile
			logging.Ctx(ctx).Warn().Err(err).Msg("discarding malformed stored profile")
			raw = nil
		} else {
			user = &p
		}
	}

	s.mu.Lock()
	changed := s.token != string(token) || !bytes.Equal(s.raw, raw)
	s.token, s.user, s.raw = string(token), user, raw
	s.mu.Unlock()

	s.api.SetToken(string(token))
	return changed, nil
}

// save persists and adopts a new state; an empty token clears everything.
func (s *Session) save(ctx context.Context, token string, user *models.Profile) error {
	var raw []byte
	if token == "" {
		if err := s.kv.Clear(ctx); err != nil {
			return err
		}
		user = nil
	} else {
		if err := s.kv.Set(ctx, KeyToken, []byte(token)); err != nil {
			return err
		}
		if user != nil {
			b, err := json.Marshal(user)
			if err != nil {
				return fmt.Errorf("client: encode profile: %w", err)
			}
			raw = b
			if err := s.kv.Set(ctx, KeyUser, raw); err != nil {
				return err
			}
		}
	}

	s.mu.Lock()
	s.token, s.user, s.raw = token, user, raw
	s.mu.Unlock()

	s.api.SetToken(token)
	s.notify()
	return nil
}

func (s *Session) notify() {
	var user *models.Profile
	if p, ok := s.Current(); ok {
		user = &p
	}

	s.subMu.Lock()
	subs := make([]Listener, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(user)
	}
}
