package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/vaughan-dsouza/cinnamart/internal/logging"
	"github.com/vaughan-dsouza/cinnamart/internal/metrics"
	"github.com/vaughan-dsouza/cinnamart/internal/models"
	"github.com/vaughan-dsouza/cinnamart/internal/utils"
)

const (
	LoginPath    = "/login"
	RegisterPath = "/register"
	RootPath     = "/"
)

// PathClass is where a page request lands.
type PathClass struct {
	// Scope is the role owning the area, empty for public and auth pages.
	Scope    models.Role
	AuthPage bool
}

func (c PathClass) Scoped() bool { return c.Scope != "" }

var scopePrefixes = []struct {
	prefix string
	role   models.Role
}{
	{"/vendor", models.RoleVendor},
	{"/customer", models.RoleCustomer},
	{"/admin", models.RoleAdmin},
}

// Classify maps a page path to its class. Scoped areas match whole path
// segments, so /vendors is public while /vendor/products is vendor-scoped.
func Classify(path string) PathClass {
	if path == LoginPath || path == RegisterPath {
		return PathClass{AuthPage: true}
	}
	for _, s := range scopePrefixes {
		if path == s.prefix || strings.HasPrefix(path, s.prefix+"/") {
			return PathClass{Scope: s.role}
		}
	}
	return PathClass{}
}

// GuardInput is what the guard knows about a request.
type GuardInput struct {
	HasToken bool
	// Profile is nil when the profile cookie is absent or malformed.
	Profile *models.Profile
	Path    string
}

// GuardDecision is either a pass-through (Redirect empty) or a redirect
// produced by Rule.
type GuardDecision struct {
	Redirect string
	Rule     int
}

func (d GuardDecision) Allowed() bool { return d.Redirect == "" }

// Decide applies the page rules in order:
//  1. no token on a scoped path goes to login
//  2. a token on an auth page goes to the role's dashboard, or root
//  3. a profile whose role differs from the scope goes to root
//  4. everything else passes
//
// The decision is cosmetic. API handlers verify tokens themselves.
func Decide(in GuardInput) GuardDecision {
	class := Classify(in.Path)

	if !in.HasToken && class.Scoped() {
		return GuardDecision{Redirect: LoginPath, Rule: 1}
	}

	if in.HasToken && class.AuthPage {
		dest := RootPath
		if in.Profile != nil {
			dest = in.Profile.Role.DashboardPath()
		}
		return GuardDecision{Redirect: dest, Rule: 2}
	}

	if in.Profile != nil && class.Scoped() && in.Profile.Role != class.Scope {
		return GuardDecision{Redirect: RootPath, Rule: 3}
	}

	return GuardDecision{Rule: 4}
}

// GuardInputFrom reads the session cookies of r.
func GuardInputFrom(r *http.Request) GuardInput {
	in := GuardInput{Path: r.URL.Path}
	if c, err := r.Cookie(utils.TokenCookie); err == nil && c.Value != "" {
		in.HasToken = true
	}
	if c, err := r.Cookie(utils.UserCookie); err == nil {
		if p, ok := utils.DecodeUserCookie(c.Value); ok {
			in.Profile = &p
		}
	}
	return in
}

// RouteGuard redirects page requests according to Decide.
func RouteGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := Decide(GuardInputFrom(r))
		if d.Allowed() {
			next.ServeHTTP(w, r)
			return
		}

		metrics.GuardRedirects.WithLabelValues(strconv.Itoa(d.Rule)).Inc()
		logging.Ctx(r.Context()).Debug().
			Str("path", r.URL.Path).
			Str("redirect", d.Redirect).
			Int("rule", d.Rule).
			Msg("route guard redirect")

		http.Redirect(w, r, d.Redirect, http.StatusFound)
	})
}
