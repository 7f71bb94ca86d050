package middleware

import (
	"net/http"
	"strings"

	"github.com/vaughan-dsouza/cinnamart/internal/common"
	"github.com/vaughan-dsouza/cinnamart/internal/logging"
	"github.com/vaughan-dsouza/cinnamart/internal/metrics"
	"github.com/vaughan-dsouza/cinnamart/internal/models"
	"github.com/vaughan-dsouza/cinnamart/internal/utils"
)

// Policy answers whether a role may call a route.
type Policy interface {
	Enforce(role models.Role, path, method string) (bool, error)
}

// Authorize consults p for every request under basePath. Anonymous callers
// that are denied get 401; signed-in callers get 403.
func Authorize(p Policy, basePath string, dev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, basePath), "/")
			if path == "" {
				path = "/"
			}

			role := utils.CallerRole(r.Context())
			ok, err := p.Enforce(role, path, r.Method)
			if err != nil {
				utils.WriteError(w, r, err, dev)
				return
			}
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			if role == "" {
				utils.WriteError(w, r, common.Errorf(common.ErrUnauthorized, "not authorized, no token"), dev)
				return
			}

			metrics.Forbidden.WithLabelValues(role.String()).Inc()
			cl := utils.ClaimsFrom(r.Context())
			logging.Ctx(r.Context()).Warn().
				Str("user_id", cl.UserID).
				Str("role", role.String()).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("access denied")
			utils.WriteError(w, r, common.Errorf(common.ErrForbidden, "user role %s is not authorized to access this route", role), dev)
		})
	}
}
