package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vaughan-dsouza/cinnamart/internal/middleware"
)

// pageAreas are the browser routes behind the route guard.
var pageAreas = []string{"/vendor", "/customer", "/admin", "/shop"}

// Routes builds the full HTTP surface: the REST API under the base path,
// /metrics, and the guarded browser pages.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Metrics)

	r.Handle("/metrics", promhttp.Handler())

	r.Route(h.opts.BasePath, func(api chi.Router) {
		api.Use(middleware.CORS(h.opts.CORSOrigins))
		limit := middleware.RateLimit(h.opts.LoginRateLimit, h.opts.LoginRateWindow)

		// Public
		api.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuthenticate(h.svc))
			r.Use(middleware.Authorize(h.policy, h.opts.BasePath, h.opts.Dev))

			r.Get("/health", h.Health.Check)
			r.With(limit).Post("/auth/login", h.Auth.Login)
			r.Post("/auth/logout", h.Auth.Logout)
			r.With(limit).Post("/users", h.Users.Create)
			r.Get("/users", h.Users.List)

			r.Get("/products", h.Products.List)
			r.Get("/products/{id}", h.Products.Get)
		})

		// Protected
		api.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(h.svc, h.opts.Dev))
			r.Use(middleware.Authorize(h.policy, h.opts.BasePath, h.opts.Dev))

			r.Get("/auth/me", h.Auth.Me)
			r.Put("/auth/password", h.Auth.ChangePassword)

			r.Get("/users/{id}", h.Users.Get)
			r.Put("/users/{id}", h.Users.Update)
			r.Delete("/users/{id}", h.Users.Delete)
			r.Patch("/users/{id}/role", h.Users.ChangeRole)

			r.Post("/products", h.Products.Create)
			r.Put("/products/{id}", h.Products.Update)
			r.Delete("/products/{id}", h.Products.Delete)
		})
	})

	// Pages
	r.Group(func(r chi.Router) {
		r.Use(middleware.RouteGuard)

		r.Get("/", h.Pages.ServeHTTP)
		r.Get(middleware.LoginPath, h.Pages.ServeHTTP)
		r.Get(middleware.RegisterPath, h.Pages.ServeHTTP)
		for _, area := range pageAreas {
			r.Get(area, h.Pages.ServeHTTP)
			r.Get(area+"/*", h.Pages.ServeHTTP)
		}
	})

	return r
}
