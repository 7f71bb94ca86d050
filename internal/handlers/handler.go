package handlers

import (
	"strings"
	"time"

	"github.com/vaughan-dsouza/cinnamart/internal/auth"
	"github.com/vaughan-dsouza/cinnamart/internal/config"
	"github.com/vaughan-dsouza/cinnamart/internal/middleware"
	"github.com/vaughan-dsouza/cinnamart/internal/store"
	"github.com/vaughan-dsouza/cinnamart/internal/utils"
)

// DefaultBasePath is used when no API base path is configured; the API
// cannot share the root with the browser pages.
const DefaultBasePath = "/api"

// Options carries the settings the HTTP layer needs from config.
type Options struct {
	BasePath        string
	Dev             bool
	SecureCookies   bool
	WebRoot         string
	CORSOrigins     []string
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BasePath:        cfg.API.BasePath,
		Dev:             cfg.IsDevelopment(),
		SecureCookies:   cfg.IsProduction(),
		WebRoot:         cfg.Web.Root,
		CORSOrigins:     cfg.Security.CORSOrigins,
		LoginRateLimit:  cfg.Security.LoginRateLimit,
		LoginRateWindow: cfg.Security.LoginRateWindow,
	}
}

type Handler struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Products *ProductHandler
	Health   *HealthHandler
	Pages    *PageHandler

	svc    *auth.Service
	policy middleware.Policy
	opts   Options
}

func NewHandler(svc *auth.Service, s store.Store, policy middleware.Policy, opts Options) *Handler {
	opts.BasePath = strings.TrimSuffix(opts.BasePath, "/")
	if opts.BasePath == "" {
		opts.BasePath = DefaultBasePath
	}
	cookies := utils.CookieOptions{Secure: opts.SecureCookies, MaxAge: svc.TokenTTL()}
	return &Handler{
		Auth:     NewAuthHandler(svc, cookies, opts.Dev),
		Users:    NewUserHandler(svc, s, cookies, opts.Dev),
		Products: NewProductHandler(s, opts.Dev),
		Health:   NewHealthHandler(s, opts.Dev),
		Pages:    NewPageHandler(opts.WebRoot),
		svc:      svc,
		policy:   policy,
		opts:     opts,
	}
}

// ----------- Response envelopes -------------

type dataResp struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type listResp struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Data    any  `json:"data"`
}

type messageResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
