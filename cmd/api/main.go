package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/vaughan-dsouza/cinnamart/internal/auth"
	"github.com/vaughan-dsouza/cinnamart/internal/authz"
	"github.com/vaughan-dsouza/cinnamart/internal/config"
	"github.com/vaughan-dsouza/cinnamart/internal/db"
	"github.com/vaughan-dsouza/cinnamart/internal/handlers"
	"github.com/vaughan-dsouza/cinnamart/internal/logging"
	"github.com/vaughan-dsouza/cinnamart/internal/store"
	"github.com/vaughan-dsouza/cinnamart/internal/store/memory"
	storemongo "github.com/vaughan-dsouza/cinnamart/internal/store/mongo"
	"github.com/vaughan-dsouza/cinnamart/internal/store/postgres"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logging.Info().Msg("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("config")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("store connect")
	}
	defer st.Close()

	deny, err := auth.OpenBadgerDenylist(cfg.Auth.DenylistPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("denylist open")
	}
	defer deny.Close()

	stopGC, err := deny.ScheduleGC(cfg.Auth.DenylistGCSchedule)
	if err != nil {
		logging.Fatal().Err(err).Msg("denylist gc")
	}
	defer stopGC()

	codec, err := auth.NewTokenCodec(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("token codec")
	}

	enforcer, err := authz.NewEnforcer(cfg.Authz.PolicyPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("authz policy")
	}

	svc := auth.NewService(st, codec, deny, auth.NewHasher(cfg.Auth.BcryptCost))
	h := handlers.NewHandler(svc, st, enforcer, handlers.OptionsFromConfig(cfg))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      h.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("server forced to shutdown")
	}

	logging.Info().Msg("server exited")
}

// openStore connects the configured backend and bounds every call by the
// database timeout.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	var s store.Store
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		conn, err := db.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, conn.DB); err != nil {
			_ = conn.Close()
			return nil, err
		}
		s = postgres.New(conn)
	case config.DriverMongo:
		m, err := storemongo.Connect(ctx, cfg.Database.URL, cfg.Database.Name)
		if err != nil {
			return nil, err
		}
		s = m
	default:
		logging.Warn().Msg("using the in-memory store; data is lost on exit")
		s = memory.New()
	}
	return store.WithTimeout(s, cfg.Database.Timeout), nil
}
