package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yeardiary/internal/auth"
	"yeardiary/internal/config"
	httpx "yeardiary/internal/http"
	"yeardiary/internal/logger"
)

type ServeCmd struct {
	Addr string `help:"Listen address, overrides HTTP_ADDR."`
}

func (c *ServeCmd) Run(ctx *Context) error {
	cfg, err := config.Load(ctx.EnvFile...)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.HTTPAddr = c.Addr
	}

	lg, err := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		Production: cfg.Production(),
		File:       cfg.LogFile,
	})
	if err != nil {
		return err
	}

	store, closeStore, err := openBackend(context.Background(), cfg, lg, true)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			lg.Error("close store", "err", err)
		}
	}()

	if cfg.AuthTestMode {
		lg.Warn("auth test mode is on: test_credential and test_token_123 are accepted")
	}
	if cfg.GoogleClientID == "" {
		lg.Warn("GOOGLE_CLIENT_ID is not set, google login will fail")
	}

	gate := &auth.Gate{
		Users: store,
		JWT:   auth.NewJWT(cfg.JWTSecret, cfg.TokenTTL),
		Verifiers: map[string]auth.Verifier{
			"google": auth.NewGoogleVerifier(cfg.GoogleClientID),
		},
		TestMode: cfg.AuthTestMode,
	}
	r := httpx.NewRouter(cfg, httpx.Deps{Gate: gate, Store: store, Log: lg})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("listening", "addr", cfg.HTTPAddr, "backend", cfg.StoreBackend, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// graceful shutdown
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-sigCtx.Done():
	}

	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	cfg, err := config.Load(ctx.EnvFile...)
	if err != nil {
		return err
	}
	_, closeStore, err := openBackend(context.Background(), cfg, ctx.Log, true)
	if err != nil {
		return err
	}
	defer closeStore()
	ctx.printf("schema is up to date (%s/%s)\n", cfg.StoreBackend, cfg.DatabaseDriver)
	return nil
}
