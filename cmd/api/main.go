package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"sanctuary-app/internal/admin"
	"sanctuary-app/internal/config"
	"sanctuary-app/internal/httpserver"
	"sanctuary-app/internal/logging"
	"sanctuary-app/internal/metrics"
	"sanctuary-app/internal/music"
	"sanctuary-app/internal/remote"
	"sanctuary-app/internal/state"
	"sanctuary-app/internal/storage"
	"sanctuary-app/internal/theme"
	"sanctuary-app/internal/ws"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("log init error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Info("starting", "httpAddr", cfg.HTTPAddr, "database", storage.RedactedDatabaseURL(cfg.DatabaseURL))

	backend, err := storage.OpenKV(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	if inspector, ok := backend.(storage.Inspector); ok {
		reg.MustRegister(storage.NewCollector(inspector, logger))
	}

	var (
		rc        httpserver.Remote
		adminAuth admin.Authenticator
	)
	if cfg.RemoteEnabled() {
		client := remote.NewClient(logger, cfg.APIBaseURL, cfg.APITimeout)
		rc, adminAuth = client, client
		logger.Info("remote api enabled", "baseUrl", cfg.APIBaseURL)
	}

	wsManager := ws.NewManager(logger)

	stores, err := state.Open(ctx, state.Deps{
		KV:                backend,
		Logger:            logger,
		Metrics:           m,
		Publisher:         wsManager,
		System:            theme.NewSystemScheme(theme.Scheme(cfg.SystemColorScheme)),
		AudioLoader:       music.NewClockLoader(logger),
		AutoAdvance:       cfg.MusicAutoAdvance,
		ProgressInterval:  cfg.MusicProgressInterval,
		AdminRemote:       adminAuth,
		AdminEmail:        cfg.AdminEmail,
		AdminPasscodeHash: cfg.AdminPasscodeHash,
	})
	if err != nil {
		logger.Error("failed to load stores", "error", err)
		_ = backend.Close()
		os.Exit(1)
	}

	handler := httpserver.NewHandler(logger, backend, stores, wsManager, httpserver.HandlerOptions{
		ClientToken: cfg.ClientToken,
		Remote:      rc,
		Gatherer:    reg,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          logging.StdLogger(logger),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("listening", "httpAddr", cfg.HTTPAddr)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}

	wsManager.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}

	if err := stores.Close(shutdownCtx); err != nil {
		logger.Error("store flush error", "error", err)
	}

	if err := backend.Close(); err != nil {
		logger.Error("storage close error", "error", err)
	}

	logger.Info("stopped")
}
