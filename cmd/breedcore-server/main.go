// Command breedcore-server runs the breeding date engine HTTP API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"breedcore/internal/blob"
	"breedcore/internal/core"
	"breedcore/internal/httpapi"
)

type config struct {
	Addr     string
	LogLevel slog.Level
}

func loadConfig() config {
	cfg := config{Addr: ":8080", LogLevel: slog.LevelInfo}
	if addr := os.Getenv("BREEDCORE_HTTP_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	switch strings.ToLower(os.Getenv("BREEDCORE_LOG_LEVEL")) {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	}
	return cfg
}

func main() {
	// A local .env is optional; the process environment wins.
	_ = godotenv.Load()
	cfg := loadConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	store, err := core.OpenPersistentStore(core.NewDefaultRulesEngine())
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := core.NewService(store,
		core.WithLogger(logger),
		core.WithMetrics(core.NewPrometheusMetricsRecorder(nil)),
	)
	blobs, err := blob.Open(ctx)
	if err != nil {
		logger.Error("open blob store", "error", err)
		os.Exit(1)
	}
	svc.UseBlobStore(blobs)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.New(svc, logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server", "error", err)
		os.Exit(1)
	}
}
