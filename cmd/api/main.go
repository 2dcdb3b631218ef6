package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cimillas/events-api/internal/app"
	"github.com/cimillas/events-api/internal/clock"
	"github.com/cimillas/events-api/internal/config"
	"github.com/cimillas/events-api/internal/lib/logger/sl"
	transporthttp "github.com/cimillas/events-api/internal/transport/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const readHeaderTimeout = 5 * time.Second

func main() {
	bootLog := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg, err := config.Load(bootLog)
	if err != nil {
		bootLog.Error("invalid configuration", sl.Err(err))
		os.Exit(1)
	}

	log := setupLogger(cfg.Env)
	if err := run(cfg, log); err != nil {
		log.Error("api stopped with error", sl.Err(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	mode, err := transporthttp.ParseStatusMode(cfg.ErrorStatusMode)
	if err != nil {
		return err
	}

	log.Info("starting events api",
		slog.String("env", cfg.Env),
		slog.String("store", cfg.StoreDriver),
		slog.String("error_status_mode", mode.String()),
	)

	startupCtx, cancel := context.WithTimeout(context.Background(), cfg.StartupTimeout)
	defer cancel()

	st, err := openStore(startupCtx, cfg, log)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer st.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := transporthttp.NewMetrics(reg)

	eventSvc := app.NewEventService(log, st.repo, clock.NewSystem())
	handler := transporthttp.NewRouter(transporthttp.RouterConfig{
		Events:      transporthttp.NewEventHandlers(eventSvc, log, mode, metrics),
		Ping:        st.ping,
		Metrics:     metrics,
		Gatherer:    reg,
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	log.Info("api listening", slog.String("addr", server.Addr))

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-stopCtx.Done():
		log.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server shutdown error", sl.Err(err))
	}
	log.Info("server stopped")
	return nil
}

func setupLogger(env string) *slog.Logger {
	var logger *slog.Logger

	switch env {
	case config.EnvDev:
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvProd:
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	return logger
}
