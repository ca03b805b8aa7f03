package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/sons-crawler/internal/api"
	"github.com/JakeFAU/sons-crawler/internal/clock/system"
	"github.com/JakeFAU/sons-crawler/internal/config"
	"github.com/JakeFAU/sons-crawler/internal/crawler"
	"github.com/JakeFAU/sons-crawler/internal/extract"
	"github.com/JakeFAU/sons-crawler/internal/id/uuid"
	"github.com/JakeFAU/sons-crawler/internal/logging"
	"github.com/JakeFAU/sons-crawler/internal/metrics"
	"github.com/JakeFAU/sons-crawler/internal/schedule"
	"github.com/JakeFAU/sons-crawler/internal/telemetry"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := 0
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("service exited", zap.Error(err))
		exitCode = 1
	}
	stop()
	if syncErr := logger.Sync(); syncErr != nil {
		fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
	}
	os.Exit(exitCode)
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	metrics.Init()
	tp, err := telemetry.InitTracerProvider(ctx, telemetry.Config{
		ServiceName:  cfg.Telemetry.ServiceName,
		GCPProjectID: cfg.Telemetry.GCPProjectID,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(flushCtx); err != nil {
			logger.Warn("trace provider shutdown failed", zap.Error(err))
		}
	}()

	store, err := newRecordStore(cfg, logger.Named("store"))
	if err != nil {
		return err
	}
	opener, err := newSessionOpener(cfg, logger.Named("fetcher"))
	if err != nil {
		return err
	}
	extractor, err := extract.New(cfg.Crawler.BaseURL)
	if err != nil {
		return fmt.Errorf("build extractor: %w", err)
	}
	clock := system.New()

	job, err := crawler.NewJob(cfg.CrawlConfig(), opener, store, extractor, clock, logger.Named("crawler"))
	if err != nil {
		return fmt.Errorf("build crawl job: %w", err)
	}
	runner, err := schedule.New(job, schedule.Config{
		Spec:       cfg.Schedule.Cron,
		RunOnStart: cfg.Schedule.RunOnStart,
	}, clock, uuid.New(), logger.Named("schedule"))
	if err != nil {
		return fmt.Errorf("build scheduler: %w", err)
	}

	apiServer := api.NewServer(store, runner, logger.Named("api"))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	runner.Stop()
	logger.Info("shutdown complete")
	return runErr
}
