package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oliverames/warden/internal/daemon"
	"github.com/oliverames/warden/internal/helperapi"
	"github.com/oliverames/warden/internal/latency"
	"github.com/oliverames/warden/internal/telemetry"
	"github.com/oliverames/warden/internal/watchdog"
)

// drainTimeout is the maximum time for graceful shutdown.
const drainTimeout = 30 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the wardend helper daemon",
	Long: "Start wardend as a long-running helper daemon. The engine starts with\n" +
		"blocking off (fail open); clients toggle it over the local control socket.",
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	// 1. Parse config.
	cfg, err := daemon.ParseConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("wardend run: %w", err)
	}

	// Apply CLI flag overrides.
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if ifaceName != "" {
		cfg.Watchdog.Interface = ifaceName
	}
	if socketPath != "" {
		cfg.API.SocketPath = socketPath
	}

	// 2. Set up structured logger.
	logger := setupLogger(cfg.LogLevel)

	logger.Info("starting wardend",
		"version", buildVersion,
		"interface", cfg.Watchdog.Interface,
	)

	// 3. Start the enforcement engine. The helper daemon shape always
	// fails open: blocking begins only on an explicit client command.
	cfg.Watchdog.ForceDownOnStart = false
	engine, err := watchdog.New(cfg.Watchdog, logger)
	if err != nil {
		return fmt.Errorf("wardend run: %w", err)
	}
	defer engine.Invalidate()

	// 4. Metrics over the same control socket.
	metrics := telemetry.New(engine)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	var wg sync.WaitGroup

	// 5. Latency monitor, when targets are configured.
	var latencyReader helperapi.LatencyReader
	if len(cfg.Latency.Targets) > 0 {
		monitor := latency.NewMonitor(cfg.Latency, logger)
		monitor.SetObserver(metrics.ObserveRTT)
		latencyReader = monitor

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := monitor.Run(ctx); err != nil {
				logger.Error("latency monitor stopped", "error", err)
			}
		}()
	}

	// 6. Control API server on the Unix socket.
	handler := helperapi.NewHandler(engine, latencyReader, metrics.Handler(), buildVersion, logger)
	apiSrv := helperapi.NewServer(cfg.API, handler, logger)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := apiSrv.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error("control API server stopped", "error", err)
		}
	}()

	// Wait for shutdown signal or engine death.
	select {
	case <-ctx.Done():
		logger.Info("shutting down", "reason", ctx.Err())
	case <-engine.Done():
		logger.Error("enforcement loop exited unexpectedly, shutting down")
		stop()
	}

	engine.Invalidate()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		// All goroutines exited cleanly.
	case <-time.After(drainTimeout):
		logger.Warn("drain timeout exceeded, forcing exit")
	}

	logger.Info("wardend stopped")
	return nil
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
