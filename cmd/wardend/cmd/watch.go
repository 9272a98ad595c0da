package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oliverames/warden/internal/daemon"
	"github.com/oliverames/warden/internal/watchdog"
)

var watchRestoreUp bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Block the interface until interrupted",
	Long: "Run wardend standalone: force the interface down immediately and keep\n" +
		"it down until the process is interrupted. No control socket is opened.",
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchRestoreUp, "restore-up-on-exit", false, "bring the interface back up on exit")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := daemon.ParseConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("wardend watch: %w", err)
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if ifaceName != "" {
		cfg.Watchdog.Interface = ifaceName
	}

	logger := setupLogger(cfg.LogLevel)

	logger.Info("starting wardend in standalone mode",
		"version", buildVersion,
		"interface", cfg.Watchdog.Interface,
		"restore_up_on_exit", watchRestoreUp,
	)

	// Standalone shape: block from the first instant, no waiting for a
	// client command.
	cfg.Watchdog.ForceDownOnStart = true
	cfg.Watchdog.RestoreUpOnExit = watchRestoreUp

	engine, err := watchdog.New(cfg.Watchdog, logger)
	if err != nil {
		return fmt.Errorf("wardend watch: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	select {
	case <-ctx.Done():
		logger.Info("shutting down", "reason", ctx.Err())
	case <-engine.Done():
		logger.Error("enforcement loop exited unexpectedly")
	}

	engine.Invalidate()
	logger.Info("wardend stopped")
	return nil
}
