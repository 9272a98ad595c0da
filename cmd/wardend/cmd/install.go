package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/oliverames/warden/internal/packaging"
)

var installInterface string

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install wardend as a systemd service",
	RunE:  runInstall,
}

func init() {
	installCmd.Flags().StringVar(&installInterface, "interface", "", "interface name written into the default config")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, _ []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := packaging.InstallConfig{
		Interface: installInterface,
	}

	installer := packaging.NewInstaller(cfg, packaging.NewSystemdController(), packaging.NewRootChecker(), logger)

	if err := installer.Install(); err != nil {
		return fmt.Errorf("wardend install: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "wardend installed successfully")
	return nil
}
