// Package cmd implements the wardend CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	logLevel   string
	ifaceName  string
	socketPath string
)

// Build info set from main.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// SetVersionInfo sets the version info from build-time ldflags.
func SetVersionInfo(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	rootCmd.Version = buildVersion
	rootCmd.SetVersionTemplate(fmt.Sprintf("wardend version {{.Version}}\ncommit: %s\nbuilt: %s\n", buildCommit, buildDate))
}

var rootCmd = &cobra.Command{
	Use:   "wardend",
	Short: "wardend is an interface-state watchdog",
	Long: "wardend keeps a peer-to-peer wireless interface administratively down\n" +
		"even when the operating system keeps bringing it back up. It watches kernel\n" +
		"link-state notifications and immediately forces the interface down again\n" +
		"whenever blocking is active.",
	// No Run function — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "/etc/warden/config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error; overrides config)")
	rootCmd.PersistentFlags().StringVar(&ifaceName, "interface", "", "interface to watch (overrides config)")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "control socket path (overrides config)")

	rootCmd.Version = buildVersion
	rootCmd.SetVersionTemplate(fmt.Sprintf("wardend version {{.Version}}\ncommit: %s\nbuilt: %s\n", buildCommit, buildDate))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
