package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/oliverames/warden/internal/helperapi"
)

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Allow the interface to come up",
	Long:  "Turn blocking off: the daemon stops forcing the interface down.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return setEnabled(cmd, true)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Keep the interface down",
	Long:  "Turn blocking on: the daemon forces the interface down and keeps it down.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return setEnabled(cmd, false)
	},
}

func init() {
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
}

func setEnabled(cmd *cobra.Command, enabled bool) error {
	verb := "disable"
	if enabled {
		verb = "enable"
	}

	body, err := json.Marshal(helperapi.EnabledRequest{Enabled: enabled})
	if err != nil {
		return fmt.Errorf("wardend %s: %w", verb, err)
	}

	resp, err := socketDo(controlSocketPath(), http.MethodPut, "/v1/enabled", body)
	if err != nil {
		return fmt.Errorf("wardend %s: %w", verb, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("wardend %s: daemon returned %s: %s", verb, resp.Status, string(data))
	}

	if enabled {
		fmt.Fprintln(cmd.OutOrStdout(), "blocking off: interface may come up")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "blocking on: interface will be kept down")
	}
	return nil
}
