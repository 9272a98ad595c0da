package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/oliverames/warden/internal/helperapi"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Long:  "Connect to the local daemon via Unix socket and display engine state.",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	resp, err := socketGet(controlSocketPath(), "/v1/status")
	if err != nil {
		return fmt.Errorf("wardend status: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("wardend status: read response: %w", err)
	}

	var status helperapi.StatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return fmt.Errorf("wardend status: parse response: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), status.Status)
	return nil
}
