package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/oliverames/warden/internal/latency"
)

var latencyCmd = &cobra.Command{
	Use:   "latency",
	Short: "Show latency probe results",
	Long:  "Display the most recent round-trip measurements for each probe target.",
	RunE:  runLatency,
}

func init() {
	rootCmd.AddCommand(latencyCmd)
}

func runLatency(cmd *cobra.Command, _ []string) error {
	resp, err := socketGet(controlSocketPath(), "/v1/latency")
	if err != nil {
		return fmt.Errorf("wardend latency: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("wardend latency: read response: %w", err)
	}

	var results []latency.Result
	if err := json.Unmarshal(body, &results); err != nil {
		return fmt.Errorf("wardend latency: parse response: %w", err)
	}

	w := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(w, "no probe targets configured")
		return nil
	}

	for _, r := range results {
		if r.Healthy {
			fmt.Fprintf(w, "%s: %s\n", r.Target, r.RTT)
		} else {
			fmt.Fprintf(w, "%s: unreachable (%s)\n", r.Target, r.Error)
		}
	}
	return nil
}
