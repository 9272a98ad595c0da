package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/oliverames/warden/internal/helperapi"
)

var resetInterventions bool

var interventionsCmd = &cobra.Command{
	Use:   "interventions",
	Short: "Show the intervention count",
	Long:  "Show how many times the daemon has forced the interface back down.",
	RunE:  runInterventions,
}

func init() {
	interventionsCmd.Flags().BoolVar(&resetInterventions, "reset", false, "reset the counter to zero")
	rootCmd.AddCommand(interventionsCmd)
}

func runInterventions(cmd *cobra.Command, _ []string) error {
	var (
		resp *http.Response
		err  error
	)
	if resetInterventions {
		resp, err = socketDo(controlSocketPath(), http.MethodDelete, "/v1/interventions", nil)
	} else {
		resp, err = socketGet(controlSocketPath(), "/v1/interventions")
	}
	if err != nil {
		return fmt.Errorf("wardend interventions: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("wardend interventions: read response: %w", err)
	}

	var counts helperapi.InterventionsResponse
	if err := json.Unmarshal(body, &counts); err != nil {
		return fmt.Errorf("wardend interventions: parse response: %w", err)
	}

	if resetInterventions {
		fmt.Fprintln(cmd.OutOrStdout(), "intervention counter reset")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "interventions: %d\n", counts.Count)
	return nil
}
