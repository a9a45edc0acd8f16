package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/render"
)

var flagSummaryJSON bool

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the latest intelligence summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		latest, err := a.engine.CurrentSummary()
		if err != nil {
			return fmt.Errorf("reading summary: %w", err)
		}
		if flagSummaryJSON {
			return writeJSON(cmd.OutOrStdout(), latest)
		}
		fmt.Fprint(cmd.OutOrStdout(), render.Summary(latest, time.Now()))
		return nil
	},
}

func init() {
	summaryCmd.Flags().BoolVar(&flagSummaryJSON, "json", false, "print the summary as JSON")
}
