package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/alert"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/engine"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/render"
)

var (
	flagTimeframe string
	flagJSON      bool
)

var gatherCmd = &cobra.Command{
	Use:   "gather",
	Short: "Poll every source once and write a report",
	Long: `Fetch all enabled sources concurrently, classify the items published within
the timeframe and save the resulting report. Sources that fail are reported
but never abort the run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		tf, err := timeframeFlag(flagTimeframe, cfg.DefaultTimeframe())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		r, gatherErr := a.engine.GatherIntelligence(ctx, tf)
		if errors.Is(gatherErr, engine.ErrPersist) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: report was not saved: %v\n", gatherErr)
		}

		out := cmd.OutOrStdout()
		if flagJSON {
			if err := writeJSON(out, r); err != nil {
				return err
			}
		} else {
			fmt.Fprint(out, render.Report(r, time.Now(), 100))
		}
		return gatherErr
	},
}

func init() {
	gatherCmd.Flags().StringVarP(&flagTimeframe, "timeframe", "t", "", "recency window: 1h, 6h, 24h or 7d (default from config)")
	gatherCmd.Flags().BoolVar(&flagJSON, "json", false, "print the report as JSON")
}

func timeframeFlag(value string, fallback alert.Timeframe) (alert.Timeframe, error) {
	if value == "" {
		return fallback, nil
	}
	tf, err := alert.ParseTimeframe(value)
	if err != nil {
		return "", fmt.Errorf("invalid --timeframe: %w", err)
	}
	return tf, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
