package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/browser"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/render"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/store"
)

var (
	flagReportJSON bool
	flagReportList bool
	flagOpen       int
)

var reportCmd = &cobra.Command{
	Use:   "report [report-id]",
	Short: "Show a stored report",
	Long: `Print a previously saved report, the most recent one when no id is given.
Use --list to see stored report ids and --open N to open the Nth critical
alert in your browser.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st := store.New(cfg.DataDirPath(), nil)
		out := cmd.OutOrStdout()

		entries, err := st.ListReports()
		if err != nil {
			return err
		}
		if flagReportList {
			for _, e := range entries {
				fmt.Fprintf(out, "%s  %s  %s\n", e.ID, e.GeneratedAt.Local().Format("2006-01-02 15:04"), formatBytes(e.Size))
			}
			return nil
		}

		var id string
		switch {
		case len(args) == 1:
			id = args[0]
		case len(entries) > 0:
			id = entries[0].ID
		default:
			return errors.New("no reports stored yet; run `intelwatch gather` first")
		}

		r, err := st.LoadReport(id)
		if err != nil {
			return err
		}

		if flagOpen > 0 {
			if flagOpen > len(r.CriticalAlerts) {
				return fmt.Errorf("report has %d critical alert(s)", len(r.CriticalAlerts))
			}
			return browser.Open(r.CriticalAlerts[flagOpen-1].URL)
		}
		if flagReportJSON {
			return writeJSON(out, r)
		}
		fmt.Fprint(out, render.Report(r, time.Now(), 100))
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&flagReportJSON, "json", false, "print the report as JSON")
	reportCmd.Flags().BoolVar(&flagReportList, "list", false, "list stored reports")
	reportCmd.Flags().IntVar(&flagOpen, "open", 0, "open the Nth critical alert in the browser")
	rootCmd.AddCommand(reportCmd)
}
