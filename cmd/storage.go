package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/cache"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/config"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/store"
)

var flagPruneOlderThan string

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old reports and expired cache entries",
	Long: `Delete stored reports older than the retention period and drop expired
entries from the local cache.

Uses the retention value from config (default: 30d) unless overridden with --older-than.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		retention := cfg.RetentionDuration()
		if flagPruneOlderThan != "" {
			d, err := config.ParseDuration(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			retention = d
		}

		out := cmd.OutOrStdout()
		deleted, err := store.New(cfg.DataDirPath(), nil).Prune(retention)
		if err != nil {
			return fmt.Errorf("pruning reports: %w", err)
		}
		if deleted == 0 {
			fmt.Fprintln(out, "No reports to prune.")
		} else {
			fmt.Fprintf(out, "Pruned %d report(s) older than %s.\n", deleted, formatDuration(retention))
		}

		if cfg.CacheBackend() != config.BackendSQLite {
			return nil
		}
		db, err := cache.OpenSQLite(cfg.CachePath(), nil)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		expired, err := db.Prune(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed %d expired cache entr%s.\n", expired, plural(expired, "y", "ies"))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show report and cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		st := store.New(cfg.DataDirPath(), nil)
		reports, err := st.ListReports()
		if err != nil {
			return fmt.Errorf("listing reports: %w", err)
		}
		var total int64
		for _, r := range reports {
			total += r.Size
		}
		fmt.Fprintf(out, "Reports: %s\n", st.Dir())
		fmt.Fprintf(out, "Stored: %d (%s)\n", len(reports), formatBytes(total))
		if len(reports) > 0 {
			fmt.Fprintf(out, "Latest: %s\n", reports[0].ID)
		}

		fmt.Fprintf(out, "Cache backend: %s\n", cfg.CacheBackend())
		if cfg.CacheBackend() != config.BackendSQLite {
			return nil
		}

		dbPath := cfg.CachePath()
		db, err := cache.OpenSQLite(dbPath, nil)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		count, size, err := db.Stats(dbPath)
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}
		fmt.Fprintf(out, "Cache: %s\n", dbPath)
		fmt.Fprintf(out, "Entries: %d\n", count)
		fmt.Fprintf(out, "Size: %s\n", formatBytes(size))
		if last, err := db.LastGather(); err == nil {
			fmt.Fprintf(out, "Last gather: %s\n", last.Local().Format(time.RFC1123))
		}
		return nil
	},
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override retention period (e.g., 30d, 720h)")
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
