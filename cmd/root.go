package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig  string
	flagDataDir string
	flagVerbose bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "intelwatch",
	Short: "Bitcoin education intelligence aggregator",
	Long: `intelwatch polls security advisories, news, market and regulatory feeds and
learning resources, classifies what it finds and writes an intelligence report
for keeping Bitcoin course material current.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional
		_ = godotenv.Load()

		config := zap.NewProductionConfig()
		if flagVerbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory for reports (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	versionCmd.Flags().BoolVar(&flagCheckUpdate, "check", false, "check GitHub for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(gatherCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
}

var flagCheckUpdate bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "intelwatch %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheckUpdate {
			return nil
		}
		res, err := update.Checker{}.Check(cmd.Context(), version)
		if err != nil {
			logger.Debug("update check failed", zap.Error(err))
			fmt.Fprintln(out, "Could not check for updates.")
			return nil
		}
		if res == nil {
			fmt.Fprintln(out, "You are on the latest release.")
			return nil
		}
		fmt.Fprintf(out, "Update available: %s -> %s\n", version, res.LatestVersion)
		if res.URL != "" {
			fmt.Fprintln(out, res.URL)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
