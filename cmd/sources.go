package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/render"
)

var flagAllSources bool

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		list := cfg.EnabledSources()
		if flagAllSources {
			list = cfg.Sources
		}
		fmt.Fprint(cmd.OutOrStdout(), render.Sources(list))
		return nil
	},
}

func init() {
	sourcesCmd.Flags().BoolVar(&flagAllSources, "all", false, "include disabled sources")
}
