package cli

import (
	"github.com/spf13/cobra"

	"github.com/sevigo/bookpurr/internal/appconfig"
)

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long:  `Show the configuration after merging defaults, the config file, BOOKPURR_* environment variables and flags.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			appconfig.ShowConfig(cmd.OutOrStdout(), a.v.ConfigFileUsed(), a.cfg)
		},
	}
}
