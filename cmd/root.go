package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/wildlife-analytics/cmd/initconfig"
	"github.com/tphakala/wildlife-analytics/cmd/insights"
	"github.com/tphakala/wildlife-analytics/cmd/monitor"
	"github.com/tphakala/wildlife-analytics/cmd/report"
	"github.com/tphakala/wildlife-analytics/cmd/seed"
	"github.com/tphakala/wildlife-analytics/cmd/species"
	"github.com/tphakala/wildlife-analytics/internal/app"
)

// RootCommand creates and returns the root command
func RootCommand(ctx *app.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wildlife-analytics",
		Short:         "Wildlife camera trap analytics",
		Long:          "Biodiversity, activity, anomaly, trend and conservation analytics over camera trap detections.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, ctx)

	rootCmd.AddCommand(
		report.Command(ctx),
		insights.Command(ctx),
		species.Command(ctx),
		monitor.Command(ctx),
		seed.Command(ctx),
		initconfig.Command(ctx),
	)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, ctx *app.Context) {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.ConfigFile, "config", "c", "", "Path to config.yaml (default: search ., ~/.config/wildlife-analytics, /etc/wildlife-analytics)")
	flags.BoolP("debug", "d", false, "Enable debug output")
	flags.String("timezone", "", "IANA time zone for day and hour buckets (overrides config)")

	_ = ctx.Viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = ctx.Viper.BindPFlag("timezone", flags.Lookup("timezone"))
}
