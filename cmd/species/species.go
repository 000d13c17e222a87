package species

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tphakala/wildlife-analytics/internal/app"
)

// Command creates the species command for a single species report.
func Command(ctx *app.Context) *cobra.Command {
	var (
		window app.WindowFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "species [species-id]",
		Short: "Generate a report for one species",
		Long:  "Generate a detailed report for one catalogued species: detections, cameras, activity and population trend.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 0)
			if err != nil {
				return fmt.Errorf("invalid species id %q: %w", args[0], err)
			}

			a, err := ctx.Open()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			loc, err := a.Settings.Location()
			if err != nil {
				return err
			}
			start, end, err := window.Window(loc)
			if err != nil {
				return err
			}

			report, err := a.Engine.GenerateSpeciesReport(cmd.Context(), window.Filter(), uint(id), start, end)
			if err != nil {
				return err
			}
			return app.Encode(cmd.OutOrStdout(), format, report)
		},
	}

	window.Register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", app.FormatJSON, "Output format: json, yaml")

	return cmd
}
