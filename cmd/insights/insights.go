package insights

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/wildlife-analytics/internal/app"
	"github.com/tphakala/wildlife-analytics/internal/detection"
)

// Command creates the insights command for a real-time activity summary.
func Command(ctx *app.Context) *cobra.Command {
	var (
		org     uint
		cameras []uint
		format  string
		publish bool
	)

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Summarize the most recent detections",
		Long:  "Summarize the detections of the last analytics.realtimehours hours: activity level, active species and top species.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.Open()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			in, err := a.Engine.RealTimeInsights(cmd.Context(), detection.Filter{OrganizationID: org, CameraIDs: cameras})
			if err != nil {
				return err
			}
			if publish {
				if err := a.PublishInsights(cmd.Context(), in); err != nil {
					return err
				}
			}
			return app.Encode(cmd.OutOrStdout(), format, in)
		},
	}

	cmd.Flags().UintVar(&org, "org", 0, "Restrict to cameras of an organization")
	cmd.Flags().UintSliceVar(&cameras, "camera", nil, "Restrict to camera IDs (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", app.FormatJSON, "Output format: json, yaml")
	cmd.Flags().BoolVar(&publish, "publish", false, "Publish the summary to MQTT")

	return cmd
}
