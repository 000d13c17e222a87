package monitor

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tphakala/wildlife-analytics/internal/app"
	"github.com/tphakala/wildlife-analytics/internal/detection"
)

// Command creates the monitor command that keeps publishing insights and alerts.
func Command(ctx *app.Context) *cobra.Command {
	var (
		org     uint
		cameras []uint
		opts    app.MonitorOptions
	)

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Continuously publish insights and conservation alerts",
		Long: `Run analytics periodically until interrupted. Each cycle publishes real-time
insights to MQTT and delivers new or escalated conservation alerts. With
metrics.listen set, Prometheus metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.Open()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			opts.Filter = detection.Filter{OrganizationID: org, CameraIDs: cameras}
			opts.Listen = a.Settings.Metrics.Listen
			return a.Monitor(runCtx, opts)
		},
	}

	cmd.Flags().UintVar(&org, "org", 0, "Restrict to cameras of an organization")
	cmd.Flags().UintSliceVar(&cameras, "camera", nil, "Restrict to camera IDs (repeatable)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", app.DefaultMonitorInterval, "Time between monitoring cycles")
	cmd.Flags().String("listen", "", "Metrics endpoint address, e.g. :9090 (overrides metrics.listen)")

	_ = ctx.BindFlag(cmd, "metrics.listen", "listen")

	return cmd
}
