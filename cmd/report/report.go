package report

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tphakala/wildlife-analytics/internal/analytics"
	"github.com/tphakala/wildlife-analytics/internal/app"
	"github.com/tphakala/wildlife-analytics/internal/errors"
)

type options struct {
	window        app.WindowFlags
	format        string
	splitByCamera bool
	publish       bool
}

// Command creates the report command for comprehensive analytics reports.
func Command(ctx *app.Context) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a comprehensive analytics report",
		Long: `Generate a comprehensive report for a detection window: biodiversity,
activity patterns, anomalies, population trends and conservation alerts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, ctx, &opts)
		},
	}

	opts.window.Register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", app.FormatJSON, "Output format: json, yaml")
	cmd.Flags().BoolVar(&opts.splitByCamera, "split-by-camera", false, "Generate one report per --camera concurrently")
	cmd.Flags().BoolVar(&opts.publish, "publish", false, "Deliver conservation alerts through MQTT and notifications")

	return cmd
}

func run(cmd *cobra.Command, ctx *app.Context, opts *options) error {
	a, err := ctx.Open()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	loc, err := a.Settings.Location()
	if err != nil {
		return err
	}
	start, end, err := opts.window.Window(loc)
	if err != nil {
		return err
	}
	filter := opts.window.Filter()

	var (
		reports []*analytics.Report
		output  any
	)
	if opts.splitByCamera {
		if len(filter.CameraIDs) == 0 {
			return fmt.Errorf("--split-by-camera needs at least one --camera")
		}
		reqs := make([]analytics.Request, 0, len(filter.CameraIDs))
		for _, id := range filter.CameraIDs {
			reqs = append(reqs, analytics.Request{
				Label:  "camera-" + strconv.FormatUint(uint64(id), 10),
				Filter: filter.WithCamera(id),
				Start:  start,
				End:    end,
			})
		}
		if reports, err = a.Engine.GenerateBatch(cmd.Context(), reqs); err != nil {
			return err
		}
		output = reports
	} else {
		report, err := a.Engine.GenerateComprehensiveAnalytics(cmd.Context(), analytics.Request{
			Filter: filter,
			Start:  start,
			End:    end,
		})
		if err != nil {
			return err
		}
		reports = []*analytics.Report{report}
		output = report
	}

	if err := app.Encode(cmd.OutOrStdout(), opts.format, output); err != nil {
		return err
	}
	if !opts.publish {
		return nil
	}

	// A delivery failure must not hide the report that was already written
	var errs []error
	for _, r := range reports {
		if _, err := a.Deliver(cmd.Context(), r.Alerts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
