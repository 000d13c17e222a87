package app

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/tphakala/wildlife-analytics/internal/analytics"
	"github.com/tphakala/wildlife-analytics/internal/detection"
	"github.com/tphakala/wildlife-analytics/internal/errors"
	"github.com/tphakala/wildlife-analytics/internal/logger"
	"github.com/tphakala/wildlife-analytics/internal/observability"
)

// DefaultMonitorInterval is the pause between monitoring cycles.
const DefaultMonitorInterval = 5 * time.Minute

// MonitorOptions configures Monitor.
type MonitorOptions struct {
	Filter   detection.Filter
	Interval time.Duration
	Listen   string // metrics endpoint address, empty disables it
}

// Monitor runs a monitoring cycle immediately and then once per interval
// until ctx is cancelled. Each cycle publishes real-time insights and
// delivers conservation alerts that are new or have escalated since the
// previous cycle. Cycle failures are logged and do not stop the loop.
func (a *App) Monitor(ctx context.Context, opts MonitorOptions) error {
	if opts.Interval <= 0 {
		opts.Interval = DefaultMonitorInterval
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	if opts.Listen != "" {
		endpoint, err := observability.NewEndpoint(opts.Listen, a.Metrics)
		if err != nil {
			return err
		}
		addr, err := endpoint.Start(ctx, &wg)
		if err != nil {
			return err
		}
		a.log.Info("metrics endpoint listening", logger.String("address", addr))
	}

	tracker := newAlertTracker()
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	a.log.Info("monitoring started", logger.Duration("interval", opts.Interval))
	for {
		if err := a.monitorCycle(ctx, opts.Filter, tracker); err != nil {
			if ctx.Err() != nil {
				break
			}
			a.log.Error("monitoring cycle failed", logger.Error(err))
		}

		select {
		case <-ctx.Done():
			a.log.Info("monitoring stopped")
			return nil
		case <-ticker.C:
		}
	}
	a.log.Info("monitoring stopped")
	return nil
}

func (a *App) monitorCycle(ctx context.Context, filter detection.Filter, tracker *alertTracker) error {
	start := time.Now()

	insights, err := a.Engine.RealTimeInsights(ctx, filter)
	if err != nil {
		return err
	}
	var errs []error
	if err := a.PublishInsights(ctx, insights); err != nil {
		errs = append(errs, err)
	}

	report, err := a.Engine.GenerateComprehensiveAnalytics(ctx, analytics.Request{Label: "monitor", Filter: filter})
	if err != nil {
		return errors.Join(append(errs, err)...)
	}
	fresh := tracker.fresh(report.Alerts)
	res, err := a.Deliver(ctx, fresh)
	if err != nil {
		errs = append(errs, err)
	}
	tracker.commit(report.Alerts, res.Undelivered)

	a.log.Info("monitoring cycle completed",
		logger.Int("recent_detections", insights.TotalDetections),
		logger.String("activity_level", string(insights.ActivityLevel)),
		logger.Int("alerts", len(report.Alerts)),
		logger.Int("alerts_delivered", len(res.Delivered)),
		logger.Int("alerts_pending", len(res.Undelivered)),
		logger.Duration("duration", time.Since(start).Round(time.Millisecond)))
	return errors.Join(errs...)
}

// alertTracker remembers the severity of the alerts raised in the previous
// cycle, keyed by species and alert type.
type alertTracker struct {
	last map[string]analytics.Severity
}

func newAlertTracker() *alertTracker {
	return &alertTracker{last: make(map[string]analytics.Severity)}
}

func alertKey(a *analytics.ConservationAlert) string {
	return strconv.FormatUint(uint64(a.SpeciesID), 10) + "/" + string(a.Type)
}

// strongest maps each alert key to the index of its most severe alert. Ties
// keep the first occurrence.
func strongest(alerts []analytics.ConservationAlert) map[string]int {
	idx := make(map[string]int, len(alerts))
	for i := range alerts {
		key := alertKey(&alerts[i])
		if j, seen := idx[key]; seen && alerts[j].Severity.AtLeast(alerts[i].Severity) {
			continue
		}
		idx[key] = i
	}
	return idx
}

// fresh returns the alerts that were absent from the previous cycle or
// whose severity rose. The baseline only moves on commit.
func (t *alertTracker) fresh(alerts []analytics.ConservationAlert) []analytics.ConservationAlert {
	idx := strongest(alerts)
	var out []analytics.ConservationAlert
	for i := range alerts {
		key := alertKey(&alerts[i])
		if idx[key] != i {
			continue
		}
		prev, ok := t.last[key]
		if !ok || alerts[i].Severity.Rank() > prev.Rank() {
			out = append(out, alerts[i])
		}
	}
	return out
}

// commit makes alerts the new baseline. Keys with an undelivered alert keep
// their previous severity so the alert stays fresh for the next cycle.
func (t *alertTracker) commit(alerts, undelivered []analytics.ConservationAlert) {
	pending := make(map[string]bool, len(undelivered))
	for i := range undelivered {
		pending[alertKey(&undelivered[i])] = true
	}

	next := make(map[string]analytics.Severity, len(alerts))
	for key, i := range strongest(alerts) {
		if !pending[key] {
			next[key] = alerts[i].Severity
			continue
		}
		if prev, ok := t.last[key]; ok {
			next[key] = prev
		}
	}
	t.last = next
}
