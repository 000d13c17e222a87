// Package notification pushes conservation alerts to external services such as
// chat apps, email or webhooks.
package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/tphakala/wildlife-analytics/internal/analytics"
	"github.com/tphakala/wildlife-analytics/internal/logger"
)

// Notification is a rendered message ready for delivery.
type Notification struct {
	AlertID  string
	Severity analytics.Severity
	Title    string
	Message  string
}

// Provider defines a push delivery backend.
// Implementations must be safe for concurrent use.
type Provider interface {
	GetName() string
	ValidateConfig() error
	Send(ctx context.Context, n *Notification) error
	IsEnabled() bool
}

// FromAlert renders a conservation alert as a notification.
func FromAlert(a *analytics.ConservationAlert) *Notification {
	title := fmt.Sprintf("[%s] %s: %s", strings.ToUpper(string(a.Severity)), a.SpeciesName, a.Type)

	var b strings.Builder
	b.WriteString(a.Description)
	if a.ConservationStatus != "" {
		fmt.Fprintf(&b, "\nConservation status: %s", a.ConservationStatus)
	}
	if a.DetectionCount > 0 {
		fmt.Fprintf(&b, "\nDetections: %d", a.DetectionCount)
	}
	if len(a.RecommendedActions) > 0 {
		b.WriteString("\nRecommended actions:")
		for _, action := range a.RecommendedActions {
			b.WriteString("\n- ")
			b.WriteString(action)
		}
	}

	return &Notification{
		AlertID:  a.ID,
		Severity: a.Severity,
		Title:    title,
		Message:  b.String(),
	}
}

func getLog() logger.Logger {
	return logger.Global().Module("notification")
}
