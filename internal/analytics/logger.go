package analytics

import (
	"github.com/tphakala/wildlife-analytics/internal/logger"
)

// getLog returns the package logger used when the engine has none injected
func getLog() logger.Logger {
	return logger.Global().Module("analytics")
}
