package observability

import "github.com/tphakala/wildlife-analytics/internal/logger"

func getLog() logger.Logger {
	return logger.Global().Module("metrics")
}
