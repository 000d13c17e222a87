// Package datastore provides logging infrastructure for database operations
package datastore

import (
	"github.com/tphakala/wildlife-analytics/internal/logger"
)

// getLog returns the datastore logger scoped from the central logger
func getLog() logger.Logger {
	return logger.Global().Module("datastore")
}
