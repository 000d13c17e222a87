// Package datastore provides error handling helpers for database operations
package datastore

import (
	"fmt"
	"time"

	"github.com/tphakala/wildlife-analytics/internal/errors"
)

// dbError creates a properly categorized database error with context
func dbError(err error, operation string, elapsed time.Duration, context ...any) error {
	builder := errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation).
		Timing(operation, elapsed)

	// Add context pairs
	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}

	return builder.Build()
}

// validationError creates a validation error
func validationError(message, field string, value any) error {
	return errors.Newf("%s", message).
		Component("datastore").
		Category(errors.CategoryValidation).
		Context("field", field).
		Context("value", fmt.Sprintf("%v", value)).
		Build()
}
