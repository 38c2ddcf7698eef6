// Package services defines the business logic between the HTTP handlers and
// the upstream brokerage client: outbound field mapping for orders, the
// admission gate on placement, and market-data lookups.
//
// This file centralizes service-level error values and types so handlers can
// translate them into HTTP results consistently. Upstream failures are never
// defined here: they pass through untouched for the relay classifier.
package services

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoSymbols is returned when a quote lookup is attempted with an empty
// symbol list.
var ErrNoSymbols = errors.New("no symbols requested")

// AdmissionDeniedError reports that the per-account order-placement gate
// rejected an attempt. RetryAfter is the remaining wait before the next
// attempt can succeed.
type AdmissionDeniedError struct {
	RetryAfter time.Duration
}

// Error implements error.
func (e *AdmissionDeniedError) Error() string {
	return fmt.Sprintf("order placement throttled, retry in %s", e.RetryAfter)
}
