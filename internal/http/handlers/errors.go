// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP
// responses (via the `fail*` helpers in this package). These codes provide
// clients with a stable, machine-readable error taxonomy that supplements
// human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless explicitly noted.
//   - Locally produced failures (validation, throttling, routing) always use one
//     of these codes under the `error` key.
//   - Upstream failures never use these codes: their bodies are relayed verbatim
//     or synthesized by the relay classifier (see internal/relay).
//
// Example response:
//
//	{
//	  "error": "validation_error",
//	  "message": "order validation failed",
//	  "issues": { "limit_price": ["required for limit orders"] }
//	}
package handlers

const (
	ErrCodeValidation       = "validation_error"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeInternal         = "internal_error"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
