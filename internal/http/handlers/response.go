// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response utilities used across all endpoints. Two
// families exist:
//
//   - fail(), failValidation(), failThrottled(): locally produced failures
//     with stable `error` codes (see errors.go).
//   - relaySuccess(), relayFailure(): upstream-backed responses. The upstream
//     payload is relayed verbatim (raw JSON bytes pass through untouched),
//     along with the correlation id and rate-limit headers the upstream
//     supplied. Upstream bodies are never re-enveloped: downstream consumers
//     locate remediation fields at fixed paths within the unmodified JSON.
//
// Example locally produced failure:
//
//	HTTP/1.1 429 Too Many Requests
//	Retry-After: 1
//	{ "error": "rate_limited", "message": "order rate exceeded", "retryAfterMs": 500 }
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nandhd/coinage-backend/internal/domain"
	"github.com/nandhd/coinage-backend/internal/http/middleware"
	"github.com/nandhd/coinage-backend/internal/relay"
	"github.com/nandhd/coinage-backend/internal/throttle"
)

const jsonContentType = "application/json; charset=utf-8"

// ErrorResponse is the envelope for locally produced failures.
//
// Fields:
//   - Error: a stable, machine-readable code (see errors.go constants).
//   - Message: a human-readable description, safe for display to users.
//
// Upstream failures do NOT use this envelope; their bodies pass through the
// relay classifier unmodified.
type ErrorResponse struct {
	// Stable, machine-readable code (see errors.go constants)
	Error string `json:"error" example:"internal_error"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"internal server error"`
}

// ValidationErrorResponse is the envelope for request validation failures.
// Issues maps JSON field paths to the problems found for each field.
type ValidationErrorResponse struct {
	Error   string        `json:"error" example:"validation_error"`
	Message string        `json:"message" example:"order validation failed"`
	Issues  domain.Issues `json:"issues"`
}

// RateLimitedResponse is the envelope returned when the order admission gate
// denies a placement attempt.
type RateLimitedResponse struct {
	Error   string `json:"error" example:"rate_limited"`
	Message string `json:"message" example:"order rate exceeded for account"`
	// RetryAfterMs is the exact remaining wait; the Retry-After header carries
	// the same hint rounded up to whole seconds.
	RetryAfterMs int64 `json:"retryAfterMs" example:"500"`
}

// fail aborts the request with a locally produced error envelope.
//
// Server errors (>=500) are logged using the request-scoped logger from
// middleware before the response is written.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Message: msg})
}

// Fail is the exported variant of fail().
//
// External packages (e.g., router setup) should call Fail to return
// consistent error envelopes without directly depending on unexported helpers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failValidation aborts with 400 and the field-issue map.
func failValidation(c *gin.Context, msg string, issues domain.Issues) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ValidationErrorResponse{
		Error:   ErrCodeValidation,
		Message: msg,
		Issues:  issues,
	})
}

// failThrottled aborts with 429 when the admission gate denies a placement.
// Retry-After carries the wait rounded up to whole seconds (never "0");
// retryAfterMs in the body carries the exact remainder.
func failThrottled(c *gin.Context, retryAfter time.Duration) {
	c.Header(relay.HeaderRetryAfter, strconv.Itoa(throttle.RetryAfterSeconds(retryAfter)))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, RateLimitedResponse{
		Error:        ErrCodeRateLimited,
		Message:      "order rate exceeded for account",
		RetryAfterMs: retryAfter.Milliseconds(),
	})
}

// relaySuccess writes an upstream-backed success response. The correlation id
// and rate-limit counters supplied by the upstream are echoed to the caller;
// read-only operations additionally disable caching.
func relaySuccess(c *gin.Context, status int, res relay.Result, readOnly bool) {
	if res.CorrelationID != "" {
		c.Header(relay.HeaderRequestID, res.CorrelationID)
	}
	setRateLimitHeaders(c, relay.RateLimitFromHeaders(res.Headers))
	if readOnly {
		c.Header("Cache-Control", "no-store")
	}
	writePayload(c, status, res.Payload)
}

// relayFailure writes a classified upstream failure. The correlation id is
// exposed under both header spellings so downstream consumers keyed to either
// name find the same value. The payload is written exactly as the classifier
// produced it.
func relayFailure(c *gin.Context, f relay.NormalizedFailure) {
	if f.CorrelationID != "" {
		c.Header(relay.HeaderRequestID, f.CorrelationID)
		c.Header(relay.HeaderUpstreamRequestID, f.CorrelationID)
	}
	setRateLimitHeaders(c, f.RateLimit)
	if f.RetryAfter != "" {
		c.Header(relay.HeaderRetryAfter, f.RetryAfter)
	}
	writePayload(c, f.StatusCode, f.Payload)
	c.Abort()
}

func setRateLimitHeaders(c *gin.Context, rl relay.RateLimitInfo) {
	if rl.Limit != "" {
		c.Header(relay.HeaderRateLimitLimit, rl.Limit)
	}
	if rl.Remaining != "" {
		c.Header(relay.HeaderRateLimitRemaining, rl.Remaining)
	}
	if rl.Reset != "" {
		c.Header(relay.HeaderRateLimitReset, rl.Reset)
	}
}

// writePayload serializes the payload with the given status. Raw JSON bytes
// are written byte-for-byte; a nil payload produces a bodiless response.
func writePayload(c *gin.Context, status int, payload any) {
	switch p := payload.(type) {
	case nil:
		c.Status(status)
	case json.RawMessage:
		c.Data(status, jsonContentType, p)
	case []byte:
		c.Data(status, jsonContentType, p)
	default:
		c.JSON(status, p)
	}
}
