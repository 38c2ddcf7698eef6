// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements Idempotency-Key handling for order placement. The
// upstream brokerage deduplicates orders through the client_order_id field,
// so this service does not keep a replay store of its own: the middleware
// validates the header when present and stashes the normalized key in the
// request context, and the placement handler forwards it upstream as the
// default client order id.
package middleware

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the canonical request header that clients use to
// convey an idempotency key for unsafe operations (e.g., POST).
//
// The value is expected to be stable for a given semantic operation so that
// retries (network, client, or server initiated) can be safely deduplicated
// by the upstream.
const HeaderIdempotencyKey = "Idempotency-Key"

// ctxKeyIdemKey is the context key under which the validated key is stashed.
const ctxKeyIdemKey = "idem.key"

// GetIdempotencyKey returns the validated idempotency key stored in the Gin
// context by IdempotencyValidator. The second return value indicates
// presence.
//
// Handlers should prefer this function over reading the header directly.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IdempotencyOptions configures header validation behavior for
// IdempotencyValidator.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 128, the
	// upstream's client_order_id limit.
	MaxLen int
	// Pattern restricts allowed characters. If nil, a conservative RFC7230-like
	// token pattern is used: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
}

// IdempotencyValidator validates the Idempotency-Key header (if present) and
// stashes it in the request context for the placement handler to forward as
// the upstream client_order_id.
//
// Behavior:
//   - If the header is absent: the middleware is a no-op.
//   - If the header fails validation: responds 400 with a field-issue body,
//     since an unusable key silently dropped would defeat deduplication.
//   - Otherwise the next handler runs with the key available via
//     GetIdempotencyKey.
func IdempotencyValidator(opts IdempotencyOptions) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 128
	}
	pat := opts.Pattern
	if pat == nil {
		// RFC-7230-ish token + common safe chars.
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":   "validation_error",
				"message": "invalid Idempotency-Key",
				"issues": gin.H{
					HeaderIdempotencyKey: []string{"must be a token of at most " + strconv.Itoa(maxLen) + " characters"},
				},
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)
		c.Next()
	}
}
