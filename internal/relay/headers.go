// Package relay implements the translation boundary between the upstream
// brokerage client and this service's HTTP responses: header extraction over
// heterogeneous carriers, success-envelope unwrapping, rate-limit metadata
// propagation, and normalization of structurally unknown upstream failures.
//
// The caller's downstream error mapper depends on receiving the upstream's
// native error JSON, its unmodified status code, and specific correlation
// headers. Everything in this package is written to be total: a malformed
// carrier or payload degrades to an absent value, never to a panic that
// would abort the response pipeline.
package relay

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// Canonical header names used for cross-system correlation. Lookups are
// case-insensitive; these constants fix the spelling we emit.
const (
	// HeaderRequestID is the primary correlation header exposed to callers.
	HeaderRequestID = "X-Request-ID"
	// HeaderUpstreamRequestID is the upstream-compatible alias. Downstream
	// consumers keyed to either name must find the same value.
	HeaderUpstreamRequestID = "Apca-Request-Id"

	// Standardized throttling counters relayed from the upstream.
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"

	// HeaderRetryAfter carries the upstream's retry hint.
	HeaderRetryAfter = "Retry-After"
)

// headerGetter is the single-method capability a carrier may expose for
// direct lookups. http.Header satisfies it, as does any SDK response type
// with a Get method.
type headerGetter interface {
	Get(name string) string
}

// ReadHeader extracts the named header value from a carrier of any supported
// shape: a value with a Get method, an iterable key/value store
// (http.Header, map[string][]string), or a plain string-keyed mapping.
// Names are compared case-insensitively and the first match wins.
//
// ReadHeader never propagates a failure: a nil or unusable carrier, or a
// Get method that panics, yields "" after a diagnostic log entry.
func ReadHeader(carrier any, name string) string {
	if carrier == nil || name == "" {
		return ""
	}

	switch h := carrier.(type) {
	case http.Header:
		// Get canonicalizes, which already covers case variants, but raw
		// (non-canonical) keys set directly on the map would be missed.
		if v := h.Get(name); v != "" {
			return v
		}
		return scanMultiMap(h, name)
	case map[string][]string:
		return scanMultiMap(h, name)
	case map[string]string:
		lower := strings.ToLower(name)
		for k, v := range h {
			if strings.ToLower(k) == lower {
				return v
			}
		}
		return ""
	case map[string]any:
		lower := strings.ToLower(name)
		for k, v := range h {
			if strings.ToLower(k) != lower {
				continue
			}
			if v == nil {
				return ""
			}
			if s, ok := v.(string); ok {
				return s
			}
			return fmt.Sprint(v)
		}
		return ""
	case headerGetter:
		return getViaMethod(h, name)
	default:
		return ""
	}
}

// CorrelationID returns the upstream correlation id from a header carrier,
// preferring the primary header name and falling back to the
// upstream-compatible alias.
func CorrelationID(carrier any) string {
	if v := ReadHeader(carrier, HeaderRequestID); v != "" {
		return v
	}
	return ReadHeader(carrier, HeaderUpstreamRequestID)
}

// scanMultiMap performs a case-insensitive scan over a multi-valued header
// map, returning the first value of the first matching key.
func scanMultiMap(h map[string][]string, name string) string {
	lower := strings.ToLower(name)
	for k, vv := range h {
		if strings.ToLower(k) == lower && len(vv) > 0 {
			return vv[0]
		}
	}
	return ""
}

// getViaMethod calls an arbitrary carrier's Get method, trying the verbatim
// name first and the lowercased form second. Header parsing must never abort
// the response pipeline, so a panicking implementation is contained here.
func getViaMethod(g headerGetter, name string) (val string) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug().
				Interface("panic", r).
				Str("header", name).
				Msg("header carrier lookup failed")
			val = ""
		}
	}()
	if v := g.Get(name); v != "" {
		return v
	}
	return g.Get(strings.ToLower(name))
}
