package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// UpstreamResponse is the nested response-like structure carried by an
// enveloped upstream error: the status, raw body, and headers of the HTTP
// exchange that failed.
type UpstreamResponse struct {
	StatusCode int
	Body       any
	Header     any
}

// envelopedError is the first recognized failure shape: an error wrapping a
// full upstream HTTP response.
type envelopedError interface {
	error
	Response() *UpstreamResponse
}

// flatError is the second recognized failure shape: an error carrying status
// information directly on itself.
type flatError interface {
	error
	StatusCode() int
}

// bodyCarrier and headersCarrier are the optional companions of flatError.
// A flat error qualifies only if at least one of them yields something.
type bodyCarrier interface{ Body() any }
type headersCarrier interface{ Headers() any }

// NormalizedFailure is the canonical projection of any caught upstream
// error. Produced exclusively by Normalize; immutable once constructed.
//
// Payload is the exact response body to relay: the upstream's native error
// JSON when one was discoverable, a synthesized FallbackPayload otherwise.
// It is never wrapped in an enclosing envelope, because the caller's
// downstream mapper locates remediation fields at fixed paths within the
// unmodified upstream JSON.
type NormalizedFailure struct {
	StatusCode    int
	Payload       any
	CorrelationID string
	RateLimit     RateLimitInfo
	RetryAfter    string
}

// FallbackPayload is the minimal body synthesized when the upstream failure
// carried no structured payload.
type FallbackPayload struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// GenericError is the masked body for failures of unrecognized shape and for
// locally produced errors rendered by the handlers.
type GenericError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// FallbackCode is the generic error code used in synthesized payloads.
const FallbackCode = "upstream_error"

// Normalize classifies a caught upstream failure and projects it into a
// NormalizedFailure. Classification is ordered: the enveloped shape is
// tested first, then the flat shape (a numeric status plus a body or
// headers), and anything else is unknown.
//
// Unknown failures are the only path permitted to mask the original
// payload: no safe extraction is possible, so they are logged in full and
// rendered as a generic 500.
func Normalize(err error) NormalizedFailure {
	if err == nil {
		return unknown(err)
	}

	var env envelopedError
	if errors.As(err, &env) {
		if resp := env.Response(); resp != nil {
			return extract(resp.StatusCode, resp.Body, resp.Header, err)
		}
	}

	var flat flatError
	if errors.As(err, &flat) {
		var body, headers any
		var bc bodyCarrier
		if errors.As(err, &bc) {
			body = bc.Body()
		}
		var hc headersCarrier
		if errors.As(err, &hc) {
			headers = hc.Headers()
		}
		if !missingBody(body) || headers != nil {
			return extract(flat.StatusCode(), body, headers, err)
		}
	}

	return unknown(err)
}

// extract builds the NormalizedFailure shared by both recognized shapes.
func extract(status int, body, headers any, err error) NormalizedFailure {
	if status <= 0 {
		// An upstream failure without a discoverable status is treated as an
		// upstream-unavailable condition, never mapped to a caller-side code.
		status = http.StatusBadGateway
	}
	return NormalizedFailure{
		StatusCode:    status,
		Payload:       normalizePayload(body, err),
		CorrelationID: CorrelationID(headers),
		RateLimit:     RateLimitFromHeaders(headers),
		RetryAfter:    ReadHeader(headers, HeaderRetryAfter),
	}
}

func unknown(err error) NormalizedFailure {
	log.Error().
		Err(err).
		Str("error_type", fmt.Sprintf("%T", err)).
		Msg("unclassified upstream failure")
	return NormalizedFailure{
		StatusCode: http.StatusInternalServerError,
		Payload:    GenericError{Error: "internal_error", Message: "internal server error"},
	}
}

// normalizePayload projects the raw payload field of a recognized failure
// into the exact response body to relay.
//
// Rules, in order:
//   - structured values (decoded maps/slices, valid JSON object/array bytes)
//     pass through unchanged;
//   - string payloads are re-parsed: valid JSON structures win, anything
//     else becomes a FallbackPayload with the string as detail;
//   - a missing payload synthesizes the same fallback from the error text.
func normalizePayload(body any, err error) any {
	if missingBody(body) {
		return FallbackPayload{Code: FallbackCode, Detail: errText(err)}
	}

	switch b := body.(type) {
	case json.RawMessage:
		return normalizeRaw([]byte(b), err)
	case []byte:
		return normalizeRaw(b, err)
	case string:
		if parsed, ok := parseStructured([]byte(b)); ok {
			return parsed
		}
		return FallbackPayload{Code: FallbackCode, Detail: b}
	default:
		// Already-decoded structured payload; relay verbatim.
		return body
	}
}

// normalizeRaw handles serialized payload bytes. Valid JSON objects and
// arrays are relayed byte-for-byte so nested upstream fields keep their
// exact paths; everything else is treated as plain text.
func normalizeRaw(b []byte, err error) any {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return FallbackPayload{Code: FallbackCode, Detail: errText(err)}
	}
	if (trimmed[0] == '{' || trimmed[0] == '[') && json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	if parsed, ok := parseStructured(trimmed); ok {
		return parsed
	}
	return FallbackPayload{Code: FallbackCode, Detail: string(trimmed)}
}

// parseStructured attempts to decode b as JSON and reports whether the
// result is a structured value (object or array).
func parseStructured(b []byte) (any, bool) {
	var v any
	if json.Unmarshal(b, &v) != nil {
		return nil, false
	}
	switch v.(type) {
	case map[string]any, []any:
		return v, true
	}
	return nil, false
}

func missingBody(body any) bool {
	switch b := body.(type) {
	case nil:
		return true
	case json.RawMessage:
		return len(bytes.TrimSpace(b)) == 0
	case []byte:
		return len(bytes.TrimSpace(b)) == 0
	case string:
		return b == ""
	}
	return false
}

func errText(err error) string {
	if err == nil {
		return "unknown upstream failure"
	}
	return err.Error()
}
