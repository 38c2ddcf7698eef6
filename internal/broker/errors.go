package broker

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nandhd/coinage-backend/internal/relay"
)

// APIError is returned by the trading endpoints when the upstream answered
// with an error status. It wraps the full HTTP exchange; the relay's
// classifier reaches the native error body through Response().
type APIError struct {
	Method string
	Path   string
	Resp   *relay.UpstreamResponse
}

// Error implements error.
func (e *APIError) Error() string {
	status := 0
	if e.Resp != nil {
		status = e.Resp.StatusCode
	}
	return fmt.Sprintf("broker: %s %s: upstream status %d", e.Method, e.Path, status)
}

// Response exposes the nested upstream HTTP response.
func (e *APIError) Response() *relay.UpstreamResponse { return e.Resp }

// RequestError is the flat error shape returned by the market-data
// endpoints: status, raw body, and headers live directly on the error.
type RequestError struct {
	Method  string
	Path    string
	Status  int
	RawBody json.RawMessage
	Header  http.Header
}

// Error implements error.
func (e *RequestError) Error() string {
	return fmt.Sprintf("broker: %s %s: upstream status %d", e.Method, e.Path, e.Status)
}

// StatusCode returns the upstream HTTP status.
func (e *RequestError) StatusCode() int { return e.Status }

// Body returns the raw upstream error payload, or nil when none was read.
func (e *RequestError) Body() any {
	if len(e.RawBody) == 0 {
		return nil
	}
	return e.RawBody
}

// Headers returns the upstream response headers, or nil when absent.
func (e *RequestError) Headers() any {
	if e.Header == nil {
		return nil
	}
	return e.Header
}
