package relay

// Envelope is the success-path return shape used by the broker client when
// the upstream call yielded both a payload and response headers. Fake
// clients in tests may return bare payloads instead; Unwrap accepts both.
type Envelope struct {
	// Data is the upstream payload, opaque to the relay.
	Data any
	// Headers carries the upstream response headers in any shape ReadHeader
	// understands. May be nil.
	Headers any
}

// Result is the uniform success-path triple consumed by handlers: the
// upstream payload to relay verbatim, the correlation id (when the upstream
// supplied one), and the raw header carrier for rate-limit extraction.
type Result struct {
	Payload       any
	CorrelationID string
	Headers       any
}

// RateLimitInfo holds the standardized throttling counters relayed from
// upstream response headers. Absent headers yield empty fields, never
// defaults.
type RateLimitInfo struct {
	Limit     string
	Remaining string
	Reset     string
}

// Empty reports whether no counters were present.
func (r RateLimitInfo) Empty() bool {
	return r.Limit == "" && r.Remaining == "" && r.Reset == ""
}

// Unwrap normalizes an upstream success value into a Result. An *Envelope
// (or an envelope-shaped map carrying a "data" field) contributes its
// payload and headers; anything else is treated as a bare payload with no
// headers. Unwrap is total: upstream payload shapes are not statically
// guaranteed, so no input may make it panic.
func Unwrap(result any) Result {
	switch v := result.(type) {
	case nil:
		return Result{}
	case *Envelope:
		if v == nil {
			return Result{}
		}
		return fromParts(v.Data, v.Headers)
	case Envelope:
		return fromParts(v.Data, v.Headers)
	case map[string]any:
		if data, ok := v["data"]; ok {
			return fromParts(data, v["headers"])
		}
		return Result{Payload: v}
	default:
		return Result{Payload: result}
	}
}

func fromParts(data, headers any) Result {
	return Result{
		Payload:       data,
		CorrelationID: CorrelationID(headers),
		Headers:       headers,
	}
}

// RateLimitFromHeaders extracts the standardized throttling counters from a
// header carrier. Pure function; a nil carrier yields the zero value.
func RateLimitFromHeaders(carrier any) RateLimitInfo {
	return RateLimitInfo{
		Limit:     ReadHeader(carrier, HeaderRateLimitLimit),
		Remaining: ReadHeader(carrier, HeaderRateLimitRemaining),
		Reset:     ReadHeader(carrier, HeaderRateLimitReset),
	}
}
