package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nandhd/coinage-backend/internal/broker"
	"github.com/nandhd/coinage-backend/internal/relay"
	"github.com/nandhd/coinage-backend/internal/throttle"
)

func TestLatestQuotes_Success(t *testing.T) {
	raw := json.RawMessage(`{"quotes":{"AAPL":{"ap":187.3,"bp":187.2}}}`)
	hdr := http.Header{}
	hdr.Set("X-RateLimit-Remaining", "198")
	fb := &fakeBroker{result: &relay.Envelope{Data: raw, Headers: hdr}}
	r := newTestRouter(fb, throttle.NewGate(time.Second))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/market/quotes/latest?symbols=aapl,AAPL,msft", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := w.Body.String(); got != string(raw) {
		t.Fatalf("body = %s", got)
	}
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control = %q", got)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "198" {
		t.Fatalf("X-RateLimit-Remaining = %q", got)
	}
	// Service-level cleanup de-duplicates the repeated symbol.
	if len(fb.lastSymbols) != 2 || fb.lastSymbols[0] != "AAPL" || fb.lastSymbols[1] != "MSFT" {
		t.Fatalf("symbols = %v", fb.lastSymbols)
	}
}

func TestLatestQuotes_MissingSymbols(t *testing.T) {
	fb := &fakeBroker{}
	r := newTestRouter(fb, throttle.NewGate(time.Second))

	for _, target := range []string{
		"/api/v1/market/quotes/latest",
		"/api/v1/market/quotes/latest?symbols=",
		"/api/v1/market/quotes/latest?symbols=%20%20",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", target, w.Code)
		}
		var body ValidationErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON body: %v", err)
		}
		if len(body.Issues["symbols"]) == 0 {
			t.Fatalf("issues = %v, want symbols entry", body.Issues)
		}
	}
}

func TestLatestQuotes_InvalidSymbol(t *testing.T) {
	fb := &fakeBroker{}
	r := newTestRouter(fb, throttle.NewGate(time.Second))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/market/quotes/latest?symbols=AAPL,bad%20sym", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if fb.lastSymbols != nil {
		t.Fatal("upstream must not be called on validation failure")
	}
}

func TestLatestQuotes_UpstreamFailureRelayed(t *testing.T) {
	raw := json.RawMessage(`{"message":"too many requests"}`)
	hdr := http.Header{}
	hdr.Set("Retry-After", "2")
	hdr.Set("Apca-Request-Id", "rid-q")
	fb := &fakeBroker{err: &broker.RequestError{
		Method:  http.MethodGet,
		Path:    "/stocks/quotes/latest",
		Status:  http.StatusTooManyRequests,
		RawBody: raw,
		Header:  hdr,
	}}
	r := newTestRouter(fb, throttle.NewGate(time.Second))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/market/quotes/latest?symbols=AAPL", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want relayed 429", w.Code)
	}
	if got := w.Body.String(); got != string(raw) {
		t.Fatalf("body = %s, want verbatim payload", got)
	}
	if got := w.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("Retry-After = %q", got)
	}
	if w.Header().Get("X-Request-ID") != "rid-q" || w.Header().Get("Apca-Request-Id") != "rid-q" {
		t.Fatalf("correlation headers = %q / %q",
			w.Header().Get("X-Request-ID"), w.Header().Get("Apca-Request-Id"))
	}
}
