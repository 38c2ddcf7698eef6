package broker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nandhd/coinage-backend/internal/relay"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(Config{
		BaseURL:   srv.URL,
		APIKey:    "key",
		APISecret: "secret",
	})
}

func TestCreateOrder_SuccessEnvelope(t *testing.T) {
	var gotBody map[string]any
	var gotAuthOK bool

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		gotAuthOK = ok && user == "key" && pass == "secret"
		if r.URL.Path != "/trading/accounts/acct-1/orders" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("X-Request-ID", "up-123")
		w.Header().Set("X-RateLimit-Remaining", "9")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"order-1","status":"accepted"}`))
	})

	res, err := c.CreateOrder(context.Background(), "acct-1", OrderPayload{
		Symbol:      "AAPL",
		Side:        "buy",
		Type:        "market",
		TimeInForce: "day",
		Notional:    json.Number("250.5"),
		ExpireAt:    "2026-09-01T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if !gotAuthOK {
		t.Fatal("basic auth credentials not sent")
	}

	// Decimal sizing reaches the wire as a bare number, and the expiration
	// field carries the upstream's name.
	if v, ok := gotBody["notional"].(float64); !ok || v != 250.5 {
		t.Fatalf("notional on wire = %#v, want number 250.5", gotBody["notional"])
	}
	if gotBody["expire_at"] != "2026-09-01T00:00:00Z" {
		t.Fatalf("expire_at on wire = %#v", gotBody["expire_at"])
	}
	if _, renamed := gotBody["expires_at"]; renamed {
		t.Fatal("caller-side field name leaked to the wire")
	}

	env, ok := res.(*relay.Envelope)
	if !ok {
		t.Fatalf("result type = %T, want *relay.Envelope", res)
	}
	if relay.ReadHeader(env.Headers, "X-Request-ID") != "up-123" {
		t.Fatal("upstream headers not carried through")
	}
}

func TestTradingError_IsEnvelopedShape(t *testing.T) {
	const upstreamBody = `{"code":40110000,"message":"account not active"}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-ID", "up-err")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(upstreamBody))
	})

	_, err := c.GetOrder(context.Background(), "acct-1", "order-9")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	resp := apiErr.Response()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if string(resp.Body.(json.RawMessage)) != upstreamBody {
		t.Fatalf("body = %s, want verbatim upstream body", resp.Body)
	}
	if relay.ReadHeader(resp.Header, "X-Request-ID") != "up-err" {
		t.Fatal("error headers not carried through")
	}
}

func TestDataError_IsFlatShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stocks/quotes/latest" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("symbols") != "AAPL,MSFT" {
			t.Errorf("symbols = %q", r.URL.Query().Get("symbols"))
		}
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"rate limit"}`))
	})

	_, err := c.LatestQuotes(context.Background(), []string{"AAPL", "MSFT"})
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error type = %T, want *RequestError", err)
	}
	if reqErr.StatusCode() != http.StatusTooManyRequests {
		t.Fatalf("status = %d", reqErr.StatusCode())
	}
	if reqErr.Body() == nil || reqErr.Headers() == nil {
		t.Fatal("flat error lost body or headers")
	}
}

func TestListOrders_QueryPassthrough(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("status") != "open" || q.Get("limit") != "50" || q.Get("direction") != "desc" {
			t.Errorf("query = %v", q)
		}
		_, _ = w.Write([]byte(`[]`))
	})

	if _, err := c.ListOrders(context.Background(), "acct-1", OrderListQuery{
		Status:    "open",
		Limit:     50,
		Direction: "desc",
	}); err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
}

func TestTransportFailure_IsPlainError(t *testing.T) {
	c := NewHTTPClient(Config{BaseURL: "http://127.0.0.1:1", APIKey: "k", APISecret: "s"})
	_, err := c.ListPositions(context.Background(), "acct-1")
	if err == nil {
		t.Fatal("expected transport error")
	}
	var apiErr *APIError
	var reqErr *RequestError
	if errors.As(err, &apiErr) || errors.As(err, &reqErr) {
		t.Fatalf("transport failure classified as upstream shape: %v", err)
	}
}
