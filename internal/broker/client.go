package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nandhd/coinage-backend/internal/relay"
)

// maxBodyBytes caps how much of an upstream body is read. Relay payloads
// are small JSON documents; the cap guards against a misbehaving upstream
// streaming garbage.
const maxBodyBytes = 4 << 20

// Config holds the settings for the HTTP broker client.
type Config struct {
	// BaseURL is the trading API root, e.g. "https://broker-api.example.com/v1".
	BaseURL string
	// DataBaseURL is the market-data API root. Defaults to BaseURL when empty.
	DataBaseURL string
	// APIKey and APISecret are the basic-auth credential pair.
	APIKey    string
	APISecret string
	// Timeout bounds each upstream call. Defaults to 10s when zero.
	Timeout time.Duration
}

// HTTPClient is the production Client implementation. It is immutable after
// construction and safe for concurrent use; the process constructs exactly
// one and shares it across request handlers.
type HTTPClient struct {
	base     string
	dataBase string
	key      string
	secret   string
	hc       *http.Client
}

// compile-time interface check
var _ Client = (*HTTPClient)(nil)

// NewHTTPClient constructs an HTTPClient from cfg.
func NewHTTPClient(cfg Config) *HTTPClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	dataBase := strings.TrimRight(cfg.DataBaseURL, "/")
	if dataBase == "" {
		dataBase = base
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		base:     base,
		dataBase: dataBase,
		key:      cfg.APIKey,
		secret:   cfg.APISecret,
		hc:       &http.Client{Timeout: timeout},
	}
}

// CreateOrder submits an order for the given account.
func (c *HTTPClient) CreateOrder(ctx context.Context, accountID string, payload OrderPayload) (any, error) {
	path := "/trading/accounts/" + url.PathEscape(accountID) + "/orders"
	return c.doTrading(ctx, http.MethodPost, path, nil, payload)
}

// GetOrder fetches a single order.
func (c *HTTPClient) GetOrder(ctx context.Context, accountID, orderID string) (any, error) {
	path := "/trading/accounts/" + url.PathEscape(accountID) + "/orders/" + url.PathEscape(orderID)
	return c.doTrading(ctx, http.MethodGet, path, nil, nil)
}

// ListOrders fetches orders matching the query filters.
func (c *HTTPClient) ListOrders(ctx context.Context, accountID string, q OrderListQuery) (any, error) {
	path := "/trading/accounts/" + url.PathEscape(accountID) + "/orders"
	query := url.Values{}
	if q.Status != "" {
		query.Set("status", q.Status)
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.After != "" {
		query.Set("after", q.After)
	}
	if q.Until != "" {
		query.Set("until", q.Until)
	}
	if q.Direction != "" {
		query.Set("direction", q.Direction)
	}
	if q.Symbols != "" {
		query.Set("symbols", q.Symbols)
	}
	return c.doTrading(ctx, http.MethodGet, path, query, nil)
}

// CancelOrder requests cancellation of a working order.
func (c *HTTPClient) CancelOrder(ctx context.Context, accountID, orderID string) (any, error) {
	path := "/trading/accounts/" + url.PathEscape(accountID) + "/orders/" + url.PathEscape(orderID)
	return c.doTrading(ctx, http.MethodDelete, path, nil, nil)
}

// ListPositions fetches the account's open positions.
func (c *HTTPClient) ListPositions(ctx context.Context, accountID string) (any, error) {
	path := "/trading/accounts/" + url.PathEscape(accountID) + "/positions"
	return c.doTrading(ctx, http.MethodGet, path, nil, nil)
}

// LatestQuotes fetches the latest quotes for the given symbols from the
// market-data host.
func (c *HTTPClient) LatestQuotes(ctx context.Context, symbols []string) (any, error) {
	query := url.Values{}
	query.Set("symbols", strings.Join(symbols, ","))
	return c.doData(ctx, http.MethodGet, "/stocks/quotes/latest", query)
}

// doTrading performs a trading-API call. Error statuses come back as
// *APIError wrapping the full upstream response.
func (c *HTTPClient) doTrading(ctx context.Context, method, path string, query url.Values, body any) (any, error) {
	resp, raw, err := c.roundTrip(ctx, c.base, method, path, query, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &APIError{
			Method: method,
			Path:   path,
			Resp: &relay.UpstreamResponse{
				StatusCode: resp.StatusCode,
				Body:       json.RawMessage(raw),
				Header:     resp.Header,
			},
		}
	}
	return &relay.Envelope{Data: json.RawMessage(raw), Headers: resp.Header}, nil
}

// doData performs a market-data call. Error statuses come back as the flat
// *RequestError shape.
func (c *HTTPClient) doData(ctx context.Context, method, path string, query url.Values) (any, error) {
	resp, raw, err := c.roundTrip(ctx, c.dataBase, method, path, query, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &RequestError{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			RawBody: json.RawMessage(raw),
			Header:  resp.Header,
		}
	}
	return &relay.Envelope{Data: json.RawMessage(raw), Headers: resp.Header}, nil
}

// roundTrip builds and executes one upstream request, returning the response
// and its fully read body. Transport-level failures (dial, timeout) are
// wrapped plain errors: they carry no upstream response and classify as
// unknown downstream.
func (c *HTTPClient) roundTrip(ctx context.Context, base, method, path string, query url.Values, body any) (*http.Response, []byte, error) {
	u := base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("broker: encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, nil, fmt.Errorf("broker: build %s %s: %w", method, path, err)
	}
	req.SetBasicAuth(c.key, c.secret)
	req.Header.Set("Accept", "application/json")
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("broker: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("broker: read %s %s: %w", method, path, err)
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Str("upstream_request_id", resp.Header.Get(relay.HeaderRequestID)).
		Msg("broker call")

	return resp, raw, nil
}
