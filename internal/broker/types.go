// Package broker provides the upstream brokerage client: the narrow Client
// interface consumed by the service layer, the HTTP implementation with
// basic-auth credentials, and the two concrete error shapes the upstream can
// fail with. Authentication against the brokerage is owned entirely by this
// package; callers never see credentials.
package broker

import (
	"context"
	"encoding/json"
)

// OrderPayload is the outbound order-creation body in the upstream's wire
// vocabulary. Sizing and price fields are json.Number so validated decimal
// strings reach the upstream as bare JSON numbers, and the expiration field
// already carries the upstream's name (expire_at, not expires_at).
type OrderPayload struct {
	Symbol        string      `json:"symbol,omitempty"`
	AssetID       *int64      `json:"asset_id,omitempty"`
	Side          string      `json:"side"`
	Type          string      `json:"type"`
	TimeInForce   string      `json:"time_in_force"`
	Qty           json.Number `json:"qty,omitempty"`
	Notional      json.Number `json:"notional,omitempty"`
	LimitPrice    json.Number `json:"limit_price,omitempty"`
	StopPrice     json.Number `json:"stop_price,omitempty"`
	ExpireAt      string      `json:"expire_at,omitempty"`
	ClientOrderID string      `json:"client_order_id,omitempty"`
	ExtendedHours bool        `json:"extended_hours,omitempty"`
}

// OrderListQuery carries the passthrough filters for listing orders.
type OrderListQuery struct {
	Status    string
	Limit     int
	After     string
	Until     string
	Direction string
	Symbols   string
}

// Client is the upstream capability injected into the service layer. The
// concrete HTTP client returns *relay.Envelope values; the interface is
// typed any so test doubles may return bare payloads, matching the fact
// that upstream result shapes are not statically guaranteed.
//
// Implementations must be safe for concurrent use: one client is
// constructed at startup and shared across all requests.
type Client interface {
	CreateOrder(ctx context.Context, accountID string, payload OrderPayload) (any, error)
	GetOrder(ctx context.Context, accountID, orderID string) (any, error)
	ListOrders(ctx context.Context, accountID string, q OrderListQuery) (any, error)
	CancelOrder(ctx context.Context, accountID, orderID string) (any, error)
	ListPositions(ctx context.Context, accountID string) (any, error)
	LatestQuotes(ctx context.Context, symbols []string) (any, error)
}
