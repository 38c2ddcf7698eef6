// Package services – OrderService
//
// This file implements the OrderService, which owns the outbound half of the
// order lifecycle: admission control on placement, translation of a
// validated OrderIntent into the upstream's wire payload (field rename and
// decimal-string coercion), and passthrough of inspection and cancellation
// calls. Results and errors from the broker client are returned raw; the
// relay layer decides how they render.
package services

import (
	"context"

	"github.com/nandhd/coinage-backend/internal/broker"
	"github.com/nandhd/coinage-backend/internal/domain"
	"github.com/nandhd/coinage-backend/internal/throttle"
	"github.com/nandhd/coinage-backend/internal/utils"
)

// OrderService coordinates order operations against the upstream client.
// It is safe for concurrent use; the gate serializes nothing beyond its own
// per-key timestamp bookkeeping and the upstream call is made without any
// lock held.
type OrderService struct {
	// Client is the shared upstream capability, constructed once at startup.
	Client broker.Client
	// Gate throttles placement per account/user pair. Only Place consults it.
	Gate *throttle.Gate
}

// Place submits an order after passing the admission gate. A denied
// acquisition returns *AdmissionDeniedError without touching the upstream.
func (s *OrderService) Place(ctx context.Context, accountID, userID string, intent domain.OrderIntent) (any, error) {
	if s.Gate != nil {
		if ok, wait := s.Gate.TryAcquire(throttle.Key(accountID, userID)); !ok {
			return nil, &AdmissionDeniedError{RetryAfter: wait}
		}
	}
	return s.Client.CreateOrder(ctx, accountID, buildOrderPayload(intent))
}

// Get fetches one order.
func (s *OrderService) Get(ctx context.Context, accountID, orderID string) (any, error) {
	return s.Client.GetOrder(ctx, accountID, orderID)
}

// List fetches orders matching the passthrough filters.
func (s *OrderService) List(ctx context.Context, accountID string, q broker.OrderListQuery) (any, error) {
	return s.Client.ListOrders(ctx, accountID, q)
}

// Cancel requests cancellation of a working order.
func (s *OrderService) Cancel(ctx context.Context, accountID, orderID string) (any, error) {
	return s.Client.CancelOrder(ctx, accountID, orderID)
}

// Positions fetches the account's open positions.
func (s *OrderService) Positions(ctx context.Context, accountID string) (any, error) {
	return s.Client.ListPositions(ctx, accountID)
}

// buildOrderPayload maps a validated intent onto the upstream wire shape.
// This is the single place where the expiration field is renamed and the
// decimal-string sizing and price fields become JSON numbers.
func buildOrderPayload(intent domain.OrderIntent) broker.OrderPayload {
	return broker.OrderPayload{
		Symbol:        intent.Symbol,
		AssetID:       intent.AssetID,
		Side:          string(intent.Side),
		Type:          string(intent.Type),
		TimeInForce:   string(intent.TimeInForce),
		Qty:           utils.DecimalNumber(intent.Qty),
		Notional:      utils.DecimalNumber(intent.Notional),
		LimitPrice:    utils.DecimalNumber(intent.LimitPrice),
		StopPrice:     utils.DecimalNumber(intent.StopPrice),
		ExpireAt:      intent.ExpiresAt,
		ClientOrderID: intent.ClientOrderID,
		ExtendedHours: intent.ExtendedHours,
	}
}
