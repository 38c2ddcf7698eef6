// Trading HTTP handlers.
//
// This file exposes the REST endpoints that relay order operations to the
// upstream brokerage:
//   - POST   /trading/accounts/{account_id}/orders            (place)
//   - GET    /trading/accounts/{account_id}/orders             (list)
//   - GET    /trading/accounts/{account_id}/orders/{order_id}  (get)
//   - DELETE /trading/accounts/{account_id}/orders/{order_id}  (cancel)
//   - GET    /trading/accounts/{account_id}/positions          (positions)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. Upstream payloads pass through
// verbatim in both directions; only failures of unrecognized shape are masked.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nandhd/coinage-backend/internal/broker"
	"github.com/nandhd/coinage-backend/internal/domain"
	"github.com/nandhd/coinage-backend/internal/http/middleware"
	"github.com/nandhd/coinage-backend/internal/relay"
	"github.com/nandhd/coinage-backend/internal/services"
	"github.com/nandhd/coinage-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// OrderService defines the order operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type OrderService interface {
	// Place validates admission and submits an order for accountID on behalf
	// of userID. Returns *services.AdmissionDeniedError when throttled.
	Place(ctx context.Context, accountID, userID string, intent domain.OrderIntent) (any, error)
	// Get fetches one order.
	Get(ctx context.Context, accountID, orderID string) (any, error)
	// List fetches a filtered order listing.
	List(ctx context.Context, accountID string, q broker.OrderListQuery) (any, error)
	// Cancel requests cancellation of a working order.
	Cancel(ctx context.Context, accountID, orderID string) (any, error)
	// Positions fetches the account's open positions.
	Positions(ctx context.Context, accountID string) (any, error)
}

// MarketService defines the market-data operations consumed by HTTP handlers.
type MarketService interface {
	// LatestQuotes fetches the latest quote per symbol.
	LatestQuotes(ctx context.Context, symbols []string) (any, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for trading and market data. It depends
// on abstract service interfaces to keep transport concerns separate from
// relay logic.
type Handlers struct {
	orderSvc  OrderService
	marketSvc MarketService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(orderSvc OrderService, marketSvc MarketService) *Handlers {
	return &Handlers{orderSvc: orderSvc, marketSvc: marketSvc}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// Helpers
//

// pathUUID validates a path parameter as a UUID, folding a problem into the
// issue map under the parameter name.
func pathUUID(c *gin.Context, name string, issues domain.Issues) string {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		issues.Add(name, "must be a UUID")
	}
	return id
}

// relayResult translates a service call's outcome into the HTTP response and
// records the upstream outcome metric for the operation.
func relayResult(c *gin.Context, op string, status int, out any, err error, readOnly bool) {
	if err != nil {
		f := relay.Normalize(err)
		middleware.RecordUpstream(op, failureOutcome(f), f.StatusCode)
		relayFailure(c, f)
		return
	}
	middleware.RecordUpstream(op, "success", status)
	relaySuccess(c, status, relay.Unwrap(out), readOnly)
}

// failureOutcome distinguishes classified upstream failures from masked
// unknowns for metrics labeling.
func failureOutcome(f relay.NormalizedFailure) string {
	if _, ok := f.Payload.(relay.GenericError); ok {
		return "unknown_error"
	}
	return "upstream_error"
}

// listQuery builds the upstream listing filter from query parameters. Values
// pass through untouched; only limit is parsed and bounded.
func listQuery(c *gin.Context) broker.OrderListQuery {
	const maxListLimit = 500
	limit := utils.AtoiDefault(c.Query("limit"), 0)
	if limit < 0 {
		limit = 0
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return broker.OrderListQuery{
		Status:    c.Query("status"),
		Limit:     limit,
		After:     c.Query("after"),
		Until:     c.Query("until"),
		Direction: c.Query("direction"),
		Symbols:   c.Query("symbols"),
	}
}

//
// Handlers
//

// PlaceOrder godoc
// @ID          placeOrder
// @Summary     Place an order
// @Description Validates the order, applies the per-account admission gate, and relays it upstream.
// @Tags        Trading
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(user123)
// @Param       Idempotency-Key  header  string  false "Used as default client_order_id"
// @Param       account_id       path    string  true  "Account ID (UUID)"  format(uuid)
// @Param       body             body    handlers.PlaceOrderRequest  true  "Order payload"
//
// @Success     200  {object}  object                            "Upstream order, verbatim"
// @Failure     400  {object}  handlers.ValidationErrorResponse  "Validation failure"
// @Failure     429  {object}  handlers.RateLimitedResponse      "Admission denied"
// @Failure     502  {object}  object                            "Upstream failure, verbatim"
// @Router      /trading/accounts/{account_id}/orders [post]
func (h *Handlers) PlaceOrder(c *gin.Context) {
	issues := domain.Issues{}
	accountID := pathUUID(c, "account_id", issues)
	if !issues.Empty() {
		failValidation(c, "invalid path parameters", issues)
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		issues.Add("body", "invalid JSON body")
		failValidation(c, "order validation failed", issues)
		return
	}

	intent, issues := ValidateOrder(req)
	if !issues.Empty() {
		failValidation(c, "order validation failed", issues)
		return
	}

	// An idempotency key doubles as the default client order id so retried
	// submissions collapse to one order upstream.
	if intent.ClientOrderID == "" {
		if key, ok := middleware.GetIdempotencyKey(c); ok {
			intent.ClientOrderID = key
		}
	}

	out, err := h.orderSvc.Place(c.Request.Context(), accountID, userID(c), intent)
	if err != nil {
		var denied *services.AdmissionDeniedError
		if errors.As(err, &denied) {
			failThrottled(c, denied.RetryAfter)
			return
		}
		f := relay.Normalize(err)
		middleware.RecordUpstream("create_order", failureOutcome(f), f.StatusCode)
		relayFailure(c, f)
		return
	}
	middleware.RecordUpstream("create_order", "success", http.StatusOK)
	relaySuccess(c, http.StatusOK, relay.Unwrap(out), false)
}

// GetOrder godoc
// @ID          getOrder
// @Summary     Get an order
// @Description Fetches a single order from the upstream and relays it verbatim.
// @Tags        Trading
// @Produce     json
//
// @Param       account_id  path  string  true  "Account ID (UUID)"  format(uuid)
// @Param       order_id    path  string  true  "Order ID (UUID)"    format(uuid)
//
// @Success     200  {object}  object                            "Upstream order, verbatim"
// @Failure     400  {object}  handlers.ValidationErrorResponse  "Validation failure"
// @Failure     502  {object}  object                            "Upstream failure, verbatim"
// @Router      /trading/accounts/{account_id}/orders/{order_id} [get]
func (h *Handlers) GetOrder(c *gin.Context) {
	issues := domain.Issues{}
	accountID := pathUUID(c, "account_id", issues)
	orderID := pathUUID(c, "order_id", issues)
	if !issues.Empty() {
		failValidation(c, "invalid path parameters", issues)
		return
	}

	out, err := h.orderSvc.Get(c.Request.Context(), accountID, orderID)
	relayResult(c, "get_order", http.StatusOK, out, err, true)
}

// ListOrders godoc
// @ID          listOrders
// @Summary     List orders
// @Description Relays a filtered order listing from the upstream.
// @Tags        Trading
// @Produce     json
//
// @Param       account_id  path   string  true   "Account ID (UUID)"  format(uuid)
// @Param       status      query  string  false  "Order status filter"
// @Param       limit       query  int     false  "Maximum results"  maximum(500)
// @Param       after       query  string  false  "Submitted-after bound (RFC3339)"
// @Param       until       query  string  false  "Submitted-until bound (RFC3339)"
// @Param       direction   query  string  false  "Sort direction (asc|desc)"
// @Param       symbols     query  string  false  "Comma-separated symbol filter"
//
// @Success     200  {array}   object                            "Upstream orders, verbatim"
// @Failure     400  {object}  handlers.ValidationErrorResponse  "Validation failure"
// @Failure     502  {object}  object                            "Upstream failure, verbatim"
// @Router      /trading/accounts/{account_id}/orders [get]
func (h *Handlers) ListOrders(c *gin.Context) {
	issues := domain.Issues{}
	accountID := pathUUID(c, "account_id", issues)
	if !issues.Empty() {
		failValidation(c, "invalid path parameters", issues)
		return
	}

	out, err := h.orderSvc.List(c.Request.Context(), accountID, listQuery(c))
	relayResult(c, "list_orders", http.StatusOK, out, err, true)
}

// CancelOrder godoc
// @ID          cancelOrder
// @Summary     Cancel an order
// @Description Requests cancellation of a working order upstream.
// @Tags        Trading
//
// @Param       account_id  path  string  true  "Account ID (UUID)"  format(uuid)
// @Param       order_id    path  string  true  "Order ID (UUID)"    format(uuid)
//
// @Success     204  {string}  string                            "No Content"
// @Failure     400  {object}  handlers.ValidationErrorResponse  "Validation failure"
// @Failure     502  {object}  object                            "Upstream failure, verbatim"
// @Router      /trading/accounts/{account_id}/orders/{order_id} [delete]
func (h *Handlers) CancelOrder(c *gin.Context) {
	issues := domain.Issues{}
	accountID := pathUUID(c, "account_id", issues)
	orderID := pathUUID(c, "order_id", issues)
	if !issues.Empty() {
		failValidation(c, "invalid path parameters", issues)
		return
	}

	out, err := h.orderSvc.Cancel(c.Request.Context(), accountID, orderID)
	relayResult(c, "cancel_order", http.StatusNoContent, out, err, false)
}

// ListPositions godoc
// @ID          listPositions
// @Summary     List open positions
// @Description Relays the account's open positions from the upstream.
// @Tags        Trading
// @Produce     json
//
// @Param       account_id  path  string  true  "Account ID (UUID)"  format(uuid)
//
// @Success     200  {array}   object                            "Upstream positions, verbatim"
// @Failure     400  {object}  handlers.ValidationErrorResponse  "Validation failure"
// @Failure     502  {object}  object                            "Upstream failure, verbatim"
// @Router      /trading/accounts/{account_id}/positions [get]
func (h *Handlers) ListPositions(c *gin.Context) {
	issues := domain.Issues{}
	accountID := pathUUID(c, "account_id", issues)
	if !issues.Empty() {
		failValidation(c, "invalid path parameters", issues)
		return
	}

	out, err := h.orderSvc.Positions(c.Request.Context(), accountID)
	relayResult(c, "list_positions", http.StatusOK, out, err, true)
}
