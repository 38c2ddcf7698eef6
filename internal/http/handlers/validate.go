// Request validation for order placement.
//
// Field-level constraints (presence, enums, lengths) are declared as
// validator/v10 tags on the DTO; the cross-field order rules that the tag
// language cannot express (symbol/asset exclusivity, sizing exclusivity,
// price requirements per order type, notional restrictions) are checked in
// code. Both stages fold into a single domain.Issues map keyed by JSON field
// path, so the caller sees every problem at once rather than one per round
// trip.
package handlers

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nandhd/coinage-backend/internal/domain"
	"github.com/nandhd/coinage-backend/internal/utils"
)

// PlaceOrderRequest is the JSON payload for placing an order. Sizing and
// price fields are decimal strings; they are coerced to JSON numbers at the
// upstream boundary, never here.
type PlaceOrderRequest struct {
	// Symbol is the instrument ticker. Exactly one of symbol/asset_id.
	Symbol string `json:"symbol" validate:"omitempty,max=32" example:"AAPL"`
	// AssetID is the numeric instrument id. Exactly one of symbol/asset_id.
	AssetID *int64 `json:"asset_id" validate:"omitempty,gt=0" example:"12345"`
	Side    string `json:"side" validate:"required,oneof=buy sell" example:"buy"`
	Type    string `json:"type" validate:"required,oneof=market limit stop stop_limit" example:"limit"`
	// TimeInForce controls how long the order remains working.
	TimeInForce string `json:"time_in_force" validate:"required,oneof=day gtc ioc fok gtd" example:"day"`
	// Qty is the share quantity as a decimal string. Exactly one of qty/notional.
	Qty string `json:"qty" example:"10.5"`
	// Notional is the dollar amount as a decimal string. Market+day only.
	Notional   string `json:"notional" example:"2500"`
	LimitPrice string `json:"limit_price" example:"187.25"`
	StopPrice  string `json:"stop_price" example:"180.00"`
	// ExpiresAt (RFC3339) is required when time_in_force is gtd.
	ExpiresAt     string `json:"expires_at" example:"2026-09-30T20:00:00Z"`
	ClientOrderID string `json:"client_order_id" validate:"omitempty,max=128" example:"my-order-001"`
	ExtendedHours bool   `json:"extended_hours"`
}

// orderValidate is the shared validator instance. Field errors are reported
// under the struct's JSON tag names so issue keys match the request payload.
var orderValidate = newOrderValidator()

func newOrderValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateOrder checks req against the field-level and cross-field order
// rules. On success the returned issue map is empty and the OrderIntent is
// safe to hand to the service layer; on failure the intent is the zero value.
func ValidateOrder(req PlaceOrderRequest) (domain.OrderIntent, domain.Issues) {
	issues := domain.Issues{}

	if err := orderValidate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if ok := asValidationErrors(err, &verrs); ok {
			for _, fe := range verrs {
				issues.Add(fe.Field(), tagMessage(fe))
			}
		} else {
			issues.Add("body", "invalid request body")
		}
	}

	checkInstrument(req, issues)
	checkSizing(req, issues)
	checkPrices(req, issues)
	checkExpiry(req, issues)

	if !issues.Empty() {
		return domain.OrderIntent{}, issues
	}

	return domain.OrderIntent{
		Symbol:        strings.ToUpper(strings.TrimSpace(req.Symbol)),
		AssetID:       req.AssetID,
		Side:          domain.Side(req.Side),
		Type:          domain.OrderType(req.Type),
		TimeInForce:   domain.TimeInForce(req.TimeInForce),
		Qty:           strings.TrimSpace(req.Qty),
		Notional:      strings.TrimSpace(req.Notional),
		LimitPrice:    strings.TrimSpace(req.LimitPrice),
		StopPrice:     strings.TrimSpace(req.StopPrice),
		ExpiresAt:     strings.TrimSpace(req.ExpiresAt),
		ClientOrderID: strings.TrimSpace(req.ClientOrderID),
		ExtendedHours: req.ExtendedHours,
	}, issues
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

// tagMessage renders a validator field error as a short human-readable issue.
func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "invalid"
	}
}

// checkInstrument enforces symbol/asset_id exclusivity.
func checkInstrument(req PlaceOrderRequest, issues domain.Issues) {
	hasSymbol := strings.TrimSpace(req.Symbol) != ""
	hasAsset := req.AssetID != nil
	switch {
	case !hasSymbol && !hasAsset:
		issues.Add("symbol", "required: exactly one of symbol or asset_id")
	case hasSymbol && hasAsset:
		issues.Add("symbol", "invalid: only one of symbol or asset_id may be set")
	}
}

// checkSizing enforces qty/notional exclusivity, positivity, and the
// notional-only-for-market-day restriction.
func checkSizing(req PlaceOrderRequest, issues domain.Issues) {
	qty := strings.TrimSpace(req.Qty)
	notional := strings.TrimSpace(req.Notional)
	switch {
	case qty == "" && notional == "":
		issues.Add("qty", "required: exactly one of qty or notional")
	case qty != "" && notional != "":
		issues.Add("qty", "invalid: only one of qty or notional may be set")
	}
	if qty != "" && !utils.IsPositiveDecimal(qty) {
		issues.Add("qty", "must be a positive decimal string")
	}
	if notional != "" {
		if !utils.IsPositiveDecimal(notional) {
			issues.Add("notional", "must be a positive decimal string")
		}
		if req.Type != string(domain.OrderTypeMarket) || req.TimeInForce != string(domain.TIFDay) {
			issues.Add("notional", "invalid: notional orders require type=market and time_in_force=day")
		}
	}
}

// checkPrices enforces the per-type price requirements.
func checkPrices(req PlaceOrderRequest, issues domain.Issues) {
	limitPrice := strings.TrimSpace(req.LimitPrice)
	stopPrice := strings.TrimSpace(req.StopPrice)

	needsLimit := req.Type == string(domain.OrderTypeLimit) || req.Type == string(domain.OrderTypeStopLimit)
	needsStop := req.Type == string(domain.OrderTypeStop) || req.Type == string(domain.OrderTypeStopLimit)

	switch {
	case needsLimit && limitPrice == "":
		issues.Add("limit_price", "required for "+req.Type+" orders")
	case !needsLimit && limitPrice != "":
		issues.Add("limit_price", "invalid for "+req.Type+" orders")
	case limitPrice != "" && !utils.IsPositiveDecimal(limitPrice):
		issues.Add("limit_price", "must be a positive decimal string")
	}

	switch {
	case needsStop && stopPrice == "":
		issues.Add("stop_price", "required for "+req.Type+" orders")
	case !needsStop && stopPrice != "":
		issues.Add("stop_price", "invalid for "+req.Type+" orders")
	case stopPrice != "" && !utils.IsPositiveDecimal(stopPrice):
		issues.Add("stop_price", "must be a positive decimal string")
	}
}

// checkExpiry ties expires_at to time_in_force=gtd.
func checkExpiry(req PlaceOrderRequest, issues domain.Issues) {
	expiresAt := strings.TrimSpace(req.ExpiresAt)
	isGTD := req.TimeInForce == string(domain.TIFGTD)
	switch {
	case isGTD && expiresAt == "":
		issues.Add("expires_at", "required for gtd orders")
	case !isGTD && expiresAt != "":
		issues.Add("expires_at", "invalid unless time_in_force is gtd")
	case expiresAt != "":
		if _, err := time.Parse(time.RFC3339, expiresAt); err != nil {
			issues.Add("expires_at", "must be an RFC3339 timestamp")
		}
	}
}

// maxQuoteSymbols bounds a single latest-quotes lookup.
const maxQuoteSymbols = 100

// ValidateSymbols parses and validates the comma-separated symbols query
// parameter for quote lookups. Symbols are trimmed and upper-cased; blanks
// are dropped. Validation problems land under the "symbols" issue key.
func ValidateSymbols(raw string) ([]string, domain.Issues) {
	issues := domain.Issues{}
	if strings.TrimSpace(raw) == "" {
		issues.Add("symbols", "required")
		return nil, issues
	}

	parts := strings.Split(raw, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.ToUpper(strings.TrimSpace(p))
		if s == "" {
			continue
		}
		if !validSymbol(s) {
			issues.Add("symbols", "invalid symbol: "+s)
			continue
		}
		symbols = append(symbols, s)
	}
	if len(symbols) == 0 && issues.Empty() {
		issues.Add("symbols", "required")
	}
	if len(symbols) > maxQuoteSymbols {
		issues.Add("symbols", "at most 100 symbols per request")
	}
	if !issues.Empty() {
		return nil, issues
	}
	return symbols, issues
}

// validSymbol accepts tickers like AAPL, BRK.B, and BTC/USD.
func validSymbol(s string) bool {
	if len(s) > 21 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '-' || r == '/':
		default:
			return false
		}
	}
	return true
}
