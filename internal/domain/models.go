// Package domain defines the trading vocabulary shared across the relay:
// order sides, order types, time-in-force values, the validated order intent
// produced by request validation, and the field-issue map returned to callers
// when validation fails. These types carry no transport or upstream concerns.
package domain

// Side is the direction of an order.
type Side string

// Supported order sides.
const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderType selects the execution style of an order.
type OrderType string

// Supported order types.
const (
	OrderTypeMarket    OrderType = "market"
	OrderTypeLimit     OrderType = "limit"
	OrderTypeStop      OrderType = "stop"
	OrderTypeStopLimit OrderType = "stop_limit"
)

// TimeInForce controls how long an order remains working.
type TimeInForce string

// Supported time-in-force values.
const (
	TIFDay TimeInForce = "day"
	TIFGTC TimeInForce = "gtc"
	TIFIOC TimeInForce = "ioc"
	TIFFOK TimeInForce = "fok"
	TIFGTD TimeInForce = "gtd"
)

// ValidSide reports whether s is a supported order side.
func ValidSide(s Side) bool { return s == SideBuy || s == SideSell }

// ValidOrderType reports whether t is a supported order type.
func ValidOrderType(t OrderType) bool {
	switch t {
	case OrderTypeMarket, OrderTypeLimit, OrderTypeStop, OrderTypeStopLimit:
		return true
	}
	return false
}

// ValidTimeInForce reports whether tif is a supported time-in-force.
func ValidTimeInForce(tif TimeInForce) bool {
	switch tif {
	case TIFDay, TIFGTC, TIFIOC, TIFFOK, TIFGTD:
		return true
	}
	return false
}

// OrderIntent is the fully validated representation of an order-placement
// request. Sizing and price fields remain decimal strings here; coercion to
// wire numbers happens at the upstream boundary, not during validation.
//
// Invariants (enforced by the request validators, assumed everywhere else):
//   - exactly one of Symbol / AssetID is set
//   - exactly one of Qty / Notional is set, and it is a positive decimal
//   - LimitPrice is set iff Type requires it (limit, stop_limit)
//   - StopPrice is set iff Type requires it (stop, stop_limit)
//   - ExpiresAt is set iff TimeInForce is gtd
type OrderIntent struct {
	Symbol        string
	AssetID       *int64
	Side          Side
	Type          OrderType
	TimeInForce   TimeInForce
	Qty           string
	Notional      string
	LimitPrice    string
	StopPrice     string
	ExpiresAt     string // RFC3339; renamed to the upstream's field on egress
	ClientOrderID string
	ExtendedHours bool
}

// Issues maps a JSON field path to the list of human-readable problems found
// for that field. An empty map means the input validated cleanly.
type Issues map[string][]string

// Add appends a message under the given field path.
func (i Issues) Add(field, msg string) {
	i[field] = append(i[field], msg)
}

// Empty reports whether no issues were recorded.
func (i Issues) Empty() bool { return len(i) == 0 }
