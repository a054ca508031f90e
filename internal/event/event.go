// Package event defines the engine's output record and its stable
// key=value text form. The codec is pure: no state, no I/O.
package event

import "github.com/vela-exchange/obengine/internal/types"

// Type is the category of externally visible output. The string form of
// each is part of the wire format and must never change silently.
type Type int

const (
	OrderAccepted Type = iota
	OrderRejected
	Trade
	OrderResting
	OrderCompleted
	MakerCompleted
	OrderCancelled
	CancelRejected
)

var typeNames = [...]string{
	OrderAccepted:  "order_accepted",
	OrderRejected:  "order_rejected",
	Trade:          "trade",
	OrderResting:   "order_resting",
	OrderCompleted: "order_completed",
	MakerCompleted: "maker_completed",
	OrderCancelled: "order_cancelled",
	CancelRejected: "cancel_rejected",
}

func (t Type) String() string {
	if int(t) < 0 || int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

var typeByName = func() map[string]Type {
	m := make(map[string]Type, len(typeNames))
	for t, name := range typeNames {
		m[name] = Type(t)
	}
	return m
}()

// ParseType maps a wire token back to a Type.
func ParseType(s string) (Type, bool) {
	t, ok := typeByName[s]
	return t, ok
}

// Reason tokens. Contractual, not diagnostic: they are part of the replay
// wire format.
const (
	ReasonAccepted    = "accepted"
	ReasonDuplicateId = "duplicate_id"
	ReasonInvalid     = "invalid"
	ReasonTrade       = "trade"
	ReasonResting     = "resting"
	ReasonFilled      = "filled"
	ReasonCancelled   = "cancelled"
	ReasonNotFound    = "not_found"
)

// Event is one record in the engine's output stream.
type Event struct {
	Type Type
	Id   types.OrderId
	Seq  uint64

	Side         types.Side
	Price        types.PriceTicks
	Qty          types.Qty
	RemainingQty types.Qty

	MakerId      types.OrderId
	MakerSeq     uint64
	TakerId      types.OrderId
	TakerSeq     uint64
	TradePrice   types.PriceTicks
	TradeQty     types.Qty

	Reason string
}
