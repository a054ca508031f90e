// Package command defines the engine's input record: a totally-ordered
// stream of these is what the engine consumes.
package command

import "github.com/vela-exchange/obengine/internal/types"

// Kind is which command variant a Command carries.
type Kind int

const (
	AddLimit Kind = iota
	Cancel
)

// Command is a single input record for the engine. Only the fields
// relevant to Kind are meaningful; the rest are zero.
type Command struct {
	Kind Kind
	Id   types.OrderId

	// Used by AddLimit only.
	Side  types.Side
	Price types.PriceTicks
	Qty   types.Qty
}

// NewAddLimit builds an add-limit command.
func NewAddLimit(id types.OrderId, side types.Side, price types.PriceTicks, qty types.Qty) Command {
	return Command{Kind: AddLimit, Id: id, Side: side, Price: price, Qty: qty}
}

// NewCancel builds a cancel command.
func NewCancel(id types.OrderId) Command {
	return Command{Kind: Cancel, Id: id}
}
