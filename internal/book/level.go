package book

import (
	"container/list"

	"github.com/vela-exchange/obengine/internal/types"
)

// Order is a resting record: a live order currently sitting in a
// PriceLevel, or about to be created if add_limit's match loop leaves a
// remainder. Once created its Seq never changes; it is the tie-break key
// for time priority.
type Order struct {
	Id           types.OrderId
	Side         types.Side
	Price        types.PriceTicks
	QtyRemaining types.Qty
	Seq          uint64
}

// PriceLevel is the insertion-ordered sequence of resting orders at one
// price on one side. It must never be empty while present in its side
// map; empty levels are removed immediately.
//
// orders is a container/list.List of *Order. A *list.Element's identity
// is stable under insertion and removal anywhere else in the list, which
// is exactly the handle-stability guarantee a Locator needs: cancelling
// order A must never move or invalidate order B's node.
type PriceLevel struct {
	Price  types.PriceTicks
	orders *list.List
}

func newPriceLevel(px types.PriceTicks) *PriceLevel {
	return &PriceLevel{Price: px, orders: list.New()}
}

func levelKey(px types.PriceTicks) *PriceLevel {
	return &PriceLevel{Price: px}
}

// locator is a stable, direct reference to an order's storage slot:
// which side, which price level, and which node within that level's
// list. It remains valid for as long as the order is live.
type locator struct {
	side  types.Side
	price types.PriceTicks
	elem  *list.Element
}

func orderAt(e *list.Element) *Order {
	return e.Value.(*Order)
}
