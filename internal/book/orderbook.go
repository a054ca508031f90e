// Package book implements the price-time-priority limit order book: the
// match/rest state machine for add_limit, O(1) cancel, and the
// non-mutating query surface. This is the hard part of the engine; the
// algorithm follows price-time priority field for field.
package book

import (
	"github.com/tidwall/btree"

	"github.com/vela-exchange/obengine/internal/event"
	"github.com/vela-exchange/obengine/internal/types"
)

// levels is the ordered price-level map for one side of the book.
// Iteration from the front always yields the best price first: bids use
// a greater-than comparator (best bid = highest price first), asks use a
// less-than comparator (best ask = lowest price first) — the same
// order-reversing-comparator strategy, on the same btree library used
// for per-price levels.
type levels = btree.BTreeG[*PriceLevel]

// OrderBook holds all live orders on both sides of one instrument,
// exclusively. Nothing outside the book ever holds a reference to a live
// Order.
type OrderBook struct {
	bids *levels
	asks *levels

	index map[types.OrderId]*locator

	nextSeq uint64
}

// New returns an empty order book with its sequence counter at 1.
func New() *OrderBook {
	return &OrderBook{
		bids:    btree.NewBTreeG(func(a, b *PriceLevel) bool { return a.Price > b.Price }),
		asks:    btree.NewBTreeG(func(a, b *PriceLevel) bool { return a.Price < b.Price }),
		index:   make(map[types.OrderId]*locator),
		nextSeq: 1,
	}
}

func (b *OrderBook) ownSide(side types.Side) *levels {
	if side == types.Buy {
		return b.bids
	}
	return b.asks
}

func (b *OrderBook) oppositeSide(side types.Side) *levels {
	if side == types.Buy {
		return b.asks
	}
	return b.bids
}

// crosses reports whether a taker on side at takerPx can trade against a
// resting level at makerPx. A Buy crosses when makerPx <= takerPx; a Sell
// crosses when makerPx >= takerPx. Either way this is a non-strict
// inequality: a taker whose limit exactly touches the top of book still
// crosses and consumes before it is allowed to rest.
func crosses(side types.Side, takerPx, makerPx types.PriceTicks) bool {
	if side == types.Buy {
		return makerPx <= takerPx
	}
	return makerPx >= takerPx
}

func minQty(a, b types.Qty) types.Qty {
	if a < b {
		return a
	}
	return b
}

// AddLimit runs the match/rest algorithm and returns the ordered events
// it produced. It either completes fully or (for a rejection) makes no
// state change at all.
func (b *OrderBook) AddLimit(id types.OrderId, side types.Side, price types.PriceTicks, qty types.Qty) []event.Event {
	if !types.Valid(id, price, qty) {
		return []event.Event{{
			Type:   event.OrderRejected,
			Id:     id,
			Side:   side,
			Price:  price,
			Qty:    qty,
			Reason: event.ReasonInvalid,
		}}
	}

	if _, exists := b.index[id]; exists {
		return []event.Event{{
			Type:   event.OrderRejected,
			Id:     id,
			Side:   side,
			Price:  price,
			Qty:    qty,
			Reason: event.ReasonDuplicateId,
		}}
	}

	takerSeq := b.nextSeq
	b.nextSeq++

	events := make([]event.Event, 0, 2)
	events = append(events, event.Event{
		Type:   event.OrderAccepted,
		Id:     id,
		Seq:    takerSeq,
		Side:   side,
		Price:  price,
		Qty:    qty,
		Reason: event.ReasonAccepted,
	})

	remaining := qty
	opposite := b.oppositeSide(side)

	for remaining > 0 {
		level, ok := opposite.MinMut()
		if !ok || !crosses(side, price, level.Price) {
			break
		}

		for remaining > 0 {
			front := level.orders.Front()
			if front == nil {
				break
			}
			maker := orderAt(front)

			fill := minQty(remaining, maker.QtyRemaining)
			events = append(events, event.Event{
				Type:       event.Trade,
				MakerId:    maker.Id,
				MakerSeq:   maker.Seq,
				TakerId:    id,
				TakerSeq:   takerSeq,
				TradePrice: level.Price,
				TradeQty:   fill,
				Reason:     event.ReasonTrade,
			})

			remaining -= fill
			maker.QtyRemaining -= fill

			if maker.QtyRemaining == 0 {
				delete(b.index, maker.Id)
				level.orders.Remove(front)
				events = append(events, event.Event{
					Type:   event.MakerCompleted,
					Id:     maker.Id,
					Seq:    maker.Seq,
					Side:   maker.Side,
					Price:  maker.Price,
					Reason: event.ReasonFilled,
				})
			}
		}

		if level.orders.Len() == 0 {
			opposite.Delete(level)
		}
	}

	if remaining > 0 {
		order := &Order{Id: id, Side: side, Price: price, QtyRemaining: remaining, Seq: takerSeq}

		own := b.ownSide(side)
		level, ok := own.GetMut(levelKey(price))
		if !ok {
			level = newPriceLevel(price)
			own.Set(level)
		}
		elem := level.orders.PushBack(order)
		b.index[id] = &locator{side: side, price: price, elem: elem}

		events = append(events, event.Event{
			Type:         event.OrderResting,
			Id:           id,
			Seq:          takerSeq,
			Side:         side,
			Price:        price,
			Qty:          qty,
			RemainingQty: remaining,
			Reason:       event.ReasonResting,
		})
	} else {
		events = append(events, event.Event{
			Type:   event.OrderCompleted,
			Id:     id,
			Seq:    takerSeq,
			Side:   side,
			Price:  price,
			Qty:    qty,
			Reason: event.ReasonFilled,
		})
	}

	b.checkInvariants()
	return events
}

// Cancel removes a live order in O(1) amortized time: a hash lookup plus
// a list-node unlink, with an O(log L) level-map lookup/erase where L is
// the number of distinct live price levels on that side.
func (b *OrderBook) Cancel(id types.OrderId) []event.Event {
	if id == 0 {
		return []event.Event{{Type: event.CancelRejected, Id: 0, Reason: event.ReasonInvalid}}
	}

	loc, ok := b.index[id]
	if !ok {
		return []event.Event{{Type: event.CancelRejected, Id: id, Reason: event.ReasonNotFound}}
	}

	order := orderAt(loc.elem)
	snapshot := *order

	own := b.ownSide(loc.side)
	level, ok := own.GetMut(levelKey(loc.price))
	if ok {
		level.orders.Remove(loc.elem)
		if level.orders.Len() == 0 {
			own.Delete(level)
		}
	}
	delete(b.index, id)

	b.checkInvariants()
	return []event.Event{{
		Type:         event.OrderCancelled,
		Id:           id,
		Seq:          snapshot.Seq,
		Side:         snapshot.Side,
		Price:        snapshot.Price,
		Qty:          snapshot.QtyRemaining,
		RemainingQty: 0,
		Reason:       event.ReasonCancelled,
	}}
}

// BestBid returns the best (highest) live bid price, if any.
func (b *OrderBook) BestBid() (types.PriceTicks, bool) {
	level, ok := b.bids.Min()
	if !ok {
		return 0, false
	}
	return level.Price, true
}

// BestAsk returns the best (lowest) live ask price, if any.
func (b *OrderBook) BestAsk() (types.PriceTicks, bool) {
	level, ok := b.asks.Min()
	if !ok {
		return 0, false
	}
	return level.Price, true
}

// LiveCount returns the number of currently-live orders across both
// sides.
func (b *OrderBook) LiveCount() int {
	return len(b.index)
}

// Has reports whether id is currently live.
func (b *OrderBook) Has(id types.OrderId) bool {
	_, ok := b.index[id]
	return ok
}

// IdsAt returns the ids resting at (side, price) in time priority,
// or nil if no such level exists.
func (b *OrderBook) IdsAt(side types.Side, price types.PriceTicks) []types.OrderId {
	level, ok := b.ownSide(side).Get(levelKey(price))
	if !ok {
		return nil
	}
	ids := make([]types.OrderId, 0, level.orders.Len())
	for e := level.orders.Front(); e != nil; e = e.Next() {
		ids = append(ids, orderAt(e).Id)
	}
	return ids
}

// TotalQtyAt sums the remaining quantity resting at (side, price).
func (b *OrderBook) TotalQtyAt(side types.Side, price types.PriceTicks) types.Qty {
	level, ok := b.ownSide(side).Get(levelKey(price))
	if !ok {
		return 0
	}
	var total types.Qty
	for e := level.orders.Front(); e != nil; e = e.Next() {
		total += orderAt(e).QtyRemaining
	}
	return total
}

// LevelSnapshot is a non-mutating read of one price level's aggregate
// state, used by diagnostics and tests.
type LevelSnapshot struct {
	Price      types.PriceTicks
	TotalQty   types.Qty
	OrderCount int
}

// Snapshot returns every live level on side, best price first.
func (b *OrderBook) Snapshot(side types.Side) []LevelSnapshot {
	var out []LevelSnapshot
	b.ownSide(side).Scan(func(level *PriceLevel) bool {
		var total types.Qty
		for e := level.orders.Front(); e != nil; e = e.Next() {
			total += orderAt(e).QtyRemaining
		}
		out = append(out, LevelSnapshot{Price: level.Price, TotalQty: total, OrderCount: level.orders.Len()})
		return true
	})
	return out
}
