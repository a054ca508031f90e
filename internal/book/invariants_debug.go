//go:build obdebug

package book

import (
	"fmt"

	"github.com/vela-exchange/obengine/internal/types"
)

// checkInvariants defensively re-validates the book's structural
// invariants after every completed operation. It only runs in binaries
// built with the obdebug tag; a violation here indicates an
// implementation bug, not a recoverable runtime condition, so it panics
// rather than returning an error.
func (b *OrderBook) checkInvariants() {
	total := 0
	total += b.checkSide(types.Buy, b.bids)
	total += b.checkSide(types.Sell, b.asks)

	if total != len(b.index) {
		panic(fmt.Sprintf("invariant violated: |index|=%d but sum of level sizes=%d", len(b.index), total))
	}

	bestBid, haveBid := b.BestBid()
	bestAsk, haveAsk := b.BestAsk()
	if haveBid && haveAsk && bestBid >= bestAsk {
		panic(fmt.Sprintf("invariant violated: best_bid=%d crosses best_ask=%d", bestBid, bestAsk))
	}
}

func (b *OrderBook) checkSide(side types.Side, side_levels *levels) int {
	count := 0
	side_levels.Scan(func(level *PriceLevel) bool {
		if level.orders.Len() == 0 {
			panic(fmt.Sprintf("invariant violated: empty price level %d present on side %s", level.Price, side))
		}
		var prevSeq uint64
		for e := level.orders.Front(); e != nil; e = e.Next() {
			order := orderAt(e)
			if order.Side != side || order.Price != level.Price {
				panic(fmt.Sprintf("invariant violated: order %d stored at wrong (side, price)", order.Id))
			}
			if order.QtyRemaining <= 0 {
				panic(fmt.Sprintf("invariant violated: order %d has non-positive qty %d", order.Id, order.QtyRemaining))
			}
			if order.Seq == 0 {
				panic(fmt.Sprintf("invariant violated: order %d has zero seq", order.Id))
			}
			if order.Seq <= prevSeq {
				panic(fmt.Sprintf("invariant violated: order %d has seq %d, not above the previous order's seq %d in its level", order.Id, order.Seq, prevSeq))
			}
			prevSeq = order.Seq
			loc, ok := b.index[order.Id]
			if !ok || loc.side != side || loc.price != level.Price || loc.elem != e {
				panic(fmt.Sprintf("invariant violated: index entry for order %d does not match its storage", order.Id))
			}
			count++
		}
		return true
	})
	return count
}
