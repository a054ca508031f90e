//go:build !obdebug

package book

// checkInvariants is a no-op outside debug builds; see invariants_debug.go.
func (b *OrderBook) checkInvariants() {}
