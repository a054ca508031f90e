package event

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vela-exchange/obengine/internal/types"
)

// ErrMalformedLine is returned by ParseLine when a line does not match the
// fixed key=value shape, independent of any particular key's value being
// bad. Wrapped with context via fmt.Errorf("%w: ...") so callers can both
// test for it with errors.Is and print the detail.
var ErrMalformedLine = errors.New("malformed event line")

// fieldOrder is the exact key sequence the wire format uses. Parsing
// requires this order; any drift (missing key, wrong key, reordered key)
// is treated as failure rather than tolerated.
var fieldOrder = [...]string{
	"type", "id", "seq", "side", "px", "qty", "rem",
	"maker", "maker_seq", "taker", "taker_seq", "tpx", "tq", "reason",
}

// Serialize renders e as one line of the wire format, without a trailing
// newline. All fields are always present; unused numeric fields are
// written as the literal 0, and unused side fields as "buy".
func Serialize(e Event) string {
	var b strings.Builder
	b.WriteString("type=")
	b.WriteString(e.Type.String())
	fmt.Fprintf(&b, " id=%d", uint64(e.Id))
	fmt.Fprintf(&b, " seq=%d", e.Seq)
	b.WriteString(" side=")
	b.WriteString(e.Side.String())
	fmt.Fprintf(&b, " px=%d", int64(e.Price))
	fmt.Fprintf(&b, " qty=%d", int64(e.Qty))
	fmt.Fprintf(&b, " rem=%d", int64(e.RemainingQty))
	fmt.Fprintf(&b, " maker=%d", uint64(e.MakerId))
	fmt.Fprintf(&b, " maker_seq=%d", e.MakerSeq)
	fmt.Fprintf(&b, " taker=%d", uint64(e.TakerId))
	fmt.Fprintf(&b, " taker_seq=%d", e.TakerSeq)
	fmt.Fprintf(&b, " tpx=%d", int64(e.TradePrice))
	fmt.Fprintf(&b, " tq=%d", int64(e.TradeQty))
	b.WriteString(" reason=")
	b.WriteString(e.Reason)
	return b.String()
}

// ParseLine parses one line of the wire format. On any structural
// mismatch it returns ErrMalformedLine wrapped with detail; the caller
// decides how to react.
func ParseLine(line string) (Event, error) {
	tokens := strings.Split(line, " ")
	if len(tokens) != len(fieldOrder) {
		return Event{}, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformedLine, len(fieldOrder), len(tokens))
	}

	kv := make(map[string]string, len(tokens))
	for i, tok := range tokens {
		key, value, ok := strings.Cut(tok, "=")
		if !ok {
			return Event{}, fmt.Errorf("%w: token %q has no '='", ErrMalformedLine, tok)
		}
		if key != fieldOrder[i] {
			return Event{}, fmt.Errorf("%w: expected key %q at position %d, got %q", ErrMalformedLine, fieldOrder[i], i, key)
		}
		kv[key] = value
	}

	var e Event

	typ, ok := ParseType(kv["type"])
	if !ok {
		return Event{}, fmt.Errorf("%w: unknown type %q", ErrMalformedLine, kv["type"])
	}
	e.Type = typ

	id, err := strconv.ParseUint(kv["id"], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("%w: bad id: %v", ErrMalformedLine, err)
	}
	e.Id = types.OrderId(id)

	seq, err := strconv.ParseUint(kv["seq"], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("%w: bad seq: %v", ErrMalformedLine, err)
	}
	e.Seq = seq

	side, ok := types.ParseSide(kv["side"])
	if !ok {
		return Event{}, fmt.Errorf("%w: unknown side %q", ErrMalformedLine, kv["side"])
	}
	e.Side = side

	px, err := strconv.ParseInt(kv["px"], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("%w: bad px: %v", ErrMalformedLine, err)
	}
	e.Price = types.PriceTicks(px)

	qty, err := strconv.ParseInt(kv["qty"], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("%w: bad qty: %v", ErrMalformedLine, err)
	}
	e.Qty = types.Qty(qty)

	rem, err := strconv.ParseInt(kv["rem"], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("%w: bad rem: %v", ErrMalformedLine, err)
	}
	e.RemainingQty = types.Qty(rem)

	maker, err := strconv.ParseUint(kv["maker"], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("%w: bad maker: %v", ErrMalformedLine, err)
	}
	e.MakerId = types.OrderId(maker)

	makerSeq, err := strconv.ParseUint(kv["maker_seq"], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("%w: bad maker_seq: %v", ErrMalformedLine, err)
	}
	e.MakerSeq = makerSeq

	taker, err := strconv.ParseUint(kv["taker"], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("%w: bad taker: %v", ErrMalformedLine, err)
	}
	e.TakerId = types.OrderId(taker)

	takerSeq, err := strconv.ParseUint(kv["taker_seq"], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("%w: bad taker_seq: %v", ErrMalformedLine, err)
	}
	e.TakerSeq = takerSeq

	tpx, err := strconv.ParseInt(kv["tpx"], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("%w: bad tpx: %v", ErrMalformedLine, err)
	}
	e.TradePrice = types.PriceTicks(tpx)

	tq, err := strconv.ParseInt(kv["tq"], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("%w: bad tq: %v", ErrMalformedLine, err)
	}
	e.TradeQty = types.Qty(tq)

	e.Reason = kv["reason"]

	return e, nil
}
