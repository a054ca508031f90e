// Package engine is the thin command-dispatch façade over the order
// book: it maps Command -> OrderBook.{AddLimit|Cancel} and, when event
// logging is enabled, tees every emitted event to an append-only sink.
package engine

import (
	"bufio"
	"os"

	"github.com/rs/zerolog"

	"github.com/vela-exchange/obengine/internal/book"
	"github.com/vela-exchange/obengine/internal/command"
	"github.com/vela-exchange/obengine/internal/event"
)

// Engine owns exactly one OrderBook and at most one log sink, both tied
// to the Engine's own lifetime.
type Engine struct {
	book *book.OrderBook
	log  zerolog.Logger

	sink       *os.File
	sinkWriter *bufio.Writer
}

// New returns an Engine over a fresh, empty OrderBook.
func New(logger zerolog.Logger) *Engine {
	return &Engine{
		book: book.New(),
		log:  logger,
	}
}

// Book returns the underlying book for queries. The returned pointer also
// exposes AddLimit and Cancel; calls made through it bypass Apply and the
// event log.
func (e *Engine) Book() *book.OrderBook {
	return e.book
}

// Apply dispatches cmd to the book and returns the events it produced.
// If an event log is active, each event is appended as one line and the
// sink is flushed before Apply returns.
func (e *Engine) Apply(cmd command.Command) []event.Event {
	var events []event.Event
	switch cmd.Kind {
	case command.AddLimit:
		events = e.book.AddLimit(cmd.Id, cmd.Side, cmd.Price, cmd.Qty)
	case command.Cancel:
		events = e.book.Cancel(cmd.Id)
	}

	e.appendToLog(events)
	return events
}

// ApplyAll applies cmds in order, concatenating their event outputs.
// This is the canonical determinism harness: two fresh engines fed the
// same commands must produce identical results.
func (e *Engine) ApplyAll(cmds []command.Command) []event.Event {
	all := make([]event.Event, 0, len(cmds))
	for _, cmd := range cmds {
		all = append(all, e.Apply(cmd)...)
	}
	return all
}

// StartEventLog truncates or creates the file at path and begins
// teeing every subsequently emitted event to it.
func (e *Engine) StartEventLog(path string) error {
	f, err := os.Create(path)
	if err != nil {
		e.log.Error().Err(err).Str("path", path).Msg("failed to open event log")
		return err
	}
	e.sink = f
	e.sinkWriter = bufio.NewWriter(f)
	return nil
}

// StopEventLog flushes and closes the active log sink, if any.
func (e *Engine) StopEventLog() error {
	if e.sinkWriter == nil {
		return nil
	}

	flushErr := e.sinkWriter.Flush()
	closeErr := e.sink.Close()
	e.sinkWriter = nil
	e.sink = nil

	if flushErr != nil {
		e.log.Error().Err(flushErr).Msg("failed to flush event log on stop")
		return flushErr
	}
	if closeErr != nil {
		e.log.Error().Err(closeErr).Msg("failed to close event log on stop")
		return closeErr
	}
	return nil
}

func (e *Engine) appendToLog(events []event.Event) {
	if e.sinkWriter == nil {
		return
	}

	for _, ev := range events {
		if _, err := e.sinkWriter.WriteString(event.Serialize(ev) + "\n"); err != nil {
			e.log.Error().Err(err).Msg("failed to append event to log sink")
			return
		}
	}
	if err := e.sinkWriter.Flush(); err != nil {
		e.log.Error().Err(err).Msg("failed to flush event log sink")
	}
}
