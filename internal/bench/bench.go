// Package bench implements the --bench driver: apply a script against
// a fresh engine, once per iteration, and report timing.
//
// This is a CLI operational concern, not part of the matching engine's
// own execution model (the engine itself stays strictly single-threaded
// and synchronous): each iteration's Engine is only ever
// touched by the one supervised goroutine below, so nothing here
// introduces concurrent mutation of a single OrderBook instance.
package bench

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	tomb "gopkg.in/tomb.v2"

	"github.com/vela-exchange/obengine/internal/command"
	"github.com/vela-exchange/obengine/internal/engine"
)

// Result is the outcome of a bench run, possibly partial if interrupted.
type Result struct {
	// RunID is a cosmetic label for distinguishing bench invocations in
	// saved output. It is generated once per run and never fed into the
	// engine, so it has no bearing on the engine's determinism
	// guarantee.
	RunID string

	Requested   int
	Completed   int
	TotalEvents int

	TotalNs   int64
	PerIterNs int64

	PerEventNs  int64
	Interrupted bool
}

// Run applies cmds to a freshly-constructed Engine, iters times, on a
// single goroutine supervised by a tomb. Cancelling ctx (the caller
// typically wires this to os/signal.NotifyContext, matching the
// teacher's own cmd/main.go pattern) stops the loop between iterations;
// Run then returns the partial totals gathered so far rather than being
// killed mid-measurement.
func Run(ctx context.Context, logger zerolog.Logger, cmds []command.Command, iters int) Result {
	result := Result{RunID: uuid.NewString(), Requested: iters}

	t, tombCtx := tomb.WithContext(ctx)

	var totalNs int64
	var totalEvents int
	var completed int

	t.Go(func() error {
		start := time.Now()
		for i := 0; i < iters; i++ {
			select {
			case <-tombCtx.Done():
				result.Interrupted = true
				totalNs = time.Since(start).Nanoseconds()
				return nil
			default:
			}

			eng := engine.New(logger)
			totalEvents += len(eng.ApplyAll(cmds))
			completed++
		}
		totalNs = time.Since(start).Nanoseconds()
		return nil
	})

	<-t.Dead()

	result.Completed = completed
	result.TotalEvents = totalEvents
	result.TotalNs = totalNs
	if completed > 0 {
		result.PerIterNs = totalNs / int64(completed)
	}
	if totalEvents > 0 {
		result.PerEventNs = totalNs / int64(totalEvents)
	}
	return result
}
