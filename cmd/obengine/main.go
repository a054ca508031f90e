// Command obengine is the CLI harness around the matching engine: script
// application, replay diffing, and benchmarking. None of
// this is part of the core matching engine; it exists only to drive it
// from the outside.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/vela-exchange/obengine/internal/bench"
	"github.com/vela-exchange/obengine/internal/engine"
	"github.com/vela-exchange/obengine/internal/event"
	"github.com/vela-exchange/obengine/internal/replay"
	"github.com/vela-exchange/obengine/internal/script"
	"github.com/vela-exchange/obengine/internal/types"
)

const usage = "usage: obengine --script <path> [--record <log>] | --replay <script> --events <log> | --bench <script> --iters <n> | --book <script>"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	logger := zerolog.New(stderr).With().Timestamp().Logger()

	fs := flag.NewFlagSet("obengine", flag.ContinueOnError)
	fs.SetOutput(stderr)

	scriptPath := fs.String("script", "", "apply this command script and print its events")
	recordPath := fs.String("record", "", "tee emitted events to this log file")
	replayScript := fs.String("replay", "", "re-apply this command script and diff against --events")
	eventsPath := fs.String("events", "", "recorded event log to diff --replay against")
	benchScript := fs.String("bench", "", "benchmark this command script")
	iters := fs.Int("iters", 0, "iteration count for --bench")
	bookScript := fs.String("book", "", "apply this command script and print the terminal book state")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	switch {
	case *scriptPath != "":
		return runScript(stdout, logger, *scriptPath, *recordPath)
	case *replayScript != "":
		if *eventsPath == "" {
			fmt.Fprintln(stderr, "--replay requires --events")
			return 1
		}
		return runReplay(stdout, stderr, logger, *replayScript, *eventsPath)
	case *benchScript != "":
		if *iters <= 0 {
			fmt.Fprintln(stderr, "--bench requires --iters > 0")
			return 30
		}
		return runBench(stdout, logger, *benchScript, *iters)
	case *bookScript != "":
		return runBook(stdout, logger, *bookScript)
	default:
		fmt.Fprintln(stderr, usage)
		return 1
	}
}

func runScript(stdout io.Writer, logger zerolog.Logger, scriptPath, recordPath string) int {
	cmds, err := script.Load(scriptPath)
	if err != nil {
		logger.Error().Err(err).Str("path", scriptPath).Msg("failed to load script")
		return 10
	}

	eng := engine.New(logger)
	if recordPath != "" {
		if err := eng.StartEventLog(recordPath); err != nil {
			return 11
		}
		defer eng.StopEventLog()
	}

	for _, e := range eng.ApplyAll(cmds) {
		fmt.Fprintln(stdout, event.Serialize(e))
	}
	return 0
}

func runReplay(stdout, stderr io.Writer, logger zerolog.Logger, scriptPath, eventsPath string) int {
	cmds, err := script.Load(scriptPath)
	if err != nil {
		logger.Error().Err(err).Str("path", scriptPath).Msg("failed to load script")
		return 10
	}

	eng := engine.New(logger)
	actualEvents := eng.ApplyAll(cmds)
	actual := make([]string, len(actualEvents))
	for i, e := range actualEvents {
		actual[i] = event.Serialize(e)
	}

	expected, err := readLines(eventsPath)
	if err != nil {
		logger.Error().Err(err).Str("path", eventsPath).Msg("failed to read events file")
		return 12
	}

	result := replay.Compare(actual, expected)
	switch {
	case result.Match:
		return 0
	case result.CountMismatch:
		fmt.Fprintf(stderr, "replay line count mismatch: actual=%d expected=%d\n", result.ActualCount, result.ExpectedCount)
		return 20
	default:
		fmt.Fprintf(stderr, "replay content mismatch at line %d:\n", result.FirstDiffLine)
		for _, l := range replay.FormatContext(actual, expected, result.FirstDiffLine) {
			fmt.Fprintln(stderr, l)
		}
		return 21
	}
}

func runBench(stdout io.Writer, logger zerolog.Logger, scriptPath string, iters int) int {
	cmds, err := script.Load(scriptPath)
	if err != nil {
		logger.Error().Err(err).Str("path", scriptPath).Msg("failed to load script")
		return 10
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result := bench.Run(ctx, logger, cmds, iters)
	fmt.Fprintf(stdout, "run_id=%s total_ns=%d per_iter_ns=%d per_event_ns=%d\n",
		result.RunID, result.TotalNs, result.PerIterNs, result.PerEventNs)
	return 0
}

func runBook(stdout io.Writer, logger zerolog.Logger, scriptPath string) int {
	cmds, err := script.Load(scriptPath)
	if err != nil {
		logger.Error().Err(err).Str("path", scriptPath).Msg("failed to load script")
		return 10
	}

	eng := engine.New(logger)
	eng.ApplyAll(cmds)

	printSide := func(name string, side types.Side) {
		fmt.Fprintf(stdout, "%s:\n", name)
		for _, lvl := range eng.Book().Snapshot(side) {
			fmt.Fprintf(stdout, "  px=%d qty=%d orders=%d\n", lvl.Price, lvl.TotalQty, lvl.OrderCount)
		}
	}
	printSide("bids", types.Buy)
	printSide("asks", types.Sell)
	return 0
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}
