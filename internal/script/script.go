// Package script parses the command script file format:
//
//	add <id> <buy|sell|b|s> <price_ticks> <qty>
//	cancel <id>
//
// One command per line; '#' introduces a line-trailing comment; blank
// lines and comment-only lines are skipped; CRLF line endings are
// tolerated.
package script

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vela-exchange/obengine/internal/command"
	"github.com/vela-exchange/obengine/internal/types"
)

// ParseError reports the 1-based line number and offending text of a
// script line that failed to parse, for the harness-level diagnostic
// (line number plus the offending line).
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("script line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var errBadCommand = errors.New("unrecognized command")

// Load reads and parses an entire script file. On the first malformed
// line it returns a *ParseError identifying that line.
func Load(path string) ([]command.Command, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cmds []command.Command
	scanner := bufio.NewScanner(f)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()

		cmd, skip, err := ParseLine(raw)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: raw, Err: err}
		}
		if skip {
			continue
		}
		cmds = append(cmds, cmd)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return cmds, nil
}

// ParseLine parses a single raw script line. skip is true for blank
// lines and comment-only lines, in which case cmd and err are both
// zero/nil.
func ParseLine(raw string) (cmd command.Command, skip bool, err error) {
	line := strings.TrimSuffix(raw, "\r")

	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return command.Command{}, true, nil
	}

	fields := strings.Fields(line)
	kind := strings.ToLower(fields[0])

	switch kind {
	case "add":
		return parseAdd(fields)
	case "cancel":
		return parseCancel(fields)
	default:
		return command.Command{}, false, fmt.Errorf("%w: %q", errBadCommand, fields[0])
	}
}

func parseAdd(fields []string) (command.Command, bool, error) {
	if len(fields) != 5 {
		return command.Command{}, false, fmt.Errorf("%w: add requires 4 fields, got %d", errBadCommand, len(fields)-1)
	}

	id, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return command.Command{}, false, fmt.Errorf("bad order id: %w", err)
	}

	side, ok := types.ParseSide(strings.ToLower(fields[2]))
	if !ok {
		return command.Command{}, false, fmt.Errorf("%w: unknown side %q", errBadCommand, fields[2])
	}

	px, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return command.Command{}, false, fmt.Errorf("bad price_ticks: %w", err)
	}

	qty, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return command.Command{}, false, fmt.Errorf("bad qty: %w", err)
	}

	return command.NewAddLimit(types.OrderId(id), side, types.PriceTicks(px), types.Qty(qty)), false, nil
}

func parseCancel(fields []string) (command.Command, bool, error) {
	if len(fields) != 2 {
		return command.Command{}, false, fmt.Errorf("%w: cancel requires 1 field, got %d", errBadCommand, len(fields)-1)
	}

	id, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return command.Command{}, false, fmt.Errorf("bad order id: %w", err)
	}

	return command.NewCancel(types.OrderId(id)), false, nil
}
