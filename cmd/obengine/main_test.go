package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRunScriptPrintsEvents(t *testing.T) {
	dir := t.TempDir()
	scriptPath := writeFile(t, dir, "script.txt", "add 1 sell 100 10\nadd 2 buy 150 4\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--script", scriptPath}, &stdout, &stderr)

	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "type=trade")
	assert.Contains(t, stdout.String(), "type=order_resting")
}

func TestRunScriptWithRecordThenReplayMatches(t *testing.T) {
	dir := t.TempDir()
	scriptPath := writeFile(t, dir, "script.txt", "add 1 sell 100 10\nadd 2 buy 150 4\ncancel 1\n")
	logPath := filepath.Join(dir, "events.log")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--script", scriptPath, "--record", logPath}, &stdout, &stderr)
	require.Equal(t, 0, code)

	var replayOut, replayErr bytes.Buffer
	replayCode := run([]string{"--replay", scriptPath, "--events", logPath}, &replayOut, &replayErr)
	assert.Equal(t, 0, replayCode)
	assert.Empty(t, replayErr.String())
}

func TestRunReplayContentMismatchExits21(t *testing.T) {
	dir := t.TempDir()
	scriptPath := writeFile(t, dir, "script.txt", "add 1 buy 100 10\n")
	logPath := writeFile(t, dir, "events.log", "type=order_accepted id=1 seq=1 side=buy px=999 qty=10 rem=0 maker=0 maker_seq=0 taker=0 taker_seq=0 tpx=0 tq=0 reason=accepted\ntype=order_resting id=1 seq=1 side=buy px=100 qty=10 rem=10 maker=0 maker_seq=0 taker=0 taker_seq=0 tpx=0 tq=0 reason=resting\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--replay", scriptPath, "--events", logPath}, &stdout, &stderr)

	assert.Equal(t, 21, code)
	assert.Contains(t, stderr.String(), "replay content mismatch at line 1")
}

func TestRunReplayCountMismatchExits20(t *testing.T) {
	dir := t.TempDir()
	scriptPath := writeFile(t, dir, "script.txt", "add 1 buy 100 10\n")
	logPath := writeFile(t, dir, "events.log", "type=order_accepted id=1 seq=1 side=buy px=100 qty=10 rem=0 maker=0 maker_seq=0 taker=0 taker_seq=0 tpx=0 tq=0 reason=accepted\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--replay", scriptPath, "--events", logPath}, &stdout, &stderr)

	assert.Equal(t, 20, code)
}

func TestRunScriptLoadFailureExits10(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--script", "/nonexistent/path/does-not-exist.txt"}, &stdout, &stderr)
	assert.Equal(t, 10, code)
}

func TestRunBenchRequiresPositiveIters(t *testing.T) {
	dir := t.TempDir()
	scriptPath := writeFile(t, dir, "script.txt", "add 1 buy 100 10\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--bench", scriptPath, "--iters", "0"}, &stdout, &stderr)
	assert.Equal(t, 30, code)
}

func TestRunBenchPrintsStats(t *testing.T) {
	dir := t.TempDir()
	scriptPath := writeFile(t, dir, "script.txt", "add 1 sell 100 10\nadd 2 buy 150 4\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--bench", scriptPath, "--iters", "3"}, &stdout, &stderr)

	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "run_id=")
	assert.Contains(t, stdout.String(), "total_ns=")
	assert.Contains(t, stdout.String(), "per_iter_ns=")
}

func TestRunBookPrintsBothSides(t *testing.T) {
	dir := t.TempDir()
	scriptPath := writeFile(t, dir, "script.txt", "add 1 buy 98 10\nadd 2 sell 101 10\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--book", scriptPath}, &stdout, &stderr)

	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "bids:")
	assert.Contains(t, stdout.String(), "asks:")
	assert.Contains(t, stdout.String(), "px=98")
	assert.Contains(t, stdout.String(), "px=101")
}

func TestRunWithNoModeShowsUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(nil, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "usage:")
}
