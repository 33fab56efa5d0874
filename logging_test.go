// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventloop

import (
	"bufio"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Contains(t, LogLevel(99).String(), "UNKNOWN")
}

func TestNoOpLoggerDiscardsEverything(t *testing.T) {
	l := NewNoOpLogger()
	assert.False(t, l.IsEnabled(LevelError))
	l.Log(LogEntry{Level: LevelError, Message: "should be discarded"})
}

func TestDefaultLoggerLevelFiltering(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	l := NewDefaultLogger(LevelWarn)
	l.Out = w

	assert.False(t, l.IsEnabled(LevelDebug))
	assert.True(t, l.IsEnabled(LevelWarn))
	assert.True(t, l.IsEnabled(LevelError))

	l.Log(LogEntry{Level: LevelDebug, Category: "test", Message: "filtered out"})
	l.Log(LogEntry{Level: LevelError, Category: "test", Message: "passes through"})
	w.Close()

	out, err := bufio.NewReader(r).ReadString('\n')
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "passes through", decoded["message"])
	assert.Equal(t, "ERROR", decoded["level"])
	assert.Equal(t, "test", decoded["category"])
}

func TestDefaultLoggerIncludesError(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	l := NewDefaultLogger(LevelDebug)
	l.Out = w

	l.Log(LogEntry{Level: LevelError, Category: "poller", Message: "wait failed", Err: assertErr{"boom"}})
	w.Close()

	out, err := bufio.NewReader(r).ReadString('\n')
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "boom", decoded["error"])
}

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }

func TestEscapeJSON(t *testing.T) {
	assert.Equal(t, `hello`, escapeJSON("hello"))
	assert.Equal(t, `a\"b`, escapeJSON(`a"b`))
	assert.Equal(t, `a\\b`, escapeJSON(`a\b`))
}

type recordingLogger struct {
	entries []LogEntry
}

func (r *recordingLogger) Log(entry LogEntry)     { r.entries = append(r.entries, entry) }
func (r *recordingLogger) IsEnabled(LogLevel) bool { return true }

func TestSetStructuredLoggerIsUsedByPackageHelpers(t *testing.T) {
	rec := &recordingLogger{}
	SetStructuredLogger(rec)
	defer SetStructuredLogger(nil)

	logDebug("cat", "debug msg")
	logWarn("cat", "warn msg", assertErr{"x"})
	logError("cat", "error msg", assertErr{"y"})

	require.Len(t, rec.entries, 3)
	assert.Equal(t, LevelDebug, rec.entries[0].Level)
	assert.Equal(t, LevelWarn, rec.entries[1].Level)
	assert.Equal(t, LevelError, rec.entries[2].Level)
}

func TestGetGlobalLoggerDefaultsToNoOp(t *testing.T) {
	SetStructuredLogger(nil)
	_, ok := getGlobalLogger().(*NoOpLogger)
	assert.True(t, ok)
}
