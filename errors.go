// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventloop

import "errors"

// Sentinel errors returned by a Poller to its caller. EventLoop logs them
// and continues; it does not return them to its own callers.
var (
	// ErrPollerClosed is returned by Poll once Close has been called on the
	// Poller. UpdateChannel and RemoveChannel do not check whether the
	// Poller has been closed.
	ErrPollerClosed = errors.New("eventloop: poller closed")
)

// Programming-invariant violations. These indicate the caller broke a
// contract the core cannot safely continue past (two loops on one thread,
// a Channel mutated off its owning loop's goroutine, a Channel destroyed
// while still registered). The source's posture for these is LOG_FATAL,
// which aborts the process; invariantViolation panics to the same effect
// rather than returning an error a caller might ignore.
func invariantViolation(msg string) {
	panic("eventloop: " + msg)
}

// errLoopAlreadyRegistered text, used by New when the calling thread
// already owns an EventLoop.
const errLoopAlreadyRegisteredMsg = "an EventLoop is already registered for this OS thread"

// errNotLoopThread text, used whenever an operation that must run on the
// owning loop's goroutine is invoked elsewhere.
const errNotLoopThreadMsg = "operation called from a goroutine other than the owning loop's thread"

// errChannelNotDetached text, describing a Channel torn down while still
// registered with its loop's Poller. No code path in this package raises
// it: Channel has no teardown method, so this condition is not detected.
const errChannelNotDetachedMsg = "channel destroyed while still registered with its loop"

// errLoopStillRunning text, used when Close is called on an EventLoop
// whose Loop is still executing.
const errLoopStillRunningMsg = "EventLoop.Close called while Loop is still running"
