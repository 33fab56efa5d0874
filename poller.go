// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package eventloop provides the core of a multi-reactor TCP event-dispatch
// engine: a per-thread EventLoop that multiplexes non-blocking sockets via a
// pluggable Poller back-end, dispatching readiness to registered Channels
// and draining a cross-thread task queue.
//
// # Platform back-ends
//
//   - Linux: level-triggered epoll (poller_linux.go)
//   - Darwin: kqueue (poller_darwin.go)
//   - Linux or Darwin, when USE_POLL is set: level-triggered unix.Poll (poller_poll.go)
//
// See doc.go for the package-level usage overview.
package eventloop

import "time"

// initialPollerCapacity is the starting size of a concrete Poller's kernel
// event buffer (epoll_event / kevent / pollfd array). Testable property:
// after any Poll that returns exactly capacity entries, the next call uses
// capacity 2*capacity.
const initialPollerCapacity = 16

// Poller is the back-end-neutral readiness contract an EventLoop drives.
// Implementations are not safe for concurrent use from multiple goroutines;
// all methods are called only from the owning EventLoop's goroutine.
type Poller interface {
	// Poll blocks up to timeoutMs waiting for readiness, then appends every
	// ready Channel to out (which callers pass pre-truncated) with its
	// revents freshly set, and returns the time the wait returned.
	Poll(timeoutMs int, out *[]*Channel) (time.Time, error)

	// UpdateChannel inserts, modifies, or re-adds ch based on its current
	// membership state and interest mask.
	UpdateChannel(ch *Channel) error

	// RemoveChannel detaches ch from the Poller and erases it from the
	// index.
	RemoveChannel(ch *Channel) error

	// HasChannel reports whether the Poller's index contains an entry
	// whose fd maps to exactly this Channel.
	HasChannel(ch *Channel) bool

	// Close releases the Poller's kernel resources. Not safe to call
	// concurrently with Poll.
	Close() error
}
