// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventloop

import (
	"time"
	"weak"
)

// Events is a bitmask of readiness conditions a Channel is interested in, or
// that a Poller last observed on its fd.
type Events uint32

const (
	EventNone Events = 0

	// EventReadable covers both normal and high-priority readability.
	EventReadable Events = 1 << iota
	EventWritable
	EventError
	// EventHangup is a full hang-up with no data pending; dispatches to
	// onClose unless EventReadable is also set.
	EventHangup
	// EventPeerShutdown is a half-close on the read side (the kernel's
	// "peer shut down its write end" signal); dispatches to onRead
	// alongside ordinary readability, per the source's rdhup handling.
	EventPeerShutdown
)

func (e Events) readable() bool     { return e&EventReadable != 0 }
func (e Events) writable() bool     { return e&EventWritable != 0 }
func (e Events) hasError() bool     { return e&EventError != 0 }
func (e Events) hangup() bool       { return e&EventHangup != 0 }
func (e Events) peerShutdown() bool { return e&EventPeerShutdown != 0 }
func (e Events) none() bool         { return e == EventNone }

// membership is the EdgePoller's per-Channel tri-state, tracked on the
// Channel itself so a Poller implementation never needs its own side table
// beyond the fd index.
type membership int8

const (
	membershipNew membership = iota
	membershipAdded
	membershipDeleted
)

// Channel binds one non-blocking file descriptor to an EventLoop, an
// interest mask, and a set of event callbacks. A Channel owns nothing but
// its own identity: it does not close its fd, and it may only be mutated
// from its owning loop's goroutine.
type Channel struct {
	loop *EventLoop
	fd   int

	events  Events // interest mask
	revents Events // last events reported by the poller

	state membership // Poller membership bookkeeping (EdgePoller and PollPoller)

	onRead  func(receiveTime time.Time)
	onWrite func()
	onClose func()
	onError func()

	// tieProbe reports whether the anchor installed by Tie is still alive.
	// It closes over a weak.Pointer[T] for whatever anchor type the caller
	// supplied — see Tie, a free function rather than a method because Go
	// methods cannot be generic.
	tieProbe func() bool
}

// NewChannel constructs a Channel for fd, bound to loop. The Channel starts
// with no interest and must be registered via EnableReading/EnableWriting
// before the loop's Poller will report readiness on it.
func NewChannel(loop *EventLoop, fd int) *Channel {
	return &Channel{loop: loop, fd: fd, state: membershipNew}
}

// Fd returns the underlying file descriptor.
func (c *Channel) Fd() int { return c.fd }

// Events returns the current interest mask.
func (c *Channel) Events() Events { return c.events }

// OwnerLoop returns the EventLoop this Channel is bound to.
func (c *Channel) OwnerLoop() *EventLoop { return c.loop }

// IsNoneEvent reports whether the Channel currently has no interest
// registered.
func (c *Channel) IsNoneEvent() bool { return c.events.none() }

// IsReading reports whether the read interest bit is set.
func (c *Channel) IsReading() bool { return c.events&EventReadable != 0 }

// IsWriting reports whether the write interest bit is set.
func (c *Channel) IsWriting() bool { return c.events&EventWritable != 0 }

// SetReadCallback installs the callback fired on readability. Store-only;
// no side effects.
func (c *Channel) SetReadCallback(f func(receiveTime time.Time)) { c.onRead = f }

// SetWriteCallback installs the callback fired on writability.
func (c *Channel) SetWriteCallback(f func()) { c.onWrite = f }

// SetCloseCallback installs the callback fired on peer hang-up.
func (c *Channel) SetCloseCallback(f func()) { c.onClose = f }

// SetErrorCallback installs the callback fired on an error condition.
func (c *Channel) SetErrorCallback(f func()) { c.onError = f }

// EnableReading adds EventReadable to the interest mask and pushes the
// change to the owning loop's Poller.
func (c *Channel) EnableReading() {
	c.events |= EventReadable
	c.update()
}

// DisableReading removes EventReadable from the interest mask.
func (c *Channel) DisableReading() {
	c.events &^= EventReadable
	c.update()
}

// EnableWriting adds EventWritable to the interest mask.
func (c *Channel) EnableWriting() {
	c.events |= EventWritable
	c.update()
}

// DisableWriting removes EventWritable from the interest mask.
func (c *Channel) DisableWriting() {
	c.events &^= EventWritable
	c.update()
}

// DisableAll clears the interest mask entirely.
func (c *Channel) DisableAll() {
	c.events = EventNone
	c.update()
}

// update propagates the current interest mask to the owning loop's Poller.
func (c *Channel) update() {
	c.loop.updateChannel(c)
}

// Remove asks the owning loop to unregister this Channel from the Poller
// and erase it from its index. The Channel must have no interest
// registered before removal is safe to call in the ordinary disable-then-remove
// sequence the source expects, though the Poller itself tolerates removal
// from any state.
func (c *Channel) Remove() {
	c.loop.removeChannel(c)
}

// Tie records a weak reference to a shared lifetime anchor. Every
// subsequent HandleEvent call attempts to promote the weak reference
// exactly once before running any callback; if promotion fails (the
// anchor has been garbage collected), all four callbacks are skipped for
// that event. Tie is a free function, not a method, because Go methods
// cannot carry their own type parameter.
func Tie[T any](c *Channel, anchor *T) {
	wp := weak.Make(anchor)
	c.tieProbe = func() bool { return wp.Value() != nil }
}

// setRevents records the events the Poller most recently observed on this
// Channel's fd. Declared void per the source's set_revents, which declares
// an int return but never returns one.
func (c *Channel) setRevents(ev Events) {
	c.revents = ev
}

// HandleEvent interprets the last-observed revents and fans out to the
// installed callbacks in the fixed order: close, error, read, write. All
// branches that apply fire; none is exclusive of another.
func (c *Channel) HandleEvent(receiveTime time.Time) {
	if c.tieProbe != nil && !c.tieProbe() {
		return
	}

	ev := c.revents

	if ev.hangup() && !ev.readable() {
		if c.onClose != nil {
			c.onClose()
		}
	}
	if ev.hasError() {
		if c.onError != nil {
			c.onError()
		}
	}
	if ev.readable() || ev.peerShutdown() {
		if c.onRead != nil {
			c.onRead(receiveTime)
		}
	}
	if ev.writable() {
		if c.onWrite != nil {
			c.onWrite()
		}
	}
}
