// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build linux || darwin

package eventloop

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// pollBackendRequested reports whether USE_POLL selects the level-triggered
// back-end over the platform's edge-capable one.
func pollBackendRequested() bool {
	return os.Getenv("USE_POLL") != ""
}

// PollPoller is the level-triggered Poller back-end selected by USE_POLL.
// Its internal design mirrors EdgePoller's: the same NEW/ADDED/DELETED
// membership state, a fd-to-Channel index, and dynamic growth of its
// poll array in place of EdgePoller's kernel event buffer.
type PollPoller struct {
	channels map[int]*Channel // fd -> Channel, ADDED or DELETED
	fds      []unix.PollFd    // parallel poll array, capacity doubles on saturation
	closed   bool
}

// NewPollPoller constructs a PollPoller. There is no kernel handle to
// acquire up front; unix.Poll is called fresh with the current fd set on
// every Poll.
func NewPollPoller() (*PollPoller, error) {
	return &PollPoller{
		channels: make(map[int]*Channel),
		fds:      make([]unix.PollFd, 0, initialPollerCapacity),
	}, nil
}

func (p *PollPoller) Close() error {
	p.closed = true
	return nil
}

func (p *PollPoller) Poll(timeoutMs int, out *[]*Channel) (time.Time, error) {
	if p.closed {
		return time.Time{}, ErrPollerClosed
	}
	p.fds = p.fds[:0]
	for fd, ch := range p.channels {
		if ch.state != membershipAdded {
			continue
		}
		p.fds = append(p.fds, unix.PollFd{Fd: int32(fd), Events: eventsToPoll(ch.events)})
	}

	n, err := unix.Poll(p.fds, timeoutMs)
	now := time.Now()
	if err != nil {
		if err == unix.EINTR {
			return now, nil
		}
		return now, err
	}

	if n > 0 {
		for _, pfd := range p.fds {
			if pfd.Revents == 0 {
				continue
			}
			ch, ok := p.channels[int(pfd.Fd)]
			if !ok {
				continue
			}
			ch.setRevents(pollToEvents(pfd.Revents))
			*out = append(*out, ch)
		}
	}

	if len(p.fds) == cap(p.fds) && len(p.fds) > 0 {
		grown := make([]unix.PollFd, 0, cap(p.fds)*2)
		p.fds = grown
	}

	return now, nil
}

func (p *PollPoller) UpdateChannel(ch *Channel) error {
	switch ch.state {
	case membershipNew, membershipDeleted:
		ch.state = membershipAdded
		p.channels[ch.fd] = ch
	case membershipAdded:
		if ch.events.none() {
			ch.state = membershipDeleted
		}
	}
	return nil
}

func (p *PollPoller) RemoveChannel(ch *Channel) error {
	delete(p.channels, ch.fd)
	ch.state = membershipNew
	return nil
}

func (p *PollPoller) HasChannel(ch *Channel) bool {
	existing, ok := p.channels[ch.fd]
	return ok && existing == ch
}

func eventsToPoll(ev Events) int16 {
	var out int16
	if ev.readable() {
		out |= unix.POLLIN | unix.POLLPRI
	}
	if ev.writable() {
		out |= unix.POLLOUT
	}
	return out
}

func pollToEvents(revents int16) Events {
	var out Events
	if revents&(unix.POLLIN|unix.POLLPRI) != 0 {
		out |= EventReadable
	}
	if revents&unix.POLLOUT != 0 {
		out |= EventWritable
	}
	if revents&unix.POLLERR != 0 {
		out |= EventError
	}
	if revents&unix.POLLHUP != 0 {
		out |= EventHangup
	}
	if revents&unix.POLLRDHUP != 0 {
		out |= EventPeerShutdown
	}
	return out
}
