// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build darwin

package eventloop

import (
	"time"

	"golang.org/x/sys/unix"
)

// EdgePoller is the Darwin Poller back-end: kqueue with the same
// NEW/ADDED/DELETED membership bookkeeping as the Linux EdgePoller.
type EdgePoller struct {
	kq       int
	events   []unix.Kevent_t
	channels map[int]*Channel
	applied  map[int]Events // fd -> mask currently registered with the kernel
	closed   bool
}

func NewEdgePoller() (*EdgePoller, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	unix.CloseOnExec(kq)
	return &EdgePoller{
		kq:       kq,
		events:   make([]unix.Kevent_t, initialPollerCapacity),
		channels: make(map[int]*Channel),
		applied:  make(map[int]Events),
	}, nil
}

func (p *EdgePoller) Close() error {
	p.closed = true
	return unix.Close(p.kq)
}

func (p *EdgePoller) Poll(timeoutMs int, out *[]*Channel) (time.Time, error) {
	if p.closed {
		return time.Time{}, ErrPollerClosed
	}
	var ts *unix.Timespec
	if timeoutMs >= 0 {
		ts = &unix.Timespec{
			Sec:  int64(timeoutMs / 1000),
			Nsec: int64((timeoutMs % 1000) * 1000000),
		}
	}

	n, err := unix.Kevent(p.kq, nil, p.events, ts)
	now := time.Now()
	if err != nil {
		if err == unix.EINTR {
			return now, nil
		}
		return now, err
	}

	merged := make(map[int]Events, n)
	for i := 0; i < n; i++ {
		fd := int(p.events[i].Ident)
		merged[fd] |= keventToEvents(&p.events[i])
	}
	for fd, ev := range merged {
		ch, ok := p.channels[fd]
		if !ok {
			continue
		}
		ch.setRevents(ev)
		*out = append(*out, ch)
	}

	if n == len(p.events) {
		p.events = make([]unix.Kevent_t, len(p.events)*2)
	}

	return now, nil
}

func (p *EdgePoller) UpdateChannel(ch *Channel) error {
	switch ch.state {
	case membershipNew, membershipDeleted:
		ch.state = membershipAdded
		p.channels[ch.fd] = ch
		return p.apply(ch.fd, ch.events)
	case membershipAdded:
		if ch.events.none() {
			ch.state = membershipDeleted
			return p.apply(ch.fd, EventNone)
		}
		return p.apply(ch.fd, ch.events)
	}
	return nil
}

// apply brings the kernel's registration for fd to exactly want, relative
// to the mask the EdgePoller last successfully applied (kqueue, unlike
// epoll, has no "replace the mask" op, only per-filter add/delete).
func (p *EdgePoller) apply(fd int, want Events) error {
	have := p.applied[fd]

	var changes []unix.Kevent_t
	if have.readable() && !want.readable() {
		changes = append(changes, kevent(fd, unix.EVFILT_READ, unix.EV_DELETE))
	}
	if have.writable() && !want.writable() {
		changes = append(changes, kevent(fd, unix.EVFILT_WRITE, unix.EV_DELETE))
	}
	if want.readable() && !have.readable() {
		changes = append(changes, kevent(fd, unix.EVFILT_READ, unix.EV_ADD|unix.EV_ENABLE))
	}
	if want.writable() && !have.writable() {
		changes = append(changes, kevent(fd, unix.EVFILT_WRITE, unix.EV_ADD|unix.EV_ENABLE))
	}

	if len(changes) > 0 {
		if _, err := unix.Kevent(p.kq, changes, nil, nil); err != nil {
			return err
		}
	}

	if want == EventNone {
		delete(p.applied, fd)
	} else {
		p.applied[fd] = want
	}
	return nil
}

func kevent(fd int, filter int16, flags uint16) unix.Kevent_t {
	return unix.Kevent_t{Ident: uint64(fd), Filter: filter, Flags: flags}
}

func (p *EdgePoller) RemoveChannel(ch *Channel) error {
	delete(p.channels, ch.fd)
	var err error
	if ch.state == membershipAdded {
		ch.state = membershipNew
		err = p.apply(ch.fd, EventNone)
	} else {
		ch.state = membershipNew
	}
	return err
}

func (p *EdgePoller) HasChannel(ch *Channel) bool {
	existing, ok := p.channels[ch.fd]
	return ok && existing == ch
}

func keventToEvents(kev *unix.Kevent_t) Events {
	var out Events
	switch kev.Filter {
	case unix.EVFILT_READ:
		out |= EventReadable
	case unix.EVFILT_WRITE:
		out |= EventWritable
	}
	if kev.Flags&unix.EV_ERROR != 0 {
		out |= EventError
	}
	if kev.Flags&unix.EV_EOF != 0 {
		out |= EventHangup
	}
	return out
}

func newDefaultPoller() (Poller, error) {
	if pollBackendRequested() {
		return NewPollPoller()
	}
	return NewEdgePoller()
}
