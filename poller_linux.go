// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build linux

package eventloop

import (
	"time"

	"golang.org/x/sys/unix"
)

// EdgePoller is the Linux Poller back-end: epoll with the tri-state
// NEW/ADDED/DELETED channel membership from the source's EPollPoller.
// Registrations do not set EPOLLET, so readiness is level-triggered.
type EdgePoller struct {
	epfd     int
	events   []unix.EpollEvent
	channels map[int]*Channel // fd -> Channel, for both ADDED and DELETED entries
	closed   bool
}

// NewEdgePoller creates an epoll instance. The returned Poller must be
// closed by its owning EventLoop.
func NewEdgePoller() (*EdgePoller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &EdgePoller{
		epfd:     epfd,
		events:   make([]unix.EpollEvent, initialPollerCapacity),
		channels: make(map[int]*Channel),
	}, nil
}

func (p *EdgePoller) Close() error {
	p.closed = true
	return unix.Close(p.epfd)
}

func (p *EdgePoller) Poll(timeoutMs int, out *[]*Channel) (time.Time, error) {
	if p.closed {
		return time.Time{}, ErrPollerClosed
	}
	n, err := unix.EpollWait(p.epfd, p.events, timeoutMs)
	now := time.Now()
	if err != nil {
		if err == unix.EINTR {
			return now, nil
		}
		return now, err
	}

	for i := 0; i < n; i++ {
		fd := int(p.events[i].Fd)
		ch, ok := p.channels[fd]
		if !ok {
			continue
		}
		ch.setRevents(epollToEvents(p.events[i].Events))
		*out = append(*out, ch)
	}

	// Dynamic growth: a saturating return may have left ready fds
	// unreported until a later wait; double the buffer before the next one.
	if n == len(p.events) {
		p.events = make([]unix.EpollEvent, len(p.events)*2)
	}

	return now, nil
}

func (p *EdgePoller) UpdateChannel(ch *Channel) error {
	switch ch.state {
	case membershipNew, membershipDeleted:
		ch.state = membershipAdded
		p.channels[ch.fd] = ch
		ev := &unix.EpollEvent{Events: eventsToEpoll(ch.events), Fd: int32(ch.fd)}
		return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, ch.fd, ev)
	case membershipAdded:
		if ch.events.none() {
			ch.state = membershipDeleted
			return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, ch.fd, nil)
		}
		ev := &unix.EpollEvent{Events: eventsToEpoll(ch.events), Fd: int32(ch.fd)}
		return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, ch.fd, ev)
	}
	return nil
}

func (p *EdgePoller) RemoveChannel(ch *Channel) error {
	delete(p.channels, ch.fd)
	if ch.state == membershipAdded {
		ch.state = membershipNew
		return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, ch.fd, nil)
	}
	ch.state = membershipNew
	return nil
}

func (p *EdgePoller) HasChannel(ch *Channel) bool {
	existing, ok := p.channels[ch.fd]
	return ok && existing == ch
}

func eventsToEpoll(ev Events) uint32 {
	var out uint32
	if ev.readable() {
		out |= unix.EPOLLIN | unix.EPOLLPRI
	}
	if ev.writable() {
		out |= unix.EPOLLOUT
	}
	return out
}

func epollToEvents(ev uint32) Events {
	var out Events
	if ev&(unix.EPOLLIN|unix.EPOLLPRI) != 0 {
		out |= EventReadable
	}
	if ev&unix.EPOLLOUT != 0 {
		out |= EventWritable
	}
	if ev&unix.EPOLLERR != 0 {
		out |= EventError
	}
	if ev&unix.EPOLLHUP != 0 {
		out |= EventHangup
	}
	if ev&unix.EPOLLRDHUP != 0 {
		out |= EventPeerShutdown
	}
	return out
}

// newDefaultPoller returns the platform's edge-capable Poller, or a
// level-triggered PollPoller when USE_POLL is set in the environment.
func newDefaultPoller() (Poller, error) {
	if pollBackendRequested() {
		return NewPollPoller()
	}
	return NewEdgePoller()
}
