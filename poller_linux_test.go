// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build linux

package eventloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// TestEdgePollerBufferGrowth drives more simultaneously-ready fds than the
// poller's initial event buffer holds: a saturating Poll (n == cap) must
// double the buffer before the next call, per the growth rule documented on
// initialPollerCapacity.
func TestEdgePollerBufferGrowth(t *testing.T) {
	p, err := NewEdgePoller()
	require.NoError(t, err)
	defer p.Close()

	const n = initialPollerCapacity + 1
	for i := 0; i < n; i++ {
		writeEnd, readEnd := socketpairFd(t)
		ch := NewChannel(nil, readEnd)
		ch.events = EventReadable
		require.NoError(t, p.UpdateChannel(ch))

		_, err := unix.Write(writeEnd, []byte{0})
		require.NoError(t, err)
	}

	var out []*Channel
	_, err = p.Poll(0, &out)
	require.NoError(t, err)
	assert.Len(t, out, initialPollerCapacity, "a saturating Poll must report exactly the buffer's capacity")
	assert.Equal(t, initialPollerCapacity*2, len(p.events), "the event buffer must double after saturating")

	out = out[:0]
	_, err = p.Poll(0, &out)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(out), 1, "the remaining ready fd must be reported once the buffer has grown")
}

func TestEdgePollerUpdateRemoveMembership(t *testing.T) {
	p, err := NewEdgePoller()
	require.NoError(t, err)
	defer p.Close()

	_, readEnd := socketpairFd(t)
	ch := NewChannel(nil, readEnd)

	assert.False(t, p.HasChannel(ch))

	ch.events = EventReadable
	require.NoError(t, p.UpdateChannel(ch))
	assert.Equal(t, membershipAdded, ch.state)
	assert.True(t, p.HasChannel(ch))

	ch.events = EventNone
	require.NoError(t, p.UpdateChannel(ch))
	assert.Equal(t, membershipDeleted, ch.state)
	assert.True(t, p.HasChannel(ch), "DELETED channels stay indexed until RemoveChannel")

	require.NoError(t, p.RemoveChannel(ch))
	assert.Equal(t, membershipNew, ch.state)
	assert.False(t, p.HasChannel(ch))
}

func TestEdgePollerClosedReturnsErr(t *testing.T) {
	p, err := NewEdgePoller()
	require.NoError(t, err)
	require.NoError(t, p.Close())

	var out []*Channel
	_, err = p.Poll(0, &out)
	assert.ErrorIs(t, err, ErrPollerClosed)
}
