// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopThreadPoolDegenerateZeroThreads(t *testing.T) {
	base := newLoopOnThisGoroutine(t)
	pool := NewLoopThreadPool(base, "degenerate")

	require.NoError(t, pool.Start(nil))
	assert.True(t, pool.Started())

	for i := 0; i < 3; i++ {
		assert.Same(t, base, pool.GetNextLoop())
	}
	assert.Equal(t, []*EventLoop{base}, pool.GetAllLoops())

	pool.Stop() // must be a no-op: the base loop is owned by the caller
}

func TestLoopThreadPoolRoundRobin(t *testing.T) {
	base := newLoopOnThisGoroutine(t)
	pool := NewLoopThreadPool(base, "pool")
	pool.SetThreadNum(3)

	require.NoError(t, pool.Start(nil))
	defer pool.Stop()

	loops := pool.GetAllLoops()
	require.Len(t, loops, 3)

	var got []*EventLoop
	for i := 0; i < 6; i++ {
		got = append(got, pool.GetNextLoop())
	}
	want := []*EventLoop{loops[0], loops[1], loops[2], loops[0], loops[1], loops[2]}
	assert.Equal(t, want, got)
}

func TestLoopThreadPoolInitCallbackRunsOnEachLoop(t *testing.T) {
	base := newLoopOnThisGoroutine(t)
	pool := NewLoopThreadPool(base, "init")
	pool.SetThreadNum(2)

	var touched int
	require.NoError(t, pool.Start(func(l *EventLoop) {
		touched++
		assert.True(t, l.IsInLoopThread())
	}))
	defer pool.Stop()

	assert.Equal(t, 2, touched)
}

func TestLoopThreadPoolName(t *testing.T) {
	base := newLoopOnThisGoroutine(t)
	pool := NewLoopThreadPool(base, "named")
	assert.Equal(t, "named", pool.Name())
}
