// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventloop

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopThreadStartPublishesRunningLoop(t *testing.T) {
	lt := NewLoopThread("worker", nil)
	loop, err := lt.Start()
	require.NoError(t, err)
	require.NotNil(t, loop)

	var ran atomic.Bool
	loop.RunInLoop(func() { ran.Store(true) })
	assert.Eventually(t, ran.Load, 200*time.Millisecond, time.Millisecond)

	lt.Stop()
}

func TestLoopThreadInitCallbackRunsBeforePublish(t *testing.T) {
	var initialized bool
	lt := NewLoopThread("worker", func(l *EventLoop) {
		initialized = true
		require.True(t, l.IsInLoopThread(), "initCallback runs on the new loop's own thread")
	})
	loop, err := lt.Start()
	require.NoError(t, err)
	assert.True(t, initialized)
	lt.Stop()
	_ = loop
}

func TestLoopThreadStopIsIdempotentToWait(t *testing.T) {
	lt := NewLoopThread("worker", nil)
	_, err := lt.Start()
	require.NoError(t, err)
	lt.Stop()
	// lt.loop is cleared after the worker's Loop returns; a second Stop must
	// not block forever or panic on a nil loop.
	lt.Stop()
}
