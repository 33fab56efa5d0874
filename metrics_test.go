// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	var m Metrics
	m.recordIteration()
	m.recordIteration()
	m.recordDispatch(3)
	m.recordTasksRun(5)
	m.recordTasksRun(2)
	m.recordTasksRun(9)

	snap := m.Snapshot()
	assert.EqualValues(t, 2, snap.Iterations)
	assert.EqualValues(t, 3, snap.ChannelDispatch)
	assert.EqualValues(t, 16, snap.TasksRun) // 5 + 2 + 9
	assert.EqualValues(t, 9, snap.QueueHighWater, "high-water tracks the largest single drain, not the sum")
}

func TestMetricsHighWaterNeverDecreases(t *testing.T) {
	var m Metrics
	m.recordTasksRun(10)
	m.recordTasksRun(1)
	assert.EqualValues(t, 10, m.Snapshot().QueueHighWater)
}
