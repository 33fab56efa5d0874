// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventloop

import "sync/atomic"

// Metrics tracks low-overhead runtime counters for an EventLoop. Every
// field is an atomic counter; Snapshot returns a consistent-enough copy for
// monitoring, not a transactional one (matching the source's own
// low-overhead, no-lock philosophy for metrics).
type Metrics struct {
	iterations      atomic.Uint64 // completed Loop iterations
	channelDispatch atomic.Uint64 // Channel.HandleEvent invocations
	tasksRun        atomic.Uint64 // pending tasks executed via drainTasks
	queueHighWater  atomic.Uint64 // largest pending-task queue length observed at drain time
}

// MetricsSnapshot is a point-in-time copy of a Metrics.
type MetricsSnapshot struct {
	Iterations      uint64
	ChannelDispatch uint64
	TasksRun        uint64
	QueueHighWater  uint64
}

func (m *Metrics) recordIteration() {
	m.iterations.Add(1)
}

func (m *Metrics) recordDispatch(n int) {
	m.channelDispatch.Add(uint64(n))
}

func (m *Metrics) recordTasksRun(n int) {
	m.tasksRun.Add(uint64(n))
	for {
		cur := m.queueHighWater.Load()
		if uint64(n) <= cur {
			return
		}
		if m.queueHighWater.CompareAndSwap(cur, uint64(n)) {
			return
		}
	}
}

// Snapshot returns a copy of the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Iterations:      m.iterations.Load(),
		ChannelDispatch: m.channelDispatch.Load(),
		TasksRun:        m.tasksRun.Load(),
		QueueHighWater:  m.queueHighWater.Load(),
	}
}
