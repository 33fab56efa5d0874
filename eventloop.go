// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventloop

import (
	"sync"
	"sync/atomic"
	"time"
)

// loopRegistry enforces "at most one EventLoop per OS thread": a process-wide
// map from OS thread id to the EventLoop owning it, checked at construction
// and cleared on Close. The source keeps this as a thread-local pointer; Go
// has no such primitive, so a process-wide map keyed by the cached tid is
// the direct translation.
var loopRegistry struct {
	mu sync.Mutex
	m  map[int]*EventLoop
}

func init() {
	loopRegistry.m = make(map[int]*EventLoop)
}

// EventLoop is a per-thread demultiplexer: it waits on a Poller, dispatches
// readiness to registered Channels, and drains a cross-thread task queue.
// An EventLoop must be constructed on the goroutine that will run it, and
// Loop must be called from that same goroutine for its whole lifetime.
type EventLoop struct {
	ownerTid int

	looping  atomic.Bool
	quit     atomic.Bool
	draining atomic.Bool

	poller Poller

	active []*Channel // reused across iterations, truncated not reallocated

	mu      sync.Mutex
	pending taskQueue

	wakeupReadFd  int
	wakeupWriteFd int
	wakeupChannel *Channel

	pollTimeoutMs int

	Metrics Metrics
}

// New constructs an EventLoop bound to the calling goroutine's OS thread.
// Construction fails if an EventLoop is already registered for that thread.
func New(opts ...LoopOption) (*EventLoop, error) {
	cfg, err := resolveLoopOptions(opts)
	if err != nil {
		return nil, err
	}

	tid := cachedTid()

	loopRegistry.mu.Lock()
	if _, exists := loopRegistry.m[tid]; exists {
		loopRegistry.mu.Unlock()
		invariantViolation(errLoopAlreadyRegisteredMsg)
	}
	loopRegistry.m[tid] = nil // reserve the slot before releasing the lock
	loopRegistry.mu.Unlock()

	poller := cfg.poller
	if poller == nil {
		poller, err = newDefaultPoller()
		if err != nil {
			loopRegistry.mu.Lock()
			delete(loopRegistry.m, tid)
			loopRegistry.mu.Unlock()
			return nil, err
		}
	}

	l := &EventLoop{
		ownerTid:      tid,
		poller:        poller,
		pollTimeoutMs: cfg.pollTimeoutMs,
	}

	readFd, writeFd, err := newWakeFd()
	if err != nil {
		loopRegistry.mu.Lock()
		delete(loopRegistry.m, tid)
		loopRegistry.mu.Unlock()
		return nil, err
	}
	l.wakeupReadFd = readFd
	l.wakeupWriteFd = writeFd

	// The wakeup Channel is the first Channel registered with the Poller
	// and, per the contract, the last removed: Close tears it down only
	// after the loop has stopped running.
	l.wakeupChannel = NewChannel(l, readFd)
	l.wakeupChannel.SetReadCallback(l.handleWakeupRead)
	l.wakeupChannel.EnableReading()

	loopRegistry.mu.Lock()
	loopRegistry.m[tid] = l
	loopRegistry.mu.Unlock()

	return l, nil
}

func (l *EventLoop) handleWakeupRead(time.Time) {
	if err := drainWake(l.wakeupReadFd); err != nil {
		logWarn("wakeup", "short read on wakeup descriptor", err)
	}
}

// IsInLoopThread compares the calling goroutine's OS thread id against the
// one captured at construction.
func (l *EventLoop) IsInLoopThread() bool {
	return cachedTid() == l.ownerTid
}

func (l *EventLoop) assertInLoopThread() {
	if !l.IsInLoopThread() {
		invariantViolation(errNotLoopThreadMsg)
	}
}

// Loop must be called on the owning thread. It sets looping, clears quit,
// then repeats: clear the activation list, poll, dispatch each active
// Channel, drain pending tasks. It returns when quit is observed true at a
// loop-head check.
func (l *EventLoop) Loop() {
	l.assertInLoopThread()

	l.looping.Store(true)
	l.quit.Store(false)

	logDebug("eventloop", "loop started")

	for !l.quit.Load() {
		l.active = l.active[:0]

		receiveTime, err := l.poller.Poll(l.pollTimeoutMs, &l.active)
		if err != nil {
			logError("poller", "poll wait failed", err)
			continue
		}

		l.Metrics.recordIteration()

		for _, ch := range l.active {
			ch.HandleEvent(receiveTime)
		}
		l.Metrics.recordDispatch(len(l.active))

		l.drainTasks()
	}

	l.looping.Store(false)
	logDebug("eventloop", "loop returned")
}

// Quit requests that Loop return. If called from a thread other than the
// loop's own, it also wakes the Poller so the request is observed promptly.
func (l *EventLoop) Quit() {
	l.quit.Store(true)
	if !l.IsInLoopThread() {
		l.Wakeup()
	}
}

// RunInLoop executes task inline if called from the owning thread;
// otherwise it is handed to QueueInLoop.
func (l *EventLoop) RunInLoop(task func()) {
	if l.IsInLoopThread() {
		task()
		return
	}
	l.QueueInLoop(task)
}

// QueueInLoop appends task to the pending queue under the mutex, then wakes
// the Poller if the caller is not the owning thread, or if the loop is
// currently draining tasks. The draining clause is essential: a task
// enqueued from within a task must itself force a wakeup, because the
// drain snapshot for the current iteration has already been taken — without
// it, a self-enqueuing chain would stall until the next poll timeout.
func (l *EventLoop) QueueInLoop(task func()) {
	l.mu.Lock()
	l.pending.push(task)
	l.mu.Unlock()

	if !l.IsInLoopThread() || l.draining.Load() {
		l.Wakeup()
	}
}

// drainTasks swaps the pending queue out under the mutex and runs every
// task FIFO outside the lock, with draining true for the duration.
func (l *EventLoop) drainTasks() {
	l.draining.Store(true)
	defer l.draining.Store(false)

	l.mu.Lock()
	tasks := l.pending.drain()
	l.mu.Unlock()

	for _, t := range tasks {
		t()
	}
	l.Metrics.recordTasksRun(len(tasks))
}

// Wakeup writes to the wakeup descriptor, forcing a blocked Poller wait to
// return.
func (l *EventLoop) Wakeup() {
	if err := writeWake(l.wakeupWriteFd); err != nil {
		logWarn("wakeup", "failed to write wakeup descriptor", err)
	}
}

// updateChannel delegates to the Poller. Must be called from the owning
// thread, per the Channel mutation contract.
func (l *EventLoop) updateChannel(ch *Channel) {
	l.assertInLoopThread()
	if err := l.poller.UpdateChannel(ch); err != nil {
		logError("channel", "updateChannel failed", err)
	}
}

// removeChannel delegates to the Poller.
func (l *EventLoop) removeChannel(ch *Channel) {
	l.assertInLoopThread()
	if err := l.poller.RemoveChannel(ch); err != nil {
		logError("channel", "removeChannel failed", err)
	}
}

// HasChannel delegates to the Poller.
func (l *EventLoop) HasChannel(ch *Channel) bool {
	l.assertInLoopThread()
	return l.poller.HasChannel(ch)
}

// Close tears the loop down: it must be called after Loop has returned (or
// before it was ever started). It closes the Poller and the wakeup
// descriptor, and deregisters the owning thread.
func (l *EventLoop) Close() error {
	if l.looping.Load() {
		invariantViolation(errLoopStillRunningMsg)
	}
	err := l.poller.Close()
	if cerr := closeWakeFd(l.wakeupReadFd, l.wakeupWriteFd); cerr != nil && err == nil {
		err = cerr
	}

	loopRegistry.mu.Lock()
	delete(loopRegistry.m, l.ownerTid)
	loopRegistry.mu.Unlock()

	return err
}
