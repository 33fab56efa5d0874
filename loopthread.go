// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventloop

import (
	"runtime"
	"sync"
)

// LoopThread couples a worker goroutine, pinned to its own OS thread, to a
// freshly constructed EventLoop. Start blocks the caller until the worker
// has published its loop; the handoff order — publish, then notify, then
// run — is required so the caller only ever observes a loop that is about
// to enter its blocking Poll wait.
type LoopThread struct {
	name         string
	initCallback func(*EventLoop)

	mu       sync.Mutex
	cond     *sync.Cond
	loop     *EventLoop
	started  bool
	startErr error

	done chan struct{}
}

// NewLoopThread constructs a LoopThread. initCallback, if non-nil, is
// invoked on the worker goroutine with the LoopThread's own new loop,
// before that loop is published; it is never called with the pool's base
// loop.
func NewLoopThread(name string, initCallback func(*EventLoop)) *LoopThread {
	lt := &LoopThread{name: name, initCallback: initCallback, done: make(chan struct{})}
	lt.cond = sync.NewCond(&lt.mu)
	return lt
}

// Start spawns the worker and blocks until it has constructed and
// published its EventLoop, returning that loop. Start must only be called
// once.
func (lt *LoopThread) Start() (*EventLoop, error) {
	go lt.run()

	lt.mu.Lock()
	for !lt.started {
		lt.cond.Wait()
	}
	loop, err := lt.loop, lt.startErr
	lt.mu.Unlock()

	return loop, err
}

func (lt *LoopThread) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(lt.done)

	loop, err := New()

	lt.mu.Lock()
	lt.loop = loop
	lt.startErr = err
	if err == nil && lt.initCallback != nil {
		lt.initCallback(loop)
	}
	lt.started = true
	lt.cond.Signal()
	lt.mu.Unlock()

	if err != nil {
		return
	}

	loop.Loop()

	lt.mu.Lock()
	lt.loop = nil
	lt.mu.Unlock()

	_ = loop.Close()
}

// Stop requests the worker's loop to quit and waits for the worker
// goroutine to return.
func (lt *LoopThread) Stop() {
	lt.mu.Lock()
	loop := lt.loop
	lt.mu.Unlock()
	if loop != nil {
		loop.Quit()
	}
	<-lt.done
}
