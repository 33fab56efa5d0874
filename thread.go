// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventloop

import (
	"fmt"
	"runtime"
	"sync/atomic"
)

// numThreadsCreated produces the default "Thread%d" naming scheme, mirroring
// the source's global counter.
var numThreadsCreated atomic.Int64

// Thread owns a single worker goroutine permanently pinned to an OS thread.
// It is the Go realization of the source's Thread handle: a generic
// "spawn and wait for the child to publish its identity" primitive.
// LoopThread does not use it; it spawns and pins its own goroutine.
type Thread struct {
	name    string
	fn      func()
	started atomic.Bool
	tidCh   chan int
	tid     int
}

// NewThread constructs a Thread that will run fn on its own pinned OS
// thread once started. An empty name is replaced with "Thread%d".
func NewThread(fn func(), name string) *Thread {
	if name == "" {
		name = fmt.Sprintf("Thread%d", numThreadsCreated.Add(1))
	}
	return &Thread{
		name:  name,
		fn:    fn,
		tidCh: make(chan int, 1),
	}
}

// Name returns the thread's display name.
func (t *Thread) Name() string {
	return t.name
}

// Start spawns the worker goroutine, then blocks the caller until the
// worker has cached its own OS thread id, mirroring the source's
// sem_post/sem_wait handoff in start(). Start must only be called once;
// subsequent calls are no-ops.
func (t *Thread) Start() {
	if !t.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		t.tidCh <- cachedTid()
		t.fn()
	}()
	t.tid = <-t.tidCh
}

// Tid returns the worker's OS thread id, cached by Start. It may be called
// any number of times once Start has returned.
func (t *Thread) Tid() int {
	return t.tid
}
