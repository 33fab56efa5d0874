// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventloop

import (
	"fmt"
	"sync/atomic"
)

// LoopThreadPool starts N subordinate LoopThreads and hands their loops out
// round-robin. With N == 0 it degenerates to handing out the base loop
// (the loop owned by the thread that constructed the pool) on every call,
// exactly as the source's loops_.push_back(baseLoop_) fallback does.
type LoopThreadPool struct {
	baseLoop *EventLoop
	name     string

	numThreads int
	threads    []*LoopThread
	loops      []*EventLoop

	cursor  atomic.Uint64
	started bool
}

// NewLoopThreadPool constructs a pool hosted on baseLoop. name is used to
// derive each subordinate LoopThread's display name ("name-0", "name-1", ...).
func NewLoopThreadPool(baseLoop *EventLoop, name string) *LoopThreadPool {
	return &LoopThreadPool{baseLoop: baseLoop, name: name}
}

// SetThreadNum sets the number of subordinate loops to start. Must be
// called before Start.
func (p *LoopThreadPool) SetThreadNum(n int) {
	p.numThreads = n
}

// Start constructs and starts exactly numThreads LoopThreads, invoking
// initCb (if non-nil) on each new loop before it is published. It records
// their loops in start order.
func (p *LoopThreadPool) Start(initCb func(*EventLoop)) error {
	p.started = true

	if p.numThreads == 0 {
		p.loops = []*EventLoop{p.baseLoop}
		return nil
	}

	p.threads = make([]*LoopThread, 0, p.numThreads)
	p.loops = make([]*EventLoop, 0, p.numThreads)

	for i := 0; i < p.numThreads; i++ {
		lt := NewLoopThread(fmt.Sprintf("%s-%d", p.name, i), initCb)
		loop, err := lt.Start()
		if err != nil {
			return err
		}
		p.threads = append(p.threads, lt)
		p.loops = append(p.loops, loop)
	}

	return nil
}

// GetNextLoop returns the base loop when the pool size is zero; otherwise
// it returns the loop at the current cursor and advances the cursor modulo
// the pool size. Round-robin is deterministic; there is no load awareness.
func (p *LoopThreadPool) GetNextLoop() *EventLoop {
	if p.numThreads == 0 {
		return p.baseLoop
	}
	idx := p.cursor.Add(1) - 1
	return p.loops[int(idx)%len(p.loops)]
}

// GetAllLoops returns every loop the pool hands out: the base loop alone
// for a zero-size pool, or the full set of subordinate loops otherwise.
func (p *LoopThreadPool) GetAllLoops() []*EventLoop {
	return p.loops
}

// Started reports whether Start has been called.
func (p *LoopThreadPool) Started() bool {
	return p.started
}

// Name returns the pool's configured name.
func (p *LoopThreadPool) Name() string {
	return p.name
}

// Stop quits and joins every subordinate LoopThread. It is a no-op for a
// zero-size pool, since the base loop is owned by the pool's caller.
func (p *LoopThreadPool) Stop() {
	for _, lt := range p.threads {
		lt.Stop()
	}
}
