// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventloop

import (
	"runtime"
	"sync"

	"golang.org/x/sys/unix"
)

// currentThread caches the calling goroutine's OS thread id, keyed by the
// goroutine's own id. Go gives no stable way to attach a value to "the
// current OS thread" the way a C thread-local can; a pinned goroutine is the
// closest analogue, so the cache is keyed on the goroutine id captured via
// the runtime.Stack trick below. 0 is the uncached sentinel, matching the
// source's t_cachedTid convention.
var currentThread struct {
	mu    sync.Mutex
	cache map[uint64]int
}

func init() {
	currentThread.cache = make(map[uint64]int)
}

// cachedTid returns the OS thread id of the calling goroutine, populating
// the cache on first use. The goroutine must not migrate threads between
// calls for the cached value to remain meaningful; callers that need this
// guarantee pin with runtime.LockOSThread (see thread.go, loopthread.go).
func cachedTid() int {
	gid := goroutineID()

	currentThread.mu.Lock()
	tid, ok := currentThread.cache[gid]
	currentThread.mu.Unlock()
	if ok && tid != 0 {
		return tid
	}

	tid = unix.Gettid()

	currentThread.mu.Lock()
	currentThread.cache[gid] = tid
	currentThread.mu.Unlock()

	return tid
}

// goroutineID extracts the numeric goroutine id from the "goroutine N [...]"
// header that runtime.Stack prints. There is no supported API for this; it
// is only used as a cache key, never exposed, and never compared across
// processes.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
