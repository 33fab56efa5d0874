// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package eventloop's doc comment lives in poller.go alongside the Poller
// interface, since that is where the platform back-end selection (the
// package's most consequential design decision) is documented.
//
// This file exists to hold the smaller "how the pieces fit together" notes
// that don't belong on any one type:
//
//   - An EventLoop is constructed on the goroutine that will run it and
//     may only run, or be mutated, from that goroutine thereafter (see
//     EventLoop.IsInLoopThread). Go has no thread creation primitive of its
//     own, so "one loop per thread" is realized as one loop per goroutine
//     permanently pinned to an OS thread via runtime.LockOSThread —
//     see Thread and LoopThread.
//   - A Channel is a thin, non-owning binding between an fd and a loop; it
//     never closes the fd it wraps. The enclosing connection object (out of
//     this package's scope) owns that lifetime.
//   - LoopThreadPool hands out subordinate loops round-robin to whatever
//     acceptor wraps a listening socket on the base loop; it has no load
//     awareness and makes none of its own I/O decisions.
package eventloop
