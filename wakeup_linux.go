// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build linux

package eventloop

import "golang.org/x/sys/unix"

// newWakeFd creates a non-blocking, close-on-exec eventfd counter. Its
// single fd serves as both read and write end.
func newWakeFd() (readFd, writeFd int, err error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return -1, -1, err
	}
	return fd, fd, nil
}

// writeWake increments the eventfd counter by one, waking any blocked
// epoll_wait on it.
func writeWake(writeFd int) error {
	var buf [8]byte
	buf[0] = 1
	_, err := unix.Write(writeFd, buf[:])
	return err
}

// drainWake consumes the eventfd counter. A short or zero-byte read (the
// counter is unset, e.g. a spurious wakeup) is a transient condition, not
// an error.
func drainWake(readFd int) error {
	var buf [8]byte
	_, err := unix.Read(readFd, buf[:])
	if err != nil && err != unix.EAGAIN {
		return err
	}
	return nil
}

// closeWakeFd closes the wakeup descriptor(s). writeFd is the same fd as
// readFd on Linux, so it is a no-op here; kept for API symmetry with Darwin.
func closeWakeFd(readFd, writeFd int) error {
	return unix.Close(readFd)
}
