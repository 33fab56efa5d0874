// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build darwin

package eventloop

import "golang.org/x/sys/unix"

// newWakeFd creates a non-blocking, close-on-exec self-pipe: kqueue has no
// eventfd equivalent, so a pipe stands in for the event-counter descriptor.
// Darwin's unix.Pipe has no flags argument, so CLOEXEC/NONBLOCK are applied
// with separate fcntl calls after creation, same as the source's own Darwin
// wakeup setup.
func newWakeFd() (readFd, writeFd int, err error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return -1, -1, err
	}

	for _, fd := range fds {
		unix.CloseOnExec(fd)
		if err := unix.SetNonblock(fd, true); err != nil {
			_ = unix.Close(fds[0])
			_ = unix.Close(fds[1])
			return -1, -1, err
		}
	}

	return fds[0], fds[1], nil
}

// writeWake writes a single byte to the pipe's write end.
func writeWake(writeFd int) error {
	_, err := unix.Write(writeFd, []byte{1})
	return err
}

// drainWake drains every byte available on the pipe's read end.
func drainWake(readFd int) error {
	var buf [64]byte
	for {
		_, err := unix.Read(readFd, buf[:])
		if err != nil {
			if err == unix.EAGAIN {
				return nil
			}
			return err
		}
	}
}

// closeWakeFd closes both pipe ends.
func closeWakeFd(readFd, writeFd int) error {
	_ = unix.Close(writeFd)
	return unix.Close(readFd)
}
