// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build linux

package eventloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWakeFdRoundTrip(t *testing.T) {
	readFd, writeFd, err := newWakeFd()
	require.NoError(t, err)
	defer closeWakeFd(readFd, writeFd)

	assert.Equal(t, readFd, writeFd, "eventfd serves as both ends on Linux")

	require.NoError(t, drainWake(readFd), "draining an unset counter is not an error")

	require.NoError(t, writeWake(writeFd))
	require.NoError(t, writeWake(writeFd))
	require.NoError(t, drainWake(readFd))

	require.NoError(t, drainWake(readFd), "a second drain with nothing pending still succeeds")
}
