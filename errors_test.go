// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvariantViolationPanicsWithMessage(t *testing.T) {
	assert.PanicsWithValue(t, "eventloop: "+errNotLoopThreadMsg, func() {
		invariantViolation(errNotLoopThreadMsg)
	})
}

func TestErrPollerClosedIsDistinctSentinel(t *testing.T) {
	assert.EqualError(t, ErrPollerClosed, "eventloop: poller closed")
}
