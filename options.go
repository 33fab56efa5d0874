// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventloop

// defaultPollTimeoutMs bounds worst-case wakeup latency if the wakeup
// mechanism is somehow lost; typical wakeups are sub-millisecond.
const defaultPollTimeoutMs = 10000

// loopOptions holds the resolved configuration for a new EventLoop.
type loopOptions struct {
	pollTimeoutMs int
	poller        Poller
}

// LoopOption configures an EventLoop at construction.
type LoopOption interface {
	applyLoop(*loopOptions) error
}

type loopOptionImpl struct {
	applyLoopFunc func(*loopOptions) error
}

func (l *loopOptionImpl) applyLoop(opts *loopOptions) error {
	return l.applyLoopFunc(opts)
}

// WithPollTimeout overrides the default 10-second Poller wait timeout.
func WithPollTimeout(ms int) LoopOption {
	return &loopOptionImpl{func(opts *loopOptions) error {
		opts.pollTimeoutMs = ms
		return nil
	}}
}

// WithPoller injects a specific Poller, bypassing USE_POLL/platform
// selection. Intended for tests that need a deterministic or fake back-end.
func WithPoller(p Poller) LoopOption {
	return &loopOptionImpl{func(opts *loopOptions) error {
		opts.poller = p
		return nil
	}}
}

func resolveLoopOptions(opts []LoopOption) (*loopOptions, error) {
	cfg := &loopOptions{pollTimeoutMs: defaultPollTimeoutMs}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyLoop(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
