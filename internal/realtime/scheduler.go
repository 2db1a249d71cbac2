package realtime

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// retrySchedule produces the reconnect delay sequence for one channel:
// base delay grown by the multiplier on every attempt, capped at the max
// delay, with a hard attempt budget. Not safe for concurrent use; the
// owning Channel serializes access.
type retrySchedule struct {
	bo          *backoff.ExponentialBackOff
	maxAttempts int
	attempts    int
}

func newRetrySchedule(cfg ChannelConfig) *retrySchedule {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.ReconnectBaseDelay
	bo.RandomizationFactor = 0 // deterministic: the UI relies on predictable retry timing
	bo.Multiplier = cfg.ReconnectMultiplier
	bo.MaxInterval = cfg.ReconnectMaxDelay
	bo.MaxElapsedTime = 0 // budget is attempt-counted, not wall-clock
	bo.Reset()
	return &retrySchedule{
		bo:          bo,
		maxAttempts: cfg.ReconnectMaxAttempts,
	}
}

// Next consumes one attempt and returns the delay before it. Returns
// false once the budget is exhausted; no further retries may be
// scheduled until Reset.
func (s *retrySchedule) Next() (time.Duration, bool) {
	if s.attempts >= s.maxAttempts {
		return 0, false
	}
	s.attempts++
	d := s.bo.NextBackOff()
	if d == backoff.Stop {
		return 0, false
	}
	return d, true
}

// Attempts returns the number of attempts consumed since the last Reset.
func (s *retrySchedule) Attempts() int {
	return s.attempts
}

// Reset restores the attempt budget and the initial delay. Called on
// every successful open and on ReconnectAll/Initialize.
func (s *retrySchedule) Reset() {
	s.attempts = 0
	s.bo.Reset()
}
