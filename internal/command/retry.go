package command

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

// schedule is a backoff.BackOff over a fixed list of delays. It stops once
// every configured retry is used.
type schedule struct {
	delays []time.Duration
	next   int
}

func newSchedule(retries []int) *schedule {
	s := &schedule{delays: make([]time.Duration, len(retries))}
	for i, ms := range retries {
		s.delays[i] = time.Duration(ms) * time.Millisecond
	}
	return s
}

func (s *schedule) NextBackOff() time.Duration {
	if s.next >= len(s.delays) {
		return backoff.Stop
	}
	d := s.delays[s.next]
	s.next++
	return d
}

func (s *schedule) Reset() { s.next = 0 }

// attempts is the total number of tries for the schedule.
func (s *schedule) attempts() uint { return uint(len(s.delays) + 1) } //nolint:gosec // len is never negative
