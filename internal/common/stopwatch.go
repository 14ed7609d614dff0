package common

import (
	"time"
)

// This stopwatch keeps track of time. You can set a timeout for it,
// make it start counting time, and ask it if the timeout has been reached
type Stopwatch struct {
	Timeout   time.Duration
	startTime time.Time
	Running   bool
}

func NewStopwatch(timeout time.Duration) Stopwatch {
	return Stopwatch{Timeout: timeout}
}

func (s *Stopwatch) Start() {
	s.StartAt(time.Now())
}

func (s *Stopwatch) StartAt(t time.Time) {
	s.Running = true
	s.startTime = t
}

func (s *Stopwatch) Stop() {
	s.Running = false
}

// Stopped tells if the timeout has been reached, together with the
// time elapsed since it was reached.
// A stopwatch that is not running is always stopped.
// Note that if the duration is negative, the timeout still
// has not been reached
func (s *Stopwatch) Stopped() (bool, time.Duration) {
	return s.StoppedAt(time.Now())
}

func (s *Stopwatch) StoppedAt(now time.Time) (bool, time.Duration) {
	elapsed := now.Sub(s.startTime.Add(s.Timeout))
	if !s.Running {
		return true, elapsed
	}
	return elapsed >= 0, elapsed
}

// Remaining time until the timeout is reached, zero if already reached
func (s *Stopwatch) Remaining(now time.Time) time.Duration {
	if stopped, _ := s.StoppedAt(now); stopped {
		return 0
	}
	return s.startTime.Add(s.Timeout).Sub(now)
}
