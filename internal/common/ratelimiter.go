package common

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type RateLimiter struct {
	mu       sync.Mutex
	limiters []*rate.Limiter // One per restriction
	// Started when the remote side tells us we went over its limit
	stopwatch Stopwatch
}

func NewRateLimiter(restrictions []Restriction) *RateLimiter {
	rl := &RateLimiter{}
	for i := range restrictions {
		rl.limiters = append(rl.limiters, restrictions[i].Limiter())
	}
	return rl
}

// Decide if request is allowed.
// If the request is not allowed but vital, execution
// will block here until it is allowed or the context is done
func (rl *RateLimiter) Allowed(ctx context.Context, vital bool) bool {

	// Respect a rate limit reported by the server first
	if wait := rl.blocked(); wait > 0 {
		if !vital {
			log.Warn().Msg("Rejecting a non vital request because the server rate limited us")
			return false
		}
		log.Warn().Msg(fmt.Sprintf("Vital request delayed %.1f seconds by server rate limit", wait.Seconds()))
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
		}
	}

	if vital {
		for _, limiter := range rl.limiters {
			if err := limiter.Wait(ctx); err != nil {
				log.Warn().Err(err).Msg("Vital request could not wait for the rate limiter")
				return false
			}
		}
		return true
	}

	// Non vital requests only go through if every restriction allows them right now
	now := time.Now()
	reservations := make([]*rate.Reservation, 0, len(rl.limiters))
	for _, limiter := range rl.limiters {
		r := limiter.ReserveN(now, 1)
		if !r.OK() || r.DelayFrom(now) > 0 {
			r.CancelAt(now)
			for _, previous := range reservations {
				previous.CancelAt(now)
			}
			log.Warn().Msg("Rejecting a non vital request because restrictions do not allow it")
			return false
		}
		reservations = append(reservations, r)
	}
	return true
}

// ReceivedRateLimit blocks every request for the provided duration
func (rl *RateLimiter) ReceivedRateLimit(retryAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.stopwatch = NewStopwatch(retryAfter)
	rl.stopwatch.Start()
}

func (rl *RateLimiter) blocked() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.stopwatch.Remaining(time.Now())
}
