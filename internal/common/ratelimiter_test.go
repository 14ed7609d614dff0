package common

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterRejectsNonVitalOverBurst(t *testing.T) {
	rl := NewRateLimiter([]Restriction{{Requests: 2, Duration: time.Hour}})
	ctx := context.Background()
	if !rl.Allowed(ctx, false) || !rl.Allowed(ctx, false) {
		t.Fatalf("expected the first two requests to be allowed")
	}
	if rl.Allowed(ctx, false) {
		t.Fatalf("expected the third non vital request to be rejected")
	}
}

func TestRateLimiterVitalRespectsContext(t *testing.T) {
	rl := NewRateLimiter([]Restriction{{Requests: 1, Duration: time.Hour}})
	if !rl.Allowed(context.Background(), true) {
		t.Fatalf("expected the first vital request to be allowed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if rl.Allowed(ctx, true) {
		t.Fatalf("expected the vital request to give up when the context expires")
	}
}

func TestRateLimiterServerLimit(t *testing.T) {
	rl := NewRateLimiter(nil)
	rl.ReceivedRateLimit(time.Hour)
	if rl.Allowed(context.Background(), false) {
		t.Fatalf("expected non vital requests to be rejected while rate limited")
	}
}
