package http

import "testing"

func TestRateLimiterAllowsWithinBudget(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < rateLimitRequests; i++ {
		if !rl.allow("192.0.2.1") {
			t.Fatalf("request %d rejected inside the budget", i+1)
		}
	}
	if rl.allow("192.0.2.1") {
		t.Fatal("request over budget was allowed")
	}
}

func TestRateLimiterIsPerClient(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < rateLimitRequests+1; i++ {
		rl.allow("192.0.2.1")
	}
	if !rl.allow("192.0.2.2") {
		t.Fatal("one exhausted client must not block another")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < rateLimitRequests+1; i++ {
		rl.allow("192.0.2.1")
	}

	// Age the window out instead of sleeping through it.
	rl.mu.Lock()
	rl.clients["192.0.2.1"].windowStart = rl.clients["192.0.2.1"].windowStart.Add(-2 * rateLimitWindow)
	rl.mu.Unlock()

	if !rl.allow("192.0.2.1") {
		t.Fatal("budget should reset after the window expires")
	}
}
