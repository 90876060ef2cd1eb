package ratelimit

import (
	"testing"
	"time"
)

func TestSlidingWindowSum(t *testing.T) {
	sw := NewSlidingWindow(time.Minute, time.Second)

	sw.Add(3)
	sw.Add(2)

	if got := sw.Sum(); got != 5 {
		t.Errorf("Sum() = %d, want 5", got)
	}

	sw.Reset()
	if got := sw.Sum(); got != 0 {
		t.Errorf("Sum() after Reset = %d, want 0", got)
	}
}

func TestSlidingWindowTimeUntilExpiry(t *testing.T) {
	sw := NewSlidingWindow(time.Minute, time.Second)

	if got := sw.TimeUntilExpiry(); got != 0 {
		t.Errorf("empty window TimeUntilExpiry() = %v, want 0", got)
	}

	sw.Add(1)
	got := sw.TimeUntilExpiry()
	if got <= 0 || got > time.Minute {
		t.Errorf("TimeUntilExpiry() = %v, want within (0, 1m]", got)
	}
}

func TestCheckRequestLimit(t *testing.T) {
	l := NewSessionLimiter(Config{RequestsPerMinute: 3})

	for i := 0; i < 3; i++ {
		if result := l.Check("sess"); result.Limited {
			t.Fatalf("request %d limited early: %s", i, result.Reason)
		}
	}

	result := l.Check("sess")
	if !result.Limited {
		t.Fatal("4th request not limited")
	}
	if result.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %v, want positive", result.RetryAfter)
	}

	// Other sessions have their own windows.
	if result := l.Check("other"); result.Limited {
		t.Errorf("fresh session limited: %s", result.Reason)
	}
}

func TestCheckTokenLimit(t *testing.T) {
	l := NewSessionLimiter(Config{TokensPerMinute: 100})

	if result := l.Check("sess"); result.Limited {
		t.Fatalf("limited before any tokens: %s", result.Reason)
	}

	l.RecordTokens("sess", 150)

	result := l.Check("sess")
	if !result.Limited {
		t.Fatal("session over token budget not limited")
	}
	if result.Reason != "tokens per minute limit exceeded" {
		t.Errorf("reason = %q", result.Reason)
	}
}

func TestCheckUnlimited(t *testing.T) {
	l := NewSessionLimiter(Config{})
	for i := 0; i < 1000; i++ {
		if result := l.Check("sess"); result.Limited {
			t.Fatal("unlimited config produced a rejection")
		}
	}
}

func TestPruneIdle(t *testing.T) {
	l := NewSessionLimiter(Config{RequestsPerMinute: 10})
	l.Check("a")
	l.Check("b")

	if pruned := l.PruneIdle(time.Hour); pruned != 0 {
		t.Errorf("PruneIdle(1h) = %d, want 0", pruned)
	}
	if pruned := l.PruneIdle(0); pruned != 2 {
		t.Errorf("PruneIdle(0) = %d, want 2", pruned)
	}
}
