package ratelimit

import (
	"sync"
	"time"
)

// SessionLimiter tracks request and token rates per session id.
//
// Sessions are materialized lazily on first use. Both windows use
// one-second buckets over a one-minute span, so memory per session is
// bounded regardless of traffic.
type SessionLimiter struct {
	config Config

	mu       sync.Mutex
	sessions map[string]*sessionWindows
}

type sessionWindows struct {
	requests *SlidingWindow
	tokens   *SlidingWindow
	lastSeen time.Time
}

// NewSessionLimiter creates a limiter with the given per-session limits.
func NewSessionLimiter(config Config) *SessionLimiter {
	return &SessionLimiter{
		config:   config,
		sessions: make(map[string]*sessionWindows),
	}
}

// Check evaluates the session against its limits and, when allowed,
// records one request in the window.
func (l *SessionLimiter) Check(sessionID string) CheckResult {
	if l.config.RequestsPerMinute <= 0 && l.config.TokensPerMinute <= 0 {
		return CheckResult{}
	}

	s := l.session(sessionID)

	if l.config.TokensPerMinute > 0 && s.tokens.Sum() >= int64(l.config.TokensPerMinute) {
		return CheckResult{
			Limited:    true,
			Reason:     "tokens per minute limit exceeded",
			RetryAfter: s.tokens.TimeUntilExpiry(),
		}
	}

	var remaining int64
	if l.config.RequestsPerMinute > 0 {
		used := s.requests.Sum()
		if used >= int64(l.config.RequestsPerMinute) {
			return CheckResult{
				Limited:    true,
				Reason:     "requests per minute limit exceeded",
				RetryAfter: s.requests.TimeUntilExpiry(),
			}
		}
		s.requests.Add(1)
		remaining = int64(l.config.RequestsPerMinute) - used - 1
	}

	return CheckResult{Remaining: remaining}
}

// RecordTokens adds a token count to the session's token window.
func (l *SessionLimiter) RecordTokens(sessionID string, tokens int) {
	if l.config.TokensPerMinute <= 0 || tokens <= 0 {
		return
	}
	l.session(sessionID).tokens.Add(int64(tokens))
}

// session returns the windows for a session, creating them on first use.
func (l *SessionLimiter) session(sessionID string) *sessionWindows {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.sessions[sessionID]
	if !ok {
		s = &sessionWindows{
			requests: NewSlidingWindow(time.Minute, time.Second),
			tokens:   NewSlidingWindow(time.Minute, time.Second),
		}
		l.sessions[sessionID] = s
	}
	s.lastSeen = time.Now()
	return s
}

// PruneIdle drops sessions idle longer than the given age, returning how
// many were removed. Called periodically so abandoned sessions do not
// accumulate.
func (l *SessionLimiter) PruneIdle(age time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-age)
	pruned := 0
	for id, s := range l.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(l.sessions, id)
			pruned++
		}
	}
	return pruned
}
