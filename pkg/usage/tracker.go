package usage

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const defaultFlushInterval = 10 * time.Second

// TokenRecorder receives token counts for rate-limit accounting.
// *ratelimit.SessionLimiter satisfies it.
type TokenRecorder interface {
	RecordTokens(sessionID string, tokens int)
}

type pendingUsage struct {
	tokens   int64
	requests int64
}

// Tracker accumulates per-session usage in memory and flushes it to the
// store on an interval. Stream translators call Track once per emitted
// fragment, so writes are batched rather than hitting SQLite per delta.
//
// The limiter, when set, sees token counts immediately so sliding-window
// decisions stay current between flushes.
type Tracker struct {
	store   *Store
	limiter TokenRecorder
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[string]*pendingUsage

	flushInterval time.Duration
	done          chan struct{}
	closeOnce     sync.Once
}

// NewTracker creates a tracker flushing into store. limiter may be nil.
func NewTracker(store *Store, limiter TokenRecorder) *Tracker {
	t := &Tracker{
		store:         store,
		limiter:       limiter,
		logger:        slog.Default().With("component", "usage.tracker"),
		pending:       make(map[string]*pendingUsage),
		flushInterval: defaultFlushInterval,
		done:          make(chan struct{}),
	}
	go t.flushLoop()
	return t
}

// Track records estimated tokens for a session.
func (t *Tracker) Track(sessionID string, tokens int) {
	if sessionID == "" || tokens <= 0 {
		return
	}

	if t.limiter != nil {
		t.limiter.RecordTokens(sessionID, tokens)
	}

	t.mu.Lock()
	t.pendingLocked(sessionID).tokens += int64(tokens)
	t.mu.Unlock()
}

// TrackRequest records one completed request for a session.
func (t *Tracker) TrackRequest(sessionID string) {
	if sessionID == "" {
		return
	}

	t.mu.Lock()
	t.pendingLocked(sessionID).requests++
	t.mu.Unlock()
}

func (t *Tracker) pendingLocked(sessionID string) *pendingUsage {
	p, ok := t.pending[sessionID]
	if !ok {
		p = &pendingUsage{}
		t.pending[sessionID] = p
	}
	return p
}

// Flush writes all pending counts to the store.
func (t *Tracker) Flush(ctx context.Context) error {
	t.mu.Lock()
	batch := t.pending
	t.pending = make(map[string]*pendingUsage)
	t.mu.Unlock()

	var firstErr error
	for sessionID, p := range batch {
		if err := t.store.Record(ctx, sessionID, p.tokens, p.requests); err != nil {
			t.logger.Error("failed to flush usage",
				"session_id", sessionID,
				"error", err,
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Close flushes remaining counts and stops the flush loop. Idempotent.
func (t *Tracker) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = t.Flush(ctx)
	})
	return err
}

func (t *Tracker) flushLoop() {
	ticker := time.NewTicker(t.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = t.Flush(ctx)
			cancel()
		case <-t.done:
			return
		}
	}
}
