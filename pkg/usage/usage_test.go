package usage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "usage.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreRecordAndTotals(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Record(ctx, "sess-1", 100, 1); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, "sess-1", 50, 2); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := store.Totals(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if got == nil {
		t.Fatal("Totals returned nil for a recorded session")
	}
	if got.TotalTokens != 150 {
		t.Errorf("TotalTokens = %d, want 150", got.TotalTokens)
	}
	if got.RequestCount != 3 {
		t.Errorf("RequestCount = %d, want 3", got.RequestCount)
	}
	if got.FirstSeen.IsZero() || got.LastSeen.Before(got.FirstSeen) {
		t.Errorf("timestamps inconsistent: first=%v last=%v", got.FirstSeen, got.LastSeen)
	}
}

func TestStoreTotalsUnknownSession(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Totals(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if got != nil {
		t.Errorf("Totals = %+v, want nil", got)
	}
}

func TestStoreRejectsEmptySession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Record(ctx, "", 1, 1); err == nil {
		t.Error("Record with empty session id succeeded")
	}
	if _, err := store.Totals(ctx, ""); err == nil {
		t.Error("Totals with empty session id succeeded")
	}
}

func TestStoreCleanup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Record(ctx, "sess-old", 10, 1); err != nil {
		t.Fatal(err)
	}

	// A cutoff in the future removes everything last seen before it.
	deleted, err := store.Cleanup(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	got, err := store.Totals(ctx, "sess-old")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("session survived cleanup: %+v", got)
	}

	// A cutoff in the past removes nothing.
	deleted, err = store.Cleanup(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0", deleted)
	}
}

func TestStoreCloseIdempotent(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "usage.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

// recordingLimiter captures RecordTokens calls.
type recordingLimiter struct {
	mu    sync.Mutex
	calls map[string]int
}

func (r *recordingLimiter) RecordTokens(sessionID string, tokens int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = make(map[string]int)
	}
	r.calls[sessionID] += tokens
}

func (r *recordingLimiter) total(sessionID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[sessionID]
}

func TestTrackerBatchesAndFlushes(t *testing.T) {
	store := newTestStore(t)
	limiter := &recordingLimiter{}
	tracker := NewTracker(store, limiter)
	defer tracker.Close()

	tracker.TrackRequest("sess-1")
	tracker.Track("sess-1", 10)
	tracker.Track("sess-1", 5)
	tracker.Track("sess-2", 7)

	// The limiter sees tokens immediately, before any flush.
	if got := limiter.total("sess-1"); got != 15 {
		t.Errorf("limiter sess-1 = %d, want 15", got)
	}

	ctx := context.Background()

	// Nothing persisted until Flush.
	got, err := store.Totals(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("usage persisted before flush: %+v", got)
	}

	if err := tracker.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got, err = store.Totals(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.TotalTokens != 15 || got.RequestCount != 1 {
		t.Errorf("sess-1 totals = %+v, want 15 tokens, 1 request", got)
	}

	got, err = store.Totals(ctx, "sess-2")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.TotalTokens != 7 {
		t.Errorf("sess-2 totals = %+v, want 7 tokens", got)
	}

	// Flush drains the batch; a second flush records nothing new.
	if err := tracker.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	got, err = store.Totals(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalTokens != 15 {
		t.Errorf("double flush changed totals: %d", got.TotalTokens)
	}
}

func TestTrackerIgnoresEmptyAndNonPositive(t *testing.T) {
	store := newTestStore(t)
	tracker := NewTracker(store, nil)
	defer tracker.Close()

	tracker.Track("", 10)
	tracker.Track("sess-1", 0)
	tracker.Track("sess-1", -3)
	tracker.TrackRequest("")

	ctx := context.Background()
	if err := tracker.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	got, err := store.Totals(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("non-positive tracking persisted: %+v", got)
	}
}

func TestTrackerCloseFlushes(t *testing.T) {
	store := newTestStore(t)
	tracker := NewTracker(store, nil)

	tracker.Track("sess-1", 12)
	tracker.TrackRequest("sess-1")

	if err := tracker.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := tracker.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	got, err := store.Totals(context.Background(), "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.TotalTokens != 12 || got.RequestCount != 1 {
		t.Errorf("totals after Close = %+v, want 12 tokens, 1 request", got)
	}
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	store := newTestStore(t)
	s := NewScheduler(store, SchedulerConfig{Schedule: "not a cron expr", Retention: time.Hour})

	if err := s.Start(context.Background()); err == nil {
		t.Error("Start with invalid schedule succeeded")
	}
}

func TestSchedulerEmptyScheduleIsNoop(t *testing.T) {
	store := newTestStore(t)
	s := NewScheduler(store, SchedulerConfig{Retention: time.Hour})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if next := s.NextRun(); next != nil {
		t.Errorf("NextRun = %v, want nil with no schedule", next)
	}
	s.Stop()
}

func TestSchedulerStartStop(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewScheduler(store, SchedulerConfig{Schedule: "0 3 * * *", Retention: 24 * time.Hour})
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if next := s.NextRun(); next == nil || !next.After(time.Now()) {
		t.Errorf("NextRun = %v, want a future time", next)
	}
	s.Stop()
	s.Stop()
}
