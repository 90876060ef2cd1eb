package usage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Store persists per-session usage totals in SQLite. It uses WAL mode
// with a single writer connection and prepared statements for the hot
// paths, and checkpoints the WAL on an interval so the log stays small.
type Store struct {
	db                 *sql.DB
	dbPath             string
	checkpointInterval time.Duration
	done               chan struct{}
	mu                 sync.RWMutex
	closeOnce          sync.Once

	recordStmt  *sql.Stmt
	totalsStmt  *sql.Stmt
	cleanupStmt *sql.Stmt
}

// StoreConfig configures the usage store.
type StoreConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5 minutes
	CheckpointInterval time.Duration

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// SessionUsage is the persisted accounting row for one session.
type SessionUsage struct {
	SessionID    string
	TotalTokens  int64
	RequestCount int64
	FirstSeen    time.Time
	LastSeen     time.Time
}

// NewStore opens (or creates) the usage database with default settings.
func NewStore(dbPath string) (*Store, error) {
	return NewStoreWithConfig(StoreConfig{DBPath: dbPath})
}

// NewStoreWithConfig opens the usage database with custom configuration.
func NewStoreWithConfig(cfg StoreConfig) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.CheckpointInterval == 0 {
		cfg.CheckpointInterval = 5 * time.Minute
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &Store{
		db:                 db,
		dbPath:             cfg.DBPath,
		checkpointInterval: cfg.CheckpointInterval,
		done:               make(chan struct{}),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	go store.checkpointLoop()

	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS session_usage (
		session_id TEXT NOT NULL PRIMARY KEY,
		total_tokens INTEGER NOT NULL DEFAULT 0,
		request_count INTEGER NOT NULL DEFAULT 0,
		first_seen INTEGER NOT NULL,
		last_seen INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_usage_last_seen ON session_usage(last_seen);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) prepareStatements() error {
	var err error

	s.recordStmt, err = s.db.Prepare(`
		INSERT INTO session_usage (session_id, total_tokens, request_count, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			total_tokens = total_tokens + excluded.total_tokens,
			request_count = request_count + excluded.request_count,
			last_seen = excluded.last_seen
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare record statement: %w", err)
	}

	s.totalsStmt, err = s.db.Prepare(`
		SELECT session_id, total_tokens, request_count, first_seen, last_seen
		FROM session_usage
		WHERE session_id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare totals statement: %w", err)
	}

	s.cleanupStmt, err = s.db.Prepare(`
		DELETE FROM session_usage
		WHERE last_seen < ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare cleanup statement: %w", err)
	}

	return nil
}

// Record adds tokens and requests to a session's running totals,
// creating the row on first sight.
func (s *Store) Record(ctx context.Context, sessionID string, tokens int64, requests int64) error {
	if sessionID == "" {
		return fmt.Errorf("session id cannot be empty")
	}

	now := time.Now().Unix()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.recordStmt.ExecContext(ctx, sessionID, tokens, requests, now, now)
	if err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}

	return nil
}

// Totals returns the accumulated usage for a session, or nil when the
// session has never been seen.
func (s *Store) Totals(ctx context.Context, sessionID string) (*SessionUsage, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		id        string
		tokens    int64
		requests  int64
		firstSeen int64
		lastSeen  int64
	)

	err := s.totalsStmt.QueryRowContext(ctx, sessionID).Scan(
		&id, &tokens, &requests, &firstSeen, &lastSeen,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load usage: %w", err)
	}

	return &SessionUsage{
		SessionID:    id,
		TotalTokens:  tokens,
		RequestCount: requests,
		FirstSeen:    time.Unix(firstSeen, 0),
		LastSeen:     time.Unix(lastSeen, 0),
	}, nil
}

// Cleanup removes sessions not seen since the given time and reports
// how many rows were deleted.
func (s *Store) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.cleanupStmt.ExecContext(ctx, olderThan.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(deleted), nil
}

// Close releases the database. Close is idempotent.
func (s *Store) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		if s.recordStmt != nil {
			s.recordStmt.Close()
		}
		if s.totalsStmt != nil {
			s.totalsStmt.Close()
		}
		if s.cleanupStmt != nil {
			s.cleanupStmt.Close()
		}

		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

func (s *Store) checkpointLoop() {
	ticker := time.NewTicker(s.checkpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-s.done:
			return
		}
	}
}
