package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// ErrNoCredentials is returned when no GitHub token is available locally.
var ErrNoCredentials = errors.New("no GitHub token on file; run a device-flow login first")

// tokenExpirySlack refreshes the Copilot token this long before its actual
// expiry, so an in-flight request never races the deadline.
const tokenExpirySlack = 60 * time.Second

// copilotToken is a short-lived token exchanged from the GitHub token.
type copilotToken struct {
	token     string
	expiresAt time.Time
}

func (t *copilotToken) valid() bool {
	return t != nil && time.Now().Add(tokenExpirySlack).Before(t.expiresAt)
}

// Manager exchanges the stored GitHub OAuth token for short-lived Copilot
// API tokens and caches them until near expiry. It implements
// upstream.TokenSource.
type Manager struct {
	store       *Store
	exchangeURL string
	client      *http.Client

	// OnExchange, when set, is called with "success" or "failure" after
	// every exchange attempt. The metrics collector hooks in here.
	OnExchange func(outcome string)

	mu     sync.RWMutex
	cached *copilotToken
}

// NewManager creates a token manager over a credential store.
// exchangeURL is the endpoint that swaps a GitHub token for a Copilot
// token (overridden in tests).
func NewManager(store *Store, exchangeURL string) *Manager {
	return &Manager{
		store:       store,
		exchangeURL: exchangeURL,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

// Token returns a currently valid Copilot token, exchanging a fresh one if
// the cache is empty or near expiry.
func (m *Manager) Token(ctx context.Context) (string, error) {
	m.mu.RLock()
	if m.cached.valid() {
		token := m.cached.token
		m.mu.RUnlock()
		return token, nil
	}
	m.mu.RUnlock()

	return m.Refresh(ctx)
}

// Refresh forces a token exchange regardless of cache state. Concurrent
// callers are serialized; the second caller reuses the first one's result.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if m.cached.valid() {
		return m.cached.token, nil
	}

	githubToken := m.store.GitHubToken()
	if githubToken == "" {
		return "", ErrNoCredentials
	}

	token, err := m.exchange(ctx, githubToken)
	if m.OnExchange != nil {
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		m.OnExchange(outcome)
	}
	if err != nil {
		return "", err
	}

	m.cached = token
	slog.Debug("refreshed upstream token",
		"expires_at", token.expiresAt,
	)
	return token.token, nil
}

// Ready reports whether a usable upstream token can be produced. The
// readiness probe calls this.
func (m *Manager) Ready(ctx context.Context) error {
	_, err := m.Token(ctx)
	return err
}

// Invalidate drops the cached token. The watcher calls this when the
// credential file changes, so the next request exchanges against the new
// GitHub token.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.cached = nil
	m.mu.Unlock()
}

// exchange swaps the GitHub token for a Copilot token.
func (m *Manager) exchange(ctx context.Context, githubToken string) (*copilotToken, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.exchangeURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Authorization", "token "+githubToken)
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token exchange returned status %d: %s", resp.StatusCode, body)
	}

	var parsed struct {
		Token     string `json:"token"`
		ExpiresAt int64  `json:"expires_at"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if parsed.Token == "" {
		return nil, fmt.Errorf("token exchange returned an empty token")
	}

	return &copilotToken{
		token:     parsed.Token,
		expiresAt: time.Unix(parsed.ExpiresAt, 0),
	}, nil
}
