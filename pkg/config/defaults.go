package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default endpoints for the GitHub Copilot service.
const (
	DefaultUpstreamBaseURL = "https://api.githubcopilot.com"
	DefaultTokenURL        = "https://api.github.com/copilot_internal/v2/token"
)

// ApplyDefaults fills zero values with sensible defaults. It is called
// by LoadConfig before validation, and may be called directly on a
// zero Config for an embedded setup.
func ApplyDefaults(cfg *Config) {
	// Proxy
	if cfg.Proxy.ListenAddress == "" {
		cfg.Proxy.ListenAddress = "127.0.0.1:8069"
	}
	if cfg.Proxy.ReadTimeout == 0 {
		cfg.Proxy.ReadTimeout = 30 * time.Second
	}
	if cfg.Proxy.IdleTimeout == 0 {
		cfg.Proxy.IdleTimeout = 120 * time.Second
	}
	if cfg.Proxy.MaxHeaderBytes == 0 {
		cfg.Proxy.MaxHeaderBytes = 1 << 20 // 1 MB
	}
	if cfg.Proxy.MaxBodyBytes == 0 {
		cfg.Proxy.MaxBodyBytes = 10 << 20 // 10 MB
	}
	if cfg.Proxy.ShutdownTimeout == 0 {
		cfg.Proxy.ShutdownTimeout = 15 * time.Second
	}

	// Upstream
	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = DefaultUpstreamBaseURL
	}
	if cfg.Upstream.TokenURL == "" {
		cfg.Upstream.TokenURL = DefaultTokenURL
	}
	if cfg.Upstream.ConnectTimeout == 0 {
		cfg.Upstream.ConnectTimeout = 10 * time.Second
	}
	if cfg.Upstream.ResponseHeaderTimeout == 0 {
		cfg.Upstream.ResponseHeaderTimeout = 60 * time.Second
	}
	if cfg.Upstream.MaxIdleConns == 0 {
		cfg.Upstream.MaxIdleConns = 10
	}
	if cfg.Upstream.IdleConnTimeout == 0 {
		cfg.Upstream.IdleConnTimeout = 90 * time.Second
	}

	// Auth
	if cfg.Auth.CredentialsPath == "" {
		cfg.Auth.CredentialsPath = defaultCredentialsPath()
	}

	// Limits
	if cfg.Limits.RequestsPerMinute == 0 {
		cfg.Limits.RequestsPerMinute = 60
	}

	// Usage
	if cfg.Usage.DBPath == "" {
		cfg.Usage.DBPath = "usage.db"
	}
	if cfg.Usage.RetentionDays == 0 {
		cfg.Usage.RetentionDays = 30
	}

	// Telemetry
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = "/metrics"
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = "copilot"
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = "proxy"
	}
}

func defaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "credentials.json"
	}
	return filepath.Join(home, ".copilot-proxy", "credentials.json")
}
