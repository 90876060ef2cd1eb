package config

import (
	"time"
)

// Config is the root configuration for the gateway.
type Config struct {
	// Proxy configures the inbound HTTP server.
	Proxy ProxyConfig `yaml:"proxy"`

	// Upstream configures the Copilot API client.
	Upstream UpstreamConfig `yaml:"upstream"`

	// Auth configures GitHub credential storage and token exchange.
	Auth AuthConfig `yaml:"auth"`

	// Limits configures per-session rate limiting.
	Limits LimitsConfig `yaml:"limits"`

	// Usage configures persistent usage accounting.
	Usage UsageConfig `yaml:"usage"`

	// Models overrides or extends the built-in alias table.
	Models ModelsConfig `yaml:"models"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ProxyConfig configures the inbound HTTP server.
type ProxyConfig struct {
	// ListenAddress is the host:port to bind, e.g. "127.0.0.1:8069".
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout bounds reading the request headers and body.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds writing the response. Zero disables it;
	// streamed responses can legitimately run for minutes.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout bounds keep-alive connections.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// MaxHeaderBytes limits request header size.
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits request body size.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// UpstreamConfig configures the Copilot API client.
type UpstreamConfig struct {
	// BaseURL is the Copilot completions API root.
	BaseURL string `yaml:"base_url"`

	// TokenURL is the GitHub endpoint that exchanges an OAuth token
	// for a short-lived Copilot token.
	TokenURL string `yaml:"token_url"`

	// ConnectTimeout bounds TCP/TLS establishment.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// ResponseHeaderTimeout bounds the wait for first response headers.
	ResponseHeaderTimeout time.Duration `yaml:"response_header_timeout"`

	// MaxIdleConns caps pooled connections.
	MaxIdleConns int `yaml:"max_idle_conns"`

	// IdleConnTimeout evicts idle pooled connections.
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// AuthConfig configures credential storage.
type AuthConfig struct {
	// CredentialsPath is the JSON file holding the GitHub OAuth token.
	CredentialsPath string `yaml:"credentials_path"`

	// Watch reloads credentials when the file changes on disk.
	Watch bool `yaml:"watch"`
}

// LimitsConfig configures per-session rate limiting.
type LimitsConfig struct {
	// Enabled turns the limiter on.
	Enabled bool `yaml:"enabled"`

	// RequestsPerMinute caps requests per session. Zero means no cap.
	RequestsPerMinute int64 `yaml:"requests_per_minute"`

	// TokensPerMinute caps estimated tokens per session. Zero means no cap.
	TokensPerMinute int64 `yaml:"tokens_per_minute"`
}

// UsageConfig configures persistent usage accounting.
type UsageConfig struct {
	// Enabled turns usage persistence on.
	Enabled bool `yaml:"enabled"`

	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path"`

	// PruneSchedule is a cron expression for pruning stale sessions.
	// Empty disables pruning.
	PruneSchedule string `yaml:"prune_schedule"`

	// RetentionDays is how long a session row outlives its last request.
	RetentionDays int `yaml:"retention_days"`
}

// ModelsConfig overrides the built-in alias table.
type ModelsConfig struct {
	// Aliases maps requested model names to upstream names. Entries
	// here shadow the built-in table.
	Aliases map[string]string `yaml:"aliases"`
}

// TelemetryConfig configures logging and metrics.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is "json" or "text".
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`

	// RedactTokens scrubs credentials from log values.
	RedactTokens bool `yaml:"redact_tokens"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled mounts the scrape endpoint.
	Enabled bool `yaml:"enabled"`

	// Path is the scrape path, default "/metrics".
	Path string `yaml:"path"`

	// Namespace prefixes metric names.
	Namespace string `yaml:"namespace"`

	// Subsystem is the second metric name segment.
	Subsystem string `yaml:"subsystem"`
}
