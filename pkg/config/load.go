package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults,
// and validates the result. Environment variables are not consulted;
// use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// then applies environment variable overrides. Variables follow the
// convention COPILOT_PROXY_SECTION_FIELD and always win over the file.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a validated configuration built entirely from
// defaults and environment overrides, for running without a file.
func DefaultConfig() (*Config, error) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	// Proxy
	if val := os.Getenv("COPILOT_PROXY_LISTEN_ADDRESS"); val != "" {
		cfg.Proxy.ListenAddress = val
	}
	if val := os.Getenv("COPILOT_PROXY_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Proxy.ReadTimeout = d
		}
	}
	if val := os.Getenv("COPILOT_PROXY_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Proxy.WriteTimeout = d
		}
	}
	if val := os.Getenv("COPILOT_PROXY_MAX_BODY_BYTES"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Proxy.MaxBodyBytes = i
		}
	}

	// Upstream
	if val := os.Getenv("COPILOT_PROXY_UPSTREAM_BASE_URL"); val != "" {
		cfg.Upstream.BaseURL = val
	}
	if val := os.Getenv("COPILOT_PROXY_UPSTREAM_TOKEN_URL"); val != "" {
		cfg.Upstream.TokenURL = val
	}
	if val := os.Getenv("COPILOT_PROXY_UPSTREAM_CONNECT_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Upstream.ConnectTimeout = d
		}
	}

	// Auth
	if val := os.Getenv("COPILOT_PROXY_CREDENTIALS_PATH"); val != "" {
		cfg.Auth.CredentialsPath = val
	}
	if val := os.Getenv("COPILOT_PROXY_AUTH_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Auth.Watch = b
		}
	}

	// Limits
	if val := os.Getenv("COPILOT_PROXY_LIMITS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Limits.Enabled = b
		}
	}
	if val := os.Getenv("COPILOT_PROXY_LIMITS_REQUESTS_PER_MINUTE"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Limits.RequestsPerMinute = i
		}
	}
	if val := os.Getenv("COPILOT_PROXY_LIMITS_TOKENS_PER_MINUTE"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Limits.TokensPerMinute = i
		}
	}

	// Usage
	if val := os.Getenv("COPILOT_PROXY_USAGE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Usage.Enabled = b
		}
	}
	if val := os.Getenv("COPILOT_PROXY_USAGE_DB_PATH"); val != "" {
		cfg.Usage.DBPath = val
	}
	if val := os.Getenv("COPILOT_PROXY_USAGE_PRUNE_SCHEDULE"); val != "" {
		cfg.Usage.PruneSchedule = val
	}

	// Telemetry
	if val := os.Getenv("COPILOT_PROXY_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("COPILOT_PROXY_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("COPILOT_PROXY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("COPILOT_PROXY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
}
