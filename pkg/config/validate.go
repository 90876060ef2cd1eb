package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate checks the configuration for values that would fail at
// runtime. It assumes defaults have already been applied.
func Validate(cfg *Config) error {
	var errs []string

	if _, _, err := net.SplitHostPort(cfg.Proxy.ListenAddress); err != nil {
		errs = append(errs, fmt.Sprintf("proxy.listen_address %q is not host:port: %v",
			cfg.Proxy.ListenAddress, err))
	}
	if cfg.Proxy.MaxBodyBytes < 0 {
		errs = append(errs, "proxy.max_body_bytes cannot be negative")
	}

	if err := validateURL("upstream.base_url", cfg.Upstream.BaseURL); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateURL("upstream.token_url", cfg.Upstream.TokenURL); err != nil {
		errs = append(errs, err.Error())
	}

	if cfg.Limits.RequestsPerMinute < 0 {
		errs = append(errs, "limits.requests_per_minute cannot be negative")
	}
	if cfg.Limits.TokensPerMinute < 0 {
		errs = append(errs, "limits.tokens_per_minute cannot be negative")
	}

	if cfg.Usage.Enabled && cfg.Usage.DBPath == "" {
		errs = append(errs, "usage.db_path is required when usage is enabled")
	}
	if cfg.Usage.RetentionDays < 0 {
		errs = append(errs, "usage.retention_days cannot be negative")
	}

	for alias, target := range cfg.Models.Aliases {
		if strings.TrimSpace(target) == "" {
			errs = append(errs, fmt.Sprintf("models.aliases[%q] maps to an empty model", alias))
		}
	}

	if !strings.HasPrefix(cfg.Telemetry.Metrics.Path, "/") {
		errs = append(errs, fmt.Sprintf("telemetry.metrics.path %q must start with /",
			cfg.Telemetry.Metrics.Path))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s %q is not a valid URL: %v", field, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s %q must use http or https", field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s %q has no host", field, raw)
	}
	return nil
}
