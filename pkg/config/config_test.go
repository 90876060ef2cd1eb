package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
proxy:
  listen_address: "0.0.0.0:9000"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Proxy.ListenAddress != "0.0.0.0:9000" {
		t.Errorf("ListenAddress = %q, want 0.0.0.0:9000", cfg.Proxy.ListenAddress)
	}
	if cfg.Upstream.BaseURL != DefaultUpstreamBaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.Upstream.BaseURL)
	}
	if cfg.Proxy.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %v, want 30s", cfg.Proxy.ReadTimeout)
	}
	if cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Telemetry.Logging.Format)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "bad listen address",
			content: "proxy:\n  listen_address: \"not-an-address\"\n",
			wantErr: "listen_address",
		},
		{
			name:    "bad upstream url",
			content: "upstream:\n  base_url: \"ftp://example.com\"\n",
			wantErr: "base_url",
		},
		{
			name:    "empty alias target",
			content: "models:\n  aliases:\n    gpt-4: \"\"\n",
			wantErr: "aliases",
		},
		{
			name:    "negative requests per minute",
			content: "limits:\n  requests_per_minute: -5\n",
			wantErr: "requests_per_minute",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.content)
			_, err := LoadConfig(path)
			if err == nil {
				t.Fatal("LoadConfig() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvOverridesWin(t *testing.T) {
	path := writeConfigFile(t, `
proxy:
  listen_address: "127.0.0.1:8069"
limits:
  enabled: false
`)

	t.Setenv("COPILOT_PROXY_LISTEN_ADDRESS", "127.0.0.1:7070")
	t.Setenv("COPILOT_PROXY_LIMITS_ENABLED", "true")
	t.Setenv("COPILOT_PROXY_LIMITS_REQUESTS_PER_MINUTE", "120")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Proxy.ListenAddress != "127.0.0.1:7070" {
		t.Errorf("ListenAddress = %q, want env override", cfg.Proxy.ListenAddress)
	}
	if !cfg.Limits.Enabled {
		t.Error("Limits.Enabled = false, want env override true")
	}
	if cfg.Limits.RequestsPerMinute != 120 {
		t.Errorf("RequestsPerMinute = %d, want 120", cfg.Limits.RequestsPerMinute)
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig() error = %v", err)
	}
	if cfg.Proxy.ListenAddress == "" {
		t.Error("default ListenAddress is empty")
	}
}

func TestModelAliasesParsed(t *testing.T) {
	path := writeConfigFile(t, `
models:
  aliases:
    my-custom-model: "gpt-4o"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if got := cfg.Models.Aliases["my-custom-model"]; got != "gpt-4o" {
		t.Errorf("alias = %q, want gpt-4o", got)
	}
}
