// Package config defines the gateway's YAML configuration: the inbound
// proxy server, the Copilot upstream client, credential storage,
// per-session limits, usage accounting, model aliases, and telemetry.
//
// Loading order is file, then defaults for anything unset, then
// COPILOT_PROXY_* environment overrides, then validation. A config
// file is optional; DefaultConfig builds a runnable configuration from
// defaults and environment alone.
package config
