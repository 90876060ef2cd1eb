// Package telemetry groups the gateway's observability concerns.
//
//   - logging: slog-based structured logging with token redaction
//   - metrics: Prometheus collectors for requests, streams, and the
//     upstream exchange
//
// Both subpackages are wired from cmd at startup; handlers and
// middleware receive the collector and never touch global state.
package telemetry
