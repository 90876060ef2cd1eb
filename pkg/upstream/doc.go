// Package upstream talks to the Copilot chat API: it owns the pooled HTTP
// client, the identity headers every upstream call must carry, and the
// incremental SSE frame reader applied to streaming response bodies.
//
// The package is deliberately not retry-aware. A failed upstream call is
// surfaced as a typed error and retried (or not) by whoever called the
// translator, never in here.
package upstream
