// Package metrics exposes the gateway's Prometheus instrumentation:
// inbound request counts and latencies, live stream gauges, outbound
// event counts per dialect, estimated token totals, and upstream call
// outcomes. All families live in one registry owned by the Collector
// and are served through the standard promhttp scrape handler.
package metrics
