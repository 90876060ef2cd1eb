// Package usage is the usage-accounting collaborator: it receives
// per-fragment token estimates from the stream translators, keeps a
// sliding-window view per session for rate decisions, and persists
// per-session totals to SQLite so accounting survives restarts. A cron
// schedule prunes rows past the retention horizon.
//
// Trackers must tolerate concurrent increments; every in-flight stream
// reports into the same tracker.
package usage
