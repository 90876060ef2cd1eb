// Package server wires the gateway handlers, middleware chain, and metric
// endpoints into one HTTP server with graceful shutdown.
package server
