// Package models maps caller-supplied model identifiers to identifiers the
// Copilot upstream accepts, and exposes the static model catalog served on
// the /v1/models endpoint.
//
// The alias table is built once at process start and is immutable afterwards,
// so concurrent lookups need no synchronization.
package models
