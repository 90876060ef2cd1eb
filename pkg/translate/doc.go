// Package translate normalizes caller requests into the shape the Copilot
// upstream accepts: it canonicalizes heterogeneous tool definitions, repairs
// tool-call/tool-result pairing violations in message histories, and builds
// the outbound upstream request body with the documented defaults.
//
// Everything here runs before the upstream call; nothing in this package
// touches the network.
package translate
