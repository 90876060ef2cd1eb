// Copilot Proxy is an OpenAI-compatible gateway in front of the GitHub
// Copilot chat API.
//
// It accepts chat completions, legacy text completions, and responses-API
// requests, translates them onto the single Copilot upstream endpoint, and
// translates the upstream stream back into the dialect each caller expects.
//
// Usage:
//
//	# Start with defaults (listens on 127.0.0.1:8069)
//	copilot-proxy run
//
//	# Start with a configuration file
//	copilot-proxy run --config /etc/copilot-proxy/config.yaml
//
//	# Validate a configuration file without starting
//	copilot-proxy validate --config config.yaml
//
//	# Show version information
//	copilot-proxy version
package main

func main() {
	Execute()
}
