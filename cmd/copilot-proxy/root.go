package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "copilot-proxy",
	Short: "OpenAI-compatible gateway for the GitHub Copilot chat API",
	Long: `Copilot Proxy accepts OpenAI-compatible requests and forwards them to
the GitHub Copilot chat API, re-synthesizing streamed replies into the
grammar each endpoint promises:

  - /v1/chat/completions  chat.completion.chunk frames closed by [DONE]
  - /v1/completions       legacy text completions over the same grammar
  - /v1/responses         named responses-API events with a closing quartet

Authentication uses the GitHub OAuth token on disk, exchanged for
short-lived Copilot tokens and refreshed transparently.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when omitted)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
