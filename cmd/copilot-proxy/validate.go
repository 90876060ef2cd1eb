package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/youssefadel94/github-copilot-proxy/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load and validate a configuration file, applying defaults and
environment overrides the same way run does, then print the effective
settings.

Examples:
  copilot-proxy validate --config config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile == "" {
		cfg, err = config.DefaultConfig()
	} else {
		cfg, err = config.LoadConfigWithEnvOverrides(cfgFile)
	}
	if err != nil {
		return err
	}

	fmt.Println("configuration valid")
	fmt.Printf("  listen address:  %s\n", cfg.Proxy.ListenAddress)
	fmt.Printf("  upstream:        %s\n", cfg.Upstream.BaseURL)
	fmt.Printf("  credentials:     %s\n", cfg.Auth.CredentialsPath)
	fmt.Printf("  rate limits:     enabled=%v rpm=%d tpm=%d\n",
		cfg.Limits.Enabled, cfg.Limits.RequestsPerMinute, cfg.Limits.TokensPerMinute)
	fmt.Printf("  usage tracking:  enabled=%v db=%s\n", cfg.Usage.Enabled, cfg.Usage.DBPath)
	fmt.Printf("  metrics:         enabled=%v path=%s\n",
		cfg.Telemetry.Metrics.Enabled, cfg.Telemetry.Metrics.Path)
	if len(cfg.Models.Aliases) > 0 {
		fmt.Printf("  model aliases:   %d configured\n", len(cfg.Models.Aliases))
	}
	return nil
}
