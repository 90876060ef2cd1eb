package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/youssefadel94/github-copilot-proxy/pkg/auth"
	"github.com/youssefadel94/github-copilot-proxy/pkg/config"
	"github.com/youssefadel94/github-copilot-proxy/pkg/limits/ratelimit"
	"github.com/youssefadel94/github-copilot-proxy/pkg/models"
	"github.com/youssefadel94/github-copilot-proxy/pkg/proxy/handlers"
	"github.com/youssefadel94/github-copilot-proxy/pkg/server"
	"github.com/youssefadel94/github-copilot-proxy/pkg/telemetry/logging"
	"github.com/youssefadel94/github-copilot-proxy/pkg/telemetry/metrics"
	"github.com/youssefadel94/github-copilot-proxy/pkg/upstream"
	"github.com/youssefadel94/github-copilot-proxy/pkg/usage"
)

// limiterPruneInterval is how often idle session windows are dropped.
const limiterPruneInterval = 5 * time.Minute

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gateway server",
	Long: `Start the gateway server with the specified configuration.

Examples:
  # Start with defaults
  copilot-proxy run

  # Start with a config file
  copilot-proxy run --config /etc/copilot-proxy/config.yaml

  # Override the listen address
  copilot-proxy run --listen 0.0.0.0:8069

  # Validate configuration without starting
  copilot-proxy run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Proxy.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if _, err := logging.Setup(logging.Config{
		Level:        cfg.Telemetry.Logging.Level,
		Format:       cfg.Telemetry.Logging.Format,
		AddSource:    cfg.Telemetry.Logging.AddSource,
		RedactTokens: cfg.Telemetry.Logging.RedactTokens,
	}); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	if runFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Credential store and token exchange.
	credStore, err := auth.NewStore(cfg.Auth.CredentialsPath)
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	tokens := auth.NewManager(credStore, cfg.Upstream.TokenURL)

	if cfg.Auth.Watch {
		watcher, err := auth.NewWatcher(credStore, tokens)
		if err != nil {
			slog.Warn("credential watcher unavailable, token changes need a restart", "error", err)
		} else {
			go func() {
				if err := watcher.Watch(ctx); err != nil && ctx.Err() == nil {
					slog.Error("credential watcher stopped", "error", err)
				}
			}()
		}
	}

	// Metrics.
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(metrics.Config{
			Enabled:   true,
			Namespace: cfg.Telemetry.Metrics.Namespace,
			Subsystem: cfg.Telemetry.Metrics.Subsystem,
		}, nil)
		tokens.OnExchange = collector.Upstream.RecordTokenExchange
	}

	// Rate limiting.
	var limiter *ratelimit.SessionLimiter
	if cfg.Limits.Enabled {
		limiter = ratelimit.NewSessionLimiter(ratelimit.Config{
			RequestsPerMinute: int(cfg.Limits.RequestsPerMinute),
			TokensPerMinute:   int(cfg.Limits.TokensPerMinute),
		})
		go pruneLimiter(ctx, limiter)
	}

	// Usage accounting.
	var usageRecorder handlers.UsageRecorder
	if cfg.Usage.Enabled {
		usageStore, err := usage.NewStore(cfg.Usage.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open usage store: %w", err)
		}
		defer func() { _ = usageStore.Close() }()

		tracker := usage.NewTracker(usageStore, limiter)
		defer func() { _ = tracker.Close() }()
		usageRecorder = tracker

		scheduler := usage.NewScheduler(usageStore, usage.SchedulerConfig{
			Schedule:  cfg.Usage.PruneSchedule,
			Retention: time.Duration(cfg.Usage.RetentionDays) * 24 * time.Hour,
		})
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start usage pruning: %w", err)
		}
		defer scheduler.Stop()
	}

	// Upstream client and the gateway itself.
	client := upstream.NewClient(upstream.Config{
		BaseURL:               cfg.Upstream.BaseURL,
		ConnectTimeout:        cfg.Upstream.ConnectTimeout,
		ResponseHeaderTimeout: cfg.Upstream.ResponseHeaderTimeout,
		MaxIdleConns:          cfg.Upstream.MaxIdleConns,
		IdleConnTimeout:       cfg.Upstream.IdleConnTimeout,
	}, tokens)

	gateway := handlers.NewGateway(handlers.GatewayConfig{
		Upstream:     client,
		Resolver:     models.NewResolverWithOverrides(cfg.Models.Aliases),
		Usage:        usageRecorder,
		Metrics:      collector,
		MaxBodyBytes: cfg.Proxy.MaxBodyBytes,
	})

	srv := server.NewServer(&cfg.Proxy, server.Deps{
		Gateway:     gateway,
		Limiter:     limiter,
		Metrics:     collector,
		MetricsPath: cfg.Telemetry.Metrics.Path,
		Ready:       tokens,
	})

	slog.Info("gateway starting",
		"listen_address", cfg.Proxy.ListenAddress,
		"upstream", cfg.Upstream.BaseURL,
		"limits_enabled", cfg.Limits.Enabled,
		"usage_enabled", cfg.Usage.Enabled,
	)

	return srv.Start(ctx)
}

// loadConfig loads the file named by --config, or builds a default
// configuration (env overrides still apply) when no file was given.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		cfg, err := config.DefaultConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to build default config: %w", err)
		}
		config.SetConfig(cfg)
		return cfg, nil
	}

	if err := config.Initialize(cfgFile); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return config.GetConfig(), nil
}

func pruneLimiter(ctx context.Context, limiter *ratelimit.SessionLimiter) {
	ticker := time.NewTicker(limiterPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.PruneIdle(limiterPruneInterval); n > 0 {
				slog.Debug("pruned idle rate limit sessions", "sessions", n)
			}
		}
	}
}
