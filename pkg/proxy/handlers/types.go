package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/youssefadel94/github-copilot-proxy/pkg/models"
	"github.com/youssefadel94/github-copilot-proxy/pkg/proxy"
	"github.com/youssefadel94/github-copilot-proxy/pkg/stream"
	"github.com/youssefadel94/github-copilot-proxy/pkg/telemetry/metrics"
	"github.com/youssefadel94/github-copilot-proxy/pkg/translate"
	"github.com/youssefadel94/github-copilot-proxy/pkg/upstream"
)

// Upstream sends a translated request to the Copilot chat endpoint and
// returns the raw HTTP response. Satisfied by *upstream.Client.
type Upstream interface {
	Chat(ctx context.Context, req *translate.UpstreamRequest, meta upstream.RequestMeta) (*http.Response, error)
}

// UsageRecorder receives per-session usage increments. Satisfied by
// *usage.Tracker. Implementations must be safe for concurrent use.
type UsageRecorder interface {
	Track(sessionID string, tokens int)
	TrackRequest(sessionID string)
}

type nopUsage struct{}

func (nopUsage) Track(string, int) {}
func (nopUsage) TrackRequest(string) {}

// GatewayConfig configures a Gateway. Zero-value fields other than
// Upstream get sensible defaults.
type GatewayConfig struct {
	Upstream     Upstream
	Resolver     *models.Resolver
	Usage        UsageRecorder
	Metrics      *metrics.Collector
	MaxBodyBytes int64
}

// Gateway serves the OpenAI-compatible endpoints. Each handler parses the
// caller's request, resolves the model alias, translates the history for
// the Copilot upstream, and translates the upstream reply back into the
// caller's dialect.
type Gateway struct {
	upstream     Upstream
	resolver     *models.Resolver
	usage        UsageRecorder
	metrics      *metrics.Collector
	maxBodyBytes int64
}

// NewGateway builds a Gateway. Upstream is required; a nil Resolver falls
// back to the built-in alias table, a nil Usage becomes a no-op, and a nil
// Metrics disables instrumentation.
func NewGateway(cfg GatewayConfig) *Gateway {
	g := &Gateway{
		upstream:     cfg.Upstream,
		resolver:     cfg.Resolver,
		usage:        cfg.Usage,
		metrics:      cfg.Metrics,
		maxBodyBytes: cfg.MaxBodyBytes,
	}
	if g.resolver == nil {
		g.resolver = models.NewResolver()
	}
	if g.usage == nil {
		g.usage = nopUsage{}
	}
	if g.maxBodyBytes <= 0 {
		g.maxBodyBytes = proxy.DefaultMaxBodyBytes
	}
	return g
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// newID returns a prefixed identifier like "chatcmpl-7gK..." or "resp_x1...".
func newID(prefix string) string {
	return prefix + gonanoid.MustGenerate(idAlphabet, 24)
}

// statusClass buckets an HTTP status code for metric labels.
func statusClass(code int) string {
	switch {
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	errResp := proxy.HandleError(err)
	if werr := proxy.WriteErrorResponse(w, errResp); werr != nil {
		slog.ErrorContext(ctx, "failed to write error response", "error", werr)
	}
}

func (g *Gateway) recordRequest(endpoint, model, status string, start time.Time) {
	if g.metrics == nil {
		return
	}
	g.metrics.Request.RecordRequest(endpoint, model, status, time.Since(start))
}

func (g *Gateway) recordUpstream(statusCode int, headerLatency time.Duration) {
	if g.metrics == nil {
		return
	}
	g.metrics.Upstream.RecordUpstreamRequest(statusClass(statusCode), headerLatency)
}

func (g *Gateway) recordUpstreamError(headerLatency time.Duration) {
	if g.metrics == nil {
		return
	}
	g.metrics.Upstream.RecordUpstreamRequest("error", headerLatency)
}

func (g *Gateway) streamStarted() {
	if g.metrics == nil {
		return
	}
	g.metrics.Stream.StreamStarted()
}

func (g *Gateway) streamFinished() {
	if g.metrics == nil {
		return
	}
	g.metrics.Stream.StreamFinished()
}

// streamObserver hands the stream metrics to an emitter, or a no-op when
// the gateway runs without a collector.
func (g *Gateway) streamObserver() stream.Observer {
	if g.metrics == nil {
		return stream.NopObserver{}
	}
	return g.metrics.Stream
}
