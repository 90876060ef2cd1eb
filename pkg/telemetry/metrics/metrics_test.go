package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	return NewCollector(Config{Enabled: true}, prometheus.NewRegistry())
}

func TestRecordRequest(t *testing.T) {
	c := newTestCollector(t)

	c.Request.RecordRequest("chat_completions", "gpt-4o", "success", 250*time.Millisecond)
	c.Request.RecordRequest("chat_completions", "gpt-4o", "success", 100*time.Millisecond)
	c.Request.RecordRequest("responses", "o3-mini", "error", time.Second)

	got := testutil.ToFloat64(c.Request.requestsTotal.WithLabelValues("chat_completions", "gpt-4o", "success"))
	if got != 2 {
		t.Errorf("requests_total = %v, want 2", got)
	}
	got = testutil.ToFloat64(c.Request.requestsTotal.WithLabelValues("responses", "o3-mini", "error"))
	if got != 1 {
		t.Errorf("requests_total = %v, want 1", got)
	}
}

func TestStreamGauge(t *testing.T) {
	c := newTestCollector(t)

	c.Stream.StreamStarted()
	c.Stream.StreamStarted()
	c.Stream.StreamFinished()

	if got := testutil.ToFloat64(c.Stream.activeStreams); got != 1 {
		t.Errorf("active_streams = %v, want 1", got)
	}
}

func TestEstimatedTokensIgnoresNonPositive(t *testing.T) {
	c := newTestCollector(t)

	c.Stream.RecordEstimatedTokens("gpt-4o", 12)
	c.Stream.RecordEstimatedTokens("gpt-4o", 0)
	c.Stream.RecordEstimatedTokens("gpt-4o", -3)

	if got := testutil.ToFloat64(c.Stream.estimatedTokens.WithLabelValues("gpt-4o")); got != 12 {
		t.Errorf("estimated_tokens_total = %v, want 12", got)
	}
}

func TestHandlerServesRegisteredMetrics(t *testing.T) {
	c := newTestCollector(t)
	c.Upstream.RecordTokenExchange("success")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "copilot_proxy_token_exchanges_total") {
		t.Errorf("scrape output missing token_exchanges_total:\n%s", rec.Body.String())
	}
}
