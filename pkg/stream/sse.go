package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// sseWriter writes outbound SSE frames. Every write flushes immediately:
// synthesized events must reach the caller in arrival order with no
// batching, or perceived latency suffers.
type sseWriter struct {
	w       io.Writer
	flusher http.Flusher
}

func newSSEWriter(w io.Writer) *sseWriter {
	sw := &sseWriter{w: w}
	if f, ok := w.(http.Flusher); ok {
		sw.flusher = f
	}
	return sw
}

// writeData writes an unnamed "data: <json>" frame.
func (s *sseWriter) writeData(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE frame: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write SSE frame: %w", err)
	}
	s.flush()
	return nil
}

// writeEvent writes a named "event: <name>" frame.
func (s *sseWriter) writeEvent(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE event %q: %w", name, err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return fmt.Errorf("failed to write SSE event %q: %w", name, err)
	}
	s.flush()
	return nil
}

// writeDone writes the literal terminal marker for the chunk grammar.
func (s *sseWriter) writeDone() error {
	if _, err := fmt.Fprint(s.w, "data: [DONE]\n\n"); err != nil {
		return fmt.Errorf("failed to write SSE done marker: %w", err)
	}
	s.flush()
	return nil
}

func (s *sseWriter) flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}
