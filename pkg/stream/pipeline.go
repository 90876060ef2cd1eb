package stream

import (
	"context"
	"io"
	"log/slog"

	"github.com/youssefadel94/github-copilot-proxy/pkg/upstream"
)

// Run consumes the upstream response body and drives the emitter until the
// stream terminates.
//
// Termination is reached by either of two triggers, whichever fires first:
// the [DONE] sentinel, or the upstream byte stream ending without ever
// sending one. The latter is an observed upstream quirk on the responses
// path, tolerated rather than treated as an error; the emitter's Finish
// latch keeps the closing sequence exactly-once even if both triggers fire.
//
// A frame that fails to parse produces one inline error event and the
// stream continues. A transport failure produces one inline error event
// and the stream stops without the closing sequence.
func Run(ctx context.Context, body io.Reader, em Emitter, st *State) error {
	if err := em.Start(); err != nil {
		return err
	}

	frames := upstream.NewFrameReader(body)

	for {
		select {
		case <-ctx.Done():
			// Caller disconnected. The HTTP request context aborts the
			// upstream connection; nothing more to write.
			return ctx.Err()
		default:
		}

		frame, err := frames.Next()
		if err == io.EOF {
			// Upstream closed without a sentinel.
			return em.Finish()
		}
		if err != nil {
			slog.Warn("upstream stream transport error",
				"response_id", st.ResponseID,
				"chunks", st.ChunkCount,
				"error", err,
			)
			if wErr := em.Fault(err); wErr != nil {
				return wErr
			}
			return err
		}

		if frame.Sentinel {
			return em.Finish()
		}

		if len(frame.Data) == 0 {
			continue
		}

		ev, err := decodeFrame(frame.Data)
		if err != nil {
			parseErr := &upstream.FrameParseError{
				RawFrame: string(frame.Data),
				Cause:    err,
			}
			slog.Warn("skipping malformed upstream frame",
				"response_id", st.ResponseID,
				"error", parseErr,
			)
			if wErr := em.Fault(parseErr); wErr != nil {
				return wErr
			}
			continue
		}

		st.ChunkCount++
		if err := em.Delta(ev); err != nil {
			return err
		}
	}
}
