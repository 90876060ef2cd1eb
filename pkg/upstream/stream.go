package upstream

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// sentinel is the literal payload signaling explicit stream termination.
const sentinel = "[DONE]"

// Frame is one decoded SSE record from the upstream byte stream.
type Frame struct {
	// Data is the record's payload with the "data:" prefix stripped.
	// Multi-line data fields are joined with newlines.
	Data []byte

	// Sentinel marks the literal [DONE] payload, distinct from ordinary
	// JSON payloads and from the byte stream simply ending.
	Sentinel bool
}

// FrameReader incrementally decodes SSE frames from an upstream response
// body. Records are separated by a blank line; partial frames spanning
// network reads are buffered, never dropped.
//
// Next returns io.EOF when the byte stream ends. Note the upstream quirk:
// on some paths the stream ends without ever sending [DONE], so EOF is a
// legitimate termination trigger, not an error.
type FrameReader struct {
	reader *bufio.Reader
	done   bool
}

// NewFrameReader wraps an upstream response body.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{reader: bufio.NewReader(r)}
}

// Next reads the next complete frame.
func (fr *FrameReader) Next() (*Frame, error) {
	if fr.done {
		return nil, io.EOF
	}

	var dataLines []string
	haveData := false

readLoop:
	for {
		line, err := fr.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, &StreamError{Message: "failed to read stream", Cause: err}
		}
		eof := err == io.EOF

		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")

		switch {
		case line == "":
			// Blank line terminates the current record.
			if haveData {
				if eof {
					fr.done = true
				}
				break readLoop
			}
		case strings.HasPrefix(line, ":"):
			// Comment line.
		default:
			if data, ok := strings.CutPrefix(line, "data:"); ok {
				dataLines = append(dataLines, strings.TrimPrefix(data, " "))
				haveData = true
			}
			// Other fields (event:, id:, retry:) are not used by the
			// upstream chunk grammar and are skipped.
		}

		if eof {
			// The final frame may arrive without its blank-line
			// terminator if the connection drops right after the payload.
			fr.done = true
			if haveData {
				break readLoop
			}
			return nil, io.EOF
		}
	}

	payload := strings.Join(dataLines, "\n")
	if strings.TrimSpace(payload) == sentinel {
		fr.done = true
		return &Frame{Sentinel: true}, nil
	}

	return &Frame{Data: bytes.TrimSpace([]byte(payload))}, nil
}
