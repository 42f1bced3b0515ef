// Package events implements the Event Streamer (C5): it drains an
// engine's event channel onto an HTTP response as raw Server-Sent
// Events, one JSON-encoded models.Event per "data: " line (§4.5).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/made-ai/made/pkg/models"
)

// Writer wraps an http.ResponseWriter to frame models.Event values as
// SSE, using raw data: framing rather than gin's SSEvent helper so the
// wire format matches §4.5 exactly (no event: line, no id: line).
type Writer struct {
	w http.ResponseWriter
	f http.Flusher
}

// NewWriter prepares w for streaming: sets the SSE headers and fails
// fast if the underlying ResponseWriter cannot flush incrementally.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("events: response writer does not support flushing")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	return &Writer{w: w, f: flusher}, nil
}

// Send frames one event as "data: <json>\n\n" and flushes immediately,
// so the client observes each event as soon as it is produced (§4.5
// ordering guarantees rely on nothing being buffered on our side).
func (s *Writer) Send(e models.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	s.f.Flush()
	return nil
}

// Stream drains ch onto the wire in order, stopping early if the client
// disconnects (ctx.Done) or a write fails. It never closes ch; the
// engine owns that. Errors are logged, not returned — by the time Stream
// returns the HTTP handler has nothing left to do but return.
func Stream(w http.ResponseWriter, ctx context.Context, ch <-chan models.Event) {
	sw, err := NewWriter(w)
	if err != nil {
		slog.Error("events: cannot stream", "error", err)
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			if err := sw.Send(e); err != nil {
				slog.Warn("events: client disconnected mid-stream", "error", err)
				return
			}
		}
	}
}
