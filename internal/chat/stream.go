package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

type chunkFrame struct {
	Chunk string `json:"chunk"`
}

type doneFrame struct {
	Done bool `json:"done"`
}

// Chunks splits a reply on single spaces; every chunk but the last keeps its
// trailing space so the client can concatenate them verbatim.
func Chunks(reply string) []string {
	words := strings.Split(reply, " ")
	out := make([]string, len(words))
	for i, w := range words {
		if i < len(words)-1 {
			w += " "
		}
		out[i] = w
	}
	return out
}

func writeFrame(w http.ResponseWriter, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("data: " + string(b) + "\n\n")); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// Stream writes reply as server-sent events, one chunk per delay, then a done
// frame. It returns ctx.Err() if the client goes away mid-stream.
func Stream(ctx context.Context, w http.ResponseWriter, reply string, delay time.Duration) error {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	var timer *time.Timer
	if delay > 0 {
		timer = time.NewTimer(delay)
		defer timer.Stop()
	}
	for i, chunk := range Chunks(reply) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeFrame(w, chunkFrame{Chunk: chunk}); err != nil {
			return err
		}
		if timer == nil {
			continue
		}
		if i > 0 {
			timer.Reset(delay)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return writeFrame(w, doneFrame{Done: true})
}
