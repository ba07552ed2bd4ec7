package server

import (
	"context"
	"fmt"
	"image"
	"log"
	"net/http"

	"github.com/ayusman/wavegest/internal/capture"
)

// FrameSource publishes annotated frames.
type FrameSource interface {
	WaitFrame(ctx context.Context, after uint64) (*image.RGBA, uint64, error)
}

// StreamHandler serves annotated frames as MJPEG.
type StreamHandler struct {
	source FrameSource
	encode func(*image.RGBA) ([]byte, error)
}

// NewStreamHandler creates a new StreamHandler for the given source.
func NewStreamHandler(source FrameSource) *StreamHandler {
	return &StreamHandler{source: source, encode: capture.EncodeJPEG}
}

// ServeHTTP streams a JPEG part for every new annotated frame until the
// client disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var seq uint64
	for {
		frame, next, err := h.source.WaitFrame(r.Context(), seq)
		if err != nil {
			return
		}
		seq = next

		buf, err := h.encode(frame)
		if err != nil {
			log.Printf("Failed to encode stream frame: %v", err)
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(buf))
		if _, err := w.Write(buf); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
