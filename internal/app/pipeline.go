package app

import (
	"errors"
	"image"
	"log"
	"time"

	"github.com/ayusman/wavegest/internal/capture"
	"github.com/ayusman/wavegest/internal/gesture"
)

// runPipeline is the capture loop. Each tick reads the newest frame and feeds
// it to the detector; a slow tick delays the next one and no frames queue up.
//
// Pipeline logic:
// 1. Start from a fresh baseline; skip ticks while detection is disabled; re-enabling starts a new baseline
// 2. Read a frame; read errors are logged once per distinct error and skipped
// 3. A frame size the camera cannot produce ends the run with an error notification
// 4. Run the detector, which may emit one gesture through OnGesture
// 5. In debug mode publish the annotated frame for the stream
func (a *App) runPipeline(stopCh, doneCh chan struct{}, interval time.Duration) {
	defer close(doneCh)

	a.detMu.Lock()
	a.detector.Reset()
	a.detMu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	paused := false
	var lastErr string

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}

		if !a.IsEnabled() {
			paused = true
			continue
		}
		if paused {
			paused = false
			a.detMu.Lock()
			a.detector.Reset()
			a.detMu.Unlock()
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			if errors.Is(err, capture.ErrConstraintUnsatisfied) {
				a.mu.RLock()
				session := a.session
				a.mu.RUnlock()
				a.notify(gesture.Notification{
					Error:   gesture.NewError(gesture.CodeConstraintUnsupported, err).Payload(),
					Session: session,
				})
				go a.stopRun(stopCh)
				return
			}
			if err.Error() != lastErr {
				log.Printf("Error reading frame: %v", err)
				lastErr = err.Error()
			}
			continue
		}
		lastErr = ""

		a.processFrame(frame)
	}
}

// processFrame runs one frame through the detector.
func (a *App) processFrame(frame *image.RGBA) {
	a.detMu.Lock()
	a.detector.OnFrame(frame)
	annotated := a.detector.Annotated()
	a.detMu.Unlock()

	a.mu.RLock()
	debug := a.cfg.Debug
	a.mu.RUnlock()

	if debug && annotated != nil {
		a.frames.publish(annotated)
	}
}
