// Package app runs the wave gesture pipeline: it owns the capture loop,
// reports start failures and delivers gestures to the configured sink.
package app

import (
	"context"
	"errors"
	"image"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/wavegest/internal/capture"
	"github.com/ayusman/wavegest/internal/config"
	"github.com/ayusman/wavegest/internal/detector"
	"github.com/ayusman/wavegest/internal/gesture"
)

// ErrNotRunning is returned by operations that need an active run.
var ErrNotRunning = errors.New("detection is not running")

// Status is a snapshot of the application state.
type Status struct {
	Running       bool                  `json:"running"`
	Enabled       bool                  `json:"enabled"`
	Session       string                `json:"session,omitempty"`
	StartedAt     time.Time             `json:"started_at,omitzero"`
	State         string                `json:"state"`
	Average       float64               `json:"average"`
	Stats         detector.Stats        `json:"stats"`
	Dropped       int                   `json:"dropped"`     // gestures dropped inside the lock window
	FrameDrops    uint64                `json:"frame_drops"` // debug frames overwritten before the stream read them
	LastError     *gesture.ErrorPayload `json:"last_error,omitempty"`
	LastGesture   *gesture.Event        `json:"last_gesture,omitempty"`
	LastGestureAt time.Time             `json:"last_gesture_at,omitzero"`
}

// App wires a camera to a detector and delivers notifications to a sink.
type App struct {
	camera   capture.Camera
	detector *detector.Detector
	frames   *frameBox
	now      func() time.Time

	mu            sync.RWMutex
	sink          gesture.Sink
	cfg           config.Config
	enabled       bool
	stopCh        chan struct{}
	doneCh        chan struct{}
	session       string
	startedAt     time.Time
	lockUntil     time.Time
	dropped       int
	lastGesture   *gesture.Event
	lastGestureAt time.Time
	lastError     *gesture.ErrorPayload

	// detMu serialises the capture loop with config changes and status reads.
	detMu sync.Mutex
}

// New creates an App. sink may be nil; the app still tracks the last gesture.
//
// A non-positive framerate falls back to config.DefaultFramerate.
func New(cfg config.Config, camera capture.Camera, sink gesture.Sink) *App {
	cfg.Normalize()
	if cfg.Capture.Framerate <= 0 {
		log.Printf("Invalid framerate %d, using %d", cfg.Capture.Framerate, config.DefaultFramerate)
		cfg.Capture.Framerate = config.DefaultFramerate
	}

	a := &App{
		camera:  camera,
		sink:    sink,
		frames:  newFrameBox(),
		now:     time.Now,
		cfg:     cfg,
		enabled: true,
	}
	a.detector = detector.New(cfg.Detection, a)

	return a
}

// Start opens the camera and begins the capture loop with a fresh session.
// Failures are both returned as *gesture.Error and delivered to the sink as
// an error notification. Starting while running reports AlreadyRunning and
// leaves the current run untouched.
func (a *App) Start() error {
	a.mu.Lock()

	if a.stopCh != nil {
		session := a.session
		a.mu.Unlock()
		return a.fail(session, gesture.NewError(gesture.CodeAlreadyRunning, nil))
	}

	session := uuid.NewString()

	a.camera.SetFPS(a.cfg.Capture.Framerate)
	if err := a.camera.Open(); err != nil {
		a.mu.Unlock()
		return a.fail(session, gesture.NewError(classify(err), err))
	}

	a.frames.reset()

	a.session = session
	a.startedAt = a.now()
	a.lockUntil = time.Time{}
	a.dropped = 0
	a.lastError = nil
	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	interval := time.Second / time.Duration(a.cfg.Capture.Framerate)
	go a.runPipeline(a.stopCh, a.doneCh, interval)

	a.mu.Unlock()

	log.Printf("Detection started (session %s, %d fps)", session, a.cfg.Capture.Framerate)
	return nil
}

// fail reports err to the sink and returns it.
func (a *App) fail(session string, err *gesture.Error) error {
	log.Printf("Start failed: %v", err)
	a.notify(gesture.Notification{Error: err.Payload(), Session: session})
	return err
}

// classify maps a camera open error onto a legacy error code.
func classify(err error) gesture.ErrorCode {
	switch {
	case errors.Is(err, capture.ErrUnsupportedSource):
		return gesture.CodeCapabilityUnsupported
	case errors.Is(err, capture.ErrPermissionDenied):
		return gesture.CodePermissionDenied
	case errors.Is(err, capture.ErrConstraintUnsatisfied):
		return gesture.CodeConstraintUnsupported
	case errors.Is(err, capture.ErrNoVideoTrack):
		return gesture.CodeNoMediaTrack
	default:
		return gesture.CodeDeviceUnavailable
	}
}

// Stop halts the capture loop and closes the camera. An in-flight frame is
// finished first. Stopping a stopped app is a no-op.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}

	close(stopCh)
	<-doneCh

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	log.Println("Detection stopped")
}

// stopRun stops the given run from inside the pipeline, unless a newer run
// replaced it.
func (a *App) stopRun(stopCh chan struct{}) {
	a.mu.RLock()
	current := a.stopCh == stopCh
	a.mu.RUnlock()
	if current {
		a.Stop()
	}
}

// IsRunning reports whether the capture loop is active.
func (a *App) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

// SetEnabled pauses or resumes detection without closing the camera.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.enabled != enabled {
		log.Printf("Detection enabled: %v", enabled)
	}
	a.enabled = enabled
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Config returns the active configuration.
func (a *App) Config() config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// SetDetection swaps the detection knobs. The change applies from the next
// frame; carried state is kept.
func (a *App) SetDetection(d config.Detection) error {
	cfg := a.Config()
	cfg.Detection = d
	cfg.Normalize()
	if err := cfg.Detection.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	a.cfg.Detection = cfg.Detection
	a.mu.Unlock()

	a.detMu.Lock()
	a.detector.SetConfig(cfg.Detection)
	a.detMu.Unlock()

	log.Printf("Detection config updated: sensitivity %d", cfg.Detection.Sensitivity)
	return nil
}

// SetSink replaces the notification sink.
func (a *App) SetSink(sink gesture.Sink) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sink = sink
}

// SetLock changes the lock window. Zero disables it.
func (a *App) SetLock(d time.Duration) {
	if d < 0 {
		d = 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg.Lock = d
}

// Status returns a snapshot of the application state.
func (a *App) Status() Status {
	a.mu.RLock()
	s := Status{
		Running:       a.stopCh != nil,
		Enabled:       a.enabled,
		Session:       a.session,
		StartedAt:     a.startedAt,
		Dropped:       a.dropped,
		LastGestureAt: a.lastGestureAt,
		FrameDrops:    a.frames.dropped(),
	}
	if a.lastError != nil {
		e := *a.lastError
		s.LastError = &e
	}
	if a.lastGesture != nil {
		ev := *a.lastGesture
		s.LastGesture = &ev
	}
	a.mu.RUnlock()

	a.detMu.Lock()
	s.State = a.detector.State().String()
	s.Average = a.detector.Average()
	s.Stats = a.detector.Stats()
	a.detMu.Unlock()

	return s
}

// LatestFrame returns the most recent annotated frame, published only in
// debug mode. The frame is shared and must not be modified.
func (a *App) LatestFrame() (*image.RGBA, uint64) {
	return a.frames.latest()
}

// WaitFrame blocks until an annotated frame newer than after is published.
// The frame is shared and must not be modified.
func (a *App) WaitFrame(ctx context.Context, after uint64) (*image.RGBA, uint64, error) {
	return a.frames.wait(ctx, after)
}

// OnGesture receives gestures from the detector. Gestures inside the lock
// window of a previous one are dropped.
func (a *App) OnGesture(ev gesture.Event) {
	now := a.now()

	a.mu.Lock()
	if a.cfg.Lock > 0 && now.Before(a.lockUntil) {
		a.dropped++
		debug := a.cfg.Debug
		a.mu.Unlock()
		if debug {
			log.Printf("Gesture %s dropped inside lock window", ev.Direction)
		}
		return
	}
	if a.cfg.Lock > 0 {
		a.lockUntil = now.Add(a.cfg.Lock)
	}
	last := ev
	a.lastGesture = &last
	a.lastGestureAt = now
	session := a.session
	a.mu.Unlock()

	a.notify(gesture.Notification{Gesture: &ev, Session: session})
}

// notify stamps and delivers n to the sink.
func (a *App) notify(n gesture.Notification) {
	if n.Time.IsZero() {
		n.Time = a.now()
	}

	a.mu.Lock()
	if n.IsError() {
		e := *n.Error
		a.lastError = &e
	}
	debug := a.cfg.Debug
	sink := a.sink
	a.mu.Unlock()

	if debug {
		if n.IsError() {
			log.Printf("Notify error %d (%s): %s", n.Error.Code, n.Error.Kind, n.Error.Message)
		} else {
			log.Printf("Notify gesture %s (magnitude %d)", n.Gesture.Direction, n.Gesture.Magnitude)
		}
	}

	if sink != nil {
		sink.Notify(n)
	}
}
