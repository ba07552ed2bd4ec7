// Package detector runs the per-frame wave detection pipeline.
package detector

import (
	"image"

	"github.com/ayusman/wavegest/internal/capture"
	"github.com/ayusman/wavegest/internal/config"
	"github.com/ayusman/wavegest/internal/gesture"
)

// Sink receives gestures as they are detected.
type Sink interface {
	OnGesture(ev gesture.Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ev gesture.Event)

// OnGesture calls f(ev).
func (f SinkFunc) OnGesture(ev gesture.Event) {
	f(ev)
}

// Stats counts what the detector has seen since the last Reset.
type Stats struct {
	Frames   int `json:"frames"`
	Skipped  int `json:"skipped"`
	Gestures int `json:"gestures"`
}

// Detector owns the state carried between frames: the previous frame, the
// running motion average and the gesture state machine.
//
// Pipeline per frame:
// 1. Optional skin filter
// 2. DifferenceMap against the previous frame
// 3. MotionFilter smoothing and significance test
// 4. StateMachine step, which may emit one gesture
//
// A Detector is not safe for concurrent use.
type Detector struct {
	cfg       config.Detection
	sink      Sink
	skin      *capture.SkinFilter
	diff      *capture.DifferenceMap
	filter    *gesture.MotionFilter
	machine   *gesture.StateMachine
	annotated *image.RGBA
	last      gesture.NormalizedMotion
	stats     Stats
}

// New creates a Detector. sink may be nil.
func New(cfg config.Detection, sink Sink) *Detector {
	cfg.Sensitivity = config.ClampSensitivity(cfg.Sensitivity)
	return &Detector{
		cfg:     cfg,
		sink:    sink,
		skin:    capture.NewSkinFilter(cfg.Skin),
		diff:    capture.NewDifferenceMap(),
		filter:  gesture.NewMotionFilter(cfg.FilteringFactor, cfg.MinTotalChange),
		machine: gesture.NewStateMachine(cfg.MinDirChange, cfg.LongDirChange),
	}
}

// OnFrame processes one frame. It returns the gesture emitted by this frame,
// if any, after delivering it to the sink. An invalid frame is counted as
// skipped and keeps the previous frame, but still reaches the filter and the
// state machine as a sample with no changed pixels.
func (d *Detector) OnFrame(frame *image.RGBA) (gesture.Event, bool) {
	var sample gesture.MotionSample
	if capture.ValidFrame(frame) {
		d.stats.Frames++
		if d.cfg.SkinFilter {
			frame = d.skin.Apply(frame)
		}
		var annotated *image.RGBA
		sample, annotated = d.diff.Compute(frame, d.cfg.Sensitivity)
		d.annotated = annotated
	} else {
		d.stats.Skipped++
	}

	motion, significant := d.filter.Filter(sample)
	d.last = motion

	ev, ok := d.machine.Step(motion, significant)
	if !ok {
		return gesture.Event{}, false
	}

	d.stats.Gestures++
	if d.sink != nil {
		d.sink.OnGesture(ev)
	}
	return ev, true
}

// Annotated returns the annotated frame of the last processed frame. The
// frame is shared; callers must copy it before modifying it.
func (d *Detector) Annotated() *image.RGBA {
	return d.annotated
}

// Motion returns the centroid of the last processed frame.
func (d *Detector) Motion() gesture.NormalizedMotion {
	return d.last
}

// State returns the current state machine state.
func (d *Detector) State() gesture.State {
	return d.machine.State()
}

// Average returns the running average of changed pixels.
func (d *Detector) Average() float64 {
	return d.filter.Average()
}

// Config returns the active detection knobs.
func (d *Detector) Config() config.Detection {
	return d.cfg
}

// SetConfig swaps the detection knobs. Carried state is kept so detection
// continues seamlessly on the next frame.
func (d *Detector) SetConfig(cfg config.Detection) {
	cfg.Sensitivity = config.ClampSensitivity(cfg.Sensitivity)
	d.cfg = cfg
	d.skin.SetRange(cfg.Skin)
	d.filter.SetParams(cfg.FilteringFactor, cfg.MinTotalChange)
	d.machine.SetThresholds(cfg.MinDirChange, cfg.LongDirChange)
}

// Reset clears the previous frame, the running average, the state machine
// and the counters.
func (d *Detector) Reset() {
	d.diff.Reset()
	d.filter.Reset()
	d.machine.Reset()
	d.annotated = nil
	d.last = gesture.NormalizedMotion{}
	d.stats = Stats{}
}

// Stats returns the frame and gesture counters.
func (d *Detector) Stats() Stats {
	return d.stats
}
