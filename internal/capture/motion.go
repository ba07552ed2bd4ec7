package capture

import (
	"image"
	"image/color"
	"math"

	"github.com/ayusman/wavegest/internal/config"
	"github.com/ayusman/wavegest/internal/gesture"
)

// MaxPixelDelta is the largest possible summed RGB difference of one pixel.
const MaxPixelDelta = 3 * 255

// MarkerColor paints changed pixels in the annotated frame.
var MarkerColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}

// Threshold returns the summed RGB difference a pixel must exceed to count as
// changed. Sensitivity is clamped to [0,100]; 100 gives 0 and 0 gives
// MaxPixelDelta, which no pixel can exceed.
func Threshold(sensitivity int) float64 {
	s := config.ClampSensitivity(sensitivity)
	return MaxPixelDelta * math.Abs(float64(s-100)) / 100
}

// DifferenceMap compares each frame with the one before it and aggregates
// the changed pixels.
//
// Algorithm:
// 1. If there is no previous frame of the same size, store the frame and return a zero sample
// 2. For every pixel sum |dR|+|dG|+|dB| against the previous frame (alpha ignored)
// 3. Pixels above Threshold(sensitivity) add to the count and coordinate sums
// 4. The annotated frame marks changed pixels with MarkerColor and copies the rest
// 5. The frame becomes the previous frame
//
// A DifferenceMap is not safe for concurrent use.
type DifferenceMap struct {
	previous *image.RGBA
}

// NewDifferenceMap creates a DifferenceMap with no previous frame.
func NewDifferenceMap() *DifferenceMap {
	return &DifferenceMap{}
}

// Compute diffs current against the previous frame. It returns the motion
// sample and the annotated frame. Invalid frames are skipped: the sample is
// zero, the annotated frame is nil and the previous frame is kept.
//
// current must not be modified after the call; it is retained as the next
// previous frame.
func (m *DifferenceMap) Compute(current *image.RGBA, sensitivity int) (gesture.MotionSample, *image.RGBA) {
	if !ValidFrame(current) {
		return gesture.MotionSample{}, nil
	}

	previous := m.previous
	m.previous = current

	if previous == nil || !sameSize(previous, current) {
		return gesture.MotionSample{}, current
	}

	// Pixels are compared on the RGBA bytes directly: alpha is excluded from
	// the delta and the comparison against the fractional threshold is a
	// strict float >, which gocv's AbsDiff/Threshold on a BGR Mat cannot express.
	threshold := Threshold(sensitivity)

	cb := current.Bounds()
	pb := previous.Bounds()
	width, height := cb.Dx(), cb.Dy()
	annotated := NewFrame(width, height)

	var sample gesture.MotionSample
	for y := 0; y < height; y++ {
		ci := current.PixOffset(cb.Min.X, cb.Min.Y+y)
		pi := previous.PixOffset(pb.Min.X, pb.Min.Y+y)
		ai := y * annotated.Stride

		for x := 0; x < width; x++ {
			cur := current.Pix[ci : ci+4 : ci+4]
			prev := previous.Pix[pi : pi+4 : pi+4]
			out := annotated.Pix[ai : ai+4 : ai+4]

			d := absDiff(cur[0], prev[0]) + absDiff(cur[1], prev[1]) + absDiff(cur[2], prev[2])

			if float64(d) > threshold {
				sample.Count++
				sample.SumX += int64(x)
				sample.SumY += int64(y)
				out[0], out[1], out[2], out[3] = MarkerColor.R, MarkerColor.G, MarkerColor.B, MarkerColor.A
			} else {
				copy(out, cur)
			}

			ci += 4
			pi += 4
			ai += 4
		}
	}

	return sample, annotated
}

// HasPrevious reports whether a baseline frame is stored.
func (m *DifferenceMap) HasPrevious() bool {
	return m.previous != nil
}

// Reset drops the stored previous frame, so the next frame becomes a new baseline.
func (m *DifferenceMap) Reset() {
	m.previous = nil
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
