package gesture

// Motion filter defaults.
const (
	// DefaultFilteringFactor is the weight of the previous running average.
	DefaultFilteringFactor = 0.9
	// DefaultMinTotalChange is how many changed pixels above the running
	// average make a sample significant.
	DefaultMinTotalChange = 300
)

// MotionSample is the raw aggregate of one difference-map pass.
type MotionSample struct {
	Count int   // changed pixels
	SumX  int64 // sum of x coordinates of changed pixels
	SumY  int64 // sum of y coordinates of changed pixels
}

// NormalizedMotion is the centroid of the changed pixels of one sample.
type NormalizedMotion struct {
	X         float64
	Y         float64
	Magnitude int
}

// Valid reports whether the centroid is defined.
func (m NormalizedMotion) Valid() bool {
	return m.Magnitude > 0
}

// Normalize divides the coordinate sums by the changed pixel count.
// The centroid is left at zero when nothing changed.
func (s MotionSample) Normalize() NormalizedMotion {
	if s.Count <= 0 {
		return NormalizedMotion{}
	}
	return NormalizedMotion{
		X:         float64(s.SumX) / float64(s.Count),
		Y:         float64(s.SumY) / float64(s.Count),
		Magnitude: s.Count,
	}
}

// MotionFilter keeps an exponential moving average of the changed pixel count
// and flags samples that burst above it.
type MotionFilter struct {
	factor         float64
	minTotalChange int
	average        float64
}

// NewMotionFilter creates a MotionFilter. factor must be in (0,1); out of
// range values fall back to DefaultFilteringFactor. A negative minTotalChange
// falls back to DefaultMinTotalChange.
func NewMotionFilter(factor float64, minTotalChange int) *MotionFilter {
	f := &MotionFilter{}
	f.SetParams(factor, minTotalChange)
	return f
}

// SetParams changes the smoothing factor and significance threshold
// without touching the running average.
func (f *MotionFilter) SetParams(factor float64, minTotalChange int) {
	if factor <= 0 || factor >= 1 {
		factor = DefaultFilteringFactor
	}
	if minTotalChange < 0 {
		minTotalChange = DefaultMinTotalChange
	}
	f.factor = factor
	f.minTotalChange = minTotalChange
}

// Filter folds the sample into the running average and returns its centroid
// along with whether it is significant. The comparison uses the average
// after it has absorbed the sample.
func (f *MotionFilter) Filter(s MotionSample) (NormalizedMotion, bool) {
	count := s.Count
	if count < 0 {
		count = 0
	}

	f.average = f.factor*f.average + (1-f.factor)*float64(count)

	if count == 0 {
		return NormalizedMotion{}, false
	}

	delta := float64(count) - f.average
	return s.Normalize(), delta > float64(f.minTotalChange)
}

// Average returns the current running average.
func (f *MotionFilter) Average() float64 {
	return f.average
}

// Reset zeroes the running average.
func (f *MotionFilter) Reset() {
	f.average = 0
}
