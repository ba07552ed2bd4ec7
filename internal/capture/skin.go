package capture

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ayusman/wavegest/internal/config"
)

// SkinFilter masks pixels whose colour falls outside a skin range. It is an
// optional stage in front of the DifferenceMap.
type SkinFilter struct {
	rng config.SkinRange
}

// NewSkinFilter creates a SkinFilter for the given HSV range.
func NewSkinFilter(rng config.SkinRange) *SkinFilter {
	return &SkinFilter{rng: rng}
}

// SetRange replaces the HSV range.
func (s *SkinFilter) SetRange(rng config.SkinRange) {
	s.rng = rng
}

// Match reports whether an RGB colour is inside the skin range.
func (s *SkinFilter) Match(r, g, b uint8) bool {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	h, sat, val := c.Hsv()
	h /= 360

	if !s.rng.Saturation.Contains(sat) || !s.rng.Value.Contains(val) {
		return false
	}
	for _, band := range s.rng.Hues {
		if band.Contains(h) {
			return true
		}
	}
	return false
}

// Apply returns a new frame where non-skin pixels are transparent black.
// The input frame is not modified.
func (s *SkinFilter) Apply(f *image.RGBA) *image.RGBA {
	if !ValidFrame(f) {
		return f
	}

	b := f.Bounds()
	out := NewFrame(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		si := f.PixOffset(b.Min.X, b.Min.Y+y)
		di := y * out.Stride
		for x := 0; x < b.Dx(); x++ {
			px := f.Pix[si : si+4 : si+4]
			if s.Match(px[0], px[1], px[2]) {
				copy(out.Pix[di:di+4], px)
			}
			si += 4
			di += 4
		}
	}
	return out
}
