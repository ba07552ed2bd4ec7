package capture

import (
	"errors"
	"image"
)

// ErrInvalidFrame is returned for nil, empty or truncated frames.
var ErrInvalidFrame = errors.New("invalid frame")

// ValidFrame reports whether f has a non-empty size and enough pixel data
// for its bounds.
func ValidFrame(f *image.RGBA) bool {
	if f == nil {
		return false
	}
	b := f.Bounds()
	if b.Empty() || f.Stride < 4*b.Dx() {
		return false
	}
	if f.PixOffset(b.Min.X, b.Min.Y) < 0 {
		return false
	}
	return f.PixOffset(b.Max.X-1, b.Max.Y-1)+4 <= len(f.Pix)
}

// NewFrame allocates a zeroed frame of the given size with its origin at (0,0).
func NewFrame(width, height int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

// CloneFrame returns a deep copy of f rebased to (0,0).
func CloneFrame(f *image.RGBA) *image.RGBA {
	if !ValidFrame(f) {
		return nil
	}
	b := f.Bounds()
	out := NewFrame(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		src := f.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out.Pix[y*out.Stride:(y+1)*out.Stride], f.Pix[src:src+4*b.Dx()])
	}
	return out
}

// sameSize reports whether a and b have identical dimensions.
func sameSize(a, b *image.RGBA) bool {
	return a.Bounds().Dx() == b.Bounds().Dx() && a.Bounds().Dy() == b.Bounds().Dy()
}
