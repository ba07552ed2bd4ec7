// Package testdata builds synthetic frames for motion and gesture tests.
package testdata

import (
	"image"
	"image/color"
	"image/draw"
)

// Common fixture colours.
var (
	Background = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	Skin       = color.RGBA{R: 220, G: 160, B: 130, A: 255}
	Cyan       = color.RGBA{R: 20, G: 200, B: 200, A: 255}
)

// Solid returns a w x h frame filled with c.
func Solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// Blob returns a frame with a filled square of the given size whose top-left
// corner is at p, drawn over a solid background.
func Blob(w, h int, bg, fg color.RGBA, p image.Point, size int) *image.RGBA {
	img := Solid(w, h, bg)
	r := image.Rect(p.X, p.Y, p.X+size, p.Y+size).Intersect(img.Bounds())
	draw.Draw(img, r, &image.Uniform{C: fg}, image.Point{}, draw.Src)
	return img
}

// Sweep returns n frames of a square blob moving by step each frame,
// starting at start. Frames are w x h.
func Sweep(w, h int, start, step image.Point, size, n int) []*image.RGBA {
	frames := make([]*image.RGBA, 0, n)
	p := start
	for i := 0; i < n; i++ {
		frames = append(frames, Blob(w, h, Background, Skin, p, size))
		p = p.Add(step)
	}
	return frames
}

// Still returns n identical background frames.
func Still(w, h, n int) []*image.RGBA {
	frames := make([]*image.RGBA, 0, n)
	for i := 0; i < n; i++ {
		frames = append(frames, Solid(w, h, Background))
	}
	return frames
}

// Wave returns a sequence that sits still, sweeps a blob across the frame
// and then sits still again. The sweep direction follows step.
func Wave(w, h int, start, step image.Point, size, sweep int) []*image.RGBA {
	frames := Still(w, h, 4)
	frames = append(frames, Sweep(w, h, start, step, size, sweep)...)
	frames = append(frames, Still(w, h, 12)...)
	return frames
}
