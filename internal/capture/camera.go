// Package capture acquires downsampled RGBA frames and turns consecutive
// frames into motion samples.
package capture

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strings"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/wavegest/internal/config"
)

// Default camera settings
const (
	DefaultFPS    = config.DefaultFramerate
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrUnsupportedSource is returned for a capture source this build cannot open.
	ErrUnsupportedSource = errors.New("unsupported capture source")
	// ErrPermissionDenied is returned when the OS refuses camera access.
	ErrPermissionDenied = errors.New("camera access denied")
	// ErrNoVideoTrack is returned when the device or file opened but yields no video.
	ErrNoVideoTrack = errors.New("no video track available")
	// ErrConstraintUnsatisfied is returned when the requested frame size cannot be produced.
	ErrConstraintUnsatisfied = errors.New("capture constraints cannot be satisfied")
	// ErrReadFailed is returned when a frame could not be grabbed.
	ErrReadFailed = errors.New("failed to read frame")
	// ErrEmptyFrame is returned when the device produced an empty frame.
	ErrEmptyFrame = errors.New("captured frame is empty")
)

// Camera defines the interface for frame sources.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*image.RGBA, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// Options configures a gocv-backed Camera.
type Options struct {
	Source          string
	Device          int
	File            string
	Width           int // 0 keeps the native width
	CompressionRate int
	Mirror          bool
	FPS             int
}

// OptionsFromConfig maps the capture section of the config to camera options.
func OptionsFromConfig(c config.Capture) Options {
	return Options{
		Source:          c.Source,
		Device:          c.Device,
		File:            c.File,
		Width:           c.Width,
		CompressionRate: c.CompressionRate,
		Mirror:          c.Mirror,
		FPS:             c.Framerate,
	}
}

// cameraImpl manages video capture from a camera device or file using GoCV.
type cameraImpl struct {
	opts    Options
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
	fps     int
}

// NewCamera creates a new Camera for the given options. The camera is not
// opened until Open is called.
func NewCamera(opts Options) Camera {
	if opts.Source == "" {
		opts.Source = config.SourceCamera
	}
	if opts.CompressionRate < 1 {
		opts.CompressionRate = config.DefaultCompressionRate
	}
	fps := opts.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &cameraImpl{
		opts: opts,
		fps:  fps,
	}
}

// Open opens the device or file for capturing frames.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	var (
		capture *gocv.VideoCapture
		err     error
	)
	switch c.opts.Source {
	case config.SourceCamera:
		capture, err = gocv.OpenVideoCapture(c.opts.Device)
	case config.SourceFile:
		capture, err = gocv.VideoCaptureFile(c.opts.File)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedSource, c.opts.Source)
	}
	if err != nil {
		return classifyOpenError(err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return ErrNoVideoTrack
	}

	if c.opts.Source == config.SourceCamera {
		capture.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
		capture.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
		capture.Set(gocv.VideoCaptureFPS, float64(c.fps))
	}

	c.capture = capture
	c.running = true

	return nil
}

// classifyOpenError maps an OpenCV open failure onto the capture sentinels.
func classifyOpenError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "permission") || strings.Contains(msg, "not authorized") {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return fmt.Errorf("%w: %v", ErrNoVideoTrack, err)
}

// Close closes the camera and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame grabs one frame, downsamples it by the compression rate,
// mirrors it if configured and returns it as RGBA.
func (c *cameraImpl) ReadFrame() (*image.RGBA, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	defer mat.Close()

	if ok := c.capture.Read(&mat); !ok {
		return nil, ErrReadFailed
	}
	if mat.Empty() {
		return nil, ErrEmptyFrame
	}

	return c.convert(mat)
}

func (c *cameraImpl) convert(mat gocv.Mat) (*image.RGBA, error) {
	size, err := TargetSize(mat.Cols(), mat.Rows(), c.opts.Width, c.opts.CompressionRate)
	if err != nil {
		return nil, err
	}

	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(mat, &small, size, 0, 0, gocv.InterpolationArea)

	if c.opts.Mirror {
		gocv.Flip(small, &small, 1)
	}

	img, err := small.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}

	rgba := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

// TargetSize computes the downsampled frame size. A positive width first
// rescales the native frame to that width keeping the aspect ratio; the
// result is then divided by the compression rate.
func TargetSize(nativeW, nativeH, width, compression int) (image.Point, error) {
	if nativeW <= 0 || nativeH <= 0 {
		return image.Point{}, ErrEmptyFrame
	}
	if compression < 1 {
		compression = 1
	}

	w, h := nativeW, nativeH
	if width > 0 {
		h = nativeH * width / nativeW
		w = width
	}

	w /= compression
	h /= compression
	if w < 1 || h < 1 {
		return image.Point{}, fmt.Errorf("%w: %dx%d / %d", ErrConstraintUnsatisfied, nativeW, nativeH, compression)
	}
	return image.Point{X: w, Y: h}, nil
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps

	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current frames per second setting.
func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fps
}

// IsOpen returns true if the camera is currently open and running.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
