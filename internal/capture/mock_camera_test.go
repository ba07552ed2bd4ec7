package capture

import (
	"errors"
	"image"
	"testing"

	"github.com/ayusman/wavegest/testdata"
)

func TestMockCamera_Playback(t *testing.T) {
	frame1 := testdata.Solid(16, 12, testdata.Background)
	frame2 := testdata.Solid(16, 12, testdata.Skin)

	cam := NewMockCamera([]*image.RGBA{frame1, frame2}, false)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() before Open error = %v, want ErrCameraNotOpen", err)
	}

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	f1, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	f1.Pix[0] = 0
	if frame1.Pix[0] == 0 {
		t.Error("ReadFrame should return a copy")
	}

	if _, err := cam.ReadFrame(); err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}

	// Third read should fail (no loop)
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrNoMoreFrames) {
		t.Errorf("error = %v, want ErrNoMoreFrames", err)
	}
}

func TestMockCamera_Loop(t *testing.T) {
	cam := NewMockCamera(testdata.Still(8, 8, 1), true)
	cam.Open()
	defer cam.Close()

	for i := 0; i < 5; i++ {
		if _, err := cam.ReadFrame(); err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
	}
}

func TestMockCamera_FailOpen(t *testing.T) {
	cam := NewMockCamera(testdata.Still(8, 8, 1), true)
	cam.FailOpen(ErrPermissionDenied)

	if err := cam.Open(); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("Open() error = %v, want ErrPermissionDenied", err)
	}
	if cam.IsOpen() {
		t.Error("camera should stay closed after a failed Open")
	}

	cam.FailOpen(nil)
	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if cam.Opens() != 1 {
		t.Errorf("Opens() = %d, want 1", cam.Opens())
	}
}
