package capture

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// EncodeJPEG encodes an RGBA frame as JPEG.
func EncodeJPEG(f *image.RGBA) ([]byte, error) {
	if !ValidFrame(f) {
		return nil, ErrInvalidFrame
	}

	mat, err := gocv.ImageToMatRGB(f)
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	defer mat.Close()

	buf, err := gocv.IMEncode(".jpg", mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
