package capture

import (
	"image"
	"testing"

	"github.com/ayusman/wavegest/internal/config"
	"github.com/ayusman/wavegest/testdata"
)

func TestSkinFilter_Match(t *testing.T) {
	f := NewSkinFilter(config.DefaultSkinRange())

	tests := []struct {
		name    string
		r, g, b uint8
		want    bool
	}{
		{"skin tone", 220, 160, 130, true},
		{"dark pixel", 20, 10, 5, false},
		{"green", 40, 200, 40, false},
		{"cyan", 20, 200, 200, false},
		{"magenta-red", 200, 30, 120, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Match(tt.r, tt.g, tt.b); got != tt.want {
				t.Errorf("Match(%d,%d,%d) = %v, want %v", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestSkinFilter_Apply(t *testing.T) {
	f := NewSkinFilter(config.DefaultSkinRange())
	in := testdata.Blob(8, 8, testdata.Background, testdata.Skin, image.Pt(2, 2), 2)

	out := f.Apply(in)
	if out == in {
		t.Fatal("Apply should return a new frame")
	}
	if got := out.RGBAAt(2, 2); got != testdata.Skin {
		t.Errorf("skin pixel = %v, want %v", got, testdata.Skin)
	}
	if got := out.RGBAAt(6, 6); got.A != 0 || got.R != 0 {
		t.Errorf("background pixel = %v, want transparent black", got)
	}
	if in.RGBAAt(6, 6) != testdata.Background {
		t.Error("input frame must not be modified")
	}
}

func TestSkinFilter_SetRange(t *testing.T) {
	f := NewSkinFilter(config.DefaultSkinRange())
	f.SetRange(config.SkinRange{
		Hues:       []config.Band{{Min: 0.45, Max: 0.55}},
		Saturation: config.Band{Min: 0, Max: 1},
		Value:      config.Band{Min: 0.2, Max: 1},
	})
	if !f.Match(testdata.Cyan.R, testdata.Cyan.G, testdata.Cyan.B) {
		t.Error("cyan should match the replaced range")
	}
}
