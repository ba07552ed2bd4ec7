// Package config holds the tunable settings of the wave gesture detector and its host.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/wavegest/internal/gesture"
)

// Capture sources.
const (
	SourceCamera = "camera"
	SourceFile   = "file"
)

// Capture defaults.
const (
	DefaultFramerate       = 25
	DefaultCompressionRate = 5
	DefaultSensitivity     = 80
)

// Config is the complete configuration of the host binary.
type Config struct {
	Capture   Capture            `yaml:"capture" json:"capture"`
	Detection Detection          `yaml:"detection" json:"detection"`
	Lock      time.Duration      `yaml:"lock" json:"lock"` // drop gestures for this long after one fires; 0 disables
	Debug     bool               `yaml:"debug" json:"debug"`
	Server    Server             `yaml:"server" json:"server"`
	PluginDir string             `yaml:"plugin_dir" json:"plugin_dir"`
	Bindings  map[string]Binding `yaml:"bindings" json:"bindings,omitempty"` // keyed by direction name
}

// Capture configures how frames are acquired and downsampled.
type Capture struct {
	Source          string `yaml:"source" json:"source"` // camera or file
	Device          int    `yaml:"device" json:"device"`
	File            string `yaml:"file" json:"file,omitempty"`
	Framerate       int    `yaml:"framerate" json:"framerate"`
	CompressionRate int    `yaml:"compression_rate" json:"compression_rate"` // downsample divisor
	Width           int    `yaml:"width" json:"width"`                       // resize to this width before compression; 0 keeps native
	Mirror          bool   `yaml:"mirror" json:"mirror"`
}

// Detection holds the per-frame pipeline knobs.
type Detection struct {
	Sensitivity     int       `yaml:"sensitivity" json:"sensitivity"` // 0-100, clamped
	FilteringFactor float64   `yaml:"filtering_factor" json:"filtering_factor"`
	MinTotalChange  int       `yaml:"min_total_change" json:"min_total_change"`
	MinDirChange    int       `yaml:"min_dir_change" json:"min_dir_change"`
	LongDirChange   int       `yaml:"long_dir_change" json:"long_dir_change"`
	SkinFilter      bool      `yaml:"skin_filter" json:"skin_filter"`
	Skin            SkinRange `yaml:"skin" json:"skin"`
}

// Band is an open interval (Min, Max).
type Band struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether Min < v < Max.
func (b Band) Contains(v float64) bool {
	return v > b.Min && v < b.Max
}

// SkinRange selects skin-coloured pixels in HSV space. All components are
// normalised to [0,1]; a pixel matches when its hue is inside any of Hues and
// saturation and value are inside their bands.
type SkinRange struct {
	Hues       []Band `yaml:"hues" json:"hues"`
	Saturation Band   `yaml:"saturation" json:"saturation"`
	Value      Band   `yaml:"value" json:"value"`
}

// Server configures the local event bridge.
type Server struct {
	Addr      string `yaml:"addr" json:"addr"`
	StaticDir string `yaml:"static_dir" json:"static_dir,omitempty"`
}

// Binding runs a plugin action when a gesture fires.
type Binding struct {
	Plugin string          `yaml:"plugin" json:"plugin"`
	Action string          `yaml:"action" json:"action"`
	Params json.RawMessage `yaml:"-" json:"params,omitempty"`
	// ParamsYAML lets config files write params as a nested mapping.
	ParamsYAML map[string]any `yaml:"params" json:"-"`
}

// DefaultSkinRange returns the skin thresholds of the most recent tuning.
func DefaultSkinRange() SkinRange {
	return SkinRange{
		Hues:       []Band{{Min: 0.0, Max: 0.10}, {Min: 0.59, Max: 1.0}},
		Saturation: Band{Min: 0.0, Max: 1.0},
		Value:      Band{Min: 0.4, Max: 1.0},
	}
}

// DefaultDetection returns the default pipeline knobs.
func DefaultDetection() Detection {
	return Detection{
		Sensitivity:     DefaultSensitivity,
		FilteringFactor: gesture.DefaultFilteringFactor,
		MinTotalChange:  gesture.DefaultMinTotalChange,
		MinDirChange:    gesture.DefaultMinDirChange,
		LongDirChange:   gesture.DefaultLongDirChange,
		SkinFilter:      false,
		Skin:            DefaultSkinRange(),
	}
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Capture: Capture{
			Source:          SourceCamera,
			Device:          0,
			Framerate:       DefaultFramerate,
			CompressionRate: DefaultCompressionRate,
			Width:           0,
			Mirror:          true,
		},
		Detection: DefaultDetection(),
		Server: Server{
			Addr: ":8080",
		},
	}
}

// Load reads a YAML file and overlays it onto DefaultConfig. Keys missing
// from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config data overlaid onto DefaultConfig.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	for name, b := range cfg.Bindings {
		if b.ParamsYAML != nil && b.Params == nil {
			raw, err := json.Marshal(b.ParamsYAML)
			if err != nil {
				return nil, fmt.Errorf("binding %q: failed to encode params: %w", name, err)
			}
			b.Params = raw
			cfg.Bindings[name] = b
		}
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
