package config

import (
	"errors"
	"fmt"

	"github.com/ayusman/wavegest/internal/gesture"
)

// ClampSensitivity limits s to [0,100].
func ClampSensitivity(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// Normalize fixes values that have an obvious nearest legal value.
// Sensitivity is clamped rather than rejected.
func (c *Config) Normalize() {
	c.Detection.Sensitivity = ClampSensitivity(c.Detection.Sensitivity)
	if len(c.Detection.Skin.Hues) == 0 {
		c.Detection.Skin.Hues = DefaultSkinRange().Hues
	}
}

// Validate checks the configuration and reports every invalid field.
func (c *Config) Validate() error {
	var errs []error

	if c.Capture.Framerate <= 0 {
		errs = append(errs, fmt.Errorf("capture.framerate must be > 0, got %d", c.Capture.Framerate))
	}
	if c.Capture.CompressionRate < 1 {
		errs = append(errs, fmt.Errorf("capture.compression_rate must be >= 1, got %d", c.Capture.CompressionRate))
	}
	if c.Capture.Width < 0 {
		errs = append(errs, fmt.Errorf("capture.width must be >= 0, got %d", c.Capture.Width))
	}
	if c.Capture.Source == SourceFile && c.Capture.File == "" {
		errs = append(errs, errors.New("capture.file is required when capture.source is file"))
	}

	if err := c.Detection.Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.Lock < 0 {
		errs = append(errs, fmt.Errorf("lock must be >= 0, got %s", c.Lock))
	}

	for name, b := range c.Bindings {
		if _, err := gesture.ParseDirection(name); err != nil {
			errs = append(errs, fmt.Errorf("bindings: %w", err))
		}
		if b.Plugin == "" || b.Action == "" {
			errs = append(errs, fmt.Errorf("bindings.%s: plugin and action are required", name))
		}
	}

	return errors.Join(errs...)
}

// Validate checks the detection knobs. Sensitivity is not checked here
// because Normalize clamps it.
func (d Detection) Validate() error {
	var errs []error

	if d.FilteringFactor <= 0 || d.FilteringFactor >= 1 {
		errs = append(errs, fmt.Errorf("detection.filtering_factor must be in (0,1), got %g", d.FilteringFactor))
	}
	if d.MinTotalChange < 0 {
		errs = append(errs, fmt.Errorf("detection.min_total_change must be >= 0, got %d", d.MinTotalChange))
	}
	if d.MinDirChange < 0 {
		errs = append(errs, fmt.Errorf("detection.min_dir_change must be >= 0, got %d", d.MinDirChange))
	}
	if d.LongDirChange < d.MinDirChange {
		errs = append(errs, fmt.Errorf("detection.long_dir_change (%d) must be >= min_dir_change (%d)", d.LongDirChange, d.MinDirChange))
	}

	bands := append([]Band{d.Skin.Saturation, d.Skin.Value}, d.Skin.Hues...)
	for _, b := range bands {
		if b.Min > b.Max || b.Min < 0 || b.Max > 1 {
			errs = append(errs, fmt.Errorf("detection.skin: band (%g, %g) must satisfy 0 <= min <= max <= 1", b.Min, b.Max))
		}
	}

	return errors.Join(errs...)
}
