// Package batch drives a folder of images through the transform pipeline:
// discovery, sequential processing, progress reporting, per-file error
// collection and cooperative cancellation.
package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/photoflow/internal/transform"
)

// Config holds all settings for one batch run. It is validated once at
// Start and treated as immutable for the duration of the run.
type Config struct {
	InputFolder  string `mapstructure:"input_folder"  yaml:"input_folder"  json:"input_folder"`
	OutputFolder string `mapstructure:"output_folder" yaml:"output_folder" json:"output_folder"`

	Saturation int                          `mapstructure:"saturation" yaml:"saturation" json:"saturation"`
	Border     transform.BorderOptions      `mapstructure:"border"     yaml:"border"     json:"border"`
	Watermarks []transform.WatermarkOptions `mapstructure:"watermarks" yaml:"watermarks" json:"watermarks"`

	FilenamePrefix    string `mapstructure:"filename_prefix"    yaml:"filename_prefix"    json:"filename_prefix"`
	FilenameSuffix    string `mapstructure:"filename_suffix"    yaml:"filename_suffix"    json:"filename_suffix"`
	OverwriteExisting bool   `mapstructure:"overwrite_existing" yaml:"overwrite_existing" json:"overwrite_existing"`
}

// DefaultConfig returns a configuration with neutral transform settings.
func DefaultConfig() Config {
	return Config{
		Saturation: 100,
		Border:     transform.BorderOptions{ThicknessPx: 0, Color: "#FFFFFF"},
	}
}

// TransformOptions maps the run configuration to engine options.
func (c *Config) TransformOptions() transform.Options {
	return transform.Options{
		Saturation: c.Saturation,
		Border:     c.Border,
		Watermarks: c.Watermarks,
	}
}

// Validate checks the configuration and returns a list of problems.
// An empty list means the configuration is valid.
func (c *Config) Validate() []string {
	var problems []string

	if c.InputFolder == "" {
		problems = append(problems, "input folder is required")
	} else if info, err := os.Stat(c.InputFolder); err != nil || !info.IsDir() {
		problems = append(problems, fmt.Sprintf("input folder does not exist: %s", c.InputFolder))
	}

	if c.OutputFolder == "" {
		problems = append(problems, "output folder is required")
	}

	if c.Saturation < 0 || c.Saturation > 200 {
		problems = append(problems, fmt.Sprintf("saturation must be between 0 and 200, got %d", c.Saturation))
	}

	if c.Border.ThicknessPx < 0 {
		problems = append(problems, "border thickness cannot be negative")
	}
	if c.Border.ThicknessPx > 0 {
		if _, err := transform.ParseHexColor(c.Border.Color); err != nil {
			problems = append(problems, err.Error())
		}
	}

	seen := make(map[string]bool)
	for i, wm := range c.Watermarks {
		for _, p := range validateWatermark(wm) {
			problems = append(problems, fmt.Sprintf("watermark %d: %s", i+1, p))
		}
		if wm.ID != "" {
			if seen[wm.ID] {
				problems = append(problems, fmt.Sprintf("watermark %d: duplicate id %q", i+1, wm.ID))
			}
			seen[wm.ID] = true
		}
	}

	return problems
}

func validateWatermark(wm transform.WatermarkOptions) []string {
	var problems []string

	if wm.ImagePath == "" {
		return nil
	}

	if info, err := os.Stat(wm.ImagePath); err != nil || info.IsDir() {
		problems = append(problems, fmt.Sprintf("watermark file not found: %s", wm.ImagePath))
	}
	if !wm.Position.Valid() {
		problems = append(problems, fmt.Sprintf("invalid position %q", wm.Position))
	}
	if wm.Opacity < 0 || wm.Opacity > 1 {
		problems = append(problems, fmt.Sprintf("opacity must be between 0.0 and 1.0, got %g", wm.Opacity))
	}
	if wm.ScalePercent < 5 || wm.ScalePercent > 80 {
		problems = append(problems, fmt.Sprintf("scale must be between 5 and 80 percent, got %d", wm.ScalePercent))
	}
	if wm.MarginPx < 0 {
		problems = append(problems, "margin cannot be negative")
	}

	return problems
}

// OutputPath computes the destination path for a source image: the prefix
// and suffix wrap the filename stem, and the original extension is kept.
func (c *Config) OutputPath(inputPath string) string {
	base := filepath.Base(inputPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(c.OutputFolder, c.FilenamePrefix+stem+c.FilenameSuffix+ext)
}
