// Package config defines service configuration structures and loading hooks.
//
// Values are layered defaults, then an optional YAML file named by
// CHURN_CONFIG, then CHURN_* environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Model artifact formats accepted in ModelFormat. Empty selects by extension.
const (
	ModelFormatAuto   = ""
	ModelFormatForest = "forest"
	ModelFormatONNX   = "onnx"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatasetPath points at the historical employee CSV.
	DatasetPath string `koanf:"dataset_path"`

	// ModelPath points at the trained classifier artifact.
	ModelPath string `koanf:"model_path"`

	// ModelFormat forces the artifact format; empty infers it from ModelPath.
	ModelFormat string `koanf:"model_format"`

	// ONNXLibraryPath locates the onnxruntime shared library.
	ONNXLibraryPath string `koanf:"onnx_library_path"`

	// KDEGridSize is the number of points each density curve is evaluated at.
	KDEGridSize int `koanf:"kde_grid_size"`

	// PlotWidthIn and PlotHeightIn size the rendered charts in inches.
	PlotWidthIn  float64 `koanf:"plot_width_in"`
	PlotHeightIn float64 `koanf:"plot_height_in"`
}

// New returns a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		Addr:         ":9080",
		DatasetPath:  "data/hr_employee_churn_data.csv",
		ModelPath:    "models/churn_forest.json",
		ModelFormat:  ModelFormatAuto,
		KDEGridSize:  200,
		PlotWidthIn:  10,
		PlotHeightIn: 4,
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if strings.TrimSpace(c.DatasetPath) == "" {
		errs = append(errs, errors.New("dataset_path must not be empty"))
	}
	if strings.TrimSpace(c.ModelPath) == "" {
		errs = append(errs, errors.New("model_path must not be empty"))
	}
	switch strings.ToLower(c.ModelFormat) {
	case ModelFormatAuto, ModelFormatForest, ModelFormatONNX:
	default:
		errs = append(errs, fmt.Errorf("model_format %q is not one of forest, onnx", c.ModelFormat))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format %q is not one of text, json", c.LogFormat))
	}
	if c.KDEGridSize < 2 {
		errs = append(errs, fmt.Errorf("kde_grid_size must be at least 2, got %d", c.KDEGridSize))
	}
	if c.PlotWidthIn <= 0 || c.PlotHeightIn <= 0 {
		errs = append(errs, fmt.Errorf("plot size must be positive, got %gx%g", c.PlotWidthIn, c.PlotHeightIn))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
