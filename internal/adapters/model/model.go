// Package model loads the pre-trained churn classifier from disk.
package model

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/okian/churnboard/internal/domain/predict"
	"github.com/okian/churnboard/pkg/errkind"
)

// Supported artifact formats.
const (
	FormatForest = "forest"
	FormatONNX   = "onnx"
)

// Options selects and configures the artifact to load.
type Options struct {
	Path string
	// Format is FormatForest, FormatONNX or empty to infer from the extension.
	Format string
	// ONNXLibraryPath points at libonnxruntime; empty looks next to the model.
	ONNXLibraryPath string
}

// Load opens the classifier described by opts. Every failure is
// ErrDataUnavailable: without a model the service cannot answer.
func Load(ctx context.Context, opts Options) (predict.Classifier, error) {
	const op = "model.load"
	if err := ctx.Err(); err != nil {
		return nil, errkind.WrapKind(op, errkind.ErrDataUnavailable, err)
	}
	format, err := resolveFormat(opts)
	if err != nil {
		return nil, errkind.WrapKind(op, errkind.ErrDataUnavailable, err)
	}

	var c predict.Classifier
	switch format {
	case FormatForest:
		c, err = LoadForest(opts.Path)
	case FormatONNX:
		c, err = LoadONNX(opts.Path, opts.ONNXLibraryPath)
	}
	if err != nil {
		return nil, errkind.WrapKind(op, errkind.ErrDataUnavailable, err)
	}
	return c, nil
}

func resolveFormat(opts Options) (string, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".json":
			format = FormatForest
		case ".onnx":
			format = FormatONNX
		}
	}
	switch format {
	case FormatForest, FormatONNX:
		return format, nil
	case "":
		return "", fmt.Errorf("%w: cannot infer format of %q", ErrUnknownFormat, opts.Path)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
