package model

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/okian/churnboard/internal/domain/features"
	"github.com/okian/churnboard/internal/domain/predict"
)

// labelOutput is the output name converters such as skl2onnx give the
// predicted class.
const labelOutput = "label"

// ortEnv guards the process-wide ONNX Runtime initialization.
var ortEnv struct {
	once sync.Once
	err  error
}

func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// ONNX runs an exported classifier through ONNX Runtime. The session is
// created once; Run is safe for concurrent callers.
type ONNX struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	path       string
}

// LoadONNX opens the model at path. When libPath is empty the runtime library
// is expected next to the model as libonnxruntime.so.
func LoadONNX(path, libPath string) (*ONNX, error) {
	if libPath == "" {
		libPath = filepath.Join(filepath.Dir(path), "libonnxruntime.so")
	}
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("onnx: read model info: %w", err)
	}
	inName, outName, err := pickIO(inputs, outputs)
	if err != nil {
		return nil, err
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: session options: %w", err)
	}
	defer opts.Destroy()
	if err := opts.SetIntraOpNumThreads(1); err != nil {
		return nil, fmt.Errorf("onnx: session options: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(path, []string{inName}, []string{outName}, opts)
	if err != nil {
		return nil, fmt.Errorf("onnx: create session: %w", err)
	}
	return &ONNX{session: session, inputName: inName, outputName: outName, path: path}, nil
}

// pickIO checks the model takes one float tensor of shape [N, features.Width]
// and exposes an int64 label output.
func pickIO(inputs, outputs []ort.InputOutputInfo) (string, string, error) {
	if len(inputs) != 1 {
		return "", "", fmt.Errorf("%w: onnx: want 1 input, got %d", ErrMalformed, len(inputs))
	}
	in := inputs[0]
	if in.DataType != ort.TensorElementDataTypeFloat {
		return "", "", fmt.Errorf("%w: onnx: input %q is %v, want float", ErrMalformed, in.Name, in.DataType)
	}
	dims := in.Dimensions
	if len(dims) != 2 || dims[1] != features.Width {
		return "", "", fmt.Errorf("%w: onnx: input %q has shape %v, want [N %d]",
			predict.ErrShapeMismatch, in.Name, dims, features.Width)
	}

	if len(outputs) == 0 {
		return "", "", fmt.Errorf("%w: onnx: model has no outputs", ErrMalformed)
	}
	out := outputs[0]
	for _, o := range outputs {
		if o.Name == labelOutput {
			out = o
			break
		}
	}
	if out.DataType != ort.TensorElementDataTypeInt64 {
		return "", "", fmt.Errorf("%w: onnx: output %q is %v, want int64", ErrMalformed, out.Name, out.DataType)
	}
	return in.Name, out.Name, nil
}

// Predict implements predict.Classifier.
func (m *ONNX) Predict(ctx context.Context, v features.Vector) (predict.Label, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	in, err := ort.NewTensor(ort.NewShape(1, features.Width), v.Float32())
	if err != nil {
		return 0, fmt.Errorf("onnx: input tensor: %w", err)
	}
	defer in.Destroy()

	out, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		return 0, fmt.Errorf("onnx: output tensor: %w", err)
	}
	defer out.Destroy()

	if err := m.session.Run([]ort.Value{in}, []ort.Value{out}); err != nil {
		return 0, fmt.Errorf("onnx: inference: %w", err)
	}
	return predict.Label(out.GetData()[0]), nil
}

// Info implements predict.Classifier.
func (m *ONNX) Info() predict.ModelInfo {
	return predict.ModelInfo{
		Format:   FormatONNX,
		Path:     m.path,
		Features: features.Width,
		Detail:   m.inputName + " -> " + m.outputName,
	}
}

// Close releases the runtime session.
func (m *ONNX) Close() error {
	return m.session.Destroy()
}
