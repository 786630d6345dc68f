package scorer

import (
	"fmt"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Safe to call multiple
// times; only the first call has any effect.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// ONNX scores with an exported binary classifier taking a float tensor
// [batch, features] and producing class probabilities [batch, classes].
type ONNX struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	features   int64
	classes    int64
}

// NewONNX loads the model. An empty libPath looks for libonnxruntime.so
// next to the model.
func NewONNX(modelPath, libPath string, features int) (*ONNX, error) {
	if libPath == "" {
		libPath = filepath.Join(filepath.Dir(modelPath), "libonnxruntime.so")
	}
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("onnx: expected 1 input, got %d", len(inputs))
	}
	if dims := inputs[0].Dimensions; len(dims) != 2 || (dims[1] > 0 && dims[1] != int64(features)) {
		return nil, fmt.Errorf("onnx: input shape %v does not accept %d features", dims, features)
	}
	out, err := probabilityOutput(outputs)
	if err != nil {
		return nil, err
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(4)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(modelPath, []string{inputs[0].Name}, []string{out.Name}, opts)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}
	return &ONNX{
		session:    session,
		inputName:  inputs[0].Name,
		outputName: out.Name,
		features:   int64(features),
		classes:    classCount(out.Dimensions),
	}, nil
}

// probabilityOutput picks the "probabilities" tensor, falling back to the
// last 2D output.
func probabilityOutput(outputs []ort.InputOutputInfo) (ort.InputOutputInfo, error) {
	var last *ort.InputOutputInfo
	for i := range outputs {
		if len(outputs[i].Dimensions) != 2 {
			continue
		}
		if outputs[i].Name == "probabilities" {
			return outputs[i], nil
		}
		last = &outputs[i]
	}
	if last == nil {
		return ort.InputOutputInfo{}, fmt.Errorf("onnx: model has no [batch, classes] output")
	}
	return *last, nil
}

// classCount reads the class dimension, assuming two classes when dynamic.
func classCount(dims ort.Shape) int64 {
	if len(dims) == 2 && dims[1] > 0 {
		return dims[1]
	}
	return 2
}

// flatten packs rows into a row-major float32 buffer.
func flatten(X [][]float64, features int64) []float32 {
	buf := make([]float32, int64(len(X))*features)
	for i, row := range X {
		for j := int64(0); j < features && j < int64(len(row)); j++ {
			buf[int64(i)*features+j] = float32(row[j])
		}
	}
	return buf
}

// positive extracts the last class column of a [batch, classes] buffer.
func positive(data []float32, batch, classes int64) []float64 {
	out := make([]float64, batch)
	for i := int64(0); i < batch; i++ {
		out[i] = float64(data[i*classes+classes-1])
	}
	return out
}

func (s *ONNX) Score(X [][]float64) ([]float64, error) {
	if len(X) == 0 {
		return nil, nil
	}
	batch := int64(len(X))
	in, err := ort.NewTensor(ort.NewShape(batch, s.features), flatten(X, s.features))
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create %s tensor: %w", s.inputName, err)
	}
	defer in.Destroy()

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(batch, s.classes))
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer out.Destroy()

	if err := s.session.Run([]ort.Value{in}, []ort.Value{out}); err != nil {
		return nil, fmt.Errorf("onnx: inference failed: %w", err)
	}
	return positive(out.GetData(), batch, s.classes), nil
}

// Close releases the ONNX session resources.
func (s *ONNX) Close() error {
	return s.session.Destroy()
}
