// Package scorer assigns immunomodulatory probabilities to fingerprints,
// either with the in-process forest or with an exported ONNX classifier.
package scorer

import (
	"github.com/crimson-sun/pathobridge/internal/forest"
)

// Scorer returns the class-1 probability for each fingerprint.
type Scorer interface {
	Score(X [][]float64) ([]float64, error)
	Close() error
}

// Forest scores with a trained random forest.
type Forest struct {
	f *forest.Forest
}

// NewForest wraps a trained forest.
func NewForest(f *forest.Forest) *Forest {
	return &Forest{f: f}
}

func (s *Forest) Score(X [][]float64) ([]float64, error) {
	out := make([]float64, len(X))
	for i, x := range X {
		out[i] = s.f.PredictProba(x)
	}
	return out, nil
}

func (s *Forest) Close() error { return nil }
