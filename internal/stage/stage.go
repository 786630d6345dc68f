// Package stage defines the contract shared by the pipeline's batch stages
// and the environment they run in.
package stage

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Stage is one batch step. Stages communicate only through files.
type Stage interface {
	Name() string
	Run(ctx context.Context) error
}

// ErrMissingInput reports that a required input file does not exist.
var ErrMissingInput = errors.New("missing required input")

// MissingInputError names the absent file and how to produce it.
type MissingInputError struct {
	Path string
	Hint string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingInput, e.Path)
}

// Is makes errors.Is(err, ErrMissingInput) true.
func (e *MissingInputError) Is(target error) bool {
	return target == ErrMissingInput
}

// Require returns a *MissingInputError when path does not exist.
func Require(path, hint string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &MissingInputError{Path: path, Hint: hint}
		}
		return fmt.Errorf("stage: stat %s: %w", path, err)
	}
	return nil
}

// Hint returns the remediation hint carried by err, if any.
func Hint(err error) string {
	var mi *MissingInputError
	if errors.As(err, &mi) {
		return mi.Hint
	}
	return ""
}
