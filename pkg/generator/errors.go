package generator

import (
	"errors"
	"fmt"
)

// Stage identifies the step of a run that failed.
type Stage string

// Generation stages, in execution order.
const (
	StageCollect Stage = "collect"
	StagePack    Stage = "pack"
	StageEmit    Stage = "emit"
	StageWrite   Stage = "write"
	StageVerify  Stage = "verify"
)

// ErrNoOutput is returned when Options.Output is empty and a write or
// comparison is required.
var ErrNoOutput = errors.New("no output path configured")

// GenerationError reports a failed run. The previous output file, if any,
// is left untouched.
type GenerationError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func stageError(stage Stage, path string, err error) error {
	return &GenerationError{Stage: stage, Path: path, Err: err}
}
