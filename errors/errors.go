package errors

import (
	"fmt"
	"strings"
)

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrNotValidated       = fmt.Errorf("task has not been validated")
	ErrSchemaLookup       = fmt.Errorf("schema lookup failed")
	ErrAnnotationNotFound = fmt.Errorf("annotation not found")
	ErrModelFile          = fmt.Errorf("invalid model file")
	ErrDatasetFile        = fmt.Errorf("invalid feature file")
	ErrLengthMismatch     = fmt.Errorf("sequences have different lengths")
	ErrNoRecordings       = fmt.Errorf("no recordings found")
	ErrTaskDocument       = fmt.Errorf("invalid task document")
	ErrEmptyDataset       = fmt.Errorf("dataset has no rows")
	ErrWindowTooLong      = fmt.Errorf("signal shorter than analysis window")
	ErrSyllableTooWide    = fmt.Errorf("syllable wider than fixed spectrogram width")
	ErrParamsMismatch     = fmt.Errorf("annotation segmentation parameters differ from task")
)

// ValidationError aggregates every violation found in one validation pass.
type ValidationError struct {
	Violations []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Error())
	}
	return fmt.Sprintf("task validation failed (%d violations): %s", len(e.Violations), strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() []error {
	return e.Violations
}

type MissingKeyError struct {
	Keys []string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing required keys: %s", strings.Join(e.Keys, ", "))
}

// UnknownKeyError lists keys outside required ∪ optional. Scope is empty for
// top-level keys and names the nested block otherwise.
type UnknownKeyError struct {
	Scope string
	Keys  []string
}

func (e *UnknownKeyError) Error() string {
	if e.Scope == "" {
		return fmt.Sprintf("unknown keys: %s", strings.Join(e.Keys, ", "))
	}
	return fmt.Sprintf("unknown keys in %s: %s", e.Scope, strings.Join(e.Keys, ", "))
}

type KeyTypeError struct {
	Key      string
	Expected string
	Actual   string
}

func (e *KeyTypeError) Error() string {
	return fmt.Sprintf("key %q expects %s, got %s", e.Key, e.Expected, e.Actual)
}

type UnknownModelError struct {
	Index int
	Name  string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("models[%d]: unknown model %q", e.Index, e.Name)
}

type UnknownModelKeyError struct {
	Model string
	Keys  []string
}

func (e *UnknownModelKeyError) Error() string {
	return fmt.Sprintf("model %s: unknown keys: %s", e.Model, strings.Join(e.Keys, ", "))
}

type HyperparameterTypeError struct {
	Model    string
	Key      string
	Expected string
	Actual   string
}

func (e *HyperparameterTypeError) Error() string {
	return fmt.Sprintf("model %s: hyperparameter %q expects %s, got %s", e.Model, e.Key, e.Expected, e.Actual)
}

type ParamValueError struct {
	Field string
	Rule  string
}

func (e *ParamValueError) Error() string {
	return fmt.Sprintf("parameter %s violates rule %q", e.Field, e.Rule)
}

type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format %q", e.Format)
}

// ExtractionWarning is recoverable: the recording is skipped and the run goes on.
type ExtractionWarning struct {
	BirdID    string
	Recording string
	Err       error
}

func (e *ExtractionWarning) Error() string {
	return fmt.Sprintf("bird %s, recording %s: %v", e.BirdID, e.Recording, e.Err)
}

func (e *ExtractionWarning) Unwrap() error {
	return e.Err
}

// NoUsableDataError carries the listing failure, or ErrNoRecordings, in Err
// when the directory could not provide any recording at all.
type NoUsableDataError struct {
	BirdID  string
	DataDir string
	Err     error
}

func (e *NoUsableDataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bird %s: no usable recording in %s: %v", e.BirdID, e.DataDir, e.Err)
	}
	return fmt.Sprintf("bird %s: no usable recording in %s", e.BirdID, e.DataDir)
}

func (e *NoUsableDataError) Unwrap() error {
	return e.Err
}

type FeatureMismatchError struct {
	Index     int
	Available int
}

func (e *FeatureMismatchError) Error() string {
	return fmt.Sprintf("feature index %d out of range, %d features available", e.Index, e.Available)
}
