//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"birdsong-lab/domain"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// FormatCapability knows how one on-disk layout stores recordings and annotations.
type FormatCapability interface {
	// ListRecordings returns the recordings of a data directory in a stable order.
	ListRecordings(dataDir string) ([]domain.RecordingRef, error)
	// LoadAnnotation returns errors.ErrAnnotationNotFound when the recording is unannotated.
	LoadAnnotation(ref domain.RecordingRef) (domain.Annotation, error)
	LoadSamples(ref domain.RecordingRef) (domain.Waveform, error)
}

type FormatResolver interface {
	// Resolve returns *errors.UnsupportedFormatError for an unknown format.
	Resolve(f domain.FileFormat) (FormatCapability, error)
}

// FeatureSpec selects which features are computed and how the spectrogram is built.
type FeatureSpec struct {
	Groups     []string
	List       []string
	Spect      domain.SpectParams
	Segment    domain.SegmentParams
	// SampleRate fixes the layout of fixed-width spectrogram features.
	SampleRate int
}

type Column struct {
	Name    string
	GroupID int
}

// FeatureResult is the outcome for one syllable. Err is set when its features could not be computed.
type FeatureResult struct {
	Values []float64
	Err    error
}

type FeatureComputer interface {
	// Columns describes the layout of every vector Compute returns for spec.
	Columns(spec FeatureSpec) ([]Column, error)
	// Compute returns one result per syllable, in order.
	Compute(wave domain.Waveform, syllables []domain.Syllable, spec FeatureSpec) ([]FeatureResult, error)
}

type Classifier interface {
	Predict(x []float64) (string, error)
}

type DatasetWriter interface {
	Write(ds *domain.FeatureDataset, outputDir string) (string, error)
}

type PredictionWriter interface {
	Write(res *domain.PredictionResult, outputDir string) (string, error)
}
