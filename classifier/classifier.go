// Package classifier trains and restores the syllable classifiers. Each model
// kind registers a capability; dispatch goes through that table only.
package classifier

import (
	"birdsong-lab/contract"
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
)

type Fitted interface {
	contract.Classifier
	// Store copies the learned parameters into the artifact.
	Store(m *TrainedModel)
}

// Capability is what a model kind provides: training on scaled rows and
// rebuilding from an artifact.
type Capability struct {
	Train   func(spec domain.ModelSpec, x [][]float64, y []string, seed uint64) (Fitted, error)
	Restore func(m *TrainedModel) (Fitted, error)
}

var (
	mu           sync.RWMutex
	capabilities = map[domain.ModelKind]Capability{}
)

func init() {
	Register(domain.ModelKNN, Capability{Train: trainKNN, Restore: restoreKNN})
	Register(domain.ModelSVM, Capability{Train: trainSVM, Restore: restoreSVM})
	Register(domain.ModelFlatwindow, Capability{Train: trainFlatwindow, Restore: restoreFlatwindow})
}

func Register(kind domain.ModelKind, c Capability) {
	mu.Lock()
	defer mu.Unlock()
	capabilities[kind] = c
}

func lookup(kind domain.ModelKind) (Capability, error) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := capabilities[kind]
	if !ok {
		return Capability{}, &errors.UnknownModelError{Index: -1, Name: string(kind)}
	}
	return c, nil
}

// scaled standardises a row before handing it to the model.
type scaled struct {
	scaler *Scaler
	model  contract.Classifier
}

func (s *scaled) Predict(x []float64) (string, error) {
	row, err := s.scaler.Transform(x)
	if err != nil {
		return "", err
	}
	return s.model.Predict(row)
}

// TrainInput is a training set already restricted to the model's columns.
type TrainInput struct {
	Spec       domain.ModelSpec
	Columns    []int
	X          [][]float64
	Y          []string
	Extraction Extraction
	Seed       uint64
}

// Train fits a scaler and the model. The returned classifier takes unscaled rows.
func Train(in TrainInput) (*TrainedModel, contract.Classifier, error) {
	if len(in.X) == 0 || len(in.X) != len(in.Y) {
		return nil, nil, fmt.Errorf("%w: %d rows, %d labels", errors.ErrEmptyDataset, len(in.X), len(in.Y))
	}
	c, err := lookup(in.Spec.Kind)
	if err != nil {
		return nil, nil, err
	}
	scaler, err := FitScaler(in.X)
	if err != nil {
		return nil, nil, err
	}
	x, err := scaler.TransformAll(in.X)
	if err != nil {
		return nil, nil, err
	}
	model, err := c.Train(in.Spec, x, in.Y, in.Seed)
	if err != nil {
		return nil, nil, fmt.Errorf("train %s: %w", in.Spec.Kind, err)
	}
	m := &TrainedModel{
		Version:            ArtifactVersion,
		Kind:               in.Spec.Kind,
		FeatureGroup:       in.Spec.FeatureGroup,
		FeatureListIndices: in.Spec.FeatureListIndices,
		Hyperparameters:    hyperparametersOf(in.Spec),
		Columns:            in.Columns,
		Classes:            sortedClasses(in.Y),
		Extraction:         in.Extraction,
		Scaler:             scaler,
		CreatedAt:          time.Now().UTC(),
	}
	model.Store(m)
	return m, &scaled{scaler: scaler, model: model}, nil
}

// Restore binds the inference capability of a loaded artifact.
func Restore(m *TrainedModel) (contract.Classifier, error) {
	c, err := lookup(m.Kind)
	if err != nil {
		return nil, err
	}
	model, err := c.Restore(m)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", m.Kind, err)
	}
	return &scaled{scaler: m.Scaler, model: model}, nil
}

func sortedClasses(y []string) []string {
	classes := lo.Uniq(y)
	sort.Strings(classes)
	return classes
}

func indexOf(classes []string, label string) int {
	return lo.IndexOf(classes, label)
}
