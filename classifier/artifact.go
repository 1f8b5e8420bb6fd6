package classifier

import (
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	ArtifactVersion = 1
	artifactMagic   = "hvcmodel"
)

// Extraction records how the training features were computed, so prediction
// can rebuild the same columns from raw recordings.
type Extraction struct {
	BirdID        string               `msgpack:"bird_id"`
	FileFormat    domain.FileFormat    `msgpack:"file_format"`
	Labelset      []string             `msgpack:"labelset"`
	FeatureNames  []string             `msgpack:"feature_names"`
	FeatureGroups []string             `msgpack:"feature_groups"`
	FeatureList   []string             `msgpack:"feature_list"`
	SpectParams   domain.SpectParams   `msgpack:"spect_params"`
	SegmentParams domain.SegmentParams `msgpack:"segment_params"`
	SampleRate    int                  `msgpack:"sample_rate"`
}

func ExtractionOf(ds *domain.FeatureDataset) Extraction {
	return Extraction{
		BirdID:        ds.BirdID,
		FileFormat:    ds.FileFormat,
		Labelset:      ds.Labelset,
		FeatureNames:  ds.FeatureNames,
		FeatureGroups: ds.FeatureGroups,
		FeatureList:   ds.FeatureList,
		SpectParams:   ds.SpectParams,
		SegmentParams: ds.SegmentParams,
		SampleRate:    ds.SampleRate,
	}
}

// TrainedModel is the persisted artifact. Exactly one of the state fields is set,
// matching Kind.
type TrainedModel struct {
	Version            int              `msgpack:"version"`
	Kind               domain.ModelKind `msgpack:"kind"`
	FeatureGroup       string           `msgpack:"feature_group"`
	FeatureListIndices []int            `msgpack:"feature_list_indices"`
	Hyperparameters    map[string]any   `msgpack:"hyperparameters"`
	// Columns index the extraction layout, in the order the model consumes them.
	Columns            []int            `msgpack:"columns"`
	Classes            []string         `msgpack:"classes"`
	Extraction         Extraction       `msgpack:"extraction"`
	Scaler             *Scaler          `msgpack:"scaler"`

	KNN        *KNNState        `msgpack:"knn,omitempty"`
	SVM        *SVMState        `msgpack:"svm,omitempty"`
	Flatwindow *FlatwindowState `msgpack:"flatwindow,omitempty"`

	CreatedAt time.Time `msgpack:"created_at"`
}

// Spec rebuilds the model block the artifact was trained from.
func (m *TrainedModel) Spec() (domain.ModelSpec, error) {
	spec := domain.ModelSpec{
		Kind:               m.Kind,
		FeatureGroup:       m.FeatureGroup,
		FeatureListIndices: m.FeatureListIndices,
		Hyperparameters:    map[string]domain.Value{},
	}
	keys := make([]string, 0, len(m.Hyperparameters))
	for k := range m.Hyperparameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, err := domain.FromAny(m.Hyperparameters[k])
		if err != nil {
			return domain.ModelSpec{}, fmt.Errorf("%w: hyperparameter %s: %v", errors.ErrModelFile, k, err)
		}
		spec.Hyperparameters[k] = v
	}
	return spec, nil
}

func hyperparametersOf(spec domain.ModelSpec) map[string]any {
	out := make(map[string]any, len(spec.Hyperparameters))
	for k, v := range spec.Hyperparameters {
		out[k] = v.ToAny()
	}
	return out
}

type envelope struct {
	Magic   string             `msgpack:"magic"`
	Version int                `msgpack:"version"`
	Model   msgpack.RawMessage `msgpack:"model"`
}

func Save(path string, m *TrainedModel) error {
	body, err := msgpack.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	raw, err := msgpack.Marshal(envelope{Magic: artifactMagic, Version: ArtifactVersion, Model: body})
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// Load returns errors.ErrModelFile when the file is not a model artifact
// this version can read.
func Load(path string) (*TrainedModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrModelFile, err)
	}
	var env envelope
	if err := msgpack.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrModelFile, path, err)
	}
	if env.Magic != artifactMagic {
		return nil, fmt.Errorf("%w: %s is not a model artifact", errors.ErrModelFile, path)
	}
	if env.Version != ArtifactVersion {
		return nil, fmt.Errorf("%w: %s has version %d, expected %d", errors.ErrModelFile, path, env.Version, ArtifactVersion)
	}
	var m TrainedModel
	if err := msgpack.Unmarshal(env.Model, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrModelFile, path, err)
	}
	if m.Scaler == nil || len(m.Classes) == 0 {
		return nil, fmt.Errorf("%w: %s is incomplete", errors.ErrModelFile, path)
	}
	return &m, nil
}
