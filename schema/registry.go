// Package schema is the single source of truth for what a task description
// may contain: keys per phase, valid formats and models, and the expected
// shape of every value.
package schema

import (
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

const (
	KeyBirdID         = "bird_ID"
	KeyFileFormat     = "file_format"
	KeyDataDirs       = "data_dirs"
	KeyOutputDir      = "output_dir"
	KeyLabelset       = "labelset"
	KeySpectParams    = "spect_params"
	KeySegmentParams  = "segment_params"
	KeyFeatureGroup   = "feature_group"
	KeyFeatureList    = "feature_list"
	KeyModelFile      = "model_file"
	KeyFeatureFile    = "feature_file"
	KeyModels         = "models"
	KeyNumReplicates  = "num_replicates"
	KeyNumTrain       = "num_train_samples"
	KeyNumTest        = "num_test_samples"
	KeyModelName      = "model_name"
	KeyFeatureIndices = "feature_list_indices"
	KeyHyperparams    = "hyperparameters"
)

// TypeConstraint is the set of kinds a value may take.
type TypeConstraint []domain.Kind

func OneOf(kinds ...domain.Kind) TypeConstraint {
	return kinds
}

func (t TypeConstraint) Allows(k domain.Kind) bool {
	return lo.Contains(t, k)
}

func (t TypeConstraint) String() string {
	parts := lo.Map(t, func(k domain.Kind, _ int) string { return k.String() })
	return strings.Join(parts, "|")
}

var (
	str     = OneOf(domain.KindString)
	list    = OneOf(domain.KindList)
	mapping = OneOf(domain.KindMap)
	integer = OneOf(domain.KindInt)
	number  = OneOf(domain.KindInt, domain.KindFloat)
	boolean = OneOf(domain.KindBool)
	strList = OneOf(domain.KindString, domain.KindList)
)

type phaseSchema struct {
	required map[string]TypeConstraint
	optional map[string]TypeConstraint
}

var phases = map[domain.Phase]phaseSchema{
	domain.PhaseExtract: {
		required: map[string]TypeConstraint{
			KeyBirdID:     str,
			KeyFileFormat: str,
			KeyDataDirs:   list,
			KeyOutputDir:  str,
			KeyLabelset:   strList,
		},
		optional: map[string]TypeConstraint{
			KeySpectParams:   mapping,
			KeySegmentParams: mapping,
			KeyFeatureGroup:  strList,
			KeyFeatureList:   list,
		},
	},
	domain.PhasePredict: {
		required: map[string]TypeConstraint{
			KeyFileFormat: str,
			KeyDataDirs:   list,
			KeyOutputDir:  str,
			KeyModelFile:  str,
		},
		optional: map[string]TypeConstraint{
			KeyBirdID: str,
		},
	},
	domain.PhaseSelect: {
		required: map[string]TypeConstraint{
			KeyFeatureFile: str,
			KeyOutputDir:   str,
			KeyModels:      list,
		},
		optional: map[string]TypeConstraint{
			KeyNumReplicates: integer,
			KeyNumTrain:      integer,
			KeyNumTest:       integer,
		},
	},
}

var formats = []domain.FileFormat{domain.FormatEvtaf, domain.FormatKoumura}

type modelSchema struct {
	keys  map[string]TypeConstraint
	hyper map[string]TypeConstraint
	// implicit feature group for models that take no feature selection keys
	group string
}

var models = map[domain.ModelKind]modelSchema{
	domain.ModelKNN: {
		keys: map[string]TypeConstraint{
			KeyModelName:      str,
			KeyFeatureIndices: list,
			KeyFeatureGroup:   str,
			KeyHyperparams:    mapping,
		},
		hyper: map[string]TypeConstraint{"k": integer},
	},
	domain.ModelSVM: {
		keys: map[string]TypeConstraint{
			KeyModelName:      str,
			KeyFeatureIndices: list,
			KeyFeatureGroup:   str,
			KeyHyperparams:    mapping,
		},
		hyper: map[string]TypeConstraint{"C": number, "gamma": number},
	},
	domain.ModelFlatwindow: {
		keys: map[string]TypeConstraint{
			KeyModelName:   str,
			KeyHyperparams: mapping,
		},
		hyper: map[string]TypeConstraint{"epochs": integer, "batch size": integer},
		group: "flatwindow",
	},
}

var params = map[string]map[string]TypeConstraint{
	KeySpectParams: {
		"ref":                 str,
		"nperseg":             integer,
		"noverlap":            integer,
		"freq_cutoffs":        list,
		"window":              str,
		"filter_func":         str,
		"spect_func":          str,
		"log_transform_spect": boolean,
		"syl_spect_width":     number,
	},
	KeySegmentParams: {
		"threshold":      number,
		"min_syl_dur":    number,
		"min_silent_dur": number,
	},
}

func lookupPhase(phase domain.Phase) (phaseSchema, error) {
	p, ok := phases[phase]
	if !ok {
		return phaseSchema{}, fmt.Errorf("%w: unknown phase %q", errors.ErrSchemaLookup, phase)
	}
	return p, nil
}

func sortedKeys(m map[string]TypeConstraint) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

func RequiredKeys(phase domain.Phase) ([]string, error) {
	p, err := lookupPhase(phase)
	if err != nil {
		return nil, err
	}
	return sortedKeys(p.required), nil
}

func OptionalKeys(phase domain.Phase) ([]string, error) {
	p, err := lookupPhase(phase)
	if err != nil {
		return nil, err
	}
	return sortedKeys(p.optional), nil
}

func IsKnownPhase(phase domain.Phase) bool {
	_, ok := phases[phase]
	return ok
}

// KeyType returns the expected shape of a top-level key.
func KeyType(phase domain.Phase, key string) (TypeConstraint, error) {
	p, err := lookupPhase(phase)
	if err != nil {
		return nil, err
	}
	if t, ok := p.required[key]; ok {
		return t, nil
	}
	if t, ok := p.optional[key]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: phase %s has no key %q", errors.ErrSchemaLookup, phase, key)
}

func ValidFormats() []domain.FileFormat {
	return append([]domain.FileFormat(nil), formats...)
}

func ValidModels() []domain.ModelKind {
	kinds := lo.Keys(models)
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func IsValidModel(kind domain.ModelKind) bool {
	_, ok := models[kind]
	return ok
}

func ValidModelKeys(kind domain.ModelKind) ([]string, error) {
	m, ok := models[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown model %q", errors.ErrSchemaLookup, kind)
	}
	return sortedKeys(m.keys), nil
}

// ImplicitFeatureGroup is the group a model reads when its block cannot select features.
func ImplicitFeatureGroup(kind domain.ModelKind) string {
	return models[kind].group
}

func ModelKeyType(kind domain.ModelKind, key string) (TypeConstraint, error) {
	m, ok := models[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown model %q", errors.ErrSchemaLookup, kind)
	}
	t, ok := m.keys[key]
	if !ok {
		return nil, fmt.Errorf("%w: model %s has no key %q", errors.ErrSchemaLookup, kind, key)
	}
	return t, nil
}

func HyperparameterKeys(kind domain.ModelKind) ([]string, error) {
	m, ok := models[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown model %q", errors.ErrSchemaLookup, kind)
	}
	return sortedKeys(m.hyper), nil
}

func HyperparamType(kind domain.ModelKind, key string) (TypeConstraint, error) {
	m, ok := models[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown model %q", errors.ErrSchemaLookup, kind)
	}
	t, ok := m.hyper[key]
	if !ok {
		return nil, fmt.Errorf("%w: model %s has no hyperparameter %q", errors.ErrSchemaLookup, kind, key)
	}
	return t, nil
}

// ParamKeys lists the keys of a nested parameter block (spect_params, segment_params).
func ParamKeys(block string) ([]string, error) {
	p, ok := params[block]
	if !ok {
		return nil, fmt.Errorf("%w: unknown parameter block %q", errors.ErrSchemaLookup, block)
	}
	return sortedKeys(p), nil
}

func ParamType(block, key string) (TypeConstraint, error) {
	p, ok := params[block]
	if !ok {
		return nil, fmt.Errorf("%w: unknown parameter block %q", errors.ErrSchemaLookup, block)
	}
	t, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("%w: block %s has no key %q", errors.ErrSchemaLookup, block, key)
	}
	return t, nil
}
