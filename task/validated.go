package task

import (
	"birdsong-lab/domain"
	"maps"
	"slices"
)

type ExtractTask struct {
	BirdID           string
	FileFormat       domain.FileFormat
	DataDirs         []string
	OutputDir        string
	Labelset         []string
	SpectParams      domain.SpectParams
	SegmentParams    domain.SegmentParams
	// SegmentParamsSet is true when segment_params was given explicitly.
	SegmentParamsSet bool
	FeatureGroups    []string
	FeatureList      []string
}

type PredictTask struct {
	FileFormat domain.FileFormat
	DataDirs   []string
	OutputDir  string
	ModelFile  string
	BirdID     string
}

type SelectTask struct {
	FeatureFile     string
	OutputDir       string
	Models          []domain.ModelSpec
	NumReplicates   int
	NumTrainSamples int
	NumTestSamples  int
}

// ValidatedTask can only be built by Validate. Drivers refuse the zero value.
type ValidatedTask struct {
	phase   domain.Phase
	raw     Description
	extract *ExtractTask
	predict *PredictTask
	sel     *SelectTask
}

func (v ValidatedTask) Phase() domain.Phase { return v.phase }

// Valid is false for a zero ValidatedTask.
func (v ValidatedTask) Valid() bool {
	return v.phase != "" && (v.extract != nil || v.predict != nil || v.sel != nil)
}

// Raw returns a copy of the description the task was validated from.
func (v ValidatedTask) Raw() Description {
	return v.raw.Clone()
}

// Extract, Predict and Select return copies: callers cannot change the
// validated task through the slices they get back.
func (v ValidatedTask) Extract() (ExtractTask, bool) {
	if v.extract == nil {
		return ExtractTask{}, false
	}
	t := *v.extract
	t.DataDirs = slices.Clone(t.DataDirs)
	t.Labelset = slices.Clone(t.Labelset)
	t.FeatureGroups = slices.Clone(t.FeatureGroups)
	t.FeatureList = slices.Clone(t.FeatureList)
	t.SpectParams.FreqCutoffs = slices.Clone(t.SpectParams.FreqCutoffs)
	return t, true
}

func (v ValidatedTask) Predict() (PredictTask, bool) {
	if v.predict == nil {
		return PredictTask{}, false
	}
	t := *v.predict
	t.DataDirs = slices.Clone(t.DataDirs)
	return t, true
}

func (v ValidatedTask) Select() (SelectTask, bool) {
	if v.sel == nil {
		return SelectTask{}, false
	}
	t := *v.sel
	t.Models = make([]domain.ModelSpec, len(v.sel.Models))
	for i, m := range v.sel.Models {
		m.FeatureListIndices = slices.Clone(m.FeatureListIndices)
		m.Hyperparameters = maps.Clone(m.Hyperparameters)
		t.Models[i] = m
	}
	return t, true
}
