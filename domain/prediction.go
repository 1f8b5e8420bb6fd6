package domain

import "time"

type Prediction struct {
	BirdID    string  `json:"bird_id"`
	Recording string  `json:"recording"`
	Index     int     `json:"index"`
	OnsetS    float64 `json:"onset_s"`
	OffsetS   float64 `json:"offset_s"`
	Label     string  `json:"label"`
	TrueLabel string  `json:"true_label,omitempty"`
}

// PredictionSummary carries scores only when ground-truth labels were available.
// SyllableErrorRate is the edit distance between true and predicted label
// sequences of each recording, summed and divided by the labelled syllables.
type PredictionSummary struct {
	Syllables         int      `json:"syllables"`
	Labeled           int      `json:"labeled"`
	Mismatched        int      `json:"mismatched"`
	AverageAccuracy   *float64 `json:"average_accuracy,omitempty"`
	FrameError        *float64 `json:"frame_error,omitempty"`
	SyllableErrorRate *float64 `json:"syllable_error_rate,omitempty"`
}

type PredictionResult struct {
	ModelFile   string            `json:"model_file"`
	ModelKind   ModelKind         `json:"model_kind"`
	BirdID      string            `json:"bird_id,omitempty"`
	Predictions []Prediction      `json:"predictions"`
	Summary     PredictionSummary `json:"summary"`
	Warnings    []Warning         `json:"warnings,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (r *PredictionResult) Labels() []string {
	out := make([]string, len(r.Predictions))
	for i, p := range r.Predictions {
		out[i] = p.Label
	}
	return out
}

type ReplicateScore struct {
	Replicate    int     `json:"replicate"`
	TrainSamples int     `json:"train_samples"`
	TestSamples  int     `json:"test_samples"`
	Accuracy     float64 `json:"accuracy"`
	ModelFile    string  `json:"model_file"`
}

type ModelScore struct {
	Index              int              `json:"index"`
	Kind               ModelKind        `json:"model_name"`
	FeatureGroup       string           `json:"feature_group,omitempty"`
	FeatureListIndices []int            `json:"feature_list_indices,omitempty"`
	Replicates         []ReplicateScore `json:"replicates"`
	MeanAccuracy       float64          `json:"mean_accuracy"`
}

type SelectResult struct {
	FeatureFile string       `json:"feature_file"`
	RunDir      string       `json:"run_dir"`
	Models      []ModelScore `json:"models"`
	CreatedAt   time.Time    `json:"created_at"`
}
