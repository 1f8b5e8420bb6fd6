package schema

import (
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequiredKeys(t *testing.T) {
	tests := []struct {
		phase domain.Phase
		want  []string
	}{
		{domain.PhaseExtract, []string{"bird_ID", "data_dirs", "file_format", "labelset", "output_dir"}},
		{domain.PhasePredict, []string{"data_dirs", "file_format", "model_file", "output_dir"}},
		{domain.PhaseSelect, []string{"feature_file", "models", "output_dir"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.phase), func(t *testing.T) {
			got, err := RequiredKeys(tt.phase)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestOptionalKeys_DisjointFromRequired(t *testing.T) {
	req := require.New(t)
	for _, phase := range domain.Phases() {
		required, err := RequiredKeys(phase)
		req.NoError(err)
		optional, err := OptionalKeys(phase)
		req.NoError(err)
		for _, k := range optional {
			req.NotContains(required, k, "phase %s", phase)
		}
	}
}

func TestUnknownPhase(t *testing.T) {
	req := require.New(t)
	_, err := RequiredKeys("train")
	req.True(stdErrors.Is(err, errors.ErrSchemaLookup))
	req.False(IsKnownPhase("train"))
}

func TestValidModelKeys(t *testing.T) {
	req := require.New(t)

	keys, err := ValidModelKeys(domain.ModelKNN)
	req.NoError(err)
	req.Equal([]string{"feature_group", "feature_list_indices", "hyperparameters", "model_name"}, keys)

	keys, err = ValidModelKeys(domain.ModelFlatwindow)
	req.NoError(err)
	req.Equal([]string{"hyperparameters", "model_name"}, keys)

	_, err = ValidModelKeys("random_forest")
	req.True(stdErrors.Is(err, errors.ErrSchemaLookup))
}

func TestHyperparamType(t *testing.T) {
	tests := []struct {
		name    string
		kind    domain.ModelKind
		key     string
		allowed []domain.Kind
		denied  []domain.Kind
		wantErr bool
	}{
		{"knn k is int", domain.ModelKNN, "k", []domain.Kind{domain.KindInt}, []domain.Kind{domain.KindFloat, domain.KindString}, false},
		{"svm C is numeric", domain.ModelSVM, "C", []domain.Kind{domain.KindInt, domain.KindFloat}, []domain.Kind{domain.KindString}, false},
		{"svm gamma is numeric", domain.ModelSVM, "gamma", []domain.Kind{domain.KindInt, domain.KindFloat}, []domain.Kind{domain.KindBool}, false},
		{"flatwindow batch size", domain.ModelFlatwindow, "batch size", []domain.Kind{domain.KindInt}, []domain.Kind{domain.KindFloat}, false},
		{"knn has no gamma", domain.ModelKNN, "gamma", nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			tc, err := HyperparamType(tt.kind, tt.key)
			if tt.wantErr {
				req.ErrorIs(err, errors.ErrSchemaLookup)
				return
			}
			req.NoError(err)
			for _, k := range tt.allowed {
				req.True(tc.Allows(k), k.String())
			}
			for _, k := range tt.denied {
				req.False(tc.Allows(k), k.String())
			}
		})
	}
}

func TestTypeConstraintString(t *testing.T) {
	require.Equal(t, "int|float", OneOf(domain.KindInt, domain.KindFloat).String())
}

func TestValidFormatsAndModels(t *testing.T) {
	req := require.New(t)
	req.Equal([]domain.FileFormat{domain.FormatEvtaf, domain.FormatKoumura}, ValidFormats())
	req.Equal([]domain.ModelKind{domain.ModelFlatwindow, domain.ModelKNN, domain.ModelSVM}, ValidModels())
	req.Equal("flatwindow", ImplicitFeatureGroup(domain.ModelFlatwindow))
	req.Empty(ImplicitFeatureGroup(domain.ModelKNN))
}

func TestParamType(t *testing.T) {
	req := require.New(t)
	tc, err := ParamType(KeySpectParams, "nperseg")
	req.NoError(err)
	req.True(tc.Allows(domain.KindInt))
	req.False(tc.Allows(domain.KindFloat))

	_, err = ParamType(KeySegmentParams, "nperseg")
	req.ErrorIs(err, errors.ErrSchemaLookup)
}
