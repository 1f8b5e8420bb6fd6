package task

import (
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func single(t *testing.T, phase domain.Phase, yml string) Description {
	t.Helper()
	doc, err := ParseDocument([]byte(yml))
	require.NoError(t, err)
	tasks := doc.Tasks(phase)
	require.Len(t, tasks, 1)
	return tasks[0]
}

// paramFields lists the fields of every ParamValueError in err.
func paramFields(err error) []string {
	var out []string
	var validation *errors.ValidationError
	if !stdErrors.As(err, &validation) {
		return nil
	}
	for _, v := range validation.Violations {
		var pv *errors.ParamValueError
		if stdErrors.As(v, &pv) {
			out = append(out, pv.Field)
		}
	}
	return out
}

const extractBase = `extract:
  bird_ID: gy6or6
  file_format: evtaf
  data_dirs: [data]
  output_dir: out
  labelset: iaab
`

func TestValidate_ExtractDefaults(t *testing.T) {
	req := require.New(t)

	vt, err := Validate(single(t, domain.PhaseExtract, extractBase), domain.PhaseExtract)
	req.NoError(err)
	req.True(vt.Valid())
	req.Equal(domain.PhaseExtract, vt.Phase())

	ext, ok := vt.Extract()
	req.True(ok)
	req.Equal([]string{"i", "a", "b"}, ext.Labelset)
	req.Equal([]string{"data"}, ext.DataDirs)
	req.Equal(domain.RefTachibana, ext.SpectParams.Ref)
	req.Equal(256, ext.SpectParams.Nperseg)
	req.Equal(domain.DefaultSegmentParams(), ext.SegmentParams)
	req.False(ext.SegmentParamsSet)
	req.Equal([]string{"knn"}, ext.FeatureGroups)

	_, ok = vt.Select()
	req.False(ok)
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	req := require.New(t)

	// Given a task with missing, unknown and mistyped keys and a bad format
	desc := single(t, domain.PhaseExtract, `extract:
  file_format: wav
  data_dirs: data
  output_dir: out
  colour: red
`)

	// When validating
	_, err := Validate(desc, domain.PhaseExtract)

	// Then all four problems come back together
	var validation *errors.ValidationError
	req.ErrorAs(err, &validation)
	req.Len(validation.Violations, 4)

	var missing *errors.MissingKeyError
	req.ErrorAs(err, &missing)
	req.Equal([]string{"bird_ID", "labelset"}, missing.Keys)
	var unknown *errors.UnknownKeyError
	req.ErrorAs(err, &unknown)
	req.Equal([]string{"colour"}, unknown.Keys)
	var keyType *errors.KeyTypeError
	req.ErrorAs(err, &keyType)
	req.Equal("data_dirs", keyType.Key)
	var format *errors.UnsupportedFormatError
	req.ErrorAs(err, &format)
	req.Equal("wav", format.Format)
}

func TestValidate_ExtractParams(t *testing.T) {
	tests := []struct {
		name   string
		extra  string
		fields []string
	}{
		{
			name:   "noverlap not below nperseg",
			extra:  "  spect_params: {nperseg: 128, noverlap: 256}\n",
			fields: []string{"spect_params.noverlap"},
		},
		{
			name:   "inverted freq cutoffs",
			extra:  "  spect_params: {ref: tachibana, freq_cutoffs: [8000, 1000]}\n",
			fields: []string{"spect_params.freq_cutoffs"},
		},
		{
			name:   "unknown ref",
			extra:  "  spect_params: {ref: bengalese, nperseg: 256, noverlap: 128}\n  segment_params: {threshold: -1}\n",
			fields: []string{"spect_params.ref", "segment_params.threshold"},
		},
		{
			name:   "flatwindow without fixed width",
			extra:  "  feature_group: flatwindow\n",
			fields: []string{"spect_params.syl_spect_width"},
		},
		{
			name:   "unknown feature names",
			extra:  "  feature_group: [knn, fancy]\n  feature_list: [duration, loudness]\n",
			fields: []string{"feature_group", "feature_list"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(single(t, domain.PhaseExtract, extractBase+tt.extra), domain.PhaseExtract)
			require.Error(t, err)
			require.ElementsMatch(t, tt.fields, paramFields(err))
		})
	}
}

func TestValidate_ExtractExplicitParams(t *testing.T) {
	req := require.New(t)
	desc := single(t, domain.PhaseExtract, extractBase+`  spect_params: {ref: koumura, syl_spect_width: 0.3}
  segment_params: {threshold: 3000}
  feature_group: [knn, flatwindow]
`)

	vt, err := Validate(desc, domain.PhaseExtract)
	req.NoError(err)
	ext, _ := vt.Extract()
	req.Equal(domain.RefKoumura, ext.SpectParams.Ref)
	req.Equal(0.3, ext.SpectParams.SylSpectWidth)
	req.True(ext.SegmentParamsSet)
	req.Equal(3000.0, ext.SegmentParams.Threshold)
	req.Equal(domain.DefaultSegmentParams().MinSylDur, ext.SegmentParams.MinSylDur)
	req.Equal([]string{"knn", "flatwindow"}, ext.FeatureGroups)
}

func TestValidate_Labelset(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
		err   bool
	}{
		{"characters", "iab", []string{"i", "a", "b"}, false},
		{"list of ints", "[1, 2, 2]", []string{"1", "2"}, false},
		{"empty string", `""`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := single(t, domain.PhaseExtract, `extract:
  bird_ID: gy6or6
  file_format: evtaf
  data_dirs: [data]
  output_dir: out
  labelset: `+tt.value+"\n")
			vt, err := Validate(desc, domain.PhaseExtract)
			if tt.err {
				require.Equal(t, []string{"labelset"}, paramFields(err))
				return
			}
			require.NoError(t, err)
			ext, _ := vt.Extract()
			require.Equal(t, tt.want, ext.Labelset)
		})
	}
}

func TestValidate_Select(t *testing.T) {
	req := require.New(t)
	desc := single(t, domain.PhaseSelect, `select:
  feature_file: f.hvc
  output_dir: out
  num_train_samples: 50
  models:
    - model_name: knn
      feature_list_indices: [0, 2]
      hyperparameters: {k: 3}
    - model_name: svm
      feature_group: svm
      hyperparameters: {C: 1, gamma: 0.5}
    - model_name: flatwindow
      hyperparameters: {epochs: 10, "batch size": 8}
`)

	vt, err := Validate(desc, domain.PhaseSelect)
	req.NoError(err)
	sel, ok := vt.Select()
	req.True(ok)
	req.Equal(1, sel.NumReplicates)
	req.Equal(50, sel.NumTrainSamples)
	req.Zero(sel.NumTestSamples)
	req.Len(sel.Models, 3)
	req.Equal([]int{0, 2}, sel.Models[0].FeatureListIndices)
	req.Equal(3, sel.Models[0].IntParam("k", 0))
	req.Equal("svm", sel.Models[1].FeatureGroup)
	req.Equal(0.5, sel.Models[1].FloatParam("gamma", 0))
	req.Equal("flatwindow", sel.Models[2].FeatureGroup)
}

func TestValidate_SelectViolations(t *testing.T) {
	req := require.New(t)
	desc := single(t, domain.PhaseSelect, `select:
  feature_file: f.hvc
  output_dir: out
  num_replicates: 0
  models:
    - model_name: rf
    - model_name: knn
      colour: red
      hyperparameters: {k: -1}
    - model_name: svm
      hyperparameters: {C: big}
`)

	_, err := Validate(desc, domain.PhaseSelect)

	var unknownModel *errors.UnknownModelError
	req.ErrorAs(err, &unknownModel)
	req.Equal(0, unknownModel.Index)
	req.Equal("rf", unknownModel.Name)
	var unknownKey *errors.UnknownModelKeyError
	req.ErrorAs(err, &unknownKey)
	req.Equal("knn", unknownKey.Model)
	req.Equal([]string{"colour"}, unknownKey.Keys)
	var hyperType *errors.HyperparameterTypeError
	req.ErrorAs(err, &hyperType)
	req.Equal("svm", hyperType.Model)
	req.Equal("C", hyperType.Key)
	req.ElementsMatch([]string{"num_replicates", "knn.hyperparameters.k"}, paramFields(err))
}

func TestValidate_EmptyModels(t *testing.T) {
	desc := single(t, domain.PhaseSelect, "select:\n  feature_file: f.hvc\n  output_dir: out\n  models: []\n")
	_, err := Validate(desc, domain.PhaseSelect)
	require.Equal(t, []string{"models"}, paramFields(err))
}

func TestValidate_Predict(t *testing.T) {
	req := require.New(t)
	desc := single(t, domain.PhasePredict, `predict:
  file_format: koumura
  data_dirs: [a, b]
  output_dir: out
  model_file: m.hvcmodel
`)
	vt, err := Validate(desc, domain.PhasePredict)
	req.NoError(err)
	p, ok := vt.Predict()
	req.True(ok)
	req.Equal(domain.FormatKoumura, p.FileFormat)
	req.Equal([]string{"a", "b"}, p.DataDirs)
	req.Empty(p.BirdID)
}

func TestValidate_UnknownPhase(t *testing.T) {
	_, err := Validate(Description{}, "train")
	require.ErrorIs(t, err, errors.ErrSchemaLookup)
}

func TestValidatedTask_ZeroValueIsInvalid(t *testing.T) {
	req := require.New(t)
	var vt ValidatedTask
	req.False(vt.Valid())
	_, ok := vt.Extract()
	req.False(ok)
	_, ok = vt.Predict()
	req.False(ok)
}

func TestValidatedTask_RawIsACopy(t *testing.T) {
	req := require.New(t)
	vt, err := Validate(single(t, domain.PhaseExtract, extractBase), domain.PhaseExtract)
	req.NoError(err)

	raw := vt.Raw()
	raw["bird_ID"] = domain.StringValue("changed")
	req.Equal("gy6or6", stringKey(vt.Raw(), "bird_ID"))
}

func TestValidateModelSpec(t *testing.T) {
	tests := []struct {
		name string
		spec domain.ModelSpec
		ok   bool
	}{
		{
			name: "restored knn",
			spec: domain.ModelSpec{Kind: domain.ModelKNN, FeatureListIndices: []int{1, 4}, Hyperparameters: map[string]domain.Value{"k": domain.IntValue(3)}},
			ok:   true,
		},
		{
			name: "implicit flatwindow group",
			spec: domain.ModelSpec{Kind: domain.ModelFlatwindow, FeatureGroup: "flatwindow"},
			ok:   true,
		},
		{
			name: "negative index",
			spec: domain.ModelSpec{Kind: domain.ModelSVM, FeatureListIndices: []int{-1}},
		},
		{
			name: "unknown model",
			spec: domain.ModelSpec{Kind: "rf"},
		},
		{
			name: "restored svm with zero C",
			spec: domain.ModelSpec{Kind: domain.ModelSVM, Hyperparameters: map[string]domain.Value{"C": domain.FloatValue(0)}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateModelSpec(tt.spec)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
		})
	}
}

func selectWith(t *testing.T, model string) Description {
	t.Helper()
	return single(t, domain.PhaseSelect, "select:\n  feature_file: f.hvc\n  output_dir: out\n  models:\n"+model)
}

func TestValidate_HyperparametersMustBePositive(t *testing.T) {
	tests := []struct {
		name  string
		model string
		field string
	}{
		{"knn k", "    - model_name: knn\n      hyperparameters: {k: 0}\n", "knn.hyperparameters.k"},
		{"svm C", "    - model_name: svm\n      hyperparameters: {C: 0}\n", "svm.hyperparameters.C"},
		{"svm gamma", "    - model_name: svm\n      hyperparameters: {gamma: 0.0}\n", "svm.hyperparameters.gamma"},
		{"flatwindow epochs", "    - model_name: flatwindow\n      hyperparameters: {epochs: 0}\n", "flatwindow.hyperparameters.epochs"},
		{"flatwindow batch size", "    - model_name: flatwindow\n      hyperparameters: {\"batch size\": 0}\n", "flatwindow.hyperparameters.batch size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(selectWith(t, tt.model), domain.PhaseSelect)
			require.Equal(t, []string{tt.field}, paramFields(err))
		})
	}
}

func TestValidate_SvmFloatC(t *testing.T) {
	req := require.New(t)
	vt, err := Validate(selectWith(t, "    - model_name: svm\n      hyperparameters: {C: 0.5}\n"), domain.PhaseSelect)
	req.NoError(err)
	sel, _ := vt.Select()
	req.Equal(0.5, sel.Models[0].FloatParam("C", 1))
}

func TestValidate_HyperparameterOfAnotherModel(t *testing.T) {
	tests := []struct {
		name  string
		model string
	}{
		{"in hyperparameters", "    - model_name: knn\n      hyperparameters: {k: 3, gamma: 1}\n"},
		{"in the block and in hyperparameters", "    - model_name: knn\n      gamma: 1\n      hyperparameters: {gamma: 1}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(selectWith(t, tt.model), domain.PhaseSelect)

			var unknown *errors.UnknownModelKeyError
			require.ErrorAs(t, err, &unknown)
			require.Equal(t, "knn", unknown.Model)
			require.Equal(t, []string{"gamma"}, unknown.Keys)
		})
	}
}

func TestValidate_EmptyDataDirs(t *testing.T) {
	tests := []struct {
		phase domain.Phase
		yml   string
	}{
		{domain.PhaseExtract, "extract:\n  bird_ID: gy6or6\n  file_format: evtaf\n  data_dirs: []\n  output_dir: out\n  labelset: iab\n"},
		{domain.PhasePredict, "predict:\n  file_format: evtaf\n  data_dirs: []\n  output_dir: out\n  model_file: m.hvcmodel\n"},
	}
	for _, tt := range tests {
		t.Run(string(tt.phase), func(t *testing.T) {
			_, err := Validate(single(t, tt.phase, tt.yml), tt.phase)
			require.Equal(t, []string{"data_dirs"}, paramFields(err))
		})
	}
}

func TestValidatedTask_AccessorsReturnCopies(t *testing.T) {
	req := require.New(t)
	vt, err := Validate(single(t, domain.PhaseExtract, extractBase), domain.PhaseExtract)
	req.NoError(err)

	// When a caller edits the slices it got back
	ext, _ := vt.Extract()
	ext.DataDirs[0] = "elsewhere"
	ext.Labelset[0] = "z"
	ext.FeatureGroups[0] = "svm"

	// Then the validated task is unchanged
	again, _ := vt.Extract()
	req.Equal([]string{"data"}, again.DataDirs)
	req.Equal([]string{"i", "a", "b"}, again.Labelset)
	req.Equal([]string{"knn"}, again.FeatureGroups)

	sel, err := Validate(selectWith(t, "    - model_name: knn\n      feature_list_indices: [0, 1]\n"), domain.PhaseSelect)
	req.NoError(err)
	st, _ := sel.Select()
	st.Models[0].FeatureListIndices[0] = 9
	st.Models[0].Hyperparameters["k"] = domain.IntValue(0)
	st, _ = sel.Select()
	req.Equal([]int{0, 1}, st.Models[0].FeatureListIndices)
	req.NotContains(st.Models[0].Hyperparameters, "k")
}
