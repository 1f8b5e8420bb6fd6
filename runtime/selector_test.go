package runtime_test

import (
	"birdsong-lab/classifier"
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"birdsong-lab/format/formattest"
	"birdsong-lab/runtime"
	"birdsong-lab/sink"
	"context"
	stdErrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// featureFile extracts n recordings of dir and writes the summary feature file.
func featureFile(t *testing.T, dir string, n int) string {
	t.Helper()
	formattest.EvtafDir(t, dir, n)
	vt := validated(t, domain.PhaseExtract, extractYAML("gy6or6", domain.FormatEvtaf, t.TempDir(), "iab", dir))
	ds, err := newExtractor(2).Extract(context.Background(), vt)
	require.NoError(t, err)
	path, err := sink.NewDatasetSink(discard()).Write(ds, t.TempDir())
	require.NoError(t, err)
	return path
}

func selectYAML(featureFile, outputDir, extra string) string {
	return fmt.Sprintf(`select:
  feature_file: %q
  output_dir: %q
  num_replicates: 2
  models:
    - model_name: knn
      hyperparameters:
        k: 3
    - model_name: svm
%s`, featureFile, outputDir, extra)
}

func newSelector() *runtime.Selector {
	return runtime.NewSelector(discard(), sink.LoadDataset, sink.NewModelSink(discard()))
}

func TestSelector_TrainsEveryBlock(t *testing.T) {
	req := require.New(t)
	file := featureFile(t, birdDir(t, "gy6or6", "032312"), 4)
	out := t.TempDir()
	vt := validated(t, domain.PhaseSelect, selectYAML(file, out, ""))

	res, err := newSelector().Select(context.Background(), vt)

	req.NoError(err)
	req.Len(res.Models, 2)
	req.DirExists(res.RunDir)
	req.FileExists(filepath.Join(res.RunDir, "summary_model_select_file.json"))
	for i, m := range res.Models {
		req.Equal(i, m.Index)
		req.Len(m.Replicates, 2)
		for _, r := range m.Replicates {
			// 24 labelled rows split 80/20
			req.Equal(19, r.TrainSamples)
			req.Equal(5, r.TestSamples)
			req.GreaterOrEqual(r.Accuracy, 0.0)
			req.LessOrEqual(r.Accuracy, 1.0)
			req.FileExists(r.ModelFile)
		}
	}
	// Identical copies of each syllable are in the training rows
	req.GreaterOrEqual(res.Models[0].MeanAccuracy, 0.9)

	m, err := classifier.Load(res.Models[0].Replicates[0].ModelFile)
	req.NoError(err)
	req.Equal(domain.ModelKNN, m.Kind)
	req.Equal([]string{"a", "b", "i"}, m.Classes)
	req.Equal(formattest.SampleRate, m.Extraction.SampleRate)
}

func TestSelector_Deterministic(t *testing.T) {
	req := require.New(t)
	file := featureFile(t, t.TempDir(), 3)

	first, err := newSelector().Select(context.Background(), validated(t, domain.PhaseSelect, selectYAML(file, t.TempDir(), "")))
	req.NoError(err)
	second, err := newSelector().Select(context.Background(), validated(t, domain.PhaseSelect, selectYAML(file, t.TempDir(), "")))
	req.NoError(err)

	for i := range first.Models {
		for r := range first.Models[i].Replicates {
			req.Equal(first.Models[i].Replicates[r].Accuracy, second.Models[i].Replicates[r].Accuracy)
		}
	}
}

func TestSelector_Rejects(t *testing.T) {
	file := featureFile(t, t.TempDir(), 2)

	tests := []struct {
		name  string
		yml   string
		check func(t *testing.T, err error)
	}{
		{
			name: "more samples than rows",
			yml:  selectYAML(file, t.TempDir(), "  num_train_samples: 10\n  num_test_samples: 5\n"),
			check: func(t *testing.T, err error) {
				var paramErr *errors.ParamValueError
				require.True(t, stdErrors.As(err, &paramErr), "got %v", err)
			},
		},
		{
			name: "feature index outside the layout",
			yml: fmt.Sprintf(`select:
  feature_file: %q
  output_dir: %q
  models:
    - model_name: knn
      feature_list_indices: [0, 999]
`, file, t.TempDir()),
			check: func(t *testing.T, err error) {
				var mismatch *errors.FeatureMismatchError
				require.True(t, stdErrors.As(err, &mismatch), "got %v", err)
				require.Equal(t, 999, mismatch.Index)
			},
		},
		{
			name: "feature group not extracted",
			yml: fmt.Sprintf(`select:
  feature_file: %q
  output_dir: %q
  models:
    - model_name: flatwindow
`, file, t.TempDir()),
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, errors.ErrDatasetFile)
			},
		},
		{
			name: "missing feature file",
			yml:  selectYAML(filepath.Join(t.TempDir(), "none.hvc"), t.TempDir(), ""),
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, errors.ErrDatasetFile)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vt := validated(t, domain.PhaseSelect, tt.yml)
			res, err := newSelector().Select(context.Background(), vt)
			require.Nil(t, res)
			tt.check(t, err)
		})
	}
}

func TestSelector_TrainsOnLabelledRowsOnly(t *testing.T) {
	req := require.New(t)
	file := featureFile(t, t.TempDir(), 2)
	ds, err := sink.LoadDataset(file)
	req.NoError(err)

	// Given a dataset where half the rows carry no label
	for i := range ds.Vectors {
		if i%2 == 0 {
			ds.Vectors[i].Label = ""
		}
	}
	load := func(string) (*domain.FeatureDataset, error) { return ds, nil }
	vt := validated(t, domain.PhaseSelect, selectYAML(file, t.TempDir(), ""))

	res, err := runtime.NewSelector(discard(), load, sink.NewModelSink(discard())).Select(context.Background(), vt)

	req.NoError(err)
	rep := res.Models[0].Replicates[0]
	req.Equal(4, rep.TrainSamples)
	req.Equal(2, rep.TestSamples)
}

func TestSelector_Canceled(t *testing.T) {
	file := featureFile(t, t.TempDir(), 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := t.TempDir()

	_, err := newSelector().Select(ctx, validated(t, domain.PhaseSelect, selectYAML(file, out, "")))
	require.ErrorIs(t, err, context.Canceled)

	// No summary is written for a canceled run
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	for _, e := range entries {
		require.NoFileExists(t, filepath.Join(out, e.Name(), "summary_model_select_file.json"))
	}
}
