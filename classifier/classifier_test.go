package classifier

import (
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// blobs draws n rows per label around well separated centres.
func blobs(n int, seed uint64) ([][]float64, []string) {
	rng := rand.New(rand.NewPCG(seed, 1))
	centres := map[string][]float64{
		"a": {0, 0, 0},
		"b": {10, 10, 0},
		"c": {0, 10, 10},
	}
	var x [][]float64
	var y []string
	for _, label := range []string{"a", "b", "c"} {
		for i := 0; i < n; i++ {
			c := centres[label]
			x = append(x, []float64{c[0] + rng.NormFloat64(), c[1] + rng.NormFloat64(), c[2] + rng.NormFloat64()})
			y = append(y, label)
		}
	}
	return x, y
}

func accuracy(t *testing.T, predict func([]float64) (string, error), x [][]float64, y []string) float64 {
	t.Helper()
	hits := 0
	for i, row := range x {
		got, err := predict(row)
		require.NoError(t, err)
		if got == y[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(x))
}

func TestTrain_SeparableBlobs(t *testing.T) {
	trainX, trainY := blobs(30, 1)
	testX, testY := blobs(10, 2)

	tests := []struct {
		name string
		spec domain.ModelSpec
	}{
		{name: "knn", spec: domain.ModelSpec{Kind: domain.ModelKNN, Hyperparameters: map[string]domain.Value{"k": domain.IntValue(3)}}},
		{name: "svm", spec: domain.ModelSpec{Kind: domain.ModelSVM, Hyperparameters: map[string]domain.Value{"C": domain.FloatValue(10), "gamma": domain.FloatValue(0.5)}}},
		{name: "flatwindow", spec: domain.ModelSpec{Kind: domain.ModelFlatwindow, Hyperparameters: map[string]domain.Value{"epochs": domain.IntValue(30), "batch size": domain.IntValue(8)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			m, clf, err := Train(TrainInput{Spec: tt.spec, Columns: []int{0, 1, 2}, X: trainX, Y: trainY, Seed: 7})
			req.NoError(err)
			req.Equal([]string{"a", "b", "c"}, m.Classes)
			req.GreaterOrEqual(accuracy(t, clf.Predict, testX, testY), 0.9)

			// Restored from disk, the model predicts exactly as before
			path := filepath.Join(t.TempDir(), "model.hvcmodel")
			req.NoError(Save(path, m))
			loaded, err := Load(path)
			req.NoError(err)
			restored, err := Restore(loaded)
			req.NoError(err)
			for _, row := range testX {
				want, _ := clf.Predict(row)
				got, err := restored.Predict(row)
				req.NoError(err)
				req.Equal(want, got)
			}

			spec, err := loaded.Spec()
			req.NoError(err)
			req.Equal(tt.spec.Kind, spec.Kind)
			req.Len(spec.Hyperparameters, len(tt.spec.Hyperparameters))
		})
	}
}

func TestTrain_Deterministic(t *testing.T) {
	req := require.New(t)
	x, y := blobs(15, 3)
	spec := domain.ModelSpec{Kind: domain.ModelSVM}

	first, _, err := Train(TrainInput{Spec: spec, X: x, Y: y, Seed: 42})
	req.NoError(err)
	second, _, err := Train(TrainInput{Spec: spec, X: x, Y: y, Seed: 42})
	req.NoError(err)
	req.Equal(first.SVM, second.SVM)
}

func TestTrain_UnknownKind(t *testing.T) {
	x, y := blobs(2, 1)
	_, _, err := Train(TrainInput{Spec: domain.ModelSpec{Kind: "forest"}, X: x, Y: y})
	var unknown *errors.UnknownModelError
	require.ErrorAs(t, err, &unknown)
}

func TestTrain_Empty(t *testing.T) {
	_, _, err := Train(TrainInput{Spec: domain.ModelSpec{Kind: domain.ModelKNN}})
	require.ErrorIs(t, err, errors.ErrEmptyDataset)
}

func TestKNN_TieGoesToNearest(t *testing.T) {
	req := require.New(t)
	c := &knn{state: &KNNState{
		K: 2,
		X: [][]float64{{0}, {3}, {10}},
		Y: []string{"a", "b", "c"},
	}}
	got, err := c.Predict([]float64{1})
	req.NoError(err)
	req.Equal("a", got)

	got, err = c.Predict([]float64{2.5})
	req.NoError(err)
	req.Equal("b", got)

	_, err = c.Predict([]float64{1, 2})
	req.ErrorIs(err, errors.ErrLengthMismatch)
}

func TestScaler(t *testing.T) {
	req := require.New(t)
	s, err := FitScaler([][]float64{{1, 5}, {3, 5}})
	req.NoError(err)
	req.Equal([]float64{2, 5}, s.Mean)
	req.Equal([]float64{1, 1}, s.Scale)

	row, err := s.Transform([]float64{3, 7})
	req.NoError(err)
	req.Equal([]float64{1, 2}, row)

	_, err = s.Transform([]float64{1})
	req.ErrorIs(err, errors.ErrLengthMismatch)
}

func TestLoad_RejectsBadFiles(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.hvcmodel"))
	req.ErrorIs(err, errors.ErrModelFile)

	garbage := filepath.Join(dir, "garbage.hvcmodel")
	req.NoError(os.WriteFile(garbage, []byte("definitely not msgpack"), 0o644))
	_, err = Load(garbage)
	req.ErrorIs(err, errors.ErrModelFile)
}

func TestRestore_MissingState(t *testing.T) {
	_, err := Restore(&TrainedModel{Kind: domain.ModelKNN, Scaler: &Scaler{}, Classes: []string{"a"}})
	require.ErrorIs(t, err, errors.ErrModelFile)
}
