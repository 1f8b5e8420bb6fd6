package runtime

import (
	"birdsong-lab/classifier"
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"birdsong-lab/metrics"
	"birdsong-lab/schema"
	"birdsong-lab/task"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

const (
	defaultTrainFraction = 0.8
	splitSeedSalt        = 0x68766373
)

type ModelStore interface {
	RunDir(outputDir string) (string, error)
	ModelDir(run string, index int, spec domain.ModelSpec) (string, error)
	SaveModel(modelDir string, replicate int, m *classifier.TrainedModel) (string, error)
	WriteSummary(run string, res *domain.SelectResult) (string, error)
}

type DatasetLoader func(path string) (*domain.FeatureDataset, error)

// Selector trains every model block on replicate train/test splits of a
// feature file and scores it on the held-out rows.
type Selector struct {
	log   *slog.Logger
	load  DatasetLoader
	store ModelStore
	now   func() time.Time
}

func NewSelector(log *slog.Logger, load DatasetLoader, store ModelStore) *Selector {
	return &Selector{log: log, load: load, store: store, now: time.Now}
}

func (s *Selector) Select(ctx context.Context, vt task.ValidatedTask) (*domain.SelectResult, error) {
	st, ok := vt.Select()
	if !ok || !vt.Valid() {
		return nil, errors.ErrNotValidated
	}
	ds, err := s.load(st.FeatureFile)
	if err != nil {
		return nil, err
	}
	rows := lo.Filter(ds.Vectors, func(v domain.FeatureVector, _ int) bool { return v.Label != "" })
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s has no labelled rows", errors.ErrEmptyDataset, st.FeatureFile)
	}
	// Validate every block before training anything
	columns := make([][]int, len(st.Models))
	for i, spec := range st.Models {
		if columns[i], err = selectColumns(ds, spec); err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", schema.KeyModels, i, err)
		}
	}
	numTrain, numTest, err := splitSizes(len(rows), st.NumTrainSamples, st.NumTestSamples)
	if err != nil {
		return nil, err
	}

	run, err := s.store.RunDir(st.OutputDir)
	if err != nil {
		return nil, err
	}
	res := &domain.SelectResult{FeatureFile: st.FeatureFile, RunDir: run, CreatedAt: s.now().UTC()}
	labels := lo.Map(rows, func(v domain.FeatureVector, _ int) string { return v.Label })
	extraction := classifier.ExtractionOf(ds)

	for i, spec := range st.Models {
		log := s.log.With("model", spec.Kind, "features", spec.Describe(), "index", i)
		x := project(rows, columns[i])
		modelDir, err := s.store.ModelDir(run, i, spec)
		if err != nil {
			return nil, err
		}
		score := domain.ModelScore{
			Index:              i,
			Kind:               spec.Kind,
			FeatureGroup:       spec.FeatureGroup,
			FeatureListIndices: spec.FeatureListIndices,
		}
		for r := 0; r < st.NumReplicates; r++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			seed := uint64(r + 1)
			train, test := split(len(rows), numTrain, numTest, seed)
			m, clf, err := classifier.Train(classifier.TrainInput{
				Spec:       spec,
				Columns:    columns[i],
				X:          pick(x, train),
				Y:          pick(labels, train),
				Extraction: extraction,
				Seed:       seed,
			})
			if err != nil {
				return nil, fmt.Errorf("%s[%d] replicate %d: %w", schema.KeyModels, i, r, err)
			}
			predicted := make([]string, len(test))
			for j, row := range pick(x, test) {
				if predicted[j], err = clf.Predict(row); err != nil {
					return nil, err
				}
			}
			acc, err := metrics.AverageAccuracy(pick(labels, test), predicted, ds.Labelset)
			if err != nil {
				return nil, err
			}
			path, err := s.store.SaveModel(modelDir, r, m)
			if err != nil {
				return nil, err
			}
			log.Info("Replicate scored", "replicate", r, "train", len(train), "test", len(test), "accuracy", acc)
			score.Replicates = append(score.Replicates, domain.ReplicateScore{
				Replicate:    r,
				TrainSamples: len(train),
				TestSamples:  len(test),
				Accuracy:     acc,
				ModelFile:    path,
			})
		}
		score.MeanAccuracy = stat.Mean(lo.Map(score.Replicates, func(r domain.ReplicateScore, _ int) float64 { return r.Accuracy }), nil)
		res.Models = append(res.Models, score)
	}

	if _, err := s.store.WriteSummary(run, res); err != nil {
		return nil, err
	}
	return res, nil
}

// selectColumns resolves the columns a model block consumes. Explicit
// indices win over a feature group; with neither, every column is used.
func selectColumns(ds *domain.FeatureDataset, spec domain.ModelSpec) ([]int, error) {
	width := ds.Width()
	if len(spec.FeatureListIndices) > 0 {
		for _, idx := range spec.FeatureListIndices {
			if idx < 0 || idx >= width {
				return nil, &errors.FeatureMismatchError{Index: idx, Available: width}
			}
		}
		return append([]int(nil), spec.FeatureListIndices...), nil
	}
	if spec.FeatureGroup != "" {
		cols, ok := ds.GroupColumns(spec.FeatureGroup)
		if !ok || len(cols) == 0 {
			return nil, fmt.Errorf("%w: feature group %q was not extracted, available %v", errors.ErrDatasetFile, spec.FeatureGroup, ds.FeatureGroups)
		}
		return cols, nil
	}
	return lo.Range(width), nil
}

func splitSizes(n, numTrain, numTest int) (int, int, error) {
	if numTrain == 0 {
		numTrain = max(1, int(defaultTrainFraction*float64(n)))
		if numTrain == n && n > 1 {
			numTrain = n - 1
		}
	}
	if numTest == 0 {
		numTest = n - numTrain
	}
	if numTrain+numTest > n {
		return 0, 0, &errors.ParamValueError{
			Field: schema.KeyNumTrain,
			Rule:  fmt.Sprintf("%s + %s <= %d labelled rows", schema.KeyNumTrain, schema.KeyNumTest, n),
		}
	}
	return numTrain, numTest, nil
}

// split draws disjoint train and test row indices from a seeded permutation.
func split(n, numTrain, numTest int, seed uint64) ([]int, []int) {
	perm := rand.New(rand.NewPCG(seed, splitSeedSalt)).Perm(n)
	return perm[:numTrain], perm[numTrain : numTrain+numTest]
}

func project(rows []domain.FeatureVector, columns []int) [][]float64 {
	return lo.Map(rows, func(v domain.FeatureVector, _ int) []float64 {
		return lo.Map(columns, func(c int, _ int) float64 { return v.Values[c] })
	})
}

func pick[T any](items []T, idx []int) []T {
	return lo.Map(idx, func(i int, _ int) T { return items[i] })
}
