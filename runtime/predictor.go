package runtime

import (
	"birdsong-lab/classifier"
	"birdsong-lab/contract"
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"birdsong-lab/features"
	"birdsong-lab/metrics"
	"birdsong-lab/task"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
)

type Predictor struct {
	log       *slog.Logger
	resolver  contract.FormatResolver
	computer  contract.FeatureComputer
	segmenter Segmenter
	pool      PoolConfig
	now       func() time.Time
}

func NewPredictor(log *slog.Logger, resolver contract.FormatResolver, computer contract.FeatureComputer, pool PoolConfig) *Predictor {
	return &Predictor{
		log:       log,
		resolver:  resolver,
		computer:  computer,
		segmenter: NewSegmenter(log),
		pool:      pool,
		now:       time.Now,
	}
}

// boundModel is a loaded artifact together with its inference capability.
type boundModel struct {
	model      *classifier.TrainedModel
	classifier contract.Classifier
	spec       contract.FeatureSpec
	width      int
}

// Predict labels every syllable of the task's recordings with the model of
// model_file. No recording is read before the model is known to be compatible.
func (p *Predictor) Predict(ctx context.Context, vt task.ValidatedTask) (*domain.PredictionResult, error) {
	pt, ok := vt.Predict()
	if !ok || !vt.Valid() {
		return nil, errors.ErrNotValidated
	}
	bound, err := p.bind(pt.ModelFile)
	if err != nil {
		return nil, err
	}
	m := bound.model

	birdID := pt.BirdID
	if birdID == "" {
		birdID = m.Extraction.BirdID
	}
	dirs := pt.DataDirs
	if pt.BirdID != "" {
		dirs = lo.Filter(dirs, func(d string, _ int) bool { return belongsTo(d, pt.BirdID) })
		if len(dirs) == 0 {
			return nil, &errors.NoUsableDataError{BirdID: pt.BirdID, DataDir: strings.Join(pt.DataDirs, ", ")}
		}
	}
	capability, err := p.resolver.Resolve(pt.FileFormat)
	if err != nil {
		return nil, err
	}

	res := &domain.PredictionResult{
		ModelFile: pt.ModelFile,
		ModelKind: m.Kind,
		BirdID:    birdID,
		CreatedAt: p.now().UTC(),
	}
	log := p.log.With("bird_ID", birdID, "model", m.Kind)
	for _, dir := range dirs {
		refs, err := capability.ListRecordings(dir)
		if err != nil {
			log.Error("Cannot list recordings", "data_dir", dir, "error", err)
			return nil, &errors.NoUsableDataError{BirdID: birdID, DataDir: dir, Err: err}
		}
		if len(refs) == 0 {
			return nil, &errors.NoUsableDataError{BirdID: birdID, DataDir: dir, Err: errors.ErrNoRecordings}
		}
		log.Info("Predicting labels", "data_dir", dir, "recordings", len(refs))

		results, err := fanOut(ctx, log, p.pool, refs, func(_ context.Context, ref domain.RecordingRef) ([]domain.Prediction, error) {
			return p.recording(capability, bound, birdID, ref)
		})
		if err != nil {
			return nil, err
		}
		usable := 0
		for _, r := range results {
			if r.Err != nil {
				warning := &errors.ExtractionWarning{BirdID: birdID, Recording: r.Ref.Path, Err: r.Err}
				log.Warn("Skipping recording", "recording", r.Ref.Path, "error", warning.Err)
				res.Warnings = append(res.Warnings, domain.Warning{Recording: r.Ref.Path, Message: warning.Err.Error()})
				continue
			}
			usable++
			res.Predictions = append(res.Predictions, r.Value...)
		}
		if usable == 0 {
			return nil, &errors.NoUsableDataError{BirdID: birdID, DataDir: dir}
		}
	}

	summary, err := summarize(res.Predictions, m.Extraction.Labelset)
	if err != nil {
		return nil, err
	}
	res.Summary = summary
	log.Info("Prediction done", "syllables", summary.Syllables, "labeled", summary.Labeled)
	return res, nil
}

// bind loads the artifact, re-validates its model block and checks every
// column it consumes exists in the feature layout it was trained on.
func (p *Predictor) bind(path string) (*boundModel, error) {
	m, err := classifier.Load(path)
	if err != nil {
		return nil, err
	}
	spec, err := m.Spec()
	if err != nil {
		return nil, err
	}
	if err := task.ValidateModelSpec(spec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrModelFile, path, err)
	}

	fs := contract.FeatureSpec{
		Groups:     m.Extraction.FeatureGroups,
		List:       m.Extraction.FeatureList,
		Spect:      m.Extraction.SpectParams,
		Segment:    m.Extraction.SegmentParams,
		SampleRate: m.Extraction.SampleRate,
	}
	columns, err := p.computer.Columns(fs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrModelFile, path, err)
	}
	for _, idx := range append(append([]int{}, m.FeatureListIndices...), m.Columns...) {
		if idx < 0 || idx >= len(columns) {
			return nil, &errors.FeatureMismatchError{Index: idx, Available: len(columns)}
		}
	}
	if len(m.Scaler.Mean) != len(m.Columns) {
		return nil, fmt.Errorf("%w: scaler has %d columns, model uses %d", errors.ErrModelFile, len(m.Scaler.Mean), len(m.Columns))
	}

	clf, err := classifier.Restore(m)
	if err != nil {
		return nil, err
	}
	return &boundModel{model: m, classifier: clf, spec: fs, width: len(columns)}, nil
}

// belongsTo reports whether one of the path elements of dir is birdID.
func belongsTo(dir, birdID string) bool {
	parts := strings.Split(filepath.ToSlash(filepath.Clean(dir)), "/")
	return lo.Contains(parts, birdID)
}

func (p *Predictor) recording(capability contract.FormatCapability, bound *boundModel, birdID string, ref domain.RecordingRef) ([]domain.Prediction, error) {
	m := bound.model
	wave, err := capability.LoadSamples(ref)
	if err != nil {
		return nil, err
	}
	fixedWidth := features.NeedsFixedWidth(m.Extraction.FeatureGroups, m.Extraction.FeatureList)
	if fixedWidth && wave.SampleRate != m.Extraction.SampleRate {
		return nil, fmt.Errorf("sample rate %d Hz, model trained at %d Hz", wave.SampleRate, m.Extraction.SampleRate)
	}
	seg, err := p.segmenter.Segment(capability, ref, wave, m.Extraction.SpectParams, m.Extraction.SegmentParams, false)
	if err != nil {
		return nil, err
	}
	if len(seg.Syllables) == 0 {
		return nil, fmt.Errorf("no syllables found")
	}

	spec := bound.spec
	spec.SampleRate = wave.SampleRate
	results, err := p.computer.Compute(wave, seg.Syllables, spec)
	if err != nil {
		return nil, err
	}
	if len(results) != len(seg.Syllables) {
		return nil, fmt.Errorf("%d feature results for %d syllables", len(results), len(seg.Syllables))
	}

	out := make([]domain.Prediction, 0, len(results))
	for i, syl := range seg.Syllables {
		if results[i].Err != nil {
			return nil, fmt.Errorf("syllable %d: %w", syl.Index, results[i].Err)
		}
		values := results[i].Values
		if len(values) != bound.width {
			return nil, fmt.Errorf("syllable %d: %d values, model layout has %d", syl.Index, len(values), bound.width)
		}
		row := lo.Map(m.Columns, func(c int, _ int) float64 { return values[c] })
		label, err := bound.classifier.Predict(row)
		if err != nil {
			return nil, fmt.Errorf("syllable %d: %w", syl.Index, err)
		}
		out = append(out, domain.Prediction{
			BirdID:    birdID,
			Recording: ref.Path,
			Index:     syl.Index,
			OnsetS:    syl.OnsetS,
			OffsetS:   syl.OffsetS,
			Label:     label,
			TrueLabel: syl.Label,
		})
	}
	return out, nil
}

// summarize scores the syllables that carry a ground-truth label.
func summarize(preds []domain.Prediction, labelset []string) (domain.PredictionSummary, error) {
	summary := domain.PredictionSummary{Syllables: len(preds)}
	labeled := lo.Filter(preds, func(p domain.Prediction, _ int) bool { return p.TrueLabel != "" })
	summary.Labeled = len(labeled)
	if len(labeled) == 0 {
		return summary, nil
	}
	truth := lo.Map(labeled, func(p domain.Prediction, _ int) string { return p.TrueLabel })
	predicted := lo.Map(labeled, func(p domain.Prediction, _ int) string { return p.Label })
	acc, err := metrics.AverageAccuracy(truth, predicted, labelset)
	if err != nil {
		return summary, err
	}
	fe, err := metrics.FrameError(truth, predicted)
	if err != nil {
		return summary, err
	}
	mismatched, err := metrics.HammingDistance(truth, predicted)
	if err != nil {
		return summary, err
	}

	// Edit distance is taken per song; sequences of different recordings are not joined.
	edits := 0
	for _, song := range lo.PartitionBy(labeled, func(p domain.Prediction) string { return p.Recording }) {
		edits += metrics.Levenshtein(
			lo.Map(song, func(p domain.Prediction, _ int) string { return p.TrueLabel }),
			lo.Map(song, func(p domain.Prediction, _ int) string { return p.Label }),
		)
	}
	ser := float64(edits) / float64(len(labeled))

	summary.Mismatched = mismatched
	summary.AverageAccuracy = &acc
	summary.FrameError = &fe
	summary.SyllableErrorRate = &ser
	return summary, nil
}
