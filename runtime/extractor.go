package runtime

import (
	"birdsong-lab/contract"
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"birdsong-lab/features"
	"birdsong-lab/task"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/samber/lo"
)

type Extractor struct {
	log       *slog.Logger
	resolver  contract.FormatResolver
	computer  contract.FeatureComputer
	segmenter Segmenter
	pool      PoolConfig
	now       func() time.Time
}

func NewExtractor(log *slog.Logger, resolver contract.FormatResolver, computer contract.FeatureComputer, pool PoolConfig) *Extractor {
	return &Extractor{
		log:       log,
		resolver:  resolver,
		computer:  computer,
		segmenter: NewSegmenter(log),
		pool:      pool,
		now:       time.Now,
	}
}

type recordingFeatures struct {
	sampleRate int
	columns    []contract.Column
	vectors    []domain.FeatureVector
	warnings   []domain.Warning
}

// Extract builds the feature dataset of one bird. A failing recording is
// skipped with a warning; a data directory where every recording fails
// aborts the task with *errors.NoUsableDataError. A dataset left without
// rows is errors.ErrEmptyDataset and is never written.
func (e *Extractor) Extract(ctx context.Context, vt task.ValidatedTask) (*domain.FeatureDataset, error) {
	et, ok := vt.Extract()
	if !ok || !vt.Valid() {
		return nil, errors.ErrNotValidated
	}
	capability, err := e.resolver.Resolve(et.FileFormat)
	if err != nil {
		return nil, err
	}

	ds := &domain.FeatureDataset{
		Version:       domain.DatasetVersion,
		BirdID:        et.BirdID,
		FileFormat:    et.FileFormat,
		Labelset:      et.Labelset,
		FeatureGroups: et.FeatureGroups,
		FeatureList:   et.FeatureList,
		SpectParams:   et.SpectParams,
		SegmentParams: et.SegmentParams,
		DataDirs:      et.DataDirs,
		CreatedAt:     e.now().UTC(),
	}
	fixedWidth := features.NeedsFixedWidth(et.FeatureGroups, et.FeatureList)
	log := e.log.With("bird_ID", et.BirdID)

	for _, dir := range et.DataDirs {
		refs, err := capability.ListRecordings(dir)
		if err != nil {
			log.Error("Cannot list recordings", "data_dir", dir, "error", err)
			return nil, &errors.NoUsableDataError{BirdID: et.BirdID, DataDir: dir, Err: err}
		}
		if len(refs) == 0 {
			return nil, &errors.NoUsableDataError{BirdID: et.BirdID, DataDir: dir, Err: errors.ErrNoRecordings}
		}
		log.Info("Extracting features", "data_dir", dir, "recordings", len(refs))

		results, err := fanOut(ctx, log, e.pool, refs, func(_ context.Context, ref domain.RecordingRef) (recordingFeatures, error) {
			return e.recording(capability, et, ref)
		})
		if err != nil {
			return nil, err
		}

		usable := 0
		for _, r := range results {
			if r.Err == nil && ds.FeatureNames != nil && fixedWidth && r.Value.sampleRate != ds.SampleRate {
				r.Err = fmt.Errorf("sample rate %d Hz differs from %d Hz of the first recording", r.Value.sampleRate, ds.SampleRate)
			}
			if r.Err != nil {
				warning := &errors.ExtractionWarning{BirdID: et.BirdID, Recording: r.Ref.Path, Err: r.Err}
				log.Warn("Skipping recording", "recording", r.Ref.Path, "error", warning.Err)
				ds.Warnings = append(ds.Warnings, domain.Warning{Recording: r.Ref.Path, Message: warning.Err.Error()})
				continue
			}
			if ds.FeatureNames == nil {
				ds.SampleRate = r.Value.sampleRate
				ds.FeatureNames = lo.Map(r.Value.columns, func(c contract.Column, _ int) string { return c.Name })
				ds.FeatureGroupIDs = lo.Map(r.Value.columns, func(c contract.Column, _ int) int { return c.GroupID })
			}
			usable++
			ds.Vectors = append(ds.Vectors, r.Value.vectors...)
			ds.Warnings = append(ds.Warnings, r.Value.warnings...)
		}
		if usable == 0 {
			return nil, &errors.NoUsableDataError{BirdID: et.BirdID, DataDir: dir}
		}
	}
	if len(ds.Vectors) == 0 {
		return nil, fmt.Errorf("%w: bird %s has no syllable in labelset %v", errors.ErrEmptyDataset, et.BirdID, et.Labelset)
	}
	log.Info("Extraction done", "rows", len(ds.Vectors), "columns", ds.Width(), "warnings", len(ds.Warnings))
	return ds, nil
}

func (e *Extractor) recording(capability contract.FormatCapability, et task.ExtractTask, ref domain.RecordingRef) (recordingFeatures, error) {
	wave, err := capability.LoadSamples(ref)
	if err != nil {
		return recordingFeatures{}, err
	}
	seg, err := e.segmenter.Segment(capability, ref, wave, et.SpectParams, et.SegmentParams, et.SegmentParamsSet)
	if err != nil {
		return recordingFeatures{}, err
	}
	if len(seg.Syllables) == 0 {
		return recordingFeatures{}, fmt.Errorf("no syllables found")
	}

	spec := contract.FeatureSpec{
		Groups:     et.FeatureGroups,
		List:       et.FeatureList,
		Spect:      et.SpectParams,
		Segment:    et.SegmentParams,
		SampleRate: wave.SampleRate,
	}
	columns, err := e.computer.Columns(spec)
	if err != nil {
		return recordingFeatures{}, err
	}
	// Features see every syllable so neighbour timing is not distorted by the labelset filter.
	results, err := e.computer.Compute(wave, seg.Syllables, spec)
	if err != nil {
		return recordingFeatures{}, err
	}
	if len(results) != len(seg.Syllables) {
		return recordingFeatures{}, fmt.Errorf("%d feature results for %d syllables", len(results), len(seg.Syllables))
	}

	out := recordingFeatures{sampleRate: wave.SampleRate, columns: columns}
	outside := map[string]int{}
	for i, syl := range seg.Syllables {
		if syl.Label != "" && !lo.Contains(et.Labelset, syl.Label) {
			outside[syl.Label]++
			continue
		}
		res := results[i]
		if res.Err == nil && len(res.Values) != len(columns) {
			res.Err = fmt.Errorf("%d values for %d columns", len(res.Values), len(columns))
		}
		if res.Err != nil {
			out.warnings = append(out.warnings, domain.Warning{Recording: ref.Path, Message: fmt.Sprintf("syllable %d: %v", syl.Index, res.Err)})
			continue
		}
		out.vectors = append(out.vectors, domain.FeatureVector{
			BirdID:    et.BirdID,
			Recording: ref.Path,
			DataDir:   ref.DataDir,
			Index:     syl.Index,
			OnsetS:    syl.OnsetS,
			OffsetS:   syl.OffsetS,
			Label:     syl.Label,
			Values:    res.Values,
		})
	}
	labels := lo.Keys(outside)
	sort.Strings(labels)
	for _, l := range labels {
		out.warnings = append(out.warnings, domain.Warning{
			Recording: ref.Path,
			Message:   fmt.Sprintf("%d syllables labelled %q are outside the labelset", outside[l], l),
		})
	}
	if len(out.vectors) == 0 {
		return recordingFeatures{}, fmt.Errorf("no syllable with usable features in labelset %v", et.Labelset)
	}
	return out, nil
}
