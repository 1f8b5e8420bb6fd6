package runtime

import (
	"birdsong-lab/contract"
	"birdsong-lab/domain"
	"birdsong-lab/dsp"
	"birdsong-lab/errors"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"math"
)

const paramsTolerance = 1e-9

// Segmenter is the single place where syllable boundaries are derived, for
// extraction and prediction alike.
type Segmenter struct {
	log *slog.Logger
}

func NewSegmenter(log *slog.Logger) Segmenter {
	return Segmenter{log: log}
}

type Segmentation struct {
	Syllables []domain.Syllable
	// Annotated is false when boundaries come from amplitude segmentation.
	Annotated bool
}

// Segment uses the recording's annotation when there is one and amplitude
// segmentation otherwise. With checkParams set, segmentation settings stored
// in the annotation must equal seg.
func (s Segmenter) Segment(
	capability contract.FormatCapability,
	ref domain.RecordingRef,
	wave domain.Waveform,
	spect domain.SpectParams,
	seg domain.SegmentParams,
	checkParams bool) (Segmentation, error) {
	if wave.SampleRate <= 0 {
		return Segmentation{}, fmt.Errorf("invalid sample rate %d", wave.SampleRate)
	}
	ann, err := capability.LoadAnnotation(ref)
	switch {
	case stdErrors.Is(err, errors.ErrAnnotationNotFound):
		s.log.Debug("No annotation, segmenting by amplitude", "recording", ref.Path)
		ann, err = s.byAmplitude(wave, spect, seg)
		if err != nil {
			return Segmentation{}, err
		}
		return Segmentation{Syllables: s.toSyllables(ref, ann, wave)}, nil
	case err != nil:
		return Segmentation{}, err
	}

	if checkParams && ann.Params != nil && !sameParams(*ann.Params, seg) {
		return Segmentation{}, fmt.Errorf("%w: annotation has threshold=%g min_syl_dur=%g min_silent_dur=%g",
			errors.ErrParamsMismatch, ann.Params.Threshold, ann.Params.MinSylDur, ann.Params.MinSilentDur)
	}
	if ann.SampleRate > 0 && ann.SampleRate != wave.SampleRate {
		s.log.Debug("Annotation sample rate differs from recording", "recording", ref.Path,
			"annotation", ann.SampleRate, "recording_rate", wave.SampleRate)
	}
	return Segmentation{Syllables: s.toSyllables(ref, ann, wave), Annotated: true}, nil
}

func sameParams(a, b domain.SegmentParams) bool {
	return math.Abs(a.Threshold-b.Threshold) <= paramsTolerance &&
		math.Abs(a.MinSylDur-b.MinSylDur) <= paramsTolerance &&
		math.Abs(a.MinSilentDur-b.MinSilentDur) <= paramsTolerance
}

// byAmplitude thresholds the summed linear power of the spectrogram.
func (s Segmenter) byAmplitude(wave domain.Waveform, spect domain.SpectParams, seg domain.SegmentParams) (domain.Annotation, error) {
	linear := spect.Resolved()
	linear.LogTransform = false
	maker, err := dsp.NewMaker(linear)
	if err != nil {
		return domain.Annotation{}, err
	}
	sp, err := maker.Make(wave.Samples, wave.SampleRate)
	if err != nil {
		return domain.Annotation{}, err
	}
	intervals := dsp.SegmentSong(dsp.Amplitude(sp), sp.Times, seg)
	ann := domain.Annotation{Unit: domain.UnitSeconds, Segments: make([]domain.Segment, len(intervals))}
	for i, iv := range intervals {
		ann.Segments[i] = domain.Segment{Onset: iv.OnsetS, Offset: iv.OffsetS}
	}
	return ann, nil
}

// toSyllables converts boundaries to sample indices clipped to the waveform.
// Segments left empty by clipping are dropped.
func (s Segmenter) toSyllables(ref domain.RecordingRef, ann domain.Annotation, wave domain.Waveform) []domain.Syllable {
	fs := float64(wave.SampleRate)
	n := len(wave.Samples)
	toSample := func(v float64) int {
		if ann.Unit == domain.UnitSeconds {
			v *= fs
		}
		return min(max(int(math.Round(v)), 0), n)
	}
	out := make([]domain.Syllable, 0, len(ann.Segments))
	for _, seg := range ann.Segments {
		on, off := toSample(seg.Onset), toSample(seg.Offset)
		if off <= on {
			s.log.Debug("Dropping empty segment", "recording", ref.Path, "onset", seg.Onset, "offset", seg.Offset)
			continue
		}
		out = append(out, domain.Syllable{
			Index:        len(out),
			OnsetSample:  on,
			OffsetSample: off,
			OnsetS:       float64(on) / fs,
			OffsetS:      float64(off) / fs,
			Label:        seg.Label,
		})
	}
	return out
}
