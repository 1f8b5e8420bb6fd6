package dsp

import (
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"fmt"
	"math"
)

type Interval struct {
	OnsetS  float64
	OffsetS float64
}

// Amplitude sums each time bin of the spectrogram.
func Amplitude(s *Spectrogram) []float64 {
	amp := make([]float64, s.NumTimes())
	for _, row := range s.Power {
		for t, p := range row {
			amp[t] += math.Abs(p)
		}
	}
	return amp
}

// SegmentSong finds syllables where amp stays above the threshold. Syllables
// separated by a gap of at most MinSilentDur are merged, then syllables
// lasting at most MinSylDur are dropped.
func SegmentSong(amp, times []float64, p domain.SegmentParams) []Interval {
	if len(amp) == 0 || len(amp) != len(times) {
		return nil
	}

	var raw []Interval
	inside := false
	var onset float64
	for i, a := range amp {
		above := a > p.Threshold
		switch {
		case above && !inside:
			onset = times[i]
			inside = true
		case !above && inside:
			raw = append(raw, Interval{OnsetS: onset, OffsetS: times[i]})
			inside = false
		}
	}
	if inside {
		raw = append(raw, Interval{OnsetS: onset, OffsetS: times[len(times)-1]})
	}
	if len(raw) == 0 {
		return nil
	}

	merged := []Interval{raw[0]}
	for _, iv := range raw[1:] {
		last := &merged[len(merged)-1]
		if iv.OnsetS-last.OffsetS <= p.MinSilentDur {
			last.OffsetS = iv.OffsetS
			continue
		}
		merged = append(merged, iv)
	}

	out := merged[:0]
	for _, iv := range merged {
		if iv.OffsetS-iv.OnsetS > p.MinSylDur {
			out = append(out, iv)
		}
	}
	return out
}

// FixedWidth cuts width seconds of samples centred on [onset, offset),
// zero-padding past either end of the recording.
func FixedWidth(samples []float64, fs int, onset, offset int, width float64) ([]float64, error) {
	n := int(math.Round(width * float64(fs)))
	if n <= 0 {
		return nil, fmt.Errorf("fixed width %.4fs is empty at %d Hz", width, fs)
	}
	if offset-onset > n {
		return nil, fmt.Errorf("%w: %d samples, width %d", errors.ErrSyllableTooWide, offset-onset, n)
	}
	start := (onset+offset)/2 - n/2
	out := make([]float64, n)
	for i := range out {
		j := start + i
		if j >= 0 && j < len(samples) {
			out[i] = samples[j]
		}
	}
	return out, nil
}
