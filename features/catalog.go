// Package features computes per-syllable acoustic features. Features are
// named, and groups bundle the feature sets used by each classifier family.
package features

import (
	"birdsong-lab/domain"
	"birdsong-lab/dsp"
	"fmt"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

const (
	GroupKNN        = "knn"
	GroupSVM        = "svm"
	GroupFlatwindow = "flatwindow"
)

const (
	Duration              = "duration"
	PrecedingDuration     = "preceding syllable duration"
	FollowingDuration     = "following syllable duration"
	PrecedingGap          = "preceding silent gap duration"
	FollowingGap          = "following silent gap duration"
	MeanSmoothRect        = "mean amplitude smooth rect"
	MeanRMS               = "mean amplitude rms"
	MeanEntropy           = "mean spectral entropy"
	MeanHiLoRatio         = "mean hi lo ratio"
	MeanCentroid          = "mean spectrum centroid"
	MeanSpread            = "mean spectrum spread"
	MeanSkewness          = "mean spectrum skewness"
	MeanKurtosis          = "mean spectrum kurtosis"
	MeanFlatness          = "mean spectrum flatness"
	MeanSlope             = "mean spectrum slope"
	MeanRolloff           = "mean spectrum rolloff"
	MeanZeroCrossings     = "mean zero crossings"
	FlatwindowSpectrogram = "flatwindow spectrogram"
)

type feature struct {
	scalar func(c *SyllableContext) (float64, error)
	// vector features have a width that depends on the spectrogram layout.
	vector func(c *SyllableContext) ([]float64, error)
	fixed  bool
}

func spectral(f columnStat) func(c *SyllableContext) (float64, error) {
	return func(c *SyllableContext) (float64, error) {
		s, err := c.Spectrogram()
		if err != nil {
			return 0, err
		}
		return meanOverColumns(s, f), nil
	}
}

var catalog = map[string]feature{
	Duration: {scalar: func(c *SyllableContext) (float64, error) {
		return c.Syllable.Duration(), nil
	}},
	PrecedingDuration: {scalar: func(c *SyllableContext) (float64, error) {
		if c.Prev == nil {
			return 0, nil
		}
		return c.Prev.Duration(), nil
	}},
	FollowingDuration: {scalar: func(c *SyllableContext) (float64, error) {
		if c.Next == nil {
			return 0, nil
		}
		return c.Next.Duration(), nil
	}},
	PrecedingGap: {scalar: func(c *SyllableContext) (float64, error) {
		if c.Prev == nil {
			return 0, nil
		}
		return c.Syllable.OnsetS - c.Prev.OffsetS, nil
	}},
	FollowingGap: {scalar: func(c *SyllableContext) (float64, error) {
		if c.Next == nil {
			return 0, nil
		}
		return c.Next.OnsetS - c.Syllable.OffsetS, nil
	}},
	MeanSmoothRect: {scalar: func(c *SyllableContext) (float64, error) {
		if len(c.Audio) == 0 {
			return 0, nil
		}
		return stat.Mean(smoothRect(c.Audio, c.SampleRate), nil), nil
	}},
	MeanRMS: {scalar: func(c *SyllableContext) (float64, error) {
		return rms(c.Audio), nil
	}},
	MeanZeroCrossings: {scalar: func(c *SyllableContext) (float64, error) {
		return zeroCrossingRate(c.Audio), nil
	}},
	MeanEntropy:   {scalar: spectral(entropy)},
	MeanHiLoRatio: {scalar: spectral(hiLoRatio)},
	MeanCentroid:  {scalar: spectral(centroid)},
	MeanSpread:    {scalar: spectral(spread)},
	MeanSkewness:  {scalar: spectral(skewness)},
	MeanKurtosis:  {scalar: spectral(kurtosis)},
	MeanFlatness:  {scalar: spectral(flatness)},
	MeanSlope:     {scalar: spectral(slope)},
	MeanRolloff:   {scalar: spectral(rolloff)},
	FlatwindowSpectrogram: {
		vector: func(c *SyllableContext) ([]float64, error) {
			s, err := c.FixedWidthSpectrogram()
			if err != nil {
				return nil, err
			}
			return s.Flatten(), nil
		},
		fixed: true,
	},
}

var groups = map[string][]string{
	GroupKNN: {
		Duration, PrecedingDuration, FollowingDuration, PrecedingGap, FollowingGap,
		MeanSmoothRect, MeanRMS, MeanEntropy, MeanHiLoRatio,
	},
	GroupSVM: {
		MeanCentroid, MeanSpread, MeanSkewness, MeanKurtosis, MeanFlatness, MeanSlope,
		MeanRolloff, MeanEntropy, MeanZeroCrossings, Duration, MeanRMS, MeanHiLoRatio,
	},
	GroupFlatwindow: {FlatwindowSpectrogram},
}

func IsGroup(name string) bool {
	_, ok := groups[name]
	return ok
}

func IsFeature(name string) bool {
	_, ok := catalog[name]
	return ok
}

// GroupFeatures returns the feature names of a group, in column order.
func GroupFeatures(group string) ([]string, error) {
	names, ok := groups[group]
	if !ok {
		return nil, fmt.Errorf("unknown feature group %q", group)
	}
	return append([]string(nil), names...), nil
}

// NeedsFixedWidth reports whether any requested feature needs syl_spect_width.
func NeedsFixedWidth(groupNames, list []string) bool {
	names := append([]string(nil), list...)
	for _, g := range groupNames {
		names = append(names, groups[g]...)
	}
	return lo.SomeBy(names, func(n string) bool { return catalog[n].fixed })
}

// fixedWidthLayout is the flattened size of a fixed-width spectrogram at fs.
func fixedWidthLayout(p domain.SpectParams, fs int) (int, error) {
	if p.SylSpectWidth <= 0 {
		return 0, fmt.Errorf("syl_spect_width is not set")
	}
	maker, err := dsp.NewMaker(p)
	if err != nil {
		return 0, err
	}
	n, err := fixedWidthSamples(p, fs)
	if err != nil {
		return 0, err
	}
	s, err := maker.Make(make([]float64, n), fs)
	if err != nil {
		return 0, err
	}
	return s.NumFreqs() * s.NumTimes(), nil
}
