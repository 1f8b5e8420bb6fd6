package features

import (
	"birdsong-lab/contract"
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

const fs = 32000

func song(t *testing.T) (domain.Waveform, []domain.Syllable) {
	t.Helper()
	samples := make([]float64, fs)
	sylls := []domain.Syllable{
		{Index: 0, OnsetSample: 3200, OffsetSample: 6400, Label: "a"},
		{Index: 1, OnsetSample: 9600, OffsetSample: 16000, Label: "b"},
		{Index: 2, OnsetSample: 19200, OffsetSample: 20800, Label: "a"},
	}
	for i := range sylls {
		s := &sylls[i]
		s.OnsetS = float64(s.OnsetSample) / fs
		s.OffsetS = float64(s.OffsetSample) / fs
		freq := 2000.0 * float64(i+1)
		for j := s.OnsetSample; j < s.OffsetSample; j++ {
			samples[j] = 1000 * math.Sin(2*math.Pi*freq*float64(j)/fs)
		}
	}
	return domain.Waveform{Samples: samples, SampleRate: fs}, sylls
}

func TestColumns(t *testing.T) {
	req := require.New(t)
	c := NewComputer()

	cols, err := c.Columns(contract.FeatureSpec{Groups: []string{GroupKNN, GroupSVM}, List: []string{Duration}})
	req.NoError(err)
	req.Len(cols, 9+12+1)
	req.Equal(Duration, cols[0].Name)
	req.Equal(0, cols[0].GroupID)
	req.Equal(1, cols[9].GroupID)
	req.Equal(domain.NoGroup, cols[len(cols)-1].GroupID)

	_, err = c.Columns(contract.FeatureSpec{Groups: []string{"mfcc"}})
	req.Error(err)
}

func TestColumns_FixedWidthDependsOnSampleRate(t *testing.T) {
	req := require.New(t)
	spec := contract.FeatureSpec{
		Groups:     []string{GroupFlatwindow},
		Spect:      domain.SpectParams{Nperseg: 256, Noverlap: 128, SylSpectWidth: 0.1},
		SampleRate: fs,
	}
	width, err := Width(spec)
	req.NoError(err)
	// 3200 samples: (3200-256)/128+1 frames of 129 bins
	req.Equal(24*129, width)

	spec.SampleRate = fs / 2
	halved, err := Width(spec)
	req.NoError(err)
	req.Less(halved, width)
}

func TestCompute_KNNGroup(t *testing.T) {
	req := require.New(t)
	wave, sylls := song(t)

	results, err := NewComputer().Compute(wave, sylls, contract.FeatureSpec{Groups: []string{GroupKNN}})
	req.NoError(err)
	req.Len(results, 3)

	for _, r := range results {
		req.NoError(r.Err)
		req.Len(r.Values, 9)
		for _, v := range r.Values {
			req.False(math.IsNaN(v))
		}
	}

	middle := results[1].Values
	req.InDelta(0.2, middle[0], 1e-9, "duration")
	req.InDelta(0.1, middle[1], 1e-9, "preceding syllable duration")
	req.InDelta(0.05, middle[2], 1e-9, "following syllable duration")
	req.InDelta(0.1, middle[3], 1e-9, "preceding gap")
	req.InDelta(0.1, middle[4], 1e-9, "following gap")
	req.InDelta(1000/math.Sqrt2, middle[6], 5, "rms of a sine")

	// First syllable has no predecessor
	req.Equal(0.0, results[0].Values[1])
	req.Equal(0.0, results[0].Values[3])
}

func TestCompute_SpectralCentroidFollowsPitch(t *testing.T) {
	req := require.New(t)
	wave, sylls := song(t)

	results, err := NewComputer().Compute(wave, sylls, contract.FeatureSpec{
		List:  []string{MeanCentroid},
		Spect: domain.SpectParams{Nperseg: 512, Noverlap: 256},
	})
	req.NoError(err)
	req.Less(results[0].Values[0], results[1].Values[0])
	req.Less(results[1].Values[0], results[2].Values[0])
	req.InDelta(2000, results[0].Values[0], 300)
}

func TestCompute_ShortSyllableIsPadded(t *testing.T) {
	req := require.New(t)
	wave, _ := song(t)
	short := []domain.Syllable{{OnsetSample: 3200, OffsetSample: 3300, OnsetS: 0.1, OffsetS: 0.103}}

	results, err := NewComputer().Compute(wave, short, contract.FeatureSpec{Groups: []string{GroupSVM}})
	req.NoError(err)
	req.NoError(results[0].Err)
	req.Len(results[0].Values, 12)
}

func TestCompute_SyllableWiderThanWindow(t *testing.T) {
	req := require.New(t)
	wave, sylls := song(t)

	results, err := NewComputer().Compute(wave, sylls, contract.FeatureSpec{
		Groups:     []string{GroupFlatwindow},
		Spect:      domain.SpectParams{Nperseg: 256, Noverlap: 128, SylSpectWidth: 0.15},
		SampleRate: fs,
	})
	req.NoError(err)
	req.NoError(results[0].Err)
	req.ErrorIs(results[1].Err, errors.ErrSyllableTooWide)
	req.NoError(results[2].Err)

	width, err := Width(contract.FeatureSpec{
		Groups:     []string{GroupFlatwindow},
		Spect:      domain.SpectParams{Nperseg: 256, Noverlap: 128, SylSpectWidth: 0.15},
		SampleRate: fs,
	})
	req.NoError(err)
	req.Len(results[0].Values, width)
}

func TestNeedsFixedWidth(t *testing.T) {
	require.True(t, NeedsFixedWidth([]string{GroupFlatwindow}, nil))
	require.True(t, NeedsFixedWidth(nil, []string{FlatwindowSpectrogram}))
	require.False(t, NeedsFixedWidth([]string{GroupKNN, GroupSVM}, []string{Duration}))
}

func TestSpectralHelpers(t *testing.T) {
	req := require.New(t)
	freqs := []float64{0, 1000, 2000, 3000}

	c, ok := centroid(freqs, []float64{0, 0, 1, 0})
	req.True(ok)
	req.Equal(2000.0, c)

	f, ok := flatness(nil, []float64{1, 1, 1, 1})
	req.True(ok)
	req.InDelta(1.0, f, 1e-9)

	e, ok := entropy(nil, []float64{1, 1, 1, 1})
	req.True(ok)
	req.InDelta(2.0, e, 1e-9)

	_, ok = entropy(nil, []float64{0, 0, 0, 0})
	req.False(ok)

	req.InDelta(1.0, zeroCrossingRate([]float64{1, -1, 1, -1}), 1e-9)
}
