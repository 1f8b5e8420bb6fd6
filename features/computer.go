package features

import (
	"birdsong-lab/contract"
	"birdsong-lab/domain"
	"birdsong-lab/dsp"
	"fmt"
	"math"
)

// SyllableContext is what a feature sees: the syllable, its audio and its neighbours.
type SyllableContext struct {
	Syllable   domain.Syllable
	Prev       *domain.Syllable
	Next       *domain.Syllable
	Audio      []float64
	SampleRate int

	recording  []float64
	spect      domain.SpectParams
	linear     *dsp.Maker
	configured *dsp.Maker

	cached   *dsp.Spectrogram
	cacheErr error
	computed bool
}

// Spectrogram is the linear-power spectrogram of the syllable, zero-padded
// to one analysis window when the syllable is shorter.
func (c *SyllableContext) Spectrogram() (*dsp.Spectrogram, error) {
	if !c.computed {
		c.computed = true
		c.cached, c.cacheErr = c.linear.Make(dsp.PadTo(c.Audio, c.linear.MinSamples()), c.SampleRate)
	}
	return c.cached, c.cacheErr
}

// FixedWidthSpectrogram uses the configured parameters on a window of
// syl_spect_width seconds centred on the syllable.
func (c *SyllableContext) FixedWidthSpectrogram() (*dsp.Spectrogram, error) {
	window, err := dsp.FixedWidth(c.recording, c.SampleRate, c.Syllable.OnsetSample, c.Syllable.OffsetSample, c.spect.SylSpectWidth)
	if err != nil {
		return nil, err
	}
	return c.configured.Make(window, c.SampleRate)
}

func fixedWidthSamples(p domain.SpectParams, fs int) (int, error) {
	n := int(math.Round(p.SylSpectWidth * float64(fs)))
	if n <= 0 {
		return 0, fmt.Errorf("syl_spect_width %.4fs is empty at %d Hz", p.SylSpectWidth, fs)
	}
	return n, nil
}

// Computer is the default contract.FeatureComputer.
type Computer struct{}

func NewComputer() *Computer {
	return &Computer{}
}

type columnFeature struct {
	name    string
	groupID int
}

func requested(spec contract.FeatureSpec) ([]columnFeature, error) {
	var out []columnFeature
	for gi, g := range spec.Groups {
		names, err := GroupFeatures(g)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			out = append(out, columnFeature{name: n, groupID: gi})
		}
	}
	for _, n := range spec.List {
		if !IsFeature(n) {
			return nil, fmt.Errorf("unknown feature %q", n)
		}
		out = append(out, columnFeature{name: n, groupID: domain.NoGroup})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no features requested")
	}
	return out, nil
}

func (c *Computer) Columns(spec contract.FeatureSpec) ([]contract.Column, error) {
	feats, err := requested(spec)
	if err != nil {
		return nil, err
	}
	var cols []contract.Column
	for _, f := range feats {
		if !catalog[f.name].fixed {
			cols = append(cols, contract.Column{Name: f.name, GroupID: f.groupID})
			continue
		}
		width, err := fixedWidthLayout(spec.Spect.Resolved(), spec.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		for i := 0; i < width; i++ {
			cols = append(cols, contract.Column{Name: fmt.Sprintf("%s[%d]", f.name, i), GroupID: f.groupID})
		}
	}
	return cols, nil
}

func (c *Computer) Compute(wave domain.Waveform, syllables []domain.Syllable, spec contract.FeatureSpec) ([]contract.FeatureResult, error) {
	feats, err := requested(spec)
	if err != nil {
		return nil, err
	}
	params := spec.Spect.Resolved()
	configured, err := dsp.NewMaker(params)
	if err != nil {
		return nil, err
	}
	linearParams := params
	linearParams.LogTransform = false
	linear, err := dsp.NewMaker(linearParams)
	if err != nil {
		return nil, err
	}

	results := make([]contract.FeatureResult, len(syllables))
	for i, syl := range syllables {
		ctx := &SyllableContext{
			Syllable:   syl,
			Audio:      wave.Samples[syl.OnsetSample:syl.OffsetSample],
			SampleRate: wave.SampleRate,
			recording:  wave.Samples,
			spect:      params,
			linear:     linear,
			configured: configured,
		}
		if i > 0 {
			ctx.Prev = &syllables[i-1]
		}
		if i+1 < len(syllables) {
			ctx.Next = &syllables[i+1]
		}
		results[i] = computeOne(ctx, feats)
	}
	return results, nil
}

func computeOne(ctx *SyllableContext, feats []columnFeature) contract.FeatureResult {
	var values []float64
	for _, f := range feats {
		def := catalog[f.name]
		if def.vector != nil {
			v, err := def.vector(ctx)
			if err != nil {
				return contract.FeatureResult{Err: fmt.Errorf("%s: %w", f.name, err)}
			}
			values = append(values, v...)
			continue
		}
		v, err := def.scalar(ctx)
		if err != nil {
			return contract.FeatureResult{Err: fmt.Errorf("%s: %w", f.name, err)}
		}
		values = append(values, v)
	}
	return contract.FeatureResult{Values: values}
}

// Width is the number of columns spec produces.
func Width(spec contract.FeatureSpec) (int, error) {
	cols, err := NewComputer().Columns(spec)
	if err != nil {
		return 0, err
	}
	return len(cols), nil
}
