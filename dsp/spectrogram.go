package dsp

import (
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// floor for the log transform, keeps silent bins finite
const logFloor = 1e-12

// Spectrogram holds power in Power[freq][time].
type Spectrogram struct {
	Power [][]float64
	Freqs []float64
	Times []float64
}

func (s *Spectrogram) NumFreqs() int { return len(s.Freqs) }
func (s *Spectrogram) NumTimes() int { return len(s.Times) }

// Column returns the spectrum of one time bin.
func (s *Spectrogram) Column(t int) []float64 {
	col := make([]float64, len(s.Power))
	for f := range s.Power {
		col[f] = s.Power[f][t]
	}
	return col
}

// Flatten returns the power row by row.
func (s *Spectrogram) Flatten() []float64 {
	out := make([]float64, 0, s.NumFreqs()*s.NumTimes())
	for _, row := range s.Power {
		out = append(out, row...)
	}
	return out
}

// Maker computes spectrograms for one resolved parameter set.
type Maker struct {
	params domain.SpectParams
	win    []float64
	winSq  float64
}

func NewMaker(p domain.SpectParams) (*Maker, error) {
	p = p.Resolved()
	if p.Nperseg <= 0 || p.Noverlap < 0 || p.Noverlap >= p.Nperseg {
		return nil, fmt.Errorf("invalid window: nperseg=%d noverlap=%d", p.Nperseg, p.Noverlap)
	}
	var win []float64
	switch p.Window {
	case domain.WindowHann, "":
		win = window.Hann(p.Nperseg)
	case domain.WindowDPSS:
		win = DPSS(p.Nperseg, dpssHalfBandwidth)
	default:
		return nil, fmt.Errorf("unknown window %q", p.Window)
	}
	var sq float64
	for _, w := range win {
		sq += w * w
	}
	return &Maker{params: p, win: win, winSq: sq}, nil
}

func (m *Maker) Params() domain.SpectParams { return m.params }

// Make returns errors.ErrWindowTooLong when the signal is shorter than one window.
func (m *Maker) Make(samples []float64, fs int) (*Spectrogram, error) {
	x := samples
	if m.params.FilterFunc == domain.FilterDiff {
		x = diff(samples)
	}
	n := m.params.Nperseg
	if len(x) < n {
		return nil, fmt.Errorf("%w: %d samples, window %d", errors.ErrWindowTooLong, len(x), n)
	}
	step := m.params.Step()
	numFrames := (len(x)-n)/step + 1
	numBins := n/2 + 1

	freqs := make([]float64, numBins)
	for k := range freqs {
		freqs[k] = float64(k) * float64(fs) / float64(n)
	}
	lo, hi := 0, numBins
	if len(m.params.FreqCutoffs) == 2 {
		lo, hi = binRange(freqs, float64(m.params.FreqCutoffs[0]), float64(m.params.FreqCutoffs[1]))
	}

	power := make([][]float64, hi-lo)
	for f := range power {
		power[f] = make([]float64, numFrames)
	}
	times := make([]float64, numFrames)

	frame := make([]float64, n)
	for t := 0; t < numFrames; t++ {
		start := t * step
		copy(frame, x[start:start+n])
		if m.params.SpectFunc == domain.SpectFuncScipy {
			detrend(frame)
		}
		for i := range frame {
			frame[i] *= m.win[i]
		}
		spectrum := fft.FFTReal(frame)
		for k := lo; k < hi; k++ {
			power[k-lo][t] = m.binValue(spectrum[k], k, n, fs)
		}
		times[t] = float64(start+n/2) / float64(fs)
	}

	if m.params.LogTransform {
		for _, row := range power {
			for i, p := range row {
				row[i] = math.Log10(math.Max(p, logFloor))
			}
		}
	}
	return &Spectrogram{Power: power, Freqs: freqs[lo:hi], Times: times}, nil
}

func (m *Maker) binValue(c complex128, k, n, fs int) float64 {
	mag := cmplx.Abs(c)
	if m.params.SpectFunc != domain.SpectFuncScipy {
		return mag
	}
	// one-sided power spectral density
	p := mag * mag / (float64(fs) * m.winSq)
	if k != 0 && !(n%2 == 0 && k == n/2) {
		p *= 2
	}
	return p
}

// binRange keeps frequencies f with low <= f < high.
func binRange(freqs []float64, low, high float64) (int, int) {
	lo, hi := len(freqs), len(freqs)
	for i, f := range freqs {
		if f >= low && lo == len(freqs) {
			lo = i
		}
		if f >= high {
			hi = i
			break
		}
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func diff(x []float64) []float64 {
	if len(x) < 2 {
		return nil
	}
	out := make([]float64, len(x)-1)
	for i := range out {
		out[i] = x[i+1] - x[i]
	}
	return out
}

func detrend(x []float64) {
	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))
	for i := range x {
		x[i] -= mean
	}
}

// PadTo zero-pads x on the right up to n samples.
func PadTo(x []float64, n int) []float64 {
	if len(x) >= n {
		return x
	}
	out := make([]float64, n)
	copy(out, x)
	return out
}

// MinSamples is the shortest input Make accepts for these params.
func (m *Maker) MinSamples() int {
	if m.params.FilterFunc == domain.FilterDiff {
		return m.params.Nperseg + 1
	}
	return m.params.Nperseg
}
