package features

import (
	"birdsong-lab/dsp"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	minPower      = 1e-10
	hiLoSplitHz   = 5000.0
	rolloffRatio  = 0.95
	smoothWindowS = 0.002
)

// columnStat is evaluated on one spectrum (power per frequency bin).
type columnStat func(freqs, power []float64) (float64, bool)

// meanOverColumns averages a statistic over the time bins where it is defined.
func meanOverColumns(s *dsp.Spectrogram, f columnStat) float64 {
	var values []float64
	for t := 0; t < s.NumTimes(); t++ {
		if v, ok := f(s.Freqs, s.Column(t)); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

func hasPower(power []float64) bool {
	return floats.Sum(power) > minPower
}

func centroid(freqs, power []float64) (float64, bool) {
	if !hasPower(power) {
		return 0, false
	}
	return stat.Mean(freqs, power), true
}

func spread(freqs, power []float64) (float64, bool) {
	if !hasPower(power) {
		return 0, false
	}
	return stat.PopStdDev(freqs, power), true
}

func skewness(freqs, power []float64) (float64, bool) {
	if !hasPower(power) {
		return 0, false
	}
	return stat.Skew(freqs, power), true
}

func kurtosis(freqs, power []float64) (float64, bool) {
	if !hasPower(power) {
		return 0, false
	}
	return stat.ExKurtosis(freqs, power), true
}

// flatness is the geometric over the arithmetic mean of the spectrum.
func flatness(_, power []float64) (float64, bool) {
	arith := stat.Mean(power, nil)
	if arith <= minPower {
		return 0, false
	}
	var logSum float64
	for _, p := range power {
		logSum += math.Log(math.Max(p, minPower))
	}
	return math.Min(math.Exp(logSum/float64(len(power)))/arith, 1), true
}

func slope(freqs, power []float64) (float64, bool) {
	if len(freqs) < 2 || !hasPower(power) {
		return 0, false
	}
	_, beta := stat.LinearRegression(freqs, power, nil, false)
	return beta, true
}

func rolloff(freqs, power []float64) (float64, bool) {
	total := floats.Sum(power)
	if total <= minPower {
		return 0, false
	}
	var cumulative float64
	for i, p := range power {
		cumulative += p
		if cumulative >= rolloffRatio*total {
			return freqs[i], true
		}
	}
	return freqs[len(freqs)-1], true
}

func entropy(_, power []float64) (float64, bool) {
	total := floats.Sum(power)
	if total <= minPower {
		return 0, false
	}
	p := make([]float64, len(power))
	floats.ScaleTo(p, 1/total, power)
	return stat.Entropy(p) / math.Ln2, true
}

// hiLoRatio is log10 of the power above the split over the power below it.
func hiLoRatio(freqs, power []float64) (float64, bool) {
	var hi, lo float64
	for i, f := range freqs {
		if f >= hiLoSplitHz {
			hi += power[i]
		} else {
			lo += power[i]
		}
	}
	if hi <= minPower || lo <= minPower {
		return 0, false
	}
	return math.Log10(hi / lo), true
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(x, x) / float64(len(x)))
}

// smoothRect rectifies x and smooths it with a boxcar of smoothWindowS seconds.
func smoothRect(x []float64, fs int) []float64 {
	n := int(math.Round(smoothWindowS * float64(fs)))
	if n < 1 {
		n = 1
	}
	rect := make([]float64, len(x))
	for i, v := range x {
		rect[i] = math.Abs(v)
	}
	out := make([]float64, len(x))
	var acc float64
	for i := range rect {
		acc += rect[i]
		if i >= n {
			acc -= rect[i-n]
		}
		out[i] = acc / float64(n)
	}
	return out
}

func zeroCrossingRate(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(x); i++ {
		if (x[i-1] >= 0) != (x[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(x)-1)
}
