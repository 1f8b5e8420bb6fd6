package dsp

import (
	"math"
	"sync"

	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/mat"
)

const dpssHalfBandwidth = 4.0

var (
	dpssMu    sync.Mutex
	dpssCache = map[int][]float64{}
)

// DPSS returns the first discrete prolate spheroidal (Slepian) taper of length n
// with time-half-bandwidth nw, scaled to a peak of 1. Tapers are cached by length.
func DPSS(n int, nw float64) []float64 {
	dpssMu.Lock()
	defer dpssMu.Unlock()
	if w, ok := dpssCache[n]; ok && nw == dpssHalfBandwidth {
		return w
	}

	w := nw / float64(n)
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		d := (float64(n-1) - 2*float64(i)) / 2
		sym.SetSym(i, i, d*d*math.Cos(2*math.Pi*w))
		if i > 0 {
			sym.SetSym(i, i-1, float64(i)*float64(n-i)/2)
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return window.Hann(n)
	}
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// eigenvalues come in ascending order
	taper := make([]float64, n)
	var peak float64
	for i := 0; i < n; i++ {
		taper[i] = vectors.At(i, n-1)
		peak = math.Max(peak, math.Abs(taper[i]))
	}
	sign := 1.0
	if taper[n/2] < 0 {
		sign = -1
	}
	for i := range taper {
		taper[i] = sign * taper[i] / peak
	}
	if nw == dpssHalfBandwidth {
		dpssCache[n] = taper
	}
	return taper
}
