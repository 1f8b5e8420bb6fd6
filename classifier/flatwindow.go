package classifier

import (
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

const (
	defaultEpochs    = 20
	defaultBatchSize = 32
	learningRate     = 0.1
	weightDecay      = 1e-4
	flatSeedSalt     = 0x9e3779b97f4a7c15
)

// FlatwindowState is a softmax regression over a flattened fixed-width spectrogram.
type FlatwindowState struct {
	Weights [][]float64 `msgpack:"weights"`
	Bias    []float64   `msgpack:"bias"`
	Classes []string    `msgpack:"classes"`
}

type flatwindow struct {
	state *FlatwindowState
}

func trainFlatwindow(spec domain.ModelSpec, x [][]float64, y []string, seed uint64) (Fitted, error) {
	n := len(x)
	if n == 0 {
		return nil, errors.ErrEmptyDataset
	}
	epochs := spec.IntParam("epochs", defaultEpochs)
	batch := spec.IntParam("batch size", defaultBatchSize)
	batch = min(max(batch, 1), n)

	classes := sortedClasses(y)
	target := make([]int, n)
	for i, label := range y {
		target[i] = indexOf(classes, label)
	}
	width := len(x[0])
	state := &FlatwindowState{Weights: make([][]float64, len(classes)), Bias: make([]float64, len(classes)), Classes: classes}
	for c := range state.Weights {
		state.Weights[c] = make([]float64, width)
	}

	rng := rand.New(rand.NewPCG(seed, seed^flatSeedSalt))
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	gradW := make([][]float64, len(classes))
	for c := range gradW {
		gradW[c] = make([]float64, width)
	}
	gradB := make([]float64, len(classes))
	probs := make([]float64, len(classes))

	for e := 0; e < epochs; e++ {
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		for start := 0; start < n; start += batch {
			end := min(start+batch, n)
			for c := range gradW {
				clear(gradW[c])
			}
			clear(gradB)
			for _, i := range order[start:end] {
				state.softmax(x[i], probs)
				for c, p := range probs {
					g := p
					if c == target[i] {
						g -= 1
					}
					floats.AddScaled(gradW[c], g, x[i])
					gradB[c] += g
				}
			}
			step := learningRate / float64(end-start)
			for c := range state.Weights {
				floats.Scale(1-learningRate*weightDecay, state.Weights[c])
				floats.AddScaled(state.Weights[c], -step, gradW[c])
				state.Bias[c] -= step * gradB[c]
			}
		}
	}
	return &flatwindow{state: state}, nil
}

// softmax writes class probabilities for x into out.
func (s *FlatwindowState) softmax(x, out []float64) {
	for c, w := range s.Weights {
		out[c] = floats.Dot(w, x) + s.Bias[c]
	}
	top := floats.Max(out)
	var sum float64
	for c := range out {
		out[c] = math.Exp(out[c] - top)
		sum += out[c]
	}
	floats.Scale(1/sum, out)
}

func restoreFlatwindow(m *TrainedModel) (Fitted, error) {
	s := m.Flatwindow
	if s == nil || len(s.Classes) == 0 || len(s.Weights) != len(s.Classes) || len(s.Bias) != len(s.Classes) {
		return nil, errors.ErrModelFile
	}
	return &flatwindow{state: s}, nil
}

func (c *flatwindow) Store(m *TrainedModel) { m.Flatwindow = c.state }

func (c *flatwindow) Predict(x []float64) (string, error) {
	s := c.state
	if len(x) != len(s.Weights[0]) {
		return "", errors.ErrLengthMismatch
	}
	probs := make([]float64, len(s.Classes))
	s.softmax(x, probs)
	return s.Classes[floats.MaxIdx(probs)], nil
}
