package classifier

import (
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"sort"

	"gonum.org/v1/gonum/floats"
)

const defaultK = 5

type KNNState struct {
	K int         `msgpack:"k"`
	X [][]float64 `msgpack:"x"`
	Y []string    `msgpack:"y"`
}

type knn struct {
	state *KNNState
}

func trainKNN(spec domain.ModelSpec, x [][]float64, y []string, _ uint64) (Fitted, error) {
	if len(x) == 0 {
		return nil, errors.ErrEmptyDataset
	}
	k := spec.IntParam("k", defaultK)
	return &knn{state: &KNNState{K: k, X: x, Y: y}}, nil
}

func restoreKNN(m *TrainedModel) (Fitted, error) {
	if m.KNN == nil || len(m.KNN.X) == 0 || len(m.KNN.X) != len(m.KNN.Y) {
		return nil, errors.ErrModelFile
	}
	return &knn{state: m.KNN}, nil
}

func (c *knn) Store(m *TrainedModel) { m.KNN = c.state }

type neighbour struct {
	dist  float64
	label string
}

// Predict votes among the K nearest rows. Ties go to the label of the
// nearest row among the tied labels.
func (c *knn) Predict(x []float64) (string, error) {
	s := c.state
	if len(x) != len(s.X[0]) {
		return "", errors.ErrLengthMismatch
	}
	ns := make([]neighbour, len(s.X))
	for i, row := range s.X {
		ns[i] = neighbour{dist: floats.Distance(row, x, 2), label: s.Y[i]}
	}
	sort.SliceStable(ns, func(i, j int) bool { return ns[i].dist < ns[j].dist })

	k := s.K
	if k <= 0 || k > len(ns) {
		k = len(ns)
	}
	votes := map[string]int{}
	best := 0
	for _, n := range ns[:k] {
		votes[n.label]++
		best = max(best, votes[n.label])
	}
	for _, n := range ns[:k] {
		if votes[n.label] == best {
			return n.label, nil
		}
	}
	return ns[0].label, nil
}
