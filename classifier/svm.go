package classifier

import (
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

const (
	defaultC    = 1.0
	svmPasses   = 20
	svmSeedSalt = 0x5f3759df
)

// SVMState holds one-vs-rest RBF decision functions over shared support vectors.
// Coef[c][i] weights SupportVectors[i] for class Classes[c].
type SVMState struct {
	Gamma          float64     `msgpack:"gamma"`
	SupportVectors [][]float64 `msgpack:"support_vectors"`
	Coef           [][]float64 `msgpack:"coef"`
	Classes        []string    `msgpack:"classes"`
}

type svm struct {
	state *SVMState
}

func rbf(a, b []float64, gamma float64) float64 {
	d := floats.Distance(a, b, 2)
	return math.Exp(-gamma * d * d)
}

// trainSVM runs kernelized Pegasos once per class.
func trainSVM(spec domain.ModelSpec, x [][]float64, y []string, seed uint64) (Fitted, error) {
	n := len(x)
	if n == 0 {
		return nil, errors.ErrEmptyDataset
	}
	gamma := spec.FloatParam("gamma", 1/float64(len(x[0])))
	lambda := 1 / (spec.FloatParam("C", defaultC) * float64(n))
	classes := sortedClasses(y)

	kernel := make([][]float64, n)
	for i := range kernel {
		kernel[i] = make([]float64, n)
		for j := 0; j <= i; j++ {
			kernel[i][j] = rbf(x[i], x[j], gamma)
			kernel[j][i] = kernel[i][j]
		}
	}

	rng := rand.New(rand.NewPCG(seed, seed^svmSeedSalt))
	steps := svmPasses * n
	alphas := make([][]float64, len(classes))
	used := make([]bool, n)
	for c, class := range classes {
		sign := make([]float64, n)
		for i, label := range y {
			sign[i] = -1
			if label == class {
				sign[i] = 1
			}
		}
		alpha := make([]float64, n)
		for t := 1; t <= steps; t++ {
			i := rng.IntN(n)
			var sum float64
			for j, a := range alpha {
				if a != 0 {
					sum += a * sign[j] * kernel[i][j]
				}
			}
			if sign[i]*sum/(lambda*float64(t)) < 1 {
				alpha[i]++
			}
		}
		scale := 1 / (lambda * float64(steps))
		for i := range alpha {
			alpha[i] *= sign[i] * scale
			if alpha[i] != 0 {
				used[i] = true
			}
		}
		alphas[c] = alpha
	}

	state := &SVMState{Gamma: gamma, Classes: classes, Coef: make([][]float64, len(classes))}
	for i, u := range used {
		if !u {
			continue
		}
		state.SupportVectors = append(state.SupportVectors, x[i])
		for c := range classes {
			state.Coef[c] = append(state.Coef[c], alphas[c][i])
		}
	}
	return &svm{state: state}, nil
}

func restoreSVM(m *TrainedModel) (Fitted, error) {
	s := m.SVM
	if s == nil || len(s.Classes) == 0 || len(s.Coef) != len(s.Classes) {
		return nil, errors.ErrModelFile
	}
	for _, coef := range s.Coef {
		if len(coef) != len(s.SupportVectors) {
			return nil, errors.ErrModelFile
		}
	}
	return &svm{state: s}, nil
}

func (c *svm) Store(m *TrainedModel) { m.SVM = c.state }

// Predict returns the class with the largest decision value. Ties go to the
// first class in sorted order.
func (c *svm) Predict(x []float64) (string, error) {
	s := c.state
	if len(s.SupportVectors) > 0 && len(x) != len(s.SupportVectors[0]) {
		return "", errors.ErrLengthMismatch
	}
	k := make([]float64, len(s.SupportVectors))
	for i, sv := range s.SupportVectors {
		k[i] = rbf(sv, x, s.Gamma)
	}
	best, bestScore := 0, math.Inf(-1)
	for ci, coef := range s.Coef {
		score := 0.0
		if len(k) > 0 {
			score = floats.Dot(coef, k)
		}
		if score > bestScore {
			best, bestScore = ci, score
		}
	}
	return s.Classes[best], nil
}
