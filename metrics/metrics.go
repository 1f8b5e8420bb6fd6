// Package metrics scores predicted label sequences against ground truth.
package metrics

import (
	"birdsong-lab/errors"
	"fmt"

	"github.com/samber/lo"
)

// Levenshtein is the edit distance between two label sequences.
func Levenshtein(a, b []string) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func checkLengths(truth, pred []string) error {
	if len(truth) != len(pred) {
		return fmt.Errorf("%w: %d true labels, %d predicted", errors.ErrLengthMismatch, len(truth), len(pred))
	}
	return nil
}

// AverageAccuracy is the mean per-label recall over the labels of labelset
// that occur in truth. An empty labelset uses every label in truth.
func AverageAccuracy(truth, pred, labelset []string) (float64, error) {
	if err := checkLengths(truth, pred); err != nil {
		return 0, err
	}
	if len(labelset) == 0 {
		labelset = lo.Uniq(truth)
	}
	total := lo.CountValues(truth)
	correct := map[string]int{}
	for i, label := range truth {
		if pred[i] == label {
			correct[label]++
		}
	}
	var sum float64
	seen := 0
	for _, label := range lo.Uniq(labelset) {
		if total[label] == 0 {
			continue
		}
		sum += float64(correct[label]) / float64(total[label])
		seen++
	}
	if seen == 0 {
		return 0, nil
	}
	return sum / float64(seen), nil
}

// HammingDistance counts positions where the sequences differ.
func HammingDistance(truth, pred []string) (int, error) {
	if err := checkLengths(truth, pred); err != nil {
		return 0, err
	}
	n := 0
	for i := range truth {
		if truth[i] != pred[i] {
			n++
		}
	}
	return n, nil
}

// FrameError is the fraction of mislabelled frames.
func FrameError(truth, pred []string) (float64, error) {
	d, err := HammingDistance(truth, pred)
	if err != nil {
		return 0, err
	}
	if len(truth) == 0 {
		return 0, nil
	}
	return float64(d) / float64(len(truth)), nil
}
