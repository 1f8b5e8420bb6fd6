package domain

import "path/filepath"

// RecordingRef identifies one recording inside a data directory.
// Index is the position in the format's listing order.
type RecordingRef struct {
	Format  FileFormat
	DataDir string
	Path    string
	Index   int
}

func (r RecordingRef) Name() string {
	return filepath.Base(r.Path)
}

type Waveform struct {
	Samples    []float64
	SampleRate int
}

func (w Waveform) Duration() float64 {
	if w.SampleRate == 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.SampleRate)
}

type BoundaryUnit int

const (
	UnitSeconds BoundaryUnit = iota
	UnitSamples
)

// Segment is an annotated syllable expressed in the annotation's unit.
type Segment struct {
	Onset  float64
	Offset float64
	Label  string
}

type Annotation struct {
	Unit       BoundaryUnit
	Segments   []Segment
	// Params holds the segmentation settings recorded with the annotation, if any.
	Params     *SegmentParams
	// SampleRate recorded with the annotation, 0 when unknown.
	SampleRate int
}

// Syllable is a resolved segment: boundaries in samples and in seconds.
// An empty Label means the syllable is unlabelled.
type Syllable struct {
	Index        int
	OnsetSample  int
	OffsetSample int
	OnsetS       float64
	OffsetS      float64
	Label        string
}

func (s Syllable) Duration() float64 {
	return s.OffsetS - s.OnsetS
}
