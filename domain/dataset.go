package domain

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

const DatasetVersion = 1

// NoGroup tags columns that were requested by name through feature_list.
const NoGroup = -1

type FeatureVector struct {
	BirdID    string    `msgpack:"bird_id"`
	Recording string    `msgpack:"recording"`
	DataDir   string    `msgpack:"data_dir"`
	Index     int       `msgpack:"index"`
	OnsetS    float64   `msgpack:"onset_s"`
	OffsetS   float64   `msgpack:"offset_s"`
	Label     string    `msgpack:"label"`
	Values    []float64 `msgpack:"values"`
}

// Key identifies a syllable across the dataset.
func (v FeatureVector) Key() string {
	return fmt.Sprintf("%s/%s/%d", v.BirdID, v.Recording, v.Index)
}

type Warning struct {
	Recording string `msgpack:"recording" json:"recording"`
	Message   string `msgpack:"message" json:"message"`
}

// FeatureDataset is the persisted output of extraction.
type FeatureDataset struct {
	Version         int             `msgpack:"version"`
	BirdID          string          `msgpack:"bird_id"`
	FileFormat      FileFormat      `msgpack:"file_format"`
	Labelset        []string        `msgpack:"labelset"`
	FeatureNames    []string        `msgpack:"feature_names"`
	FeatureGroups   []string        `msgpack:"feature_groups"`
	FeatureGroupIDs []int           `msgpack:"feature_group_ids"`
	FeatureList     []string        `msgpack:"feature_list"`
	// SampleRate fixes the layout of fixed-width spectrogram columns.
	SampleRate      int             `msgpack:"sample_rate"`
	SpectParams     SpectParams     `msgpack:"spect_params"`
	SegmentParams   SegmentParams   `msgpack:"segment_params"`
	DataDirs        []string        `msgpack:"data_dirs"`
	Vectors         []FeatureVector `msgpack:"vectors"`
	Warnings        []Warning       `msgpack:"warnings"`
	CreatedAt       time.Time       `msgpack:"created_at"`
}

func (d *FeatureDataset) Width() int {
	return len(d.FeatureNames)
}

func (d *FeatureDataset) Labels() []string {
	return lo.Map(d.Vectors, func(v FeatureVector, _ int) string { return v.Label })
}

func (d *FeatureDataset) Matrix() [][]float64 {
	return lo.Map(d.Vectors, func(v FeatureVector, _ int) []float64 { return v.Values })
}

func (d *FeatureDataset) CountByLabel() map[string]int {
	return lo.CountValues(d.Labels())
}

// ByDataDir splits the vectors by the directory they were extracted from.
func (d *FeatureDataset) ByDataDir() map[string][]FeatureVector {
	return lo.GroupBy(d.Vectors, func(v FeatureVector) string { return v.DataDir })
}

// GroupColumns returns the column indices tagged with the named group.
func (d *FeatureDataset) GroupColumns(group string) ([]int, bool) {
	id := lo.IndexOf(d.FeatureGroups, group)
	if id < 0 {
		return nil, false
	}
	var cols []int
	for i, g := range d.FeatureGroupIDs {
		if g == id {
			cols = append(cols, i)
		}
	}
	return cols, true
}
