// Package formattest writes small synthetic recordings in the supported
// on-disk layouts.
package formattest

import (
	"birdsong-lab/domain"
	"birdsong-lab/format"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"
)

const (
	SampleRate = 32000
	amplitude  = 8000
)

// Note is a tone burst with a label, boundaries in seconds.
type Note struct {
	Label  string
	Freq   float64
	Onset  float64
	Offset float64
}

// Phrase is one second of song with three syllable types.
func Phrase() []Note {
	return []Note{
		{Label: "i", Freq: 1500, Onset: 0.05, Offset: 0.12},
		{Label: "a", Freq: 3000, Onset: 0.20, Offset: 0.26},
		{Label: "b", Freq: 6000, Onset: 0.34, Offset: 0.44},
		{Label: "a", Freq: 3000, Onset: 0.52, Offset: 0.58},
		{Label: "b", Freq: 6000, Onset: 0.66, Offset: 0.76},
		{Label: "i", Freq: 1500, Onset: 0.84, Offset: 0.91},
	}
}

// Synthesize renders notes as sine bursts over durS seconds of silence.
func Synthesize(notes []Note, durS float64, fs int) []float64 {
	samples := make([]float64, int(durS*float64(fs)))
	for _, n := range notes {
		start, end := int(n.Onset*float64(fs)), int(n.Offset*float64(fs))
		for j := start; j < end && j < len(samples); j++ {
			samples[j] = amplitude * math.Sin(2*math.Pi*n.Freq*float64(j)/float64(fs))
		}
	}
	return samples
}

func Segments(notes []Note) []domain.Segment {
	out := make([]domain.Segment, len(notes))
	for i, n := range notes {
		out[i] = domain.Segment{Onset: n.Onset, Offset: n.Offset, Label: n.Label}
	}
	return out
}

func WriteWAV(t *testing.T, path string, samples []float64, fs int) {
	t.Helper()
	req := require.New(t)
	req.NoError(os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	req.NoError(err)
	defer f.Close()

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	enc := wav.NewEncoder(f, fs, 16, 1, 1)
	req.NoError(enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: fs},
		Data:           data,
		SourceBitDepth: 16,
	}))
	req.NoError(enc.Close())
}

// WriteCbin writes name.cbin and its .rec header into dir and returns the cbin path.
func WriteCbin(t *testing.T, dir, name string, samples []float64, fs int) string {
	t.Helper()
	req := require.New(t)
	raw := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.BigEndian.PutUint16(raw[2*i:], uint16(int16(s)))
	}
	path := filepath.Join(dir, name+".cbin")
	req.NoError(os.WriteFile(path, raw, 0o644))
	rec := fmt.Sprintf("File created: synthetic\nADFREQ = %d\nSamples = %d\nChans = 1\n", fs, len(samples))
	req.NoError(os.WriteFile(filepath.Join(dir, name+".rec"), []byte(rec), 0o644))
	return path
}

func WriteNotmat(t *testing.T, cbinPath string, fs int, notes []Note, params domain.SegmentParams) {
	t.Helper()
	f, err := os.Create(cbinPath + ".not.mat")
	require.NoError(t, err)
	defer f.Close()
	vars := format.NotmatVars(filepath.Base(cbinPath), fs, Segments(notes), params)
	require.NoError(t, format.WriteMAT(f, vars, false))
}

// EvtafDir fills dir with n annotated copies of Phrase.
func EvtafDir(t *testing.T, dir string, n int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	notes := Phrase()
	samples := Synthesize(notes, 1, SampleRate)
	for i := 0; i < n; i++ {
		path := WriteCbin(t, dir, fmt.Sprintf("gy6or6_%04d", i), samples, SampleRate)
		WriteNotmat(t, path, SampleRate, notes, domain.DefaultSegmentParams())
	}
}

// KoumuraDir fills dir/Wave with n copies of Phrase and writes Annotation.xml.
func KoumuraDir(t *testing.T, dir string, n int) {
	t.Helper()
	notes := Phrase()
	samples := Synthesize(notes, 1, SampleRate)
	inSamples := make([]domain.Segment, len(notes))
	for i, s := range Segments(notes) {
		inSamples[i] = domain.Segment{
			Onset:  math.Round(s.Onset * SampleRate),
			Offset: math.Round(s.Offset * SampleRate),
			Label:  s.Label,
		}
	}
	var sequences []format.Sequence
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%d.wav", i)
		WriteWAV(t, filepath.Join(dir, "Wave", name), samples, SampleRate)
		sequences = append(sequences, format.Sequence{Wave: name, Position: int(inSamples[0].Onset), Segments: inSamples})
	}
	raw, err := format.AnnotationXML(sequences...)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Annotation.xml"), raw, 0o644))
}
