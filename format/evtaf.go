package format

import (
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"bufio"
	"encoding/binary"
	stdErrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	cbinExt           = ".cbin"
	recExt            = ".rec"
	notmatExt         = ".not.mat"
	defaultEvtafRate  = 32000
	defaultEvtafChans = 1
)

// Evtaf reads recordings made with the EvTAF acquisition program: big-endian
// int16 .cbin files, a .rec header and .not.mat annotations.
type Evtaf struct {
	log *slog.Logger
}

func NewEvtaf(log *slog.Logger) *Evtaf {
	return &Evtaf{log: log}
}

func (e *Evtaf) ListRecordings(dataDir string) ([]domain.RecordingRef, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dataDir, err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), cbinExt) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	refs := make([]domain.RecordingRef, len(names))
	for i, n := range names {
		refs[i] = domain.RecordingRef{
			Format:  domain.FormatEvtaf,
			DataDir: dataDir,
			Path:    filepath.Join(dataDir, n),
			Index:   i,
		}
	}
	return refs, nil
}

type recHeader struct {
	sampleRate int
	chans      int
}

// readRec parses the "key = value" lines of a .rec sidecar.
func readRec(path string) (recHeader, error) {
	h := recHeader{sampleRate: defaultEvtafRate, chans: defaultEvtafChans}
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "adfreq":
			h.sampleRate = n
		case "chans":
			h.chans = n
		}
	}
	return h, sc.Err()
}

func recPath(ref domain.RecordingRef) string {
	return strings.TrimSuffix(ref.Path, filepath.Ext(ref.Path)) + recExt
}

func notmatPath(ref domain.RecordingRef) string {
	return ref.Path + notmatExt
}

func (e *Evtaf) LoadSamples(ref domain.RecordingRef) (domain.Waveform, error) {
	header, err := readRec(recPath(ref))
	if err != nil && !stdErrors.Is(err, fs.ErrNotExist) {
		return domain.Waveform{}, fmt.Errorf("%s: %w", recPath(ref), err)
	}
	if stdErrors.Is(err, fs.ErrNotExist) {
		if fsNotmat, ok := e.notmatRate(ref); ok {
			header.sampleRate = fsNotmat
		}
		e.log.Debug("No .rec header, using fallback sample rate", "recording", ref.Path, "sample_rate", header.sampleRate)
	}
	if header.chans < 1 {
		header.chans = 1
	}

	raw, err := os.ReadFile(ref.Path)
	if err != nil {
		return domain.Waveform{}, err
	}
	frame := 2 * header.chans
	if len(raw)%frame != 0 {
		return domain.Waveform{}, fmt.Errorf("%s: %d bytes is not a whole number of %d-channel frames", ref.Path, len(raw), header.chans)
	}
	samples := make([]float64, len(raw)/frame)
	for i := range samples {
		samples[i] = float64(int16(binary.BigEndian.Uint16(raw[i*frame:])))
	}
	return domain.Waveform{Samples: samples, SampleRate: header.sampleRate}, nil
}

func (e *Evtaf) notmatRate(ref domain.RecordingRef) (int, bool) {
	vars, err := readNotmat(notmatPath(ref))
	if err != nil {
		return 0, false
	}
	rate, ok := vars["Fs"].Scalar()
	return int(rate), ok && rate > 0
}

func readNotmat(path string) (map[string]MatVar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadMAT(f)
}

// LoadAnnotation reads onsets and offsets (ms) and one-character labels.
func (e *Evtaf) LoadAnnotation(ref domain.RecordingRef) (domain.Annotation, error) {
	path := notmatPath(ref)
	vars, err := readNotmat(path)
	if stdErrors.Is(err, fs.ErrNotExist) {
		return domain.Annotation{}, fmt.Errorf("%w: %s", errors.ErrAnnotationNotFound, path)
	}
	if err != nil {
		return domain.Annotation{}, fmt.Errorf("%s: %w", path, err)
	}

	onsets, offsets := vars["onsets"].Data, vars["offsets"].Data
	labels := []rune(vars["labels"].Text)
	if len(onsets) != len(offsets) || len(onsets) != len(labels) {
		return domain.Annotation{}, fmt.Errorf("%s: %d onsets, %d offsets, %d labels", path, len(onsets), len(offsets), len(labels))
	}

	ann := domain.Annotation{Unit: domain.UnitSeconds, Segments: make([]domain.Segment, len(onsets))}
	for i := range onsets {
		ann.Segments[i] = domain.Segment{
			Onset:  onsets[i] / 1000,
			Offset: offsets[i] / 1000,
			Label:  string(labels[i]),
		}
	}
	if rate, ok := vars["Fs"].Scalar(); ok {
		ann.SampleRate = int(rate)
	}
	threshold, okT := vars["threshold"].Scalar()
	minDur, okD := vars["min_dur"].Scalar()
	minInt, okI := vars["min_int"].Scalar()
	if okT && okD && okI {
		ann.Params = &domain.SegmentParams{Threshold: threshold, MinSylDur: minDur / 1000, MinSilentDur: minInt / 1000}
	}
	return ann, nil
}

// NotmatVars builds the variables of a .not.mat file for an annotation.
func NotmatVars(name string, fs int, segments []domain.Segment, params domain.SegmentParams) []MatVar {
	onsets := make([]float64, len(segments))
	offsets := make([]float64, len(segments))
	var labels strings.Builder
	for i, s := range segments {
		onsets[i] = s.Onset * 1000
		offsets[i] = s.Offset * 1000
		labels.WriteString(s.Label)
	}
	return []MatVar{
		{Name: "Fs", Data: []float64{float64(fs)}},
		{Name: "fname", Text: name, Class: mxCHAR},
		{Name: "labels", Text: labels.String(), Class: mxCHAR},
		{Name: "onsets", Data: onsets},
		{Name: "offsets", Data: offsets},
		{Name: "min_int", Data: []float64{params.MinSilentDur * 1000}},
		{Name: "min_dur", Data: []float64{params.MinSylDur * 1000}},
		{Name: "threshold", Data: []float64{params.Threshold}},
		{Name: "sm_win", Data: []float64{2}},
	}
}
