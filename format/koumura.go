package format

import (
	"birdsong-lab/domain"
	"birdsong-lab/domain/mimetypes"
	"birdsong-lab/errors"
	"encoding/xml"
	stdErrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-audio/wav"
)

const (
	annotationXML = "Annotation.xml"
	waveDir       = "Wave"
	wavExt        = ".wav"
	sniffLen      = 64
)

type xmlNote struct {
	Position int    `xml:"Position"`
	Length   int    `xml:"Length"`
	Label    string `xml:"Label"`
}

type xmlSequence struct {
	WaveFileName string    `xml:"WaveFileName"`
	Position     int       `xml:"Position"`
	Length       int       `xml:"Length"`
	Notes        []xmlNote `xml:"Note"`
}

type xmlAnnotation struct {
	XMLName   xml.Name      `xml:"AnnotationSequence"`
	Sequences []xmlSequence `xml:"Sequence"`
}

// Koumura reads the Bengalese finch dataset layout: WAV files under Wave/ and
// one Annotation.xml for the whole directory, with boundaries in samples.
type Koumura struct {
	log *slog.Logger

	mu          sync.Mutex
	annotations map[string]map[string][]domain.Segment
}

func NewKoumura(log *slog.Logger) *Koumura {
	return &Koumura{log: log, annotations: map[string]map[string][]domain.Segment{}}
}

func waveRoot(dataDir string) string {
	candidate := filepath.Join(dataDir, waveDir)
	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		return candidate
	}
	return dataDir
}

// numericStemLess orders "10.wav" after "9.wav".
func numericStemLess(a, b string) bool {
	na, errA := strconv.Atoi(strings.TrimSuffix(a, filepath.Ext(a)))
	nb, errB := strconv.Atoi(strings.TrimSuffix(b, filepath.Ext(b)))
	if errA == nil && errB == nil && na != nb {
		return na < nb
	}
	return a < b
}

func (k *Koumura) ListRecordings(dataDir string) ([]domain.RecordingRef, error) {
	root := waveRoot(dataDir)
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", root, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), wavExt) {
			continue
		}
		path := filepath.Join(root, entry.Name())
		if !isWAV(path) {
			k.log.Warn("Skipping file that is not RIFF/WAVE", "path", path)
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Slice(names, func(i, j int) bool { return numericStemLess(names[i], names[j]) })

	refs := make([]domain.RecordingRef, len(names))
	for i, n := range names {
		refs[i] = domain.RecordingRef{
			Format:  domain.FormatKoumura,
			DataDir: dataDir,
			Path:    filepath.Join(root, n),
			Index:   i,
		}
	}
	return refs, nil
}

func isWAV(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	magic := make([]byte, sniffLen)
	n, err := io.ReadFull(f, magic)
	if err != nil && !stdErrors.Is(err, io.ErrUnexpectedEOF) {
		return false
	}
	_, ok := mimetypes.MatchesAny(mimetype.Detect(magic[:n]).String(), mimetypes.WAV()...)
	return ok
}

func isAnnotationText(detected string) bool {
	_, ok := mimetypes.MatchesAny(detected, mimetypes.Annotation()...)
	return ok
}

func (k *Koumura) LoadSamples(ref domain.RecordingRef) (domain.Waveform, error) {
	f, err := os.Open(ref.Path)
	if err != nil {
		return domain.Waveform{}, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return domain.Waveform{}, fmt.Errorf("%s: invalid wav file", ref.Path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return domain.Waveform{}, fmt.Errorf("%s: %w", ref.Path, err)
	}
	chans := buf.Format.NumChannels
	if chans < 1 {
		chans = 1
	}
	samples := make([]float64, len(buf.Data)/chans)
	for i := range samples {
		samples[i] = float64(buf.Data[i*chans])
	}
	return domain.Waveform{Samples: samples, SampleRate: buf.Format.SampleRate}, nil
}

func (k *Koumura) LoadAnnotation(ref domain.RecordingRef) (domain.Annotation, error) {
	byWave, err := k.directoryAnnotations(ref.DataDir)
	if err != nil {
		return domain.Annotation{}, err
	}
	segments, ok := byWave[ref.Name()]
	if !ok {
		return domain.Annotation{}, fmt.Errorf("%w: %s in %s", errors.ErrAnnotationNotFound, ref.Name(), annotationXML)
	}
	return domain.Annotation{Unit: domain.UnitSamples, Segments: segments}, nil
}

// directoryAnnotations parses Annotation.xml once per data directory.
func (k *Koumura) directoryAnnotations(dataDir string) (map[string][]domain.Segment, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if cached, ok := k.annotations[dataDir]; ok {
		return cached, nil
	}

	path := filepath.Join(dataDir, annotationXML)
	raw, err := os.ReadFile(path)
	if stdErrors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", errors.ErrAnnotationNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	if detected := mimetype.Detect(raw).String(); !isAnnotationText(detected) {
		return nil, fmt.Errorf("%s: not an XML document (%s)", path, detected)
	}
	var doc xmlAnnotation
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	byWave := map[string][]domain.Segment{}
	for _, seq := range doc.Sequences {
		for _, note := range seq.Notes {
			onset := seq.Position + note.Position
			byWave[seq.WaveFileName] = append(byWave[seq.WaveFileName], domain.Segment{
				Onset:  float64(onset),
				Offset: float64(onset + note.Length),
				Label:  note.Label,
			})
		}
	}
	for name := range byWave {
		segs := byWave[name]
		sort.SliceStable(segs, func(i, j int) bool { return segs[i].Onset < segs[j].Onset })
	}
	k.annotations[dataDir] = byWave
	return byWave, nil
}

// Sequence is one annotated wave file. Segments are absolute sample positions.
type Sequence struct {
	Wave     string
	Position int
	Segments []domain.Segment
}

// AnnotationXML renders sequences in the Annotation.xml layout.
func AnnotationXML(sequences ...Sequence) ([]byte, error) {
	doc := xmlAnnotation{}
	for _, sq := range sequences {
		seq := xmlSequence{WaveFileName: sq.Wave, Position: sq.Position}
		for _, s := range sq.Segments {
			seq.Notes = append(seq.Notes, xmlNote{
				Position: int(s.Onset) - sq.Position,
				Length:   int(s.Offset - s.Onset),
				Label:    s.Label,
			})
			seq.Length = int(s.Offset) - sq.Position
		}
		doc.Sequences = append(doc.Sequences, seq)
	}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
