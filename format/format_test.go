package format_test

import (
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"birdsong-lab/format"
	"birdsong-lab/format/formattest"
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestMAT_RoundTripCompressed(t *testing.T) {
	for _, compress := range []bool{false, true} {
		req := require.New(t)
		var buf bytes.Buffer
		vars := []format.MatVar{
			{Name: "Fs", Data: []float64{32000}},
			{Name: "labels", Text: "iabab", Class: 4},
			{Name: "onsets", Data: []float64{50, 200.5, 340}},
			{Name: "empty", Text: "", Class: 4},
		}
		req.NoError(format.WriteMAT(&buf, vars, compress))

		got, err := format.ReadMAT(&buf)
		req.NoError(err)
		fs, ok := got["Fs"].Scalar()
		req.True(ok)
		req.Equal(32000.0, fs)
		req.Equal("iabab", got["labels"].Text)
		req.Equal([]float64{50, 200.5, 340}, got["onsets"].Data)
		req.Equal([]int{3, 1}, got["onsets"].Dims)
		req.Contains(got, "empty")
	}
}

func TestReadMAT_RejectsGarbage(t *testing.T) {
	_, err := format.ReadMAT(bytes.NewReader([]byte("nope")))
	require.Error(t, err)

	_, err = format.ReadMAT(bytes.NewReader(make([]byte, 200)))
	require.Error(t, err)
}

func TestEvtaf_ListLoadAnnotate(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	formattest.EvtafDir(t, dir, 3)
	req.NoError(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	evtaf := format.NewEvtaf(discard())
	refs, err := evtaf.ListRecordings(dir)
	req.NoError(err)
	req.Len(refs, 3)
	req.Equal("gy6or6_0000.cbin", refs[0].Name())
	req.Equal(2, refs[2].Index)

	wave, err := evtaf.LoadSamples(refs[0])
	req.NoError(err)
	req.Equal(formattest.SampleRate, wave.SampleRate)
	req.Len(wave.Samples, formattest.SampleRate)

	ann, err := evtaf.LoadAnnotation(refs[0])
	req.NoError(err)
	req.Equal(domain.UnitSeconds, ann.Unit)
	req.Len(ann.Segments, len(formattest.Phrase()))
	req.Equal("i", ann.Segments[0].Label)
	req.InDelta(0.05, ann.Segments[0].Onset, 1e-9)
	req.InDelta(0.12, ann.Segments[0].Offset, 1e-9)
	req.NotNil(ann.Params)
	req.InDelta(domain.DefaultSegmentParams().MinSylDur, ann.Params.MinSylDur, 1e-9)
	req.Equal(formattest.SampleRate, ann.SampleRate)
}

func TestEvtaf_MissingNotmat(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	formattest.WriteCbin(t, dir, "bird_0001", make([]float64, 100), formattest.SampleRate)

	evtaf := format.NewEvtaf(discard())
	refs, err := evtaf.ListRecordings(dir)
	req.NoError(err)
	req.Len(refs, 1)

	_, err = evtaf.LoadAnnotation(refs[0])
	req.ErrorIs(err, errors.ErrAnnotationNotFound)
}

func TestEvtaf_NoRecHeaderFallsBack(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	path := formattest.WriteCbin(t, dir, "bird_0001", make([]float64, 100), 44100)
	req.NoError(os.Remove(filepath.Join(dir, "bird_0001.rec")))

	wave, err := format.NewEvtaf(discard()).LoadSamples(domain.RecordingRef{Path: path})
	req.NoError(err)
	req.Equal(32000, wave.SampleRate)
}

func TestKoumura_ListLoadAnnotate(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	formattest.KoumuraDir(t, dir, 11)
	req.NoError(os.WriteFile(filepath.Join(dir, "Wave", "fake.wav"), []byte("not a riff file at all"), 0o644))

	koumura := format.NewKoumura(discard())
	refs, err := koumura.ListRecordings(dir)
	req.NoError(err)
	req.Len(refs, 11)
	req.Equal("0.wav", refs[0].Name())
	req.Equal("2.wav", refs[2].Name())
	req.Equal("10.wav", refs[10].Name())

	wave, err := koumura.LoadSamples(refs[1])
	req.NoError(err)
	req.Equal(formattest.SampleRate, wave.SampleRate)
	req.Len(wave.Samples, formattest.SampleRate)

	ann, err := koumura.LoadAnnotation(refs[1])
	req.NoError(err)
	req.Equal(domain.UnitSamples, ann.Unit)
	req.Len(ann.Segments, len(formattest.Phrase()))
	req.Equal(1600.0, ann.Segments[0].Onset)
	req.Equal(3840.0, ann.Segments[0].Offset)
	req.Equal("a", ann.Segments[1].Label)
}

func TestKoumura_AnnotationNotXML(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	formattest.KoumuraDir(t, dir, 1)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")
	req.NoError(os.WriteFile(filepath.Join(dir, "Annotation.xml"), png, 0o644))

	koumura := format.NewKoumura(discard())
	refs, err := koumura.ListRecordings(dir)
	req.NoError(err)

	_, err = koumura.LoadAnnotation(refs[0])
	req.ErrorContains(err, "not an XML document")
	req.NotErrorIs(err, errors.ErrAnnotationNotFound)
}

func TestKoumura_WaveNotInAnnotation(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	formattest.KoumuraDir(t, dir, 1)
	formattest.WriteWAV(t, filepath.Join(dir, "Wave", "7.wav"), make([]float64, 10), formattest.SampleRate)

	koumura := format.NewKoumura(discard())
	refs, err := koumura.ListRecordings(dir)
	req.NoError(err)
	req.Len(refs, 2)

	_, err = koumura.LoadAnnotation(refs[1])
	req.ErrorIs(err, errors.ErrAnnotationNotFound)
}

func TestResolver(t *testing.T) {
	req := require.New(t)
	r := format.NewResolver(discard())
	req.Equal([]domain.FileFormat{domain.FormatEvtaf, domain.FormatKoumura}, r.Formats())

	c, err := r.Resolve(domain.FormatKoumura)
	req.NoError(err)
	req.IsType(&format.Koumura{}, c)

	_, err = r.Resolve("wav")
	var unsupported *errors.UnsupportedFormatError
	req.ErrorAs(err, &unsupported)
	req.Equal("wav", unsupported.Format)
}
