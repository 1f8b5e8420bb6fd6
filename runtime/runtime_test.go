package runtime_test

import (
	"birdsong-lab/domain"
	"birdsong-lab/features"
	"birdsong-lab/format"
	"birdsong-lab/runtime"
	"birdsong-lab/task"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func validated(t *testing.T, phase domain.Phase, yml string) task.ValidatedTask {
	t.Helper()
	doc, err := task.ParseDocument([]byte(yml))
	require.NoError(t, err)
	tasks := doc.Tasks(phase)
	require.Len(t, tasks, 1)
	vt, err := task.Validate(tasks[0], phase)
	require.NoError(t, err)
	return vt
}

func quoted(items ...string) string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(out, ", ") + "]"
}

func extractYAML(birdID string, f domain.FileFormat, outputDir, labelset string, dirs ...string) string {
	return fmt.Sprintf(`extract:
  bird_ID: %s
  file_format: %s
  data_dirs: %s
  output_dir: %q
  labelset: %s
`, birdID, f, quoted(dirs...), outputDir, labelset)
}

func newExtractor(workers int) *runtime.Extractor {
	log := discard()
	return runtime.NewExtractor(log, format.NewResolver(log), features.NewComputer(), runtime.PoolConfig{Workers: workers})
}

func newPredictor() *runtime.Predictor {
	log := discard()
	return runtime.NewPredictor(log, format.NewResolver(log), features.NewComputer(), runtime.PoolConfig{Workers: 2})
}

// birdDir returns <tmp>/<birdID>/<day> so bird_ID filters match it.
func birdDir(t *testing.T, birdID, day string) string {
	return filepath.Join(t.TempDir(), birdID, day)
}
