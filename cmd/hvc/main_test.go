package main

import (
	"birdsong-lab/format/formattest"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func extractConfig(t *testing.T) (string, string) {
	dataDir := filepath.Join(t.TempDir(), "gy6or6", "032312")
	formattest.EvtafDir(t, dataDir, 2)
	out := t.TempDir()
	return writeConfig(t, fmt.Sprintf(`extract:
  bird_ID: gy6or6
  file_format: evtaf
  data_dirs: [%q]
  output_dir: %q
  labelset: iab
`, dataDir, out)), out
}

func TestRun_Validate(t *testing.T) {
	t.Setenv("ENABLE_CATALOG", "false")

	tests := []struct {
		name   string
		config string
		code   int
		output string
	}{
		{
			name:   "valid file",
			config: "select:\n  feature_file: f.hvc\n  output_dir: out\n  models:\n    - model_name: knn\n",
			code:   exitOK,
			output: "select: 1 task(s)",
		},
		{
			name:   "unknown key",
			config: "select:\n  feature_file: f.hvc\n  output_dir: out\n  colour: red\n  models:\n    - model_name: knn\n",
			code:   exitConfig,
			output: "colour",
		},
		{
			name:   "unknown section",
			config: "train:\n  models: []\n",
			code:   exitConfig,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			code, _ := run([]string{"validate", writeConfig(t, tt.config)}, &out)
			require.Equal(t, tt.code, code)
			require.Contains(t, out.String(), tt.output)
		})
	}
}

func TestRun_ValidateSinglePhase(t *testing.T) {
	t.Setenv("ENABLE_CATALOG", "false")
	config := writeConfig(t, "select:\n  feature_file: f.hvc\n  output_dir: out\n  models:\n    - model_name: knn\n")

	code, _ := run([]string{"validate", "--phase", "select", config}, &bytes.Buffer{})
	require.Equal(t, exitOK, code)

	// No predict section in the file
	var out bytes.Buffer
	code, _ = run([]string{"validate", "--phase", "predict", config}, &out)
	require.Equal(t, exitConfig, code)
	require.Contains(t, out.String(), "no predict tasks")

	code, err := run([]string{"validate", "--phase", "train", config}, &bytes.Buffer{})
	require.Equal(t, exitConfig, code)
	require.ErrorIs(t, err, errUsage)
}

func TestRun_UsageErrors(t *testing.T) {
	t.Setenv("ENABLE_CATALOG", "false")
	code, err := run([]string{"extract"}, &bytes.Buffer{})
	require.Equal(t, exitConfig, code)
	require.ErrorIs(t, err, errUsage)

	code, _ = run([]string{"inspect", "notes.txt"}, &bytes.Buffer{})
	require.Equal(t, exitConfig, code)
}

func TestRun_BadEnvironment(t *testing.T) {
	t.Setenv("NUMBER_OF_WORKERS", "0")
	code, err := run([]string{"validate", "x.yml"}, &bytes.Buffer{})
	require.Equal(t, exitConfig, code)
	require.Error(t, err)
}

func TestRun_ExtractThenInspectAndListRuns(t *testing.T) {
	req := require.New(t)
	t.Setenv("BADGER_FILEPATH", filepath.Join(t.TempDir(), "catalog"))
	t.Setenv("NUMBER_OF_WORKERS", "2")
	config, outDir := extractConfig(t)

	// When extracting with the catalog enabled
	var out bytes.Buffer
	code, err := run([]string{"extract", config}, &out)
	req.NoError(err)
	req.Equal(exitOK, code)
	req.Contains(out.String(), "done")

	// Then the summary feature file can be inspected
	matches, err := filepath.Glob(filepath.Join(outDir, "extract_*", "summary_feature_file_gy6or6.hvc"))
	req.NoError(err)
	req.Len(matches, 1)
	out.Reset()
	code, err = run([]string{"inspect", matches[0]}, &out)
	req.NoError(err)
	req.Equal(exitOK, code)
	req.Contains(out.String(), "gy6or6")

	// And the run is in the catalog
	out.Reset()
	code, err = run([]string{"runs"}, &out)
	req.NoError(err)
	req.Equal(exitOK, code)
	req.Contains(out.String(), "extract")
	req.Contains(out.String(), config)
}

func TestRun_FailedTaskIsRuntimeError(t *testing.T) {
	t.Setenv("ENABLE_CATALOG", "false")
	config := writeConfig(t, fmt.Sprintf(`extract:
  bird_ID: gy6or6
  file_format: evtaf
  data_dirs: [%q]
  output_dir: %q
  labelset: iab
`, filepath.Join(t.TempDir(), "missing"), t.TempDir()))

	var out bytes.Buffer
	code, err := run([]string{"extract", config}, &out)
	require.Equal(t, exitRuntime, code)
	require.Error(t, err)
	require.Contains(t, out.String(), "failed")
}
