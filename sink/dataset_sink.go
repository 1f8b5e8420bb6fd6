// Package sink persists pipeline outputs under a task's output_dir.
package sink

import (
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	stampLayout  = "060102_150405"
	datasetMagic = "hvcfeatures"
	// FeatureExt is the extension of feature files.
	FeatureExt   = ".hvc"
)

// runDir creates <outputDir>/<prefix>_<stamp>, adding a counter when a run
// started in the same second already owns the name.
func runDir(outputDir, prefix string, at time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}
	base := filepath.Join(outputDir, fmt.Sprintf("%s_%s", prefix, at.Format(stampLayout)))
	dir := base
	for i := 2; ; i++ {
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !os.IsExist(err) {
			return "", err
		}
		dir = fmt.Sprintf("%s_%d", base, i)
	}
}

type datasetEnvelope struct {
	Magic   string             `msgpack:"magic"`
	Version int                `msgpack:"version"`
	Dataset msgpack.RawMessage `msgpack:"dataset"`
}

func writeDataset(path string, ds *domain.FeatureDataset) error {
	body, err := msgpack.Marshal(ds)
	if err != nil {
		return err
	}
	raw, err := msgpack.Marshal(datasetEnvelope{Magic: datasetMagic, Version: domain.DatasetVersion, Dataset: body})
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// LoadDataset reads a file written by DatasetSink.
func LoadDataset(path string) (*domain.FeatureDataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrDatasetFile, err)
	}
	var env datasetEnvelope
	if err := msgpack.Unmarshal(raw, &env); err != nil || env.Magic != datasetMagic {
		return nil, fmt.Errorf("%w: %s is not a feature file", errors.ErrDatasetFile, path)
	}
	if env.Version != domain.DatasetVersion {
		return nil, fmt.Errorf("%w: %s has version %d, expected %d", errors.ErrDatasetFile, path, env.Version, domain.DatasetVersion)
	}
	var ds domain.FeatureDataset
	if err := msgpack.Unmarshal(env.Dataset, &ds); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrDatasetFile, path, err)
	}
	for i, v := range ds.Vectors {
		if len(v.Values) != ds.Width() {
			return nil, fmt.Errorf("%w: %s row %d has %d values, expected %d", errors.ErrDatasetFile, path, i, len(v.Values), ds.Width())
		}
	}
	return &ds, nil
}

// partName names the file of one data directory after its base name. Days
// of different trees often share a base name, so repeats get a counter.
func partName(dataDir string, used map[string]int) string {
	base := filepath.Base(filepath.Clean(dataDir))
	used[base]++
	if n := used[base]; n > 1 {
		base = fmt.Sprintf("%s_%d", base, n)
	}
	return fmt.Sprintf("features_from_%s%s", base, FeatureExt)
}

type DatasetSink struct {
	log *slog.Logger
	now func() time.Time
}

func NewDatasetSink(log *slog.Logger) DatasetSink {
	return DatasetSink{log: log, now: time.Now}
}

// Write stores the summary file and one file per data directory. It returns
// the summary file path.
func (s DatasetSink) Write(ds *domain.FeatureDataset, outputDir string) (string, error) {
	dir, err := runDir(outputDir, "extract_"+ds.BirdID, s.now())
	if err != nil {
		return "", err
	}

	byDir := ds.ByDataDir()
	used := map[string]int{}
	for _, dataDir := range ds.DataDirs {
		part := *ds
		part.DataDirs = []string{dataDir}
		part.Vectors = byDir[dataDir]
		part.Warnings = warningsFor(ds.Warnings, dataDir)
		name := partName(dataDir, used)
		if err := writeDataset(filepath.Join(dir, name), &part); err != nil {
			return "", fmt.Errorf("write %s: %w", name, err)
		}
	}

	summary := filepath.Join(dir, fmt.Sprintf("summary_feature_file_%s%s", ds.BirdID, FeatureExt))
	if err := writeDataset(summary, ds); err != nil {
		return "", fmt.Errorf("write %s: %w", summary, err)
	}
	s.log.Info("Feature file written", "bird_ID", ds.BirdID, "path", summary, "rows", len(ds.Vectors), "columns", ds.Width())
	return summary, nil
}

func warningsFor(ws []domain.Warning, dataDir string) []domain.Warning {
	var out []domain.Warning
	prefix := filepath.Clean(dataDir) + string(filepath.Separator)
	for _, w := range ws {
		if strings.HasPrefix(filepath.Clean(w.Recording), prefix) {
			out = append(out, w)
		}
	}
	return out
}
