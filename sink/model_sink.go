package sink

import (
	"birdsong-lab/classifier"
	"birdsong-lab/domain"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	ModelExt          = ".hvcmodel"
	selectSummaryFile = "summary_model_select_file.json"
)

type ModelSink struct {
	log *slog.Logger
	now func() time.Time
}

func NewModelSink(log *slog.Logger) ModelSink {
	return ModelSink{log: log, now: time.Now}
}

// RunDir creates the select_<stamp> directory of one selection run.
func (s ModelSink) RunDir(outputDir string) (string, error) {
	return runDir(outputDir, "select", s.now())
}

// ModelDir names the directory of one model block inside a run. Blocks that
// would share a name get their index appended.
func (s ModelSink) ModelDir(run string, index int, spec domain.ModelSpec) (string, error) {
	dir := filepath.Join(run, fmt.Sprintf("%s_%s", spec.Kind, spec.Describe()))
	err := os.Mkdir(dir, 0o755)
	if os.IsExist(err) {
		dir = fmt.Sprintf("%s_%d", dir, index)
		err = os.Mkdir(dir, 0o755)
	}
	if err != nil {
		return "", err
	}
	return dir, nil
}

func (s ModelSink) SaveModel(modelDir string, replicate int, m *classifier.TrainedModel) (string, error) {
	path := filepath.Join(modelDir, fmt.Sprintf("model_rep%d%s", replicate, ModelExt))
	if err := classifier.Save(path, m); err != nil {
		return "", err
	}
	s.log.Debug("Model saved", "path", path, "model", m.Kind)
	return path, nil
}

func (s ModelSink) WriteSummary(run string, res *domain.SelectResult) (string, error) {
	path := filepath.Join(run, selectSummaryFile)
	if err := writeJSON(path, res); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	s.log.Info("Model selection summary written", "path", path, "models", len(res.Models))
	return path, nil
}
