package sink

import (
	"birdsong-lab/domain"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const predictionsFile = "predictions.json"

type PredictionSink struct {
	log *slog.Logger
	now func() time.Time
}

func NewPredictionSink(log *slog.Logger) PredictionSink {
	return PredictionSink{log: log, now: time.Now}
}

func (s PredictionSink) Write(res *domain.PredictionResult, outputDir string) (string, error) {
	dir, err := runDir(outputDir, "predict", s.now())
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, predictionsFile)
	if err := writeJSON(path, res); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	s.log.Info("Predictions written", "bird_ID", res.BirdID, "path", path, "syllables", len(res.Predictions))
	return path, nil
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(raw, '\n'), 0o644)
}
