//go:generate go run go.uber.org/mock/mockgen -source=engine.go -destination=../mocks/mock_engine.go -package=mocks

// Package runtime drives the phases of a task document: it validates every
// todo item, dispatches it to the phase driver and writes what it produced.
package runtime

import (
	"birdsong-lab/contract"
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"birdsong-lab/repositories"
	"birdsong-lab/task"
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type ExtractDriver interface {
	Extract(ctx context.Context, vt task.ValidatedTask) (*domain.FeatureDataset, error)
}

type SelectDriver interface {
	Select(ctx context.Context, vt task.ValidatedTask) (*domain.SelectResult, error)
}

type PredictDriver interface {
	Predict(ctx context.Context, vt task.ValidatedTask) (*domain.PredictionResult, error)
}

type ItemReport struct {
	Index  int
	BirdID string
	Output string
	Err    error
}

type Report struct {
	RunID uuid.UUID
	Phase domain.Phase
	Items []ItemReport
}

func (r *Report) Failed() int {
	n := 0
	for _, it := range r.Items {
		if it.Err != nil {
			n++
		}
	}
	return n
}

type Engine struct {
	log         *slog.Logger
	extractor   ExtractDriver
	selector    SelectDriver
	predictor   PredictDriver
	datasets    contract.DatasetWriter
	predictions contract.PredictionWriter
	runs        repositories.IRunRepository
	now         func() time.Time
}

func NewEngine(
	log *slog.Logger,
	extractor ExtractDriver,
	selector SelectDriver,
	predictor PredictDriver,
	datasets contract.DatasetWriter,
	predictions contract.PredictionWriter) *Engine {
	return &Engine{
		log:         log,
		extractor:   extractor,
		selector:    selector,
		predictor:   predictor,
		datasets:    datasets,
		predictions: predictions,
		now:         time.Now,
	}
}

// WithCatalog records every run in runs.
func (e *Engine) WithCatalog(runs repositories.IRunRepository) *Engine {
	e.runs = runs
	return e
}

// Validate checks every todo item of phase without running any of them.
func (e *Engine) Validate(doc task.Document, phase domain.Phase) ([]task.ValidatedTask, error) {
	descs := doc.Tasks(phase)
	if len(descs) == 0 {
		return nil, fmt.Errorf("%w: no %s tasks", errors.ErrTaskDocument, phase)
	}
	tasks := make([]task.ValidatedTask, len(descs))
	var errs []error
	for i, desc := range descs {
		vt, err := task.Validate(desc, phase)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s todo_list[%d]: %w", phase, i, err))
			continue
		}
		tasks[i] = vt
	}
	if len(errs) > 0 {
		return nil, stdErrors.Join(errs...)
	}
	return tasks, nil
}

// Run executes every todo item of phase in order. Nothing runs unless every
// item validates. A failing item is reported and the next one still runs;
// the returned error is non-nil only when every item failed or ctx ended.
func (e *Engine) Run(ctx context.Context, doc task.Document, phase domain.Phase) (*Report, error) {
	tasks, err := e.Validate(doc, phase)
	if err != nil {
		return nil, err
	}
	report := &Report{RunID: uuid.New(), Phase: phase}
	record := repositories.RunRecord{ID: report.RunID, Phase: phase, ConfigFile: doc.Source(), StartedAt: e.now().UTC()}
	log := e.log.With("run", report.RunID, "phase", phase)
	log.Info("Run started", "tasks", len(tasks))

	for i, vt := range tasks {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		item := ItemReport{Index: i, BirdID: birdID(vt)}
		item.Output, item.Err = e.dispatch(ctx, vt)
		if item.Err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			log.Error("Task failed", "index", i, "bird_ID", item.BirdID, "error", item.Err)
		} else {
			log.Info("Task done", "index", i, "bird_ID", item.BirdID, "output", item.Output)
		}
		report.Items = append(report.Items, item)
		record.Items = append(record.Items, runItem(item))
	}

	record.FinishedAt = e.now().UTC()
	if e.runs != nil {
		if err := e.runs.Store(record); err != nil {
			log.Warn("Cannot record run", "error", err)
		}
	}
	if report.Failed() == len(report.Items) {
		errs := make([]error, len(report.Items))
		for i, it := range report.Items {
			errs[i] = fmt.Errorf("%s todo_list[%d]: %w", phase, it.Index, it.Err)
		}
		return report, stdErrors.Join(errs...)
	}
	return report, nil
}

// RunAll runs the phases present in doc in pipeline order and stops at the
// first phase that fails entirely.
func (e *Engine) RunAll(ctx context.Context, doc task.Document) ([]*Report, error) {
	phases := doc.Phases()
	if len(phases) == 0 {
		return nil, fmt.Errorf("%w: no phase section", errors.ErrTaskDocument)
	}
	var reports []*Report
	for _, phase := range phases {
		report, err := e.Run(ctx, doc, phase)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

func (e *Engine) dispatch(ctx context.Context, vt task.ValidatedTask) (string, error) {
	switch vt.Phase() {
	case domain.PhaseExtract:
		et, _ := vt.Extract()
		ds, err := e.extractor.Extract(ctx, vt)
		if err != nil {
			return "", err
		}
		return e.datasets.Write(ds, et.OutputDir)
	case domain.PhaseSelect:
		res, err := e.selector.Select(ctx, vt)
		if err != nil {
			return "", err
		}
		return res.RunDir, nil
	case domain.PhasePredict:
		pt, _ := vt.Predict()
		res, err := e.predictor.Predict(ctx, vt)
		if err != nil {
			return "", err
		}
		return e.predictions.Write(res, pt.OutputDir)
	}
	return "", errors.ErrNotValidated
}

func birdID(vt task.ValidatedTask) string {
	if et, ok := vt.Extract(); ok {
		return et.BirdID
	}
	if pt, ok := vt.Predict(); ok {
		return pt.BirdID
	}
	return ""
}

func runItem(it ItemReport) repositories.RunItem {
	out := repositories.RunItem{BirdID: it.BirdID, Output: it.Output}
	if it.Err != nil {
		out.Error = it.Err.Error()
	}
	return out
}
