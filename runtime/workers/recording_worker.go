package workers

import (
	"birdsong-lab/contract"
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"context"
	"fmt"
	"log/slog"
)

// Ensure *RecordingWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*RecordingWorker[struct{}])(nil)

// RecordingResult carries the outcome of one recording. Err is set when the
// recording could not be processed.
type RecordingResult[T any] struct {
	Ref   domain.RecordingRef
	Value T
	Err   error
}

type ProcessFunc[T any] func(ctx context.Context, ref domain.RecordingRef) (T, error)

// RecordingWorker drains a job channel and reports one result per job.
type RecordingWorker[T any] struct {
	jobs    <-chan domain.RecordingRef
	results chan<- RecordingResult[T]
	process ProcessFunc[T]
	log     *slog.Logger
}

func NewRecordingWorker[T any](
	jobs <-chan domain.RecordingRef,
	results chan<- RecordingResult[T],
	process ProcessFunc[T],
	log *slog.Logger) *RecordingWorker[T] {
	return &RecordingWorker[T]{
		jobs:    jobs,
		results: results,
		process: process,
		log:     log,
	}
}

// Run returns nil once the job channel is closed, which tells the
// supervisor not to restart it.
func (w *RecordingWorker[T]) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ref, ok := <-w.jobs:
			if !ok {
				return nil
			}
			res := w.safeProcess(ctx, ref)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case w.results <- res:
			}
		}
	}
}

// safeProcess turns a panic into a failed recording instead of losing the job.
func (w *RecordingWorker[T]) safeProcess(ctx context.Context, ref domain.RecordingRef) (res RecordingResult[T]) {
	res.Ref = ref
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Recording panicked", "recording", ref.Path, "panic", r)
			res.Err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
		}
	}()
	res.Value, res.Err = w.process(ctx, ref)
	return res
}
