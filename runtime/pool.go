package runtime

import (
	"birdsong-lab/domain"
	"birdsong-lab/runtime/workers"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

type PoolConfig struct {
	Workers          int
	RestartInterval  time.Duration
	// ProgressInterval enables periodic backlog logging when > 0.
	ProgressInterval time.Duration
}

// fanOut processes refs on a supervised pool of RecordingWorkers and returns
// one result per ref, in listing order. Partial results are dropped when ctx
// is canceled.
func fanOut[T any](
	ctx context.Context,
	log *slog.Logger,
	cfg PoolConfig,
	refs []domain.RecordingRef,
	process workers.ProcessFunc[T]) ([]workers.RecordingResult[T], error) {
	if len(refs) == 0 {
		return nil, ctx.Err()
	}
	jobs := make(chan domain.RecordingRef, len(refs))
	results := make(chan workers.RecordingResult[T], len(refs))
	for _, ref := range refs {
		jobs <- ref
	}
	close(jobs)

	sup := workers.NewSupervisor(log).WithRestartInterval(cfg.RestartInterval)
	for i := 0; i < min(max(cfg.Workers, 1), len(refs)); i++ {
		sup.Add(workers.NewRecordingWorker(jobs, results, process, log))
	}
	if cfg.ProgressInterval > 0 {
		sup.Add(workers.NewProgressWorker(log, cfg.ProgressInterval, workers.NamedChannel{Name: "recordings", Channel: jobs}))
	}
	sup.Run(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	close(results)

	out := make([]workers.RecordingResult[T], 0, len(refs))
	for r := range results {
		out = append(out, r)
	}
	if len(out) != len(refs) {
		return nil, fmt.Errorf("pool returned %d results for %d recordings", len(out), len(refs))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref.Index < out[j].Ref.Index })
	return out, nil
}
