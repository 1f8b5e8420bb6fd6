package workers

import (
	"birdsong-lab/contract"
	"context"
	"log/slog"
	"reflect"
	"time"
)

var _ contract.Worker = ProgressWorker{}

type NamedChannel struct {
	Name    string
	Channel any
}

// ProgressWorker periodically logs the backlog of each channel.
// Reading len and cap of a channel never blocks the goroutines using it.
// The worker ends once every channel is empty.
type ProgressWorker struct {
	log      *slog.Logger
	channels []NamedChannel
	interval time.Duration
}

func NewProgressWorker(log *slog.Logger, interval time.Duration, channels ...NamedChannel) ProgressWorker {
	return ProgressWorker{log: log, channels: channels, interval: interval}
}

func (w ProgressWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			pending := 0
			for _, nc := range w.channels {
				v := reflect.ValueOf(nc.Channel)
				if v.Kind() != reflect.Chan {
					w.log.Error("Provided object is not a channel", "name", nc.Name)
					continue
				}
				pending += v.Len()
				w.log.Info("Progress", "channel", nc.Name, "pending", v.Len(), "capacity", v.Cap())
			}
			if pending == 0 {
				return nil
			}
		}
	}
}
