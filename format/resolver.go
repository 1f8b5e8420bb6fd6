// Package format maps a file_format name to the code that lists, loads and
// reads annotations for recordings stored in that layout.
package format

import (
	"birdsong-lab/contract"
	"birdsong-lab/domain"
	"birdsong-lab/errors"
	"log/slog"
	"sort"
	"sync"
)

type Resolver struct {
	log          *slog.Logger
	mu           sync.RWMutex
	capabilities map[domain.FileFormat]contract.FormatCapability
}

// NewResolver knows evtaf and koumura out of the box.
func NewResolver(log *slog.Logger) *Resolver {
	r := &Resolver{log: log, capabilities: map[domain.FileFormat]contract.FormatCapability{}}
	r.Register(domain.FormatEvtaf, NewEvtaf(log))
	r.Register(domain.FormatKoumura, NewKoumura(log))
	return r
}

func (r *Resolver) Register(f domain.FileFormat, c contract.FormatCapability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities[f] = c
}

func (r *Resolver) Resolve(f domain.FileFormat) (contract.FormatCapability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.capabilities[f]
	if !ok {
		return nil, &errors.UnsupportedFormatError{Format: string(f)}
	}
	return c, nil
}

func (r *Resolver) Formats() []domain.FileFormat {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.FileFormat, 0, len(r.capabilities))
	for f := range r.capabilities {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
