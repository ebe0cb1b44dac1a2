package device

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Source enumerates devices from one channel. Implementations must be safe
// to call repeatedly and should return an empty slice, not an error, when
// nothing is connected.
type Source interface {
	Name() string
	Enumerate(ctx context.Context) ([]Descriptor, error)
}

// RegistryConfig wires a Registry. Overrides is caller-supplied so the
// operator's configuration wins over the heuristic without the registry
// owning any storage.
type RegistryConfig struct {
	Sources   []Source
	Overrides func() Overrides
	Seen      *SeenStore
	Logger    *zap.Logger
}

// Registry merges device enumeration into one immutable snapshot. Refresh
// swaps the snapshot atomically; readers holding the previous slice keep a
// consistent view.
type Registry struct {
	mu        sync.RWMutex
	snapshot  []Descriptor
	sources   []Source
	overrides func() Overrides
	seen      *SeenStore
	logger    *zap.Logger
}

// NewRegistry builds a registry over the given sources
func NewRegistry(cfg RegistryConfig) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	overrides := cfg.Overrides
	if overrides == nil {
		overrides = func() Overrides { return nil }
	}
	return &Registry{
		snapshot:  []Descriptor{},
		sources:   cfg.Sources,
		overrides: overrides,
		seen:      cfg.Seen,
		logger:    logger,
	}
}

// Refresh re-enumerates every source and publishes a new snapshot. Zero
// devices is a valid outcome, never an error; a failing source is logged and
// skipped so one dead bus cannot hide the others.
func (r *Registry) Refresh(ctx context.Context) []Descriptor {
	merged := make([]Descriptor, 0, 8)
	byName := make(map[string]int)

	for _, src := range r.sources {
		devices, err := src.Enumerate(ctx)
		if err != nil {
			r.logger.Warn("device enumeration failed",
				zap.String("source", src.Name()),
				zap.Error(err))
			continue
		}
		for _, d := range devices {
			if d.Name == "" {
				continue
			}
			if _, dup := byName[d.Name]; dup {
				// same physical device visible twice: the earlier
				// source wins, spooler identity is most portable
				continue
			}
			byName[d.Name] = len(merged)
			merged = append(merged, d)
		}
	}

	overrides := r.overrides()
	for i := range merged {
		heuristic := Classify(merged[i].Name, merged[i].Transport)
		merged[i].IsThermal = overrides.apply(merged[i].Name, heuristic)
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Name < merged[j].Name })

	r.mu.Lock()
	r.snapshot = merged
	r.mu.Unlock()

	if r.seen != nil {
		if err := r.seen.MarkSeen(merged); err != nil {
			r.logger.Warn("failed to persist seen devices", zap.Error(err))
		}
	}

	r.logger.Info("device registry refreshed", zap.Int("devices", len(merged)))
	return merged
}

// Current returns the last published snapshot without touching any hardware
func (r *Registry) Current() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Find looks a device up by name in the current snapshot
func (r *Registry) Find(name string) (Descriptor, bool) {
	for _, d := range r.Current() {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Default returns the spooler default device, if any
func (r *Registry) Default() (Descriptor, bool) {
	for _, d := range r.Current() {
		if d.IsDefault {
			return d, true
		}
	}
	return Descriptor{}, false
}

// ClassifyName resolves the thermal classification for a name/transport pair
// with the operator overrides applied, for callers outside a refresh.
func (r *Registry) ClassifyName(name string, transport Transport) bool {
	return r.overrides().apply(name, Classify(name, transport))
}
