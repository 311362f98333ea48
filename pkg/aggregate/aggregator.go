// Package aggregate fans out to the configured site providers and
// publishes one normalized batch through the event cache.
package aggregate

import (
	"context"
	"sync"

	"github.com/sampa-lab/event_radar/pkg/logger"
	"github.com/sampa-lab/event_radar/pkg/memory"
	"github.com/sampa-lab/event_radar/pkg/model"
	"github.com/sampa-lab/event_radar/pkg/normalize"
	"github.com/sampa-lab/event_radar/pkg/source"
)

// Aggregator runs every configured provider when the cached batch has
// gone stale and returns the cached batch otherwise. One misbehaving
// provider never blocks the others' results from being published.
type Aggregator struct {
	providers []source.Provider
	memory    *memory.EventMemory

	// refreshMu makes a refresh single-flight: concurrent callers wait
	// for the one in progress instead of re-running every provider.
	refreshMu sync.Mutex
}

// New creates an aggregator over an ordered provider list. Provider
// order only matters for ID assignment.
func New(mem *memory.EventMemory, providers ...source.Provider) *Aggregator {
	return &Aggregator{providers: providers, memory: mem}
}

// Events returns the current batch, refreshing it first when stale.
func (a *Aggregator) Events(ctx context.Context) []model.Event {
	if !a.memory.ShouldRefresh() {
		logger.Log.Debug("aggregator: serving cached batch")
		return a.memory.Events()
	}

	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	// A concurrent caller may have finished the refresh while this one
	// waited for the lock.
	if !a.memory.ShouldRefresh() {
		return a.memory.Events()
	}

	logger.Log.Info("aggregator: batch stale or empty, collecting from providers")
	batch := a.collect(ctx)
	a.memory.Update(batch)
	logger.Log.Infof("aggregator: stored %d records from %d providers", len(batch), len(a.providers))

	return a.memory.Events()
}

// collect gathers and normalizes every provider's output into one
// accumulator. The batch is published only after all providers ran, so
// readers never see a half-updated cycle.
func (a *Aggregator) collect(ctx context.Context) []model.Event {
	var batch []model.Event
	for _, p := range a.providers {
		raws, err := p.Fetch(ctx)
		if err != nil {
			logger.Log.Errorf("aggregator: provider %s failed: %v", p.Name(), err)
			continue
		}
		if len(raws) == 0 {
			logger.Log.Infof("aggregator: provider %s returned no records", p.Name())
			continue
		}
		for i, raw := range raws {
			batch = append(batch, normalize.Event(p.Name(), p.Kind(), i, raw))
		}
		logger.Log.Infof("aggregator: %d records from %s", len(raws), p.Name())
	}
	return batch
}
