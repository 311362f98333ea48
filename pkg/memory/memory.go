// Package memory holds the two in-process caches that keep expensive
// external lookups off the hot path: EventMemory for the aggregated
// source batch and SearchMemory for web search results.
package memory

import (
	"sync"
	"time"

	"github.com/sampa-lab/event_radar/pkg/model"
	"github.com/sampa-lab/event_radar/pkg/search"
)

// EventMemory caches the last successfully aggregated batch of events.
// The batch is replaced as a unit; readers never observe a mix of two
// refresh cycles.
type EventMemory struct {
	mu          sync.Mutex
	events      []model.Event
	lastUpdated time.Time
	interval    time.Duration
	now         func() time.Time
}

// NewEventMemory creates a batch cache with the given refresh interval.
func NewEventMemory(interval time.Duration) *EventMemory {
	return &EventMemory{
		interval: interval,
		now:      time.Now,
	}
}

// ShouldRefresh reports whether the batch is missing or older than the
// refresh interval.
func (m *EventMemory) ShouldRefresh() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastUpdated.IsZero() {
		return true
	}
	return m.now().Sub(m.lastUpdated) > m.interval
}

// Update replaces the stored batch and its timestamp. No merging with
// the previous batch happens: stale records are dropped wholesale.
func (m *EventMemory) Update(events []model.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = events
	m.lastUpdated = m.now()
}

// Events returns the currently stored batch, possibly empty.
func (m *EventMemory) Events() []model.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events
}

type searchEntry struct {
	results []search.Result
	created time.Time
}

// SearchMemory caches web search results per query string. Each entry
// expires independently; expired entries are evicted lazily on read.
// Keys are the literal query strings, so differently worded but
// equivalent queries are cached separately.
type SearchMemory struct {
	mu       sync.Mutex
	entries  map[string]searchEntry
	interval time.Duration
	now      func() time.Time
}

// NewSearchMemory creates a query cache with the given entry lifetime.
func NewSearchMemory(interval time.Duration) *SearchMemory {
	return &SearchMemory{
		entries:  make(map[string]searchEntry),
		interval: interval,
		now:      time.Now,
	}
}

// Add stores or overwrites the entry for key with the current time.
func (m *SearchMemory) Add(key string, results []search.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = searchEntry{results: results, created: m.now()}
}

// Get returns the cached results for key while they are still fresh.
// An expired entry is removed and reported as a miss.
func (m *SearchMemory) Get(key string) ([]search.Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().Sub(entry.created) >= m.interval {
		delete(m.entries, key)
		return nil, false
	}
	return entry.results, true
}

// ClearAll drops every cached entry.
func (m *SearchMemory) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]searchEntry)
}

// Len reports the number of live entries, expired ones included until
// a read evicts them.
func (m *SearchMemory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
