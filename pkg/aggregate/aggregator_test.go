package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sampa-lab/event_radar/pkg/memory"
	"github.com/sampa-lab/event_radar/pkg/model"
	"github.com/sampa-lab/event_radar/pkg/normalize"
)

type fakeProvider struct {
	name  string
	kind  normalize.SourceKind
	raws  []model.RawEvent
	err   error
	calls int
}

func (p *fakeProvider) Name() string { return p.name }
func (p *fakeProvider) Kind() normalize.SourceKind { return p.kind }

func (p *fakeProvider) Fetch(ctx context.Context) ([]model.RawEvent, error) {
	p.calls++
	return p.raws, p.err
}

func TestEventsCollectsFromAllProviders(t *testing.T) {
	a := &fakeProvider{name: "A", raws: []model.RawEvent{{Title: "um"}, {Title: "dois"}}}
	b := &fakeProvider{name: "B", raws: []model.RawEvent{{Title: "três"}}}

	agg := New(memory.NewEventMemory(time.Hour), a, b)
	events := agg.Events(context.Background())

	require.Len(t, events, 3)
	assert.Equal(t, "A_0_um", events[0].ID)
	assert.Equal(t, "A_1_dois", events[1].ID)
	assert.Equal(t, "B_0_três", events[2].ID)
	assert.Equal(t, "A", events[0].SourceName)
	assert.Equal(t, "B", events[2].SourceName)
}

func TestEventsOneProviderFailingDoesNotBlockOthers(t *testing.T) {
	ok := &fakeProvider{name: "ok", raws: []model.RawEvent{{Title: "evento"}}}
	broken := &fakeProvider{name: "broken", err: errors.New("timeout")}

	agg := New(memory.NewEventMemory(time.Hour), broken, ok)
	events := agg.Events(context.Background())

	require.Len(t, events, 1)
	assert.Equal(t, "ok_0_evento", events[0].ID)
}

func TestEventsServesCacheWhileFresh(t *testing.T) {
	p := &fakeProvider{name: "P", raws: []model.RawEvent{{Title: "evento"}}}
	agg := New(memory.NewEventMemory(time.Hour), p)

	first := agg.Events(context.Background())
	second := agg.Events(context.Background())

	assert.Equal(t, 1, p.calls, "fresh cache must not trigger a new fetch")
	assert.Equal(t, first, second)
}

func TestEventsRefreshesWhenStale(t *testing.T) {
	p := &fakeProvider{name: "P", raws: []model.RawEvent{{Title: "evento"}}}
	// A negative interval makes every stored batch immediately stale.
	agg := New(memory.NewEventMemory(-time.Nanosecond), p)

	agg.Events(context.Background())
	agg.Events(context.Background())

	assert.Equal(t, 2, p.calls)
}

func TestEventsAllProvidersFailingPublishesEmptyBatch(t *testing.T) {
	broken := &fakeProvider{name: "broken", err: errors.New("boom")}
	mem := memory.NewEventMemory(time.Hour)
	agg := New(mem, broken)

	events := agg.Events(context.Background())

	assert.Empty(t, events)
	// The empty result still counts as a completed refresh.
	assert.False(t, mem.ShouldRefresh())
	assert.Equal(t, 1, broken.calls)

	agg.Events(context.Background())
	assert.Equal(t, 1, broken.calls)
}
