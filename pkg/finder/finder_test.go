package finder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sampa-lab/event_radar/pkg/memory"
	dm "github.com/sampa-lab/event_radar/pkg/model"
	"github.com/sampa-lab/event_radar/pkg/search"
)

type stubEvents struct {
	events []dm.Event
}

func (s *stubEvents) Events(ctx context.Context) []dm.Event { return s.events }

type stubExpander struct {
	terms []string
	calls int
}

func (s *stubExpander) Expand(ctx context.Context, query string) []string {
	s.calls++
	return s.terms
}

type stubRanker struct {
	result *dm.FindResult
	err    error
	lastQ  dm.QueryDetails
}

func (s *stubRanker) Rank(ctx context.Context, q dm.QueryDetails, scraped []dm.Event, webResults []search.Result, maxSuggestions int) (*dm.FindResult, error) {
	s.lastQ = q
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubSearcher struct {
	resp  *search.Response
	err   error
	calls int
}

func (s *stubSearcher) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

type stubRecorder struct {
	calls int
	err   error
}

func (s *stubRecorder) RecordSession(ctx context.Context, q dm.QueryDetails, result *dm.FindResult) error {
	s.calls++
	return s.err
}

func newFinder(t *testing.T, opts Options) *Finder {
	t.Helper()
	if opts.Events == nil {
		opts.Events = &stubEvents{}
	}
	if opts.SearchMemory == nil {
		opts.SearchMemory = memory.NewSearchMemory(time.Hour)
	}
	if opts.Expander == nil {
		opts.Expander = &stubExpander{}
	}
	if opts.Ranker == nil {
		opts.Ranker = &stubRanker{result: &dm.FindResult{EventsFound: []dm.EventCandidate{}}}
	}
	return New(opts)
}

func TestFindAttachesScrapedDescriptionByID(t *testing.T) {
	ranker := &stubRanker{result: &dm.FindResult{
		ChatSummary: "Encontrei 1 evento",
		EventsFound: []dm.EventCandidate{
			{ID: "FabLab_0_Oficina", Name: "Oficina", Source: dm.CandidateSourceScraper},
		},
	}}
	f := newFinder(t, Options{
		Events: &stubEvents{events: []dm.Event{
			{ID: "FabLab_0_Oficina", Description: "Oficina de marcenaria para iniciantes."},
		}},
		Ranker: ranker,
	})

	res := f.Find(context.Background(), "oficina", "", "")

	require.Len(t, res.EventsFound, 1)
	assert.Equal(t, "Oficina de marcenaria para iniciantes.", res.EventsFound[0].FullDescription)
}

func TestFindAttachesWebContentByURL(t *testing.T) {
	searcher := &stubSearcher{resp: &search.Response{Results: []search.Result{
		{URL: "https://example.com/show", Content: "Show gratuito no parque."},
		{URL: "https://example.com/raw", RawContent: "Conteúdo bruto da página."},
	}}}
	ranker := &stubRanker{result: &dm.FindResult{
		EventsFound: []dm.EventCandidate{
			{ID: "https://example.com/show", Name: "Show", Source: dm.CandidateSourceWeb},
			{ID: "https://example.com/raw", Name: "Feira", Source: dm.CandidateSourceWeb},
		},
	}}
	f := newFinder(t, Options{Searcher: searcher, Ranker: ranker})

	res := f.Find(context.Background(), "show", "", "")

	require.Len(t, res.EventsFound, 2)
	assert.Equal(t, "Show gratuito no parque.", res.EventsFound[0].FullDescription)
	assert.Equal(t, "Conteúdo bruto da página.", res.EventsFound[1].FullDescription)
}

func TestFindUnmatchedCandidateGetsPlaceholder(t *testing.T) {
	ranker := &stubRanker{result: &dm.FindResult{
		EventsFound: []dm.EventCandidate{
			{ID: "inventado_9_Fantasma", Name: "Fantasma", Source: dm.CandidateSourceScraper},
		},
	}}
	f := newFinder(t, Options{Ranker: ranker})

	res := f.Find(context.Background(), "teatro", "", "")

	require.Len(t, res.EventsFound, 1)
	assert.Equal(t, "Descrição completa não encontrada.", res.EventsFound[0].FullDescription)
}

func TestFindRankingFailureYieldsApology(t *testing.T) {
	f := newFinder(t, Options{Ranker: &stubRanker{err: errors.New("model down")}})

	res := f.Find(context.Background(), "cinema", "", "")

	assert.Equal(t, "Desculpe, estou com dificuldades técnicas para processar sua solicitação.", res.ChatSummary)
	assert.NotNil(t, res.EventsFound)
	assert.Empty(t, res.EventsFound)
}

func TestFindWebSearchCacheHitSkipsSearcher(t *testing.T) {
	searcher := &stubSearcher{resp: &search.Response{Results: []search.Result{{URL: "u"}}}}
	f := newFinder(t, Options{Searcher: searcher})

	f.Find(context.Background(), "samba", "2026-09-01", "centro")
	f.Find(context.Background(), "samba", "2026-09-01", "centro")

	assert.Equal(t, 1, searcher.calls, "second identical query must be served from cache")
}

func TestFindWebSearchFailureIsSwallowed(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("503")}
	ranker := &stubRanker{result: &dm.FindResult{EventsFound: []dm.EventCandidate{}}}
	f := newFinder(t, Options{Searcher: searcher, Ranker: ranker})

	res := f.Find(context.Background(), "dança", "", "")

	require.NotNil(t, res)
	assert.Equal(t, 1, searcher.calls)
	// A failed search is not cached, so the next call tries again.
	f.Find(context.Background(), "dança", "", "")
	assert.Equal(t, 2, searcher.calls)
}

func TestFindSkipsWebSearchWithoutCriteria(t *testing.T) {
	searcher := &stubSearcher{resp: &search.Response{}}
	f := newFinder(t, Options{Searcher: searcher})

	f.Find(context.Background(), "", "", "")

	assert.Equal(t, 0, searcher.calls)
}

func TestFindExpandsLocationIntoQueryDetails(t *testing.T) {
	exp := &stubExpander{terms: []string{"paulista", "bela vista", "consolação"}}
	ranker := &stubRanker{result: &dm.FindResult{EventsFound: []dm.EventCandidate{}}}
	f := newFinder(t, Options{Expander: exp, Ranker: ranker})

	f.Find(context.Background(), "", "", "Paulista")

	assert.Equal(t, 1, exp.calls)
	assert.Equal(t, "Paulista", ranker.lastQ.LocationQuery)
	assert.Equal(t, "paulista, bela vista, consolação", ranker.lastQ.ExpandedLocationTerms)
}

func TestFindEmptyLocationSkipsExpansion(t *testing.T) {
	exp := &stubExpander{}
	f := newFinder(t, Options{Expander: exp})

	f.Find(context.Background(), "música", "", "")

	assert.Equal(t, 0, exp.calls)
}

func TestFindRecorderFailureDoesNotAffectResult(t *testing.T) {
	rec := &stubRecorder{err: errors.New("db down")}
	ranker := &stubRanker{result: &dm.FindResult{ChatSummary: "ok", EventsFound: []dm.EventCandidate{}}}
	f := newFinder(t, Options{Ranker: ranker, Recorder: rec})

	res := f.Find(context.Background(), "feira", "", "")

	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, "ok", res.ChatSummary)
}

func TestComposeWebQuery(t *testing.T) {
	assert.Equal(t,
		"Eventos culturais ou atividades show em Pinheiros em 2026-09-05 em São Paulo",
		composeWebQuery("show", "2026-09-05", "Pinheiros"))
	assert.Equal(t,
		"Eventos culturais ou atividades teatro em São Paulo",
		composeWebQuery("teatro", "", ""))
}
