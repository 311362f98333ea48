// Package finder is the public entry point of the pipeline: it merges
// the cached source batch, a cached web search and location expansion,
// delegates ranking to the LLM collaborator and reconciles its answer
// back to the original records.
package finder

import (
	"context"
	"fmt"
	"strings"

	"github.com/sampa-lab/event_radar/pkg/logger"
	"github.com/sampa-lab/event_radar/pkg/memory"
	dm "github.com/sampa-lab/event_radar/pkg/model"
	"github.com/sampa-lab/event_radar/pkg/search"
)

// Surfaced when the ranking collaborator is unreachable; every other
// failure class stays internal.
const technicalDifficultySummary = "Desculpe, estou com dificuldades técnicas para processar sua solicitação."

// Attached to candidates whose ID matches no source record.
const descriptionNotFound = "Descrição completa não encontrada."

// EventSource yields the current normalized batch.
type EventSource interface {
	Events(ctx context.Context) []dm.Event
}

// Expander yields related place terms for a location query.
type Expander interface {
	Expand(ctx context.Context, query string) []string
}

// Ranker selects and summarizes candidates.
type Ranker interface {
	Rank(ctx context.Context, q dm.QueryDetails, scraped []dm.Event, webResults []search.Result, maxSuggestions int) (*dm.FindResult, error)
}

// SessionRecorder persists one audit row per query; best effort.
type SessionRecorder interface {
	RecordSession(ctx context.Context, q dm.QueryDetails, result *dm.FindResult) error
}

// Finder orchestrates one user query end to end.
type Finder struct {
	events    EventSource
	searchMem *memory.SearchMemory
	searcher  search.Searcher // nil when no provider is credentialed
	expander  Expander
	ranker    Ranker
	recorder  SessionRecorder // nil when auditing is disabled

	maxSuggestions int
	maxWebResults  int
}

// Options configures a Finder.
type Options struct {
	Events         EventSource
	SearchMemory   *memory.SearchMemory
	Searcher       search.Searcher
	Expander       Expander
	Ranker         Ranker
	Recorder       SessionRecorder
	MaxSuggestions int
	MaxWebResults  int
}

// New creates a Finder.
func New(opts Options) *Finder {
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = 3
	}
	if opts.MaxWebResults <= 0 {
		opts.MaxWebResults = 7
	}
	return &Finder{
		events:         opts.Events,
		searchMem:      opts.SearchMemory,
		searcher:       opts.Searcher,
		expander:       opts.Expander,
		ranker:         opts.Ranker,
		recorder:       opts.Recorder,
		maxSuggestions: opts.MaxSuggestions,
		maxWebResults:  opts.MaxWebResults,
	}
}

// Find answers one query. Expansion, aggregation and web search each
// degrade to empty/fallback values on failure; only a ranking failure
// reaches the caller, as a fixed apologetic summary.
func (f *Finder) Find(ctx context.Context, eventType, date, locationQuery string) *dm.FindResult {
	logger.Log.Infof("find: type=%q date=%q location=%q", eventType, date, locationQuery)

	var expanded []string
	if locationQuery != "" {
		expanded = f.expander.Expand(ctx, locationQuery)
		logger.Log.Infof("find: expanded %q to %v", locationQuery, expanded)
	}

	scraped := f.events.Events(ctx)
	logger.Log.Infof("find: %d records in the aggregated batch", len(scraped))

	webResults := f.webSearch(ctx, eventType, date, locationQuery)

	contextualLocation := locationQuery
	if len(expanded) > 0 {
		contextualLocation = strings.Join(expanded, ", ")
	}
	q := dm.QueryDetails{
		EventType:             eventType,
		Date:                  date,
		LocationQuery:         locationQuery,
		ExpandedLocationTerms: contextualLocation,
	}

	result, err := f.ranker.Rank(ctx, q, scraped, webResults, f.maxSuggestions)
	if err != nil {
		logger.Log.Errorf("find: ranking failed: %v", err)
		result = &dm.FindResult{
			ChatSummary: technicalDifficultySummary,
			EventsFound: []dm.EventCandidate{},
		}
	} else {
		attachDescriptions(result, scraped, webResults)
	}

	if f.recorder != nil {
		if err := f.recorder.RecordSession(ctx, q, result); err != nil {
			logger.Log.Warnf("find: session audit failed: %v", err)
		}
	}

	return result
}

// webSearch consults the query cache before calling the external
// search service. Any failure yields an empty result set.
func (f *Finder) webSearch(ctx context.Context, eventType, date, locationQuery string) []search.Result {
	if f.searcher == nil {
		logger.Log.Info("find: skipping web search, no provider credentialed")
		return nil
	}
	if eventType == "" && date == "" && locationQuery == "" {
		logger.Log.Info("find: skipping web search, no criteria provided")
		return nil
	}

	query := composeWebQuery(eventType, date, locationQuery)

	if cached, ok := f.searchMem.Get(query); ok {
		logger.Log.Infof("find: web search cache hit for %q", query)
		return cached
	}

	resp, err := f.searcher.Search(ctx, &search.Request{
		Query:      query,
		MaxResults: f.maxWebResults,
	})
	if err != nil {
		logger.Log.Errorf("find: web search failed for %q: %v", query, err)
		return nil
	}

	f.searchMem.Add(query, resp.Results)
	logger.Log.Infof("find: web search returned %d results for %q", len(resp.Results), query)
	return resp.Results
}

// composeWebQuery builds the composite query string that also serves
// as the cache key. The key is the literal string: equivalent queries
// worded differently are cached independently.
func composeWebQuery(eventType, date, locationQuery string) string {
	var parts []string
	if eventType != "" {
		parts = append(parts, eventType)
	}
	if locationQuery != "" {
		parts = append(parts, fmt.Sprintf("em %s", locationQuery))
	}
	if date != "" {
		parts = append(parts, fmt.Sprintf("em %s", date))
	}
	return fmt.Sprintf("Eventos culturais ou atividades %s em São Paulo", strings.Join(parts, " "))
}

// attachDescriptions joins every candidate back to its original record
// by ID (scraper) or URL (web) and attaches the full description. A
// candidate whose key matches nothing gets a fixed placeholder instead
// of failing the batch.
func attachDescriptions(result *dm.FindResult, scraped []dm.Event, webResults []search.Result) {
	scrapedByID := make(map[string]dm.Event, len(scraped))
	for _, ev := range scraped {
		if ev.ID != "" {
			scrapedByID[ev.ID] = ev
		}
	}
	webByURL := make(map[string]search.Result, len(webResults))
	for _, res := range webResults {
		if res.URL != "" {
			webByURL[res.URL] = res
		}
	}

	for i := range result.EventsFound {
		cand := &result.EventsFound[i]
		cand.FullDescription = descriptionNotFound

		switch cand.Source {
		case dm.CandidateSourceScraper:
			if ev, ok := scrapedByID[cand.ID]; ok && ev.Description != "" {
				cand.FullDescription = ev.Description
			}
		case dm.CandidateSourceWeb:
			if res, ok := webByURL[cand.ID]; ok {
				if res.Content != "" {
					cand.FullDescription = res.Content
				} else if res.RawContent != "" {
					cand.FullDescription = res.RawContent
				}
			}
		}
	}
}
