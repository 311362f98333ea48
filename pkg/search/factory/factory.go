package factory

import (
	"fmt"

	"github.com/sampa-lab/event_radar/pkg/config"
	"github.com/sampa-lab/event_radar/pkg/search"
	"github.com/sampa-lab/event_radar/pkg/search/searxng"
	"github.com/sampa-lab/event_radar/pkg/search/tavily"
)

// NewSearcher builds the configured search client. A nil Searcher with
// a nil error means no provider is credentialed; the finder then skips
// the web search step instead of failing.
func NewSearcher(cfg *config.Config) (search.Searcher, error) {
	provider := cfg.Search.Provider
	if provider == "" {
		if cfg.Search.Tavily.APIKey != "" {
			provider = "tavily"
		} else {
			return nil, nil
		}
	}

	switch provider {
	case "tavily":
		if cfg.Search.Tavily.APIKey == "" {
			return nil, nil
		}
		return tavily.NewClient(cfg.Search.Tavily.APIKey), nil

	case "searxng":
		if cfg.Search.SearXNG.BaseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(cfg.Search.SearXNG.BaseURL, cfg.Search.SearXNG.Timeout), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", provider)
	}
}
