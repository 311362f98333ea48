// Package search defines the provider-agnostic web search contract.
package search

import "context"

// Searcher is implemented by every web search backend.
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// Request is a provider-agnostic search request.
type Request struct {
	Query             string
	MaxResults        int
	IncludeRawContent bool
	IncludeDomains    []string
	ExcludeDomains    []string
}

// Response wraps the results of one search call.
type Response struct {
	Results []Result
}

// Result is a single search hit. URL doubles as the reconciliation key
// for web-sourced candidates.
type Result struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	RawContent    string  `json:"raw_content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date"`
}
