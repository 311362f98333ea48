// Package wikimuseums collects the museum list Wikipedia maintains for
// the city of São Paulo. It yields venues rather than dated events.
package wikimuseums

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/net/html"

	"github.com/sampa-lab/event_radar/pkg/logger"
	"github.com/sampa-lab/event_radar/pkg/model"
	"github.com/sampa-lab/event_radar/pkg/normalize"
	"github.com/sampa-lab/event_radar/pkg/source"
)

const defaultURL = "https://pt.wikipedia.org/wiki/Lista_de_museus_da_cidade_de_S%C3%A3o_Paulo"

// Provider scrapes the museum table.
type Provider struct {
	pageURL string
	client  *http.Client
}

// New creates the provider. pageURL falls back to the Wikipedia list.
func New(pageURL string, timeout int) *Provider {
	if pageURL == "" {
		pageURL = defaultURL
	}
	t := time.Duration(timeout) * time.Second
	if t == 0 {
		t = 20 * time.Second
	}
	return &Provider{
		pageURL: pageURL,
		client:  &http.Client{Timeout: t},
	}
}

var _ source.Provider = (*Provider)(nil)

// Name implements source.Provider.
func (p *Provider) Name() string { return "Museus da Wikipédia" }

// Kind implements source.Provider.
func (p *Provider) Kind() normalize.SourceKind { return normalize.KindMuseum }

// Fetch implements source.Provider.
func (p *Provider) Fetch(ctx context.Context) ([]model.RawEvent, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", p.pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia museums error (status %d)", res.StatusCode)
	}

	root, err := html.Parse(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page failed: %w", err)
	}

	table := source.First(root, "table", "wikitable")
	if table == nil {
		return nil, fmt.Errorf("museum table not found")
	}

	events := p.parseTable(table)
	logger.Log.Infof("wiki museums: collected %d records", len(events))
	return events, nil
}

// parseTable reads name and district from the first two columns of
// each table row.
func (p *Provider) parseTable(table *html.Node) []model.RawEvent {
	var events []model.RawEvent
	for _, row := range source.FindAll(table, "tr", "") {
		cols := source.FindAll(row, "td", "")
		if len(cols) < 2 {
			continue
		}
		name := source.Text(cols[0])
		district := source.Text(cols[1])
		if name == "" {
			continue
		}
		events = append(events, model.RawEvent{
			Title:    name,
			District: district,
			Location: district,
			TimeText: "Variado",
			Link:     p.pageURL,
		})
	}
	return events
}
