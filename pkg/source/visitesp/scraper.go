// Package visitesp collects the event calendar published by the
// Visite São Paulo portal.
package visitesp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"golang.org/x/net/html"

	"github.com/sampa-lab/event_radar/pkg/logger"
	"github.com/sampa-lab/event_radar/pkg/model"
	"github.com/sampa-lab/event_radar/pkg/normalize"
	"github.com/sampa-lab/event_radar/pkg/source"
)

const defaultURL = "https://visitesaopaulo.com/calendario-eventos/"

// Calendar entries embed their dates in the entry text.
var datePattern = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}|\d{1,2} de [a-zA-Zçãé]+ de \d{4}`)

// Provider scrapes the event calendar page.
type Provider struct {
	eventsURL string
	client    *http.Client
}

// New creates the provider. eventsURL falls back to the public portal.
func New(eventsURL string, timeout int) *Provider {
	if eventsURL == "" {
		eventsURL = defaultURL
	}
	t := time.Duration(timeout) * time.Second
	if t == 0 {
		t = 20 * time.Second
	}
	return &Provider{
		eventsURL: eventsURL,
		client:    &http.Client{Timeout: t},
	}
}

var _ source.Provider = (*Provider)(nil)

// Name implements source.Provider.
func (p *Provider) Name() string { return "Visite São Paulo" }

// Kind implements source.Provider.
func (p *Provider) Kind() normalize.SourceKind { return normalize.KindDefault }

// Fetch implements source.Provider.
func (p *Provider) Fetch(ctx context.Context) ([]model.RawEvent, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", p.eventsURL, nil)
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
		return nil, fmt.Errorf("visite sp calendar error (status %d)", res.StatusCode)
	}

	root, err := html.Parse(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse calendar failed: %w", err)
	}

	base, err := url.Parse(p.eventsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar url: %w", err)
	}

	// The calendar lists each event as an h3 heading followed by a
	// sibling block holding the date and details link.
	var events []model.RawEvent
	for _, heading := range source.FindAll(root, "h3", "") {
		ev, ok := parseEntry(heading, base)
		if !ok {
			continue
		}
		events = append(events, ev)
	}

	logger.Log.Infof("visite sp: collected %d records", len(events))
	return events, nil
}

func parseEntry(heading *html.Node, base *url.URL) (model.RawEvent, bool) {
	ev := model.RawEvent{
		Title:       source.Text(heading),
		Description: "N/A (disponível no link oficial)",
		Location:    "N/A (disponível no link oficial)",
	}
	if ev.Title == "" {
		return ev, false
	}

	for sib := heading.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type != html.ElementNode {
			continue
		}
		if sib.Data == "h3" {
			break
		}
		if ev.DateText == "" {
			ev.DateText = datePattern.FindString(source.Text(sib))
		}
		if ev.Link == "" {
			if a := source.First(sib, "a", ""); a != nil {
				if u, err := base.Parse(source.Attr(a, "href")); err == nil {
					ev.Link = u.String()
				}
			}
		}
		if ev.DateText != "" && ev.Link != "" {
			break
		}
	}

	// Entries without a date and link are section noise, not events.
	if ev.DateText == "" || ev.Link == "" {
		return ev, false
	}
	return ev, true
}
