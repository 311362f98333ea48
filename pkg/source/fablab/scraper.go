// Package fablab collects course and workshop listings from the FabLab
// Livre SP portal.
package fablab

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/sampa-lab/event_radar/pkg/logger"
	"github.com/sampa-lab/event_radar/pkg/model"
	"github.com/sampa-lab/event_radar/pkg/normalize"
	"github.com/sampa-lab/event_radar/pkg/source"
)

const (
	defaultURL = "https://www.fablablivresp.prefeitura.sp.gov.br/busca?tipo=curso"

	// Listing cards carry no description; detail pages are fetched
	// through readability for at most this many records.
	maxDetailFetches = 12
	maxDescription   = 600
)

// Provider scrapes the FabLab listing page.
type Provider struct {
	listURL string
	client  *http.Client
}

// New creates the provider. listURL falls back to the public portal.
func New(listURL string, timeout int) *Provider {
	if listURL == "" {
		listURL = defaultURL
	}
	t := time.Duration(timeout) * time.Second
	if t == 0 {
		t = 20 * time.Second
	}
	return &Provider{
		listURL: listURL,
		client:  &http.Client{Timeout: t},
	}
}

var _ source.Provider = (*Provider)(nil)

// Name implements source.Provider.
func (p *Provider) Name() string { return "FabLab" }

// Kind implements source.Provider.
func (p *Provider) Kind() normalize.SourceKind { return normalize.KindFabLab }

// Fetch implements source.Provider.
func (p *Provider) Fetch(ctx context.Context) ([]model.RawEvent, error) {
	root, err := p.fetchDocument(ctx, p.listURL)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(p.listURL)
	if err != nil {
		return nil, fmt.Errorf("invalid listing url: %w", err)
	}

	cards := source.FindAll(root, "div", "views-row")
	if len(cards) == 0 {
		cards = source.FindAll(root, "article", "card-curso")
	}

	var events []model.RawEvent
	for _, card := range cards {
		ev, ok := p.parseCard(card, base)
		if !ok {
			continue
		}
		if ev.Description == "" && ev.Link != "" && len(events) < maxDetailFetches {
			ev.Description = fetchDescription(ev.Link)
		}
		events = append(events, ev)
	}

	logger.Log.Infof("fablab: collected %d records", len(events))
	return events, nil
}

func (p *Provider) parseCard(card *html.Node, base *url.URL) (model.RawEvent, bool) {
	var ev model.RawEvent

	for _, a := range source.FindAll(card, "a", "") {
		href := source.Attr(a, "href")
		title := source.Text(a)
		if href == "" || title == "" {
			continue
		}
		ev.Title = title
		if u, err := base.Parse(href); err == nil {
			ev.Link = u.String()
		} else {
			ev.Link = href
		}
		break
	}
	if ev.Title == "" {
		return ev, false
	}

	ev.DateText = firstTextMatching(card, "date", "data")
	ev.Location = firstTextMatching(card, "unidade", "location")
	ev.Category = firstTextMatching(card, "tags", "tematica")
	if ev.Category == "" {
		ev.Category = "Curso/Oficina"
	}
	if ev.Location == "" {
		ev.Location = "N/A (disponível no link oficial)"
	}

	return ev, true
}

// firstTextMatching scans div and span nodes for a class containing
// any of the given fragments.
func firstTextMatching(card *html.Node, classParts ...string) string {
	for _, part := range classParts {
		for _, tag := range []string{"div", "span"} {
			if n := source.First(card, tag, part); n != nil {
				if text := source.Text(n); text != "" {
					return text
				}
			}
		}
	}
	return ""
}

func fetchDescription(link string) string {
	article, err := readability.FromURL(link, 15*time.Second)
	if err != nil {
		logger.Log.Debugf("fablab: detail fetch failed [%s]: %v", link, err)
		return ""
	}
	text := strings.Join(strings.Fields(article.TextContent), " ")
	if len(text) > maxDescription {
		text = text[:maxDescription]
	}
	return text
}

func (p *Provider) fetchDocument(ctx context.Context, pageURL string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
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
		return nil, fmt.Errorf("fablab listing error (status %d)", res.StatusCode)
	}

	root, err := html.Parse(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing failed: %w", err)
	}
	return root, nil
}
