// Package normalize converts raw source records into the shared event
// shape. Every function here tolerates malformed input: fields degrade
// to nil or to their verbatim original text, never to an error.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/sampa-lab/event_radar/pkg/model"
)

// SourceKind selects the location heuristic for a provider.
type SourceKind int

const (
	// KindDefault treats the whole location string as the neighborhood.
	KindDefault SourceKind = iota
	// KindFabLab strips known venue-name prefixes before using the
	// remainder as the neighborhood.
	KindFabLab
	// KindMuseum uses the record's district field directly.
	KindMuseum
)

// Venue-name prefixes dropped from FabLab locations.
var fablabPrefixes = []string{
	"fablab ", "fab lab ", "ceu ", "centro cultural ", "biblioteca ",
}

// Location strings that mean "no usable location".
var locationSentinels = map[string]bool{
	"n/a": true,
	"n/a (disponível no link oficial)": true,
}

// Portuguese month names and their common abbreviations.
var monthsPT = map[string]time.Month{
	"janeiro": time.January, "jan": time.January,
	"fevereiro": time.February, "fev": time.February,
	"março": time.March, "marco": time.March, "mar": time.March,
	"abril": time.April, "abr": time.April,
	"maio": time.May, "mai": time.May,
	"junho": time.June, "jun": time.June,
	"julho": time.July, "jul": time.July,
	"agosto": time.August, "ago": time.August,
	"setembro": time.September, "set": time.September,
	"outubro": time.October, "out": time.October,
	"novembro": time.November, "nov": time.November,
	"dezembro": time.December, "dez": time.December,
}

// AssignID derives a batch-scoped identifier for a record. The
// (source, index) pair keeps IDs unique within a batch even when two
// records share a title. IDs are not stable across batches.
func AssignID(sourceName string, index int, title string) string {
	return fmt.Sprintf("%s_%d_%s", sourceName, index, strings.ReplaceAll(title, " ", "_"))
}

// StandardizeDate maps a free-text date to one of three outcomes:
// nil for empty/"n/a" input and for explicit ranges ("a"/"até"),
// a canonical YYYY-MM-DD when a known single-date format matched, or
// the verbatim original string when none did, so callers can still
// display it.
func StandardizeDate(raw string) *string {
	if raw == "" || strings.EqualFold(raw, "n/a") {
		return nil
	}

	lowered := strings.ToLower(raw)
	if strings.Contains(lowered, " a ") || strings.Contains(lowered, " até ") {
		// Ranges are deliberately not collapsed to a single date.
		return nil
	}

	if d, ok := parseSingleDate(raw); ok {
		s := d.Format(time.DateOnly)
		return &s
	}

	original := raw
	return &original
}

// parseSingleDate recognizes "20 de Janeiro de 2023" (full or
// abbreviated month), "20/01/2023" and "2023-01-20".
func parseSingleDate(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)

	for _, layout := range []string{"02/01/2006", time.DateOnly} {
		if d, err := time.Parse(layout, trimmed); err == nil {
			return d, true
		}
	}

	// DD de <month> de YYYY
	parts := strings.Fields(strings.ToLower(trimmed))
	if len(parts) == 5 && parts[1] == "de" && parts[3] == "de" {
		month, ok := monthsPT[parts[2]]
		if !ok {
			return time.Time{}, false
		}
		d, err := time.Parse("2 1 2006", fmt.Sprintf("%s %d %s", parts[0], int(month), parts[4]))
		if err != nil {
			return time.Time{}, false
		}
		return d, true
	}

	return time.Time{}, false
}

// ResolveLocation applies the per-source heuristic and returns the
// location plus the extracted neighborhood (nil when the location is a
// known "not available" sentinel).
func ResolveLocation(kind SourceKind, raw model.RawEvent) (location string, neighborhood *string) {
	switch kind {
	case KindMuseum:
		if raw.District != "" {
			d := raw.District
			return raw.District, &d
		}
		return raw.Location, nil

	case KindFabLab:
		if !usableLocation(raw.Location) {
			return raw.Location, nil
		}
		lowered := strings.ToLower(raw.Location)
		extracted := raw.Location
		for _, prefix := range fablabPrefixes {
			if strings.HasPrefix(lowered, prefix) {
				extracted = strings.TrimSpace(raw.Location[len(prefix):])
				break
			}
		}
		return raw.Location, &extracted

	default:
		if !usableLocation(raw.Location) {
			return raw.Location, nil
		}
		b := raw.Location
		return raw.Location, &b
	}
}

func usableLocation(loc string) bool {
	return loc != "" && !locationSentinels[strings.ToLower(loc)]
}

// Event builds the normalized record for one raw item. Museum records
// get the defaults the listing page cannot provide.
func Event(sourceName string, kind SourceKind, index int, raw model.RawEvent) model.Event {
	location, neighborhood := ResolveLocation(kind, raw)

	ev := model.Event{
		ID:           AssignID(sourceName, index, raw.Title),
		Title:        raw.Title,
		Description:  raw.Description,
		Category:     raw.Category,
		Location:     location,
		Neighborhood: neighborhood,
		Link:         raw.Link,
		SourceName:   sourceName,
		Date:         StandardizeDate(raw.DateText),
	}

	if kind == KindMuseum {
		if ev.Category == "" {
			ev.Category = "Museu"
		}
		if ev.Description == "" {
			ev.Description = "Museu: " + raw.Title
		}
	}

	return ev
}
