package model

// RawEvent is whatever a source provider manages to pull off a page.
// Fields may be empty or carry free text; nothing here is trusted.
type RawEvent struct {
	Title       string
	DateText    string
	TimeText    string
	Location    string
	District    string
	Address     string
	Category    string
	Description string
	Link        string
}

// Event is the normalized shape shared by the whole pipeline.
// IDs are stable only within one aggregation batch: they encode the
// provider name and the record's position in that provider's output, so
// a later refresh may assign the same record a different ID.
type Event struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	Location     string  `json:"location"`
	Neighborhood *string `json:"neighborhood"`
	Link         string  `json:"link"`
	SourceName   string  `json:"source_name"`
	// Date is nil for empty/"n/a" input and for explicit date ranges,
	// a canonical YYYY-MM-DD when a known format matched, or the
	// verbatim original text when none did.
	Date *string `json:"date"`
}

// Candidate source tags produced by the ranking collaborator.
const (
	CandidateSourceScraper = "scraper"
	CandidateSourceWeb     = "web"
)

// EventCandidate is one selection returned by the ranking collaborator.
// ID must match an Event.ID (Source == "scraper") or a web search
// result URL (Source == "web"); it is the join key for reconciliation.
type EventCandidate struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	LocationDetails string `json:"location_details"`
	Type            string `json:"type"`
	DateInfo        string `json:"date_info"`
	Source          string `json:"source"`
	DetailsLink     string `json:"details_link"`
	FullDescription string `json:"full_description,omitempty"`
}

// QueryDetails carries the user's query fields into the ranking prompt.
type QueryDetails struct {
	EventType             string
	Date                  string
	LocationQuery         string
	ExpandedLocationTerms string
}

// FindResult is the finder's answer: a human summary plus the ranked
// candidates with full descriptions attached.
type FindResult struct {
	ChatSummary string           `json:"chat_summary"`
	EventsFound []EventCandidate `json:"events_found"`
}
