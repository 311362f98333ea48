package service

import (
	"encoding/json"
	"net/http"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/sampa-lab/event_radar/pkg/finder"
	"github.com/sampa-lab/event_radar/pkg/memory"
	"github.com/sampa-lab/event_radar/pkg/storage"
)

// FinderService exposes the finder pipeline over HTTP.
type FinderService struct {
	finder    *finder.Finder
	searchMem *memory.SearchMemory
	store     *storage.Storage // nil when auditing is disabled
	log       *log.Helper
}

// NewFinderService creates the service.
func NewFinderService(f *finder.Finder, searchMem *memory.SearchMemory, store *storage.Storage, logger log.Logger) *FinderService {
	return &FinderService{
		finder:    f,
		searchMem: searchMem,
		store:     store,
		log:       log.NewHelper(logger),
	}
}

// HandleFind serves GET /api/v1/events/find.
// Query params: type, date, location — all optional.
func (s *FinderService) HandleFind(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	eventType := q.Get("type")
	date := q.Get("date")
	location := q.Get("location")

	result := s.finder.Find(r.Context(), eventType, date, location)

	writeJSON(w, http.StatusOK, result)
}

// HandleClearCache serves POST /api/v1/cache/clear: drops every cached
// web search entry. Administrative operation.
func (s *FinderService) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.searchMem.ClearAll()
	s.log.Info("web search cache cleared")
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// HandleSessions serves GET /api/v1/sessions: the recent audit trail.
func (s *FinderService) HandleSessions(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []storage.SessionRow{})
		return
	}
	sessions, err := s.store.RecentSessions(r.Context(), 20)
	if err != nil {
		s.log.Errorf("list sessions failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []storage.SessionRow{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// HandleHealth serves GET /healthz.
func (s *FinderService) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
