// Package ranking delegates candidate selection and summarization to
// an LLM. The model receives the user query, the normalized event
// batch and the web search results, and must answer with a pure JSON
// candidate list keyed by the original record IDs.
package ranking

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/sampa-lab/event_radar/pkg/logger"
	dm "github.com/sampa-lab/event_radar/pkg/model"
	"github.com/sampa-lab/event_radar/pkg/search"
)

// LLMRanker drives the chat model that ranks candidates.
type LLMRanker struct {
	cm              model.BaseChatModel
	limiter         *rate.Limiter
	maxScrapedShown int
	maxWebShown     int
}

// NewLLMRanker creates a ranker. The caps bound the prompt payload:
// records beyond them are not candidates for this call.
func NewLLMRanker(cm model.BaseChatModel, limiter *rate.Limiter, maxScrapedShown, maxWebShown int) *LLMRanker {
	if maxScrapedShown <= 0 {
		maxScrapedShown = 75
	}
	if maxWebShown <= 0 {
		maxWebShown = 5
	}
	return &LLMRanker{
		cm:              cm,
		limiter:         limiter,
		maxScrapedShown: maxScrapedShown,
		maxWebShown:     maxWebShown,
	}
}

// response is the shape the model is instructed to produce.
type response struct {
	EventCandidates []dm.EventCandidate `json:"event_candidates"`
}

// Rank asks the model for at most maxSuggestions candidates and builds
// the chat summary. A malformed model response is a valid outcome (a
// format-mismatch summary with no candidates); only transport/model
// errors are returned as errors.
func (r *LLMRanker) Rank(ctx context.Context, q dm.QueryDetails, scraped []dm.Event, webResults []search.Result, maxSuggestions int) (*dm.FindResult, error) {
	prompt := r.buildPrompt(q, scraped, webResults, maxSuggestions)
	logger.Log.Debugf("ranking prompt: %d bytes", len(prompt))

	raw, err := r.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	candidates, ok := parseCandidates(raw)
	if !ok {
		logger.Log.Errorf("ranking response is not the expected JSON shape: %.200s", raw)
		return &dm.FindResult{
			ChatSummary: formatMismatchSummary(q),
			EventsFound: []dm.EventCandidate{},
		}, nil
	}

	return composeResult(q, candidates, maxSuggestions), nil
}

// generate calls the model with exponential backoff on rate limiting.
func (r *LLMRanker) generate(ctx context.Context, prompt string) (string, error) {
	const maxRetries = 3
	baseDelay := 2 * time.Second
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		messages := []*schema.Message{
			{Role: schema.System, Content: "Você é um gerador de JSON. Responda apenas com a string JSON, nada mais."},
			{Role: schema.User, Content: prompt},
		}

		resp, err := r.cm.Generate(ctx, messages)
		if err != nil {
			if strings.Contains(err.Error(), "429") || strings.Contains(strings.ToLower(err.Error()), "too many requests") {
				lastErr = err
				if i < maxRetries {
					delay := baseDelay * time.Duration(1<<i)
					logger.Log.Warnf("ranking model rate limited, retrying in %v (%d/%d)", delay, i+1, maxRetries)
					select {
					case <-ctx.Done():
						return "", ctx.Err()
					case <-time.After(delay):
						continue
					}
				}
			}
			return "", err
		}
		return resp.Content, nil
	}
	return "", lastErr
}

// parseCandidates decodes the model output. ok is false when the JSON
// or the event_candidates key is missing or of the wrong type;
// individually incomplete candidates are dropped, not fatal.
func parseCandidates(raw string) ([]dm.EventCandidate, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, false
	}
	rawList, present := fields["event_candidates"]
	if !present {
		return nil, false
	}

	var decoded []dm.EventCandidate
	if err := json.Unmarshal(rawList, &decoded); err != nil {
		return nil, false
	}

	valid := make([]dm.EventCandidate, 0, len(decoded))
	for _, cand := range decoded {
		if cand.ID == "" || cand.Name == "" || cand.Source == "" {
			logger.Log.Warnf("dropping candidate with missing required fields: %+v", cand)
			continue
		}
		valid = append(valid, cand)
	}
	return valid, true
}

// composeResult writes the chat summary and enforces maxSuggestions.
func composeResult(q dm.QueryDetails, candidates []dm.EventCandidate, maxSuggestions int) *dm.FindResult {
	if len(candidates) == 0 {
		return &dm.FindResult{
			ChatSummary: fmt.Sprintf(
				"Não encontrei eventos que correspondam exatamente à sua busca (tipo: %s, data: %s, local: %s). Que tal tentar uma busca com critérios diferentes ou mais amplos?",
				orNA(q.EventType), orNA(q.Date), orNA(q.LocationQuery)),
			EventsFound: []dm.EventCandidate{},
		}
	}

	names := make([]string, 0, 3)
	for _, cand := range candidates[:min(3, len(candidates))] {
		names = append(names, cand.Name)
	}
	nameList := strings.Join(names, ", ")

	var summary string
	switch {
	case len(candidates) == 1:
		summary = fmt.Sprintf("Encontrei 1 evento que pode te interessar: %s. Veja os detalhes!", nameList)
	case len(candidates) <= maxSuggestions:
		summary = fmt.Sprintf("Encontrei %d eventos que podem te interessar, como: %s. Veja os detalhes!", len(candidates), nameList)
	default:
		summary = fmt.Sprintf("Encontrei %d eventos! Os primeiros são: %s. Mostrando os %d mais relevantes. Para ver mais, refine sua busca.",
			len(candidates), nameList, maxSuggestions)
		candidates = candidates[:maxSuggestions]
	}

	return &dm.FindResult{ChatSummary: summary, EventsFound: candidates}
}

func formatMismatchSummary(q dm.QueryDetails) string {
	return fmt.Sprintf(
		"O assistente de IA retornou dados em um formato inesperado. Não consegui encontrar eventos para sua busca (tipo: %s, data: %s, local: %s).",
		orNA(q.EventType), orNA(q.Date), orNA(q.LocationQuery))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
