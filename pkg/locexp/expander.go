// Package locexp widens a free-text place name into related terms so
// downstream matching is not limited to the user's exact wording.
package locexp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/sampa-lab/event_radar/pkg/logger"
)

const promptTpl = `Para a localização de referência na cidade de São Paulo: '%s', liste bairros adjacentes, ` +
	`sinônimos ou nomes pelos quais essa região é comumente conhecida. ` +
	`Retorne APENAS uma lista JSON de strings. Por exemplo, se a entrada for 'Paulista', ` +
	`a saída deve ser algo como: ["avenida paulista", "bela vista", "consolação", "jardim paulista"]. ` +
	`Se não souber ou a localização for muito genérica, retorne uma lista vazia: [].`

// Expander asks the chat model for related place terms. A nil chat
// model and every failure mode degrade to the literal input; only an
// empty query yields an empty result.
type Expander struct {
	cm      model.BaseChatModel
	limiter *rate.Limiter
}

// New creates an expander. cm may be nil when no LLM is configured.
func New(cm model.BaseChatModel, limiter *rate.Limiter) *Expander {
	return &Expander{cm: cm, limiter: limiter}
}

// Expand returns the lowercased query followed by deduplicated related
// terms. An empty query returns no terms at all, which is distinct
// from the collaborator-unavailable fallback.
func (e *Expander) Expand(ctx context.Context, query string) []string {
	if query == "" {
		return []string{}
	}

	queryLower := strings.ToLower(query)
	terms := []string{queryLower}

	suggested, err := e.suggest(ctx, query)
	if err != nil {
		logger.Log.Warnf("location expansion failed for %q: %v", query, err)
		return terms
	}

	seen := map[string]bool{queryLower: true}
	for _, term := range suggested {
		lowered := strings.ToLower(strings.TrimSpace(term))
		if lowered == "" || seen[lowered] {
			continue
		}
		seen[lowered] = true
		terms = append(terms, lowered)
	}

	return terms
}

func (e *Expander) suggest(ctx context.Context, query string) ([]string, error) {
	if e.cm == nil {
		return nil, fmt.Errorf("no chat model configured")
	}
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	messages := []*schema.Message{
		{Role: schema.User, Content: fmt.Sprintf(promptTpl, query)},
	}

	resp, err := e.cm.Generate(ctx, messages)
	if err != nil {
		return nil, err
	}

	cleaned := stripFences(resp.Content)

	var terms []string
	if err := json.Unmarshal([]byte(cleaned), &terms); err != nil {
		return nil, fmt.Errorf("decode term list: %w", err)
	}
	return terms, nil
}

func stripFences(content string) string {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
