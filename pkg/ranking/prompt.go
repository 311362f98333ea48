package ranking

import (
	"fmt"
	"strings"

	dm "github.com/sampa-lab/event_radar/pkg/model"
	"github.com/sampa-lab/event_radar/pkg/search"
)

// buildPrompt assembles the Portuguese ranking prompt: query context,
// the capped scraped batch, the capped web results and the strict JSON
// output contract.
func (r *LLMRanker) buildPrompt(q dm.QueryDetails, scraped []dm.Event, webResults []search.Result, maxSuggestions int) string {
	var parts []string

	parts = append(parts,
		"Sua tarefa é analisar a consulta do usuário e os dados de eventos fornecidos para gerar uma lista de candidatos a eventos em formato JSON.",
		"Analise a consulta do usuário:",
		fmt.Sprintf("  - Tipo de interesse principal: %s", sanitize(orDefault(q.EventType, "Qualquer"))),
	)
	if q.Date != "" {
		parts = append(parts, fmt.Sprintf("  - Data de interesse: %s", sanitize(q.Date)))
	}
	if q.LocationQuery != "" {
		parts = append(parts, fmt.Sprintf("  - Localização de interesse (original): %s", sanitize(q.LocationQuery)))
	}
	if q.ExpandedLocationTerms != "" && q.ExpandedLocationTerms != q.LocationQuery {
		parts = append(parts, fmt.Sprintf(
			"  - Para uma busca mais ampla, considere também os seguintes termos de localização relacionados: '%s'",
			sanitize(q.ExpandedLocationTerms)))
	}

	parts = append(parts,
		"\nConsidere os seguintes dados de eventos e resultados de busca web para construir sua lista JSON de candidatos.",
		"PRIORIZE eventos que correspondam BEM ao TIPO de interesse, DATA e LOCALIZAÇÃO (original ou expandida).",
	)

	parts = append(parts, r.scrapedSection(scraped)...)
	parts = append(parts, r.webSection(webResults)...)
	parts = append(parts, outputContract(maxSuggestions)...)

	return strings.Join(parts, "\n")
}

func (r *LLMRanker) scrapedSection(scraped []dm.Event) []string {
	if len(scraped) == 0 {
		return []string{"\nNenhum dado de eventos ou museus locais (scrapers) foi encontrado."}
	}

	parts := []string{"\n--- Dados de Eventos e Museus Locais (Scrapers) ---"}
	shown := min(len(scraped), r.maxScrapedShown)
	if len(scraped) > shown {
		parts = append(parts, fmt.Sprintf(
			"(Analisando os primeiros %d de %d itens dos scrapers. A seleção priorizará relevância.)", shown, len(scraped)))
	}
	for i, ev := range scraped[:shown] {
		dateInfo := "N/A"
		if ev.Date != nil {
			dateInfo = *ev.Date
		}
		locationInfo := ev.Location
		if ev.Neighborhood != nil && *ev.Neighborhood != "" {
			locationInfo = *ev.Neighborhood
		}
		parts = append(parts, fmt.Sprintf(
			"Item Scraper %d: ID_ORIGINAL: %s, Título: %s, Data: %s, Local/Bairro: %s, Categoria: %s, Descrição: %s, Link: %s",
			i+1, sanitize(ev.ID), sanitize(ev.Title), sanitize(dateInfo), sanitize(orDefault(locationInfo, "N/A")),
			sanitize(orDefault(ev.Category, "N/A")), sanitize(ev.Description), sanitize(orDefault(ev.Link, "N/A"))))
	}
	return parts
}

func (r *LLMRanker) webSection(webResults []search.Result) []string {
	if len(webResults) == 0 {
		return nil
	}

	parts := []string{"\n--- Dados da Busca na Web ---"}
	shown := min(len(webResults), r.maxWebShown)
	if len(webResults) > shown {
		parts = append(parts, fmt.Sprintf("(Mostrando os primeiros %d de %d resultados da web)", shown, len(webResults)))
	}
	for i, res := range webResults[:shown] {
		content := res.Content
		if content == "" {
			content = res.RawContent
		}
		parts = append(parts, fmt.Sprintf(
			"Resultado Web %d: ID_ORIGINAL: %s, Título: %s, URL: %s, Conteúdo: %s",
			i+1, sanitize(res.URL), sanitize(res.Title), sanitize(res.URL), sanitize(content)))
	}
	return parts
}

func outputContract(maxSuggestions int) []string {
	return []string{
		"\n--- INSTRUÇÕES CRÍTICAS PARA A SAÍDA JSON ---",
		"1. Sua ÚNICA tarefa é gerar um objeto JSON. Não adicione NENHUM texto, comentários, ou explicações antes ou depois do JSON.",
		"2. O objeto JSON DEVE ter uma única chave principal: 'event_candidates'.",
		"3. O valor de 'event_candidates' DEVE ser uma LISTA de objetos.",
		"4. Cada objeto na lista 'event_candidates' representa um evento e DEVE ter AS SEGUINTES CHAVES EXATAS (strings):",
		"   - 'id': String (O valor de ID_ORIGINAL do item de scraper ou web usado para criar este candidato). DEVE CORRESPONDER AO ID_ORIGINAL DO ITEM FONTE.",
		"   - 'name': String (nome do evento/local).",
		"   - 'location_details': String (endereço completo ou detalhes suficientes; se não houver, use \"São Paulo\").",
		"   - 'type': String (categoria, ex: 'Museu', 'Show', 'Festival Gastronômico').",
		"   - 'date_info': String (data, período ou 'N/A' se não especificado).",
		"   - 'source': String ('scraper' ou 'web').",
		"   - 'details_link': String (URL ou string vazia se não houver).",
		fmt.Sprintf("5. Selecione no máximo %d eventos/locais MAIS RELEVANTES para a consulta do usuário.", maxSuggestions),
		"6. Se nenhum evento relevante for encontrado, o valor de 'event_candidates' DEVE ser uma lista vazia ( [] ). NÃO invente eventos.",
		"7. NÃO inclua ```json ou ``` na sua saída. A saída deve ser o JSON puro.",
		"\nAgora, gere o objeto JSON contendo APENAS a chave 'event_candidates' e sua lista de eventos. NADA MAIS.",
	}
}

// sanitize flattens a value for safe inclusion in the prompt.
func sanitize(s string) string {
	if s == "" {
		return "N/A"
	}
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
