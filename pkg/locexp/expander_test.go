package locexp

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

type stubChatModel struct {
	content string
	err     error
}

func (s *stubChatModel) Generate(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &schema.Message{Role: schema.Assistant, Content: s.content}, nil
}

func (s *stubChatModel) Stream(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func TestExpandEmptyQuery(t *testing.T) {
	e := New(&stubChatModel{content: `["bela vista"]`}, nil)
	assert.Empty(t, e.Expand(context.Background(), ""))
}

func TestExpandIncludesOriginalFirst(t *testing.T) {
	e := New(&stubChatModel{content: `["avenida paulista", "bela vista", "consolação"]`}, nil)

	terms := e.Expand(context.Background(), "Paulista")

	assert.Equal(t, []string{"paulista", "avenida paulista", "bela vista", "consolação"}, terms)
}

func TestExpandStripsCodeFences(t *testing.T) {
	e := New(&stubChatModel{content: "```json\n[\"vila madalena\", \"pinheiros\"]\n```"}, nil)

	terms := e.Expand(context.Background(), "Vila Madalena")

	assert.Equal(t, []string{"vila madalena", "pinheiros"}, terms)
}

func TestExpandDeduplicatesCaseInsensitively(t *testing.T) {
	e := New(&stubChatModel{content: `["Centro", "CENTRO", " centro ", "sé"]`}, nil)

	terms := e.Expand(context.Background(), "centro")

	assert.Equal(t, []string{"centro", "sé"}, terms)
}

func TestExpandModelFailureFallsBackToQuery(t *testing.T) {
	e := New(&stubChatModel{err: errors.New("llm unavailable")}, nil)

	terms := e.Expand(context.Background(), "Mooca")

	assert.Equal(t, []string{"mooca"}, terms)
}

func TestExpandMalformedJSONFallsBackToQuery(t *testing.T) {
	e := New(&stubChatModel{content: "não sei responder em JSON"}, nil)

	terms := e.Expand(context.Background(), "Lapa")

	assert.Equal(t, []string{"lapa"}, terms)
}

func TestExpandNilModelFallsBackToQuery(t *testing.T) {
	e := New(nil, nil)

	terms := e.Expand(context.Background(), "Butantã")

	assert.Equal(t, []string{"butantã"}, terms)
}
