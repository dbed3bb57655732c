package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sozercan/upi-search/internal/config"
)

type fakeEnricher struct {
	intent      string
	intentErr   error
	keywords    []string
	keywordsErr error

	categories []string
	n          int
}

func (f *fakeEnricher) ClassifyText(_ context.Context, _ string, categories []string) (string, error) {
	f.categories = categories
	return f.intent, f.intentErr
}

func (f *fakeEnricher) ExtractKeywords(_ context.Context, _ string, n int) ([]string, error) {
	f.n = n
	return f.keywords, f.keywordsErr
}

func TestParse_Defaults(t *testing.T) {
	p := New(config.ParserConfig{}, nil, nil)

	parsed := p.Parse(context.Background(), "services owned by team a")
	require.NotNil(t, parsed)
	assert.Equal(t, "services owned by team a", parsed.OriginalQuery)
	assert.Equal(t, "search", parsed.Intent)
	assert.Empty(t, parsed.Entities)
	assert.NotNil(t, parsed.Entities)
	assert.Empty(t, parsed.Filters)
	assert.NotNil(t, parsed.Filters)
	assert.Nil(t, parsed.Keywords)
}

func TestParse_EnrichmentDisabledSkipsModel(t *testing.T) {
	e := &fakeEnricher{intent: "count"}
	p := New(config.ParserConfig{LLMEnrich: false, Intents: []string{"search", "count"}}, e, nil)

	parsed := p.Parse(context.Background(), "how many")
	assert.Equal(t, "search", parsed.Intent)
	assert.Nil(t, e.categories)
}

func TestParse_Enriched(t *testing.T) {
	e := &fakeEnricher{intent: " Count. ", keywords: []string{"services", "team"}}
	cfg := config.ParserConfig{LLMEnrich: true, Intents: []string{"search", "count", "describe"}, Keywords: 3}
	p := New(cfg, e, nil)

	parsed := p.Parse(context.Background(), "how many services does the team own")
	assert.Equal(t, "count", parsed.Intent)
	assert.Equal(t, []string{"services", "team"}, parsed.Keywords)
	assert.Equal(t, cfg.Intents, e.categories)
	assert.Equal(t, 3, e.n)
}

func TestParse_UnknownIntentKeepsDefault(t *testing.T) {
	e := &fakeEnricher{intent: "delete everything"}
	p := New(config.ParserConfig{LLMEnrich: true, Intents: []string{"search", "count"}}, e, nil)

	assert.Equal(t, "search", p.Parse(context.Background(), "q").Intent)
}

func TestParse_EnrichmentErrorsFallBack(t *testing.T) {
	e := &fakeEnricher{intentErr: errors.New("timeout"), keywordsErr: errors.New("timeout")}
	p := New(config.ParserConfig{LLMEnrich: true, Intents: []string{"search", "count"}}, e, nil)

	parsed := p.Parse(context.Background(), "q")
	assert.Equal(t, "search", parsed.Intent)
	assert.Nil(t, parsed.Keywords)
}
