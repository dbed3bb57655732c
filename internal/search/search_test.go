package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sozercan/upi-search/apimodels"
	"github.com/sozercan/upi-search/internal/config"
	"github.com/sozercan/upi-search/internal/executor"
	"github.com/sozercan/upi-search/internal/history"
	"github.com/sozercan/upi-search/internal/translator"
)

type fakeParser struct{ got string }

func (f *fakeParser) Parse(_ context.Context, query string) *apimodels.ParsedQuery {
	f.got = query
	return apimodels.NewParsedQuery(query)
}

type fakeTranslator struct {
	text string
	err  error
}

func (f *fakeTranslator) Translate(context.Context, *apimodels.ParsedQuery) (*apimodels.TranslatedQuery, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &apimodels.TranslatedQuery{Language: apimodels.LanguageAQL, Text: f.text}, nil
}

func (f *fakeTranslator) Language() string { return apimodels.LanguageAQL }

type fakeExecutor struct {
	records   []apimodels.Record
	err       error
	reject    bool
	got       string
	validated string
}

func (f *fakeExecutor) Execute(_ context.Context, query string) ([]apimodels.Record, error) {
	f.got = query
	return f.records, f.err
}

func (f *fakeExecutor) ValidateQuery(_ context.Context, query string) bool {
	f.validated = query
	return !f.reject
}

func (f *fakeExecutor) HealthCheck(context.Context) error { return f.err }
func (f *fakeExecutor) Driver() string                    { return "fake" }
func (f *fakeExecutor) Close(context.Context) error       { return nil }

func newService(tr *fakeTranslator, exec *fakeExecutor, h history.History, maxResults int) (*Service, *fakeParser) {
	p := &fakeParser{}
	cfg := config.SearchConfig{MaxResults: maxResults, MaxFacets: 5, FacetFields: []string{"type"}}
	return New(cfg, Deps{Parser: p, Translator: tr, Executor: exec, History: h, Model: "gpt-test"}), p
}

func TestSearch_Pipeline(t *testing.T) {
	exec := &fakeExecutor{records: []apimodels.Record{
		{"name": "low", "score": 0.2, "type": "service"},
		{"name": "high", "score": 0.9, "type": "service"},
		{"name": "mid", "score": 0.5, "type": "library"},
	}}
	h := history.NewMemory(10)
	svc, p := newService(&fakeTranslator{text: "FOR d IN x RETURN d"}, exec, h, 2)

	resp, err := svc.Search(context.Background(), apimodels.SearchRequest{Query: "  services  "})
	require.NoError(t, err)

	assert.Equal(t, "services", p.got)
	assert.Equal(t, "FOR d IN x RETURN d", exec.validated)
	assert.Equal(t, "FOR d IN x RETURN d", exec.got)
	assert.Equal(t, "services", resp.Query)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "high", resp.Results[0].Title)
	assert.Equal(t, "mid", resp.Results[1].Title)
	assert.Equal(t, []string{"type: service", "type: library"}, resp.Facets)
	assert.Equal(t, 3, resp.Metadata.ResultCount)
	assert.Equal(t, "gpt-test", resp.Metadata.Model)
	assert.Equal(t, apimodels.LanguageAQL, resp.Metadata.Language)

	entries, err := svc.History(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "services", entries[0].Query)
	assert.Equal(t, []string{"high", "mid"}, entries[0].TopTitles)
}

func TestSearch_RequestMaxResultsOverridesConfig(t *testing.T) {
	exec := &fakeExecutor{records: []apimodels.Record{{"name": "a"}, {"name": "b"}, {"name": "c"}}}
	svc, _ := newService(&fakeTranslator{text: "q"}, exec, nil, 2)

	resp, err := svc.Search(context.Background(), apimodels.SearchRequest{Query: "x", Options: apimodels.SearchOptions{MaxResults: 3}})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 3)
	assert.NotNil(t, resp.Facets)
}

func TestSearch_FacetRefinesQuery(t *testing.T) {
	svc, p := newService(&fakeTranslator{text: "q"}, &fakeExecutor{}, nil, 10)

	resp, err := svc.Search(context.Background(), apimodels.SearchRequest{Query: "services", Facet: "type: api"})
	require.NoError(t, err)
	assert.Equal(t, "services type: api", p.got)
	assert.Equal(t, "services type: api", resp.Query)
	assert.Empty(t, resp.Results)
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc, _ := newService(&fakeTranslator{}, &fakeExecutor{}, nil, 10)

	_, err := svc.Search(context.Background(), apimodels.SearchRequest{Query: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearch_BackendRejectsQuery(t *testing.T) {
	exec := &fakeExecutor{reject: true, records: []apimodels.Record{{"name": "a"}}}
	h := history.NewMemory(10)
	svc, _ := newService(&fakeTranslator{text: "FOR d IN missing RETURN d"}, exec, h, 10)

	_, err := svc.Search(context.Background(), apimodels.SearchRequest{Query: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, executor.ErrQueryFailed)
	assert.Equal(t, "FOR d IN missing RETURN d", exec.validated)
	assert.Empty(t, exec.got)

	entries, _ := h.List(context.Background(), 0)
	assert.Empty(t, entries)
}

func TestSearch_InvalidTranslation(t *testing.T) {
	tr := &fakeTranslator{err: &translator.InvalidQueryError{Language: apimodels.LanguageAQL, Query: "SELECT 1"}}
	exec := &fakeExecutor{}
	h := history.NewMemory(10)
	svc, _ := newService(tr, exec, h, 10)

	_, err := svc.Search(context.Background(), apimodels.SearchRequest{Query: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, translator.ErrInvalidQuery)
	assert.Empty(t, exec.got)

	entries, _ := h.List(context.Background(), 0)
	assert.Empty(t, entries)
}

func TestSearch_BackendUnreachable(t *testing.T) {
	exec := &fakeExecutor{err: fmt.Errorf("%w: dial tcp: refused", executor.ErrBackendUnreachable)}
	svc, _ := newService(&fakeTranslator{text: "q"}, exec, nil, 10)

	_, err := svc.Search(context.Background(), apimodels.SearchRequest{Query: "x"})
	assert.ErrorIs(t, err, executor.ErrBackendUnreachable)
	assert.Contains(t, err.Error(), "failed to execute AQL query")
}

type failingHistory struct{ history.History }

func (failingHistory) Add(context.Context, string, *apimodels.SearchResponse) (*apimodels.HistoryEntry, error) {
	return nil, errors.New("disk full")
}

func TestSearch_HistoryFailureIsNotFatal(t *testing.T) {
	svc, _ := newService(&fakeTranslator{text: "q"}, &fakeExecutor{}, failingHistory{}, 10)

	_, err := svc.Search(context.Background(), apimodels.SearchRequest{Query: "x"})
	assert.NoError(t, err)
}

func TestRefine(t *testing.T) {
	assert.Equal(t, "services type: api", Refine("services", "type: api"))
	assert.Equal(t, "services", Refine(" services ", ""))
	assert.Equal(t, "type: api", Refine("", "type: api"))
}
