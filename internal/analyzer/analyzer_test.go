package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sozercan/upi-search/apimodels"
)

func TestAnalyze_KnownFields(t *testing.T) {
	records := []apimodels.Record{
		{"title": "Billing", "path": "/svc/billing", "description": "Handles invoices", "score": 0.8, "team": "payments"},
		{"name": "Search", "_id": "services/2", "content": "Finds things"},
		{"label": "Orphan"},
		{"kind": "mystery"},
	}

	results := New().Analyze(records)
	require.Len(t, results, 4)

	assert.Equal(t, "Billing", results[0].Title)
	assert.Equal(t, "/svc/billing", results[0].Path)
	assert.Equal(t, "Handles invoices", results[0].Snippet)
	assert.InDelta(t, 0.8, results[0].Relevance, 1e-9)
	assert.Equal(t, map[string]interface{}{"team": "payments"}, results[0].Fields)

	assert.Equal(t, "Search", results[1].Title)
	assert.Equal(t, "services/2", results[1].Path)
	assert.Equal(t, "Finds things", results[1].Snippet)
	assert.Zero(t, results[1].Relevance)

	assert.Equal(t, "Orphan", results[2].Title)
	assert.Empty(t, results[2].Path)

	assert.Equal(t, "Result 4", results[3].Title)
	assert.Equal(t, "mystery", results[3].Fields["kind"])
}

func TestAnalyze_NumericID(t *testing.T) {
	results := New().Analyze([]apimodels.Record{{"id": float64(42)}})
	assert.Equal(t, "42", results[0].Path)
}

func TestAnalyze_TruncatesSnippet(t *testing.T) {
	long := strings.Repeat("é", MaxSnippetLength+20)
	results := New().Analyze([]apimodels.Record{{"summary": long}})

	snippet := results[0].Snippet
	assert.True(t, strings.HasSuffix(snippet, "..."))
	assert.Equal(t, MaxSnippetLength, len([]rune(strings.TrimSuffix(snippet, "..."))))
}

func TestAnalyze_StringScore(t *testing.T) {
	results := New().Analyze([]apimodels.Record{{"relevance": "0.25"}, {"relevance": "high"}})
	assert.InDelta(t, 0.25, results[0].Relevance, 1e-9)
	assert.Zero(t, results[1].Relevance)
	assert.Equal(t, "high", results[1].Fields["relevance"])
}

func TestRank_DescendingAndStable(t *testing.T) {
	in := []apimodels.Result{
		{Title: "low", Relevance: 0.1},
		{Title: "high", Relevance: 0.9},
		{Title: "tie-a", Relevance: 0.5},
		{Title: "tie-b", Relevance: 0.5},
	}

	ranked := NewRanker().Rank(in)
	titles := make([]string, len(ranked))
	for i, r := range ranked {
		titles[i] = r.Title
	}
	assert.Equal(t, []string{"high", "tie-a", "tie-b", "low"}, titles)
	assert.Equal(t, "low", in[0].Title, "input must not be reordered")
}

func TestRank_UnscoredKeepBackendOrder(t *testing.T) {
	in := []apimodels.Result{{Title: "a"}, {Title: "b"}, {Title: "c"}}

	ranked := NewRanker().Rank(in)
	require.Len(t, ranked, 3)
	assert.Equal(t, "a", ranked[0].Title)
	assert.Equal(t, 1.0, ranked[0].Relevance)
	assert.Equal(t, "b", ranked[1].Title)
	assert.InDelta(t, 0.5, ranked[1].Relevance, 1e-9)
	assert.Equal(t, "c", ranked[2].Title)
	assert.Zero(t, in[0].Relevance)
}

func TestFacets_OrderedAndCapped(t *testing.T) {
	results := []apimodels.Result{
		{Fields: map[string]interface{}{"type": "service", "category": "payments"}},
		{Fields: map[string]interface{}{"type": "service", "category": "search"}},
		{Fields: map[string]interface{}{"type": "library", "category": "payments"}},
		{Fields: map[string]interface{}{"type": "service", "tags": []interface{}{"x"}}},
	}

	g := NewFacetGenerator([]string{"type", "category", "tags"}, 3)
	assert.Equal(t, []string{"type: service", "category: payments", "type: library"}, g.Generate(results))
}

func TestFacets_Disabled(t *testing.T) {
	results := []apimodels.Result{{Fields: map[string]interface{}{"type": "service"}}}

	assert.Empty(t, NewFacetGenerator([]string{"type"}, 0).Generate(results))
	assert.Empty(t, NewFacetGenerator(nil, 5).Generate(results))
}
