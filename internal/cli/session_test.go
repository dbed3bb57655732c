package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sozercan/upi-search/apimodels"
)

type fakeSearcher struct {
	requests []apimodels.SearchRequest
	resp     *apimodels.SearchResponse
	err      error
	ended    bool
}

func (f *fakeSearcher) Search(_ context.Context, req apimodels.SearchRequest) (*apimodels.SearchResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	resp := *f.resp
	resp.Query = req.Query
	if req.Facet != "" {
		resp.Query = req.Query + " " + req.Facet
	}
	return &resp, nil
}

func (f *fakeSearcher) EndSession() { f.ended = true }

func runSession(t *testing.T, input string, s *fakeSearcher) string {
	t.Helper()
	out := &bytes.Buffer{}
	session := NewSession(New(strings.NewReader(input), out, ""), s, nil)
	require.NoError(t, session.Run(context.Background()))
	assert.True(t, s.ended)
	return out.String()
}

func TestSession_SingleSearch(t *testing.T) {
	s := &fakeSearcher{resp: &apimodels.SearchResponse{
		Results: []apimodels.Result{{Title: "Billing", Path: "/b"}},
	}}

	out := runSession(t, "billing\n1\nn\n", s)

	require.Len(t, s.requests, 1)
	assert.Equal(t, "billing", s.requests[0].Query)
	assert.Contains(t, out, "1. Billing")
	assert.Contains(t, out, "Detailed Result:")
}

func TestSession_SkipsEmptyQueries(t *testing.T) {
	s := &fakeSearcher{resp: &apimodels.SearchResponse{}}

	out := runSession(t, "\n   \nservices\nn\n", s)

	require.Len(t, s.requests, 1)
	assert.Equal(t, 3, strings.Count(out, "UPI Search> "))
	assert.Contains(t, out, "No results found.")
}

func TestSession_FacetRefinement(t *testing.T) {
	s := &fakeSearcher{resp: &apimodels.SearchResponse{
		Results: []apimodels.Result{{Title: "Billing"}},
		Facets:  []string{"type: service"},
	}}

	// search, skip details, pick facet, skip details, skip facet, stop
	runSession(t, "services\n\n1\n\n\nn\n", s)

	require.Len(t, s.requests, 2)
	assert.Equal(t, apimodels.SearchRequest{Query: "services", Facet: "type: service"}, s.requests[1])
}

func TestSession_ErrorKeepsSessionAlive(t *testing.T) {
	s := &fakeSearcher{err: errors.New("Generated AQL query is invalid")}

	out := runSession(t, "q1\ny\nq2\nn\n", s)

	assert.Len(t, s.requests, 2)
	assert.Equal(t, 2, strings.Count(out, "Error: Generated AQL query is invalid"))
}

func TestSession_EOFEndsCleanly(t *testing.T) {
	s := &fakeSearcher{resp: &apimodels.SearchResponse{Results: []apimodels.Result{{Title: "a"}}}}

	runSession(t, "q1\n", s)
	assert.Len(t, s.requests, 1)
}

func TestSession_ContinueLoops(t *testing.T) {
	s := &fakeSearcher{resp: &apimodels.SearchResponse{}}

	runSession(t, "a\ny\nb\nY\nc\nno\n", s)
	assert.Len(t, s.requests, 3)
}
