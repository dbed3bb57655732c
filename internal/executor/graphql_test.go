package executor

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sozercan/upi-search/internal/config"
)

func graphQLServer(t *testing.T, body string, gotQuery *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req struct {
			Query string `json:"query"`
		}
		require.NoError(t, json.Unmarshal(raw, &req))
		if gotQuery != nil {
			*gotQuery = req.Query
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGraphQL_Execute(t *testing.T) {
	var gotQuery string
	srv := graphQLServer(t, `{"data":{
		"services":[{"name":"billing","path":"/svc/billing"},{"name":"search","type":"api"}],
		"team":{"name":"core"}
	}}`, &gotQuery)

	g, err := NewGraphQL(&config.DatabaseConfig{Endpoint: srv.URL})
	require.NoError(t, err)

	records, err := g.Execute(context.Background(), "{ services { name path } team { name } }")
	require.NoError(t, err)
	assert.Equal(t, "{ services { name path } team { name } }", gotQuery)

	require.Len(t, records, 3)
	assert.Equal(t, "billing", records[0]["name"])
	assert.Equal(t, "services", records[0]["type"])
	assert.Equal(t, "api", records[1]["type"])
	assert.Equal(t, "core", records[2]["name"])
	assert.Equal(t, "team", records[2]["type"])
}

func TestGraphQL_ErrorsAreRejections(t *testing.T) {
	srv := graphQLServer(t, `{"errors":[{"message":"Cannot query field \"nope\" on type \"Query\"."}],"data":null}`, nil)

	g, err := NewGraphQL(&config.DatabaseConfig{Endpoint: srv.URL})
	require.NoError(t, err)

	_, err = g.Execute(context.Background(), "{ nope }")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueryFailed)
}

func TestGraphQL_HealthCheck(t *testing.T) {
	srv := graphQLServer(t, `{"data":{"__typename":"Query"}}`, nil)

	g, err := NewGraphQL(&config.DatabaseConfig{Endpoint: srv.URL})
	require.NoError(t, err)
	assert.NoError(t, g.HealthCheck(context.Background()))
}

func TestGraphQL_EmptyEndpoint(t *testing.T) {
	_, err := NewGraphQL(&config.DatabaseConfig{})
	assert.Error(t, err)
}

func TestGraphQL_ValidateQuery(t *testing.T) {
	g, err := NewGraphQL(&config.DatabaseConfig{Endpoint: "http://localhost/query"})
	require.NoError(t, err)
	assert.True(t, g.ValidateQuery(context.Background(), "{ services { name } }"))
	assert.False(t, g.ValidateQuery(context.Background(), "{ services {"))
}
