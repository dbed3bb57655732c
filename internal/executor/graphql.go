package executor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Khan/genqlient/graphql"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/sozercan/upi-search/apimodels"
	"github.com/sozercan/upi-search/internal/config"
	"github.com/sozercan/upi-search/internal/translator"
)

// GraphQL sends raw queries to a GraphQL endpoint.
type GraphQL struct {
	client graphql.Client
}

func NewGraphQL(cfg *config.DatabaseConfig) (*GraphQL, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("GraphQL endpoint cannot be empty")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := &http.Client{
		Timeout: timeout,
	}

	return &GraphQL{
		client: graphql.NewClient(cfg.Endpoint, httpClient),
	}, nil
}

func (g *GraphQL) Driver() string { return "graphql" }

func (g *GraphQL) Execute(ctx context.Context, query string) ([]apimodels.Record, error) {
	data, err := g.do(ctx, query)
	if err != nil {
		return nil, err
	}
	return flattenData(data), nil
}

func (g *GraphQL) do(ctx context.Context, query string) (map[string]interface{}, error) {
	req := graphql.Request{
		Query: query,
	}
	var data map[string]interface{}
	resp := &graphql.Response{Data: &data}

	if err := g.client.MakeRequest(ctx, &req, resp); err != nil {
		var gqlErrs gqlerror.List
		if errors.As(err, &gqlErrs) {
			return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
		}
		return nil, err
	}
	return data, nil
}

func (g *GraphQL) ValidateQuery(_ context.Context, query string) bool {
	return translator.Validate(apimodels.LanguageGraphQL, query)
}

func (g *GraphQL) HealthCheck(ctx context.Context) error {
	if _, err := g.do(ctx, "{ __typename }"); err != nil {
		return fmt.Errorf("graphql health check failed: %w", err)
	}
	return nil
}

func (g *GraphQL) Close(context.Context) error { return nil }

// flattenData turns the top-level fields of a response into records: list
// elements become one record each, objects become a single record. Records
// without a "type" get the field name so they can be faceted.
func flattenData(data map[string]interface{}) []apimodels.Record {
	var records []apimodels.Record
	for _, field := range sortedKeys(data) {
		switch v := data[field].(type) {
		case nil:
		case []interface{}:
			for _, rec := range FormatResults(v) {
				records = append(records, withType(rec, field))
			}
		case map[string]interface{}:
			records = append(records, withType(v, field))
		default:
			records = append(records, apimodels.Record{"type": field, "value": v})
		}
	}
	return records
}

func withType(rec apimodels.Record, field string) apimodels.Record {
	if _, ok := rec["type"]; !ok {
		rec["type"] = field
	}
	return rec
}
