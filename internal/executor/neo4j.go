package executor

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v4/neo4j"

	"github.com/sozercan/upi-search/apimodels"
	"github.com/sozercan/upi-search/internal/config"
	"github.com/sozercan/upi-search/internal/translator"
)

// Neo4j runs Cypher in read transactions. The v4 driver has no context
// support, so ctx is only checked before a query starts.
type Neo4j struct {
	driver neo4j.Driver
	name   string
}

func NewNeo4j(cfg *config.DatabaseConfig) (*Neo4j, error) {
	drv, err := neo4j.NewDriver(cfg.Address(), neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	return &Neo4j{driver: drv, name: cfg.Name}, nil
}

func (n *Neo4j) Driver() string { return "neo4j" }

func (n *Neo4j) Execute(ctx context.Context, query string) ([]apimodels.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session := n.driver.NewSession(neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: n.name,
	})
	defer session.Close()

	out, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		result, err := tx.Run(query, map[string]interface{}{})
		if err != nil {
			return nil, err
		}

		var records []apimodels.Record
		for result.Next() {
			rec := result.Record()
			records = append(records, flattenRow(rec.Keys, rec.Values))
		}
		return records, result.Err()
	})
	if err != nil {
		if neo4j.IsNeo4jError(err) {
			return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
		}
		return nil, err
	}

	records, _ := out.([]apimodels.Record)
	return records, nil
}

// ValidateQuery checks the mandatory Cypher clauses locally.
func (n *Neo4j) ValidateQuery(_ context.Context, query string) bool {
	return translator.Validate(apimodels.LanguageCypher, query)
}

func (n *Neo4j) HealthCheck(context.Context) error {
	if err := n.driver.VerifyConnectivity(); err != nil {
		return fmt.Errorf("neo4j health check failed: %w", err)
	}
	return nil
}

func (n *Neo4j) Close(context.Context) error {
	return n.driver.Close()
}

// flattenRow turns one result row into a record. A row holding a single
// node becomes that node's properties plus its first label as "type".
func flattenRow(keys []string, values []interface{}) apimodels.Record {
	if len(values) == 1 {
		if node, ok := values[0].(neo4j.Node); ok {
			return nodeRecord(node)
		}
	}

	row := make(apimodels.Record, len(keys))
	for i, key := range keys {
		if i >= len(values) {
			break
		}
		row[key] = flattenValue(values[i])
	}
	return row
}

func nodeRecord(node neo4j.Node) apimodels.Record {
	rec := make(apimodels.Record, len(node.Props)+2)
	for k, v := range node.Props {
		rec[k] = v
	}
	if _, ok := rec["id"]; !ok {
		rec["id"] = fmt.Sprintf("%d", node.Id)
	}
	if _, ok := rec["type"]; !ok && len(node.Labels) > 0 {
		rec["type"] = node.Labels[0]
	}
	return rec
}

func flattenValue(v interface{}) interface{} {
	switch val := v.(type) {
	case neo4j.Node:
		return map[string]interface{}(nodeRecord(val))
	case neo4j.Relationship:
		props := make(map[string]interface{}, len(val.Props)+1)
		for k, p := range val.Props {
			props[k] = p
		}
		props["type"] = val.Type
		return props
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = flattenValue(item)
		}
		return out
	default:
		return v
	}
}
