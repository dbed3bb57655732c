package executor

import (
	"context"
	"fmt"
	"sync"

	driver "github.com/arangodb/go-driver"
	arangohttp "github.com/arangodb/go-driver/http"

	"github.com/sozercan/upi-search/apimodels"
	"github.com/sozercan/upi-search/internal/config"
)

// ArangoDB runs AQL through the HTTP cursor API.
type ArangoDB struct {
	client driver.Client
	name   string

	mu sync.Mutex
	db driver.Database
}

func NewArangoDB(cfg *config.DatabaseConfig) (*ArangoDB, error) {
	conn, err := arangohttp.NewConnection(arangohttp.ConnectionConfig{
		Endpoints: []string{cfg.Address()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create arangodb connection: %w", err)
	}

	clientCfg := driver.ClientConfig{Connection: conn}
	if cfg.Username != "" {
		clientCfg.Authentication = driver.BasicAuthentication(cfg.Username, cfg.Password)
	}
	client, err := driver.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create arangodb client: %w", err)
	}

	return &ArangoDB{client: client, name: cfg.Name}, nil
}

func (a *ArangoDB) Driver() string { return "arangodb" }

// database opens the configured database on first use.
func (a *ArangoDB) database(ctx context.Context) (driver.Database, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db != nil {
		return a.db, nil
	}
	db, err := a.client.Database(ctx, a.name)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", a.name, err)
	}
	a.db = db
	return db, nil
}

func (a *ArangoDB) Execute(ctx context.Context, query string) ([]apimodels.Record, error) {
	db, err := a.database(ctx)
	if err != nil {
		return nil, err
	}

	cursor, err := db.Query(ctx, query, nil)
	if err != nil {
		if driver.IsArangoError(err) {
			return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
		}
		return nil, err
	}
	defer cursor.Close()

	var raw []interface{}
	for {
		var doc interface{}
		_, err := cursor.ReadDocument(ctx, &doc)
		if driver.IsNoMoreDocuments(err) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read cursor: %w", err)
		}
		raw = append(raw, doc)
	}
	return FormatResults(raw), nil
}

// ValidateQuery asks the server to parse query without running it. Only a
// parse error from the server rejects the query; transport failures are left
// to Execute and its retries.
func (a *ArangoDB) ValidateQuery(ctx context.Context, query string) bool {
	db, err := a.database(ctx)
	if err != nil {
		return true
	}
	if err := db.ValidateQuery(ctx, query); err != nil {
		return !driver.IsArangoError(err)
	}
	return true
}

func (a *ArangoDB) HealthCheck(ctx context.Context) error {
	if _, err := a.client.Version(ctx); err != nil {
		return fmt.Errorf("arangodb health check failed: %w", err)
	}
	return nil
}

func (a *ArangoDB) Close(context.Context) error { return nil }
