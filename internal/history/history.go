package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sozercan/upi-search/apimodels"
	"github.com/sozercan/upi-search/internal/config"
)

const topTitles = 3

// History stores past searches, newest first.
type History interface {
	Add(ctx context.Context, query string, resp *apimodels.SearchResponse) (*apimodels.HistoryEntry, error)
	List(ctx context.Context, limit int) ([]apimodels.HistoryEntry, error)
	Close() error
}

// New builds the backend selected by cfg.Backend.
func New(ctx context.Context, cfg *config.HistoryConfig, logger *zap.Logger) (History, error) {
	switch cfg.Backend {
	case "memory", "":
		return NewMemory(cfg.MaxEntries), nil
	case "redis":
		client, err := ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, 3, logger)
		if err != nil {
			return nil, err
		}
		return NewRedis(client, cfg.RedisKey, cfg.MaxEntries), nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}

// NewEntry summarizes a search response for storage.
func NewEntry(query string, resp *apimodels.SearchResponse) apimodels.HistoryEntry {
	entry := apimodels.HistoryEntry{
		ID:        uuid.NewString(),
		Query:     query,
		CreatedAt: time.Now().UTC(),
	}
	if resp == nil {
		return entry
	}
	if resp.Translated != nil {
		entry.Language = resp.Translated.Language
		entry.TranslatedQuery = resp.Translated.Text
	}
	entry.ResultCount = resp.Metadata.ResultCount
	for i, r := range resp.Results {
		if i == topTitles {
			break
		}
		entry.TopTitles = append(entry.TopTitles, r.Title)
	}
	return entry
}
