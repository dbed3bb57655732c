package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sozercan/upi-search/apimodels"
)

// listClient is the part of *redis.Client the history uses.
type listClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	Close() error
}

// Redis stores entries as JSON in a capped list, newest at the head.
type Redis struct {
	client listClient
	key    string
	max    int
}

// ConnectRedis creates a client and pings it, retrying with exponential backoff.
func ConnectRedis(ctx context.Context, addr, password string, maxRetries int, logger *zap.Logger) (*redis.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	var err error
	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			backoff := time.Duration(1<<uint(i)) * time.Second
			logger.Info("Waiting before Redis retry", zap.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				_ = client.Close()
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		err = client.Ping(ctx).Err()
		if err == nil {
			logger.Info("Redis connected", zap.String("addr", addr), zap.Int("attempts", i+1))
			return client, nil
		}
		logger.Warn("Redis ping failed", zap.Int("attempt", i+1), zap.Error(err))
	}

	_ = client.Close()
	return nil, fmt.Errorf("failed to connect to Redis after %d attempts: %w", maxRetries, err)
}

func NewRedis(client listClient, key string, maxEntries int) *Redis {
	if key == "" {
		key = "upisearch:history"
	}
	if maxEntries <= 0 {
		maxEntries = 100
	}
	return &Redis{client: client, key: key, max: maxEntries}
}

func (r *Redis) Add(ctx context.Context, query string, resp *apimodels.SearchResponse) (*apimodels.HistoryEntry, error) {
	entry := NewEntry(query, resp)
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to encode history entry: %w", err)
	}

	if err := r.client.LPush(ctx, r.key, payload).Err(); err != nil {
		return nil, fmt.Errorf("failed to push history entry: %w", err)
	}
	if err := r.client.LTrim(ctx, r.key, 0, int64(r.max-1)).Err(); err != nil {
		return nil, fmt.Errorf("failed to trim history: %w", err)
	}
	return &entry, nil
}

// List returns up to limit entries, newest first. Undecodable entries are skipped.
func (r *Redis) List(ctx context.Context, limit int) ([]apimodels.HistoryEntry, error) {
	if limit <= 0 || limit > r.max {
		limit = r.max
	}

	raw, err := r.client.LRange(ctx, r.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	entries := make([]apimodels.HistoryEntry, 0, len(raw))
	for _, item := range raw {
		var entry apimodels.HistoryEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
