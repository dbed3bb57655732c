package executor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sozercan/upi-search/apimodels"
	"github.com/sozercan/upi-search/internal/config"
	"github.com/sozercan/upi-search/internal/metrics"
)

var (
	// ErrBackendUnreachable is returned once every attempt to reach the backend failed.
	ErrBackendUnreachable = errors.New("backend unreachable after retry")
	// ErrQueryFailed marks a query the backend received and rejected. It is never retried.
	ErrQueryFailed = errors.New("query rejected by backend")
	// ErrUnknownDriver is returned by New for an unsupported database.driver.
	ErrUnknownDriver = errors.New("unknown database driver")
)

type Executor interface {
	// Execute runs query and returns the raw rows
	Execute(ctx context.Context, query string) ([]apimodels.Record, error)

	// ValidateQuery reports whether the backend would accept query
	ValidateQuery(ctx context.Context, query string) bool

	// HealthCheck verifies the backend is reachable
	HealthCheck(ctx context.Context) error

	// Driver names the backend in logs and metrics
	Driver() string

	Close(ctx context.Context) error
}

// New builds the executor selected by cfg.Driver, wrapped with retries.
func New(cfg *config.DatabaseConfig, logger *zap.Logger) (Executor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		exec Executor
		err  error
	)
	switch cfg.Driver {
	case "arangodb":
		exec, err = NewArangoDB(cfg)
	case "neo4j":
		exec, err = NewNeo4j(cfg)
	case "graphql":
		exec, err = NewGraphQL(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Created query executor", zap.String("driver", cfg.Driver), zap.String("address", cfg.Address()))
	return WithRetry(exec, cfg.MaxRetries, logger), nil
}

// FormatResults normalizes raw backend values into records. Objects are kept
// as they are; scalars and lists become {"value": v}.
func FormatResults(raw []interface{}) []apimodels.Record {
	records := make([]apimodels.Record, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case nil:
			continue
		case map[string]interface{}:
			records = append(records, v)
		default:
			records = append(records, apimodels.Record{"value": v})
		}
	}
	return records
}

// Retrying retries Execute on transport failures. Rejected queries
// (ErrQueryFailed) are returned on the first attempt.
type Retrying struct {
	Executor
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

func WithRetry(exec Executor, maxRetries int, logger *zap.Logger) *Retrying {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrying{
		Executor:   exec,
		maxRetries: maxRetries,
		backoff:    250 * time.Millisecond,
		logger:     logger,
	}
}

// WithBackoff sets the fixed delay between attempts.
func (r *Retrying) WithBackoff(d time.Duration) *Retrying {
	r.backoff = d
	return r
}

func (r *Retrying) Execute(ctx context.Context, query string) ([]apimodels.Record, error) {
	driver := r.Executor.Driver()

	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.backoff):
			}
		}

		r.logger.Info("Executing query", zap.String("driver", driver), zap.Int("attempt", attempt+1))
		start := time.Now()
		records, err := r.Executor.Execute(ctx, query)
		if err == nil {
			metrics.ExecutorDuration.WithLabelValues(driver, "success").Observe(time.Since(start).Seconds())
			return records, nil
		}

		if errors.Is(err, ErrQueryFailed) {
			metrics.ExecutorDuration.WithLabelValues(driver, "rejected").Observe(time.Since(start).Seconds())
			r.logger.Warn("Backend rejected query", zap.String("driver", driver), zap.Error(err))
			return nil, err
		}

		metrics.ExecutorDuration.WithLabelValues(driver, "error").Observe(time.Since(start).Seconds())
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		r.logger.Warn("Failed to execute query", zap.String("driver", driver), zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return nil, fmt.Errorf("%w: %v", ErrBackendUnreachable, lastErr)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
