package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sozercan/upi-search/internal/config"
	"github.com/sozercan/upi-search/internal/metrics"
)

// System messages, one per connector operation.
const (
	SystemGenerateQuery   = "You are a helpful assistant that generates database queries."
	SystemSummarizeText   = "You are a helpful assistant that summarizes text."
	SystemExtractKeywords = "You are a helpful assistant that extracts keywords from text."
	SystemClassifyText    = "You are a helpful assistant that classifies text."
	SystemAnswerQuestion  = "You are a helpful assistant that answers questions based on provided context."
)

const (
	defaultSummaryLength = 100
	defaultKeywordCount  = 5
	defaultBackoff       = 500 * time.Millisecond
	maxBackoff           = 8 * time.Second
)

// Connector wraps a Provider with the prompt templates the search pipeline
// needs, plus retries and metrics around every call.
type Connector struct {
	provider   Provider
	model      string
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

func NewConnector(provider Provider, model string, maxRetries int, logger *zap.Logger) *Connector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Connector{
		provider:   provider,
		model:      model,
		maxRetries: maxRetries,
		backoff:    defaultBackoff,
		logger:     logger,
	}
}

// NewProvider builds the provider selected by cfg.Provider.
func NewProvider(ctx context.Context, cfg *config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai", "azure", "":
		return NewOpenAI(cfg)
	case "compatible":
		return NewCompatible(cfg), nil
	case "bedrock":
		return NewBedrock(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// ModelFor returns the model name requests should carry. Azure routes by
// deployment name, so it wins over the model when set.
func ModelFor(cfg *config.LLMConfig) string {
	if cfg.Provider == "azure" && cfg.Deployment != "" {
		return cfg.Deployment
	}
	return cfg.Model
}

// WithBackoff sets the initial retry delay; it doubles per attempt.
func (c *Connector) WithBackoff(d time.Duration) *Connector {
	c.backoff = d
	return c
}

func (c *Connector) Model() string { return c.model }

func (c *Connector) ProviderName() string { return c.provider.Name() }

// GenerateQuery asks the model for a database query. When the model answers
// through a function call, the "query" argument is returned instead of the
// message content.
func (c *Connector) GenerateQuery(ctx context.Context, prompt string, opts ...Option) (string, error) {
	resp, err := c.Complete(ctx, "generate_query", SystemGenerateQuery, prompt, opts...)
	if err != nil {
		return "", err
	}
	if resp.FunctionCall != nil {
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal([]byte(resp.FunctionCall.Arguments), &args); err == nil && args.Query != "" {
			return strings.TrimSpace(args.Query), nil
		}
		c.logger.Warn("Ignoring malformed function call arguments",
			zap.String("function", resp.FunctionCall.Name),
			zap.String("arguments", resp.FunctionCall.Arguments),
		)
	}
	return strings.TrimSpace(resp.Content), nil
}

// SummarizeText summarizes text in at most maxLength words (100 when maxLength <= 0).
func (c *Connector) SummarizeText(ctx context.Context, text string, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = defaultSummaryLength
	}
	prompt := fmt.Sprintf("Summarize the following text in no more than %d words:\n\n%s", maxLength, text)
	return c.completeText(ctx, "summarize_text", SystemSummarizeText, prompt)
}

// ExtractKeywords splits the model's reply on commas and returns the first n
// entries trimmed (5 when n <= 0). Blank entries are kept.
func (c *Connector) ExtractKeywords(ctx context.Context, text string, n int) ([]string, error) {
	if n <= 0 {
		n = defaultKeywordCount
	}
	prompt := fmt.Sprintf("Extract %d keywords from the following text:\n\n%s", n, text)
	out, err := c.completeText(ctx, "extract_keywords", SystemExtractKeywords, prompt)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(out, ",")
	if len(parts) > n {
		parts = parts[:n]
	}
	keywords := make([]string, len(parts))
	for i, kw := range parts {
		keywords[i] = strings.TrimSpace(kw)
	}
	return keywords, nil
}

// ClassifyText asks the model to pick one of categories for text.
func (c *Connector) ClassifyText(ctx context.Context, text string, categories []string) (string, error) {
	prompt := fmt.Sprintf("Classify the following text into one of these categories: %s\n\nText: %s",
		strings.Join(categories, ", "), text)
	return c.completeText(ctx, "classify_text", SystemClassifyText, prompt)
}

// AnswerQuestion answers question using only the supplied context.
func (c *Connector) AnswerQuestion(ctx context.Context, contextText, question string) (string, error) {
	prompt := fmt.Sprintf("Context: %s\n\nQuestion: %s\n\nAnswer:", contextText, question)
	return c.completeText(ctx, "answer_question", SystemAnswerQuestion, prompt)
}

func (c *Connector) completeText(ctx context.Context, operation, systemMessage, prompt string) (string, error) {
	resp, err := c.Complete(ctx, operation, systemMessage, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

// Complete runs one chat completion with retries on throttling, 5xx and
// transport errors.
func (c *Connector) Complete(ctx context.Context, operation, systemMessage, userMessage string, opts ...Option) (*Response, error) {
	opts = append([]Option{WithModel(c.model)}, opts...)
	provider := c.provider.Name()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, attempt); err != nil {
				return nil, err
			}
		}

		c.logger.Debug("Calling LLM",
			zap.String("provider", provider),
			zap.String("operation", operation),
			zap.Int("attempt", attempt+1),
		)

		start := time.Now()
		resp, err := c.provider.Complete(ctx, systemMessage, userMessage, opts...)
		metrics.LLMRequestDuration.WithLabelValues(provider, c.model, operation).Observe(time.Since(start).Seconds())

		if err == nil {
			metrics.LLMRequestsTotal.WithLabelValues(provider, c.model, operation, "success").Inc()
			metrics.LLMTokensTotal.WithLabelValues(provider, c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
			metrics.LLMTokensTotal.WithLabelValues(provider, c.model, "completion").Add(float64(resp.Usage.CompletionTokens))
			return resp, nil
		}

		metrics.LLMRequestsTotal.WithLabelValues(provider, c.model, operation, "error").Inc()
		lastErr = err
		if !retryable(ctx, err) {
			break
		}
		c.logger.Warn("LLM call failed, retrying",
			zap.String("provider", provider),
			zap.String("operation", operation),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	c.logger.Error("LLM call failed", zap.String("operation", operation), zap.Error(lastErr))
	return nil, fmt.Errorf("%s: %w", operation, lastErr)
}

func (c *Connector) sleep(ctx context.Context, attempt int) error {
	d := c.backoff << (attempt - 1)
	if d > maxBackoff || d < 0 {
		d = maxBackoff
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, ErrEmptyResponse) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	return true
}
