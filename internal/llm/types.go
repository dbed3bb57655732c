package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEmptyResponse signals a completion without any choices.
	ErrEmptyResponse = errors.New("empty completion response")
	// ErrProviderError signals a failure reported by the LLM provider.
	ErrProviderError = errors.New("llm provider error")
)

type Provider interface {
	// Complete sends one system/user message pair and returns the first choice
	Complete(ctx context.Context, systemMessage, userMessage string, opts ...Option) (*Response, error)

	// Name identifies the provider in logs and metrics
	Name() string
}

type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

type Option func(*Options)

type Options struct {
	Model       string
	MaxTokens   int64
	Temperature float64
	Tools       []Tool
}

// WithModel overrides the configured model for a single call.
func WithModel(model string) Option {
	return func(o *Options) {
		if model != "" {
			o.Model = model
		}
	}
}

// WithTools offers function definitions the model may call instead of answering.
func WithTools(tools ...Tool) Option {
	return func(o *Options) {
		o.Tools = append(o.Tools, tools...)
	}
}

// Tool is a provider-neutral function definition. Parameters is a JSON schema object.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// FunctionResponse represents the structured response from a function call
type FunctionResponse struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type Response struct {
	Content      string
	FunctionCall *FunctionResponse
	Usage        Usage
	Model        string
}

// StatusError carries the HTTP status a provider answered with.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error { return ErrProviderError }

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

func applyOptions(defaults Options, opts []Option) Options {
	options := defaults
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
