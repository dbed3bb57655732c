package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	gogpt "github.com/sashabaranov/go-openai"

	"github.com/sozercan/upi-search/internal/config"
)

// Compatible talks to any server exposing the OpenAI chat-completions API
// (vLLM, Ollama, LocalAI, Nebius and the like).
type Compatible struct {
	client *gogpt.Client
	cfg    *config.LLMConfig
}

func NewCompatible(cfg *config.LLMConfig) *Compatible {
	clientCfg := gogpt.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.Endpoint
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Compatible{
		client: gogpt.NewClientWithConfig(clientCfg),
		cfg:    cfg,
	}
}

func (c *Compatible) Name() string { return "compatible" }

func (c *Compatible) Complete(ctx context.Context, systemMessage, userMessage string, opts ...Option) (*Response, error) {
	options := applyOptions(Options{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}, opts)

	req := gogpt.ChatCompletionRequest{
		Model: options.Model,
		Messages: []gogpt.ChatCompletionMessage{
			{Role: gogpt.ChatMessageRoleSystem, Content: systemMessage},
			{Role: gogpt.ChatMessageRoleUser, Content: userMessage},
		},
		Temperature: float32(options.Temperature),
		MaxTokens:   int(options.MaxTokens),
	}
	for _, t := range options.Tools {
		req.Tools = append(req.Tools, gogpt.Tool{
			Type: gogpt.ToolTypeFunction,
			Function: &gogpt.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, c.parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	msg := resp.Choices[0].Message
	response := &Response{
		Content: msg.Content,
		Model:   resp.Model,
		Usage: Usage{
			PromptTokens:     int64(resp.Usage.PromptTokens),
			CompletionTokens: int64(resp.Usage.CompletionTokens),
			TotalTokens:      int64(resp.Usage.TotalTokens),
		},
	}
	if len(msg.ToolCalls) > 0 {
		response.FunctionCall = &FunctionResponse{
			Name:      msg.ToolCalls[0].Function.Name,
			Arguments: msg.ToolCalls[0].Function.Arguments,
		}
	}
	return response, nil
}

// parseAPIError turns go-openai errors into a StatusError when a status is known.
func (c *Compatible) parseAPIError(err error) error {
	var reqErr *gogpt.RequestError
	if errors.As(err, &reqErr) {
		msg := extractDetail(reqErr.Body)
		if msg == "" {
			msg = string(reqErr.Body)
		}
		return &StatusError{Provider: c.Name(), StatusCode: reqErr.HTTPStatusCode, Message: msg}
	}

	var apiErr *gogpt.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{Provider: c.Name(), StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}

	return err
}

// extractDetail pulls the "detail" field some compatible servers use for errors.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		return parsed.Detail
	}
	return ""
}
