package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/sozercan/upi-search/internal/config"
)

const anthropicVersion = "bedrock-2023-05-31"

type bedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Bedrock invokes Anthropic models hosted on AWS Bedrock. Tools are not
// forwarded; callers fall back to the plain content.
type Bedrock struct {
	client bedrockInvoker
	cfg    *config.LLMConfig
}

type claudeMessageRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int64           `json:"max_tokens"`
	Temperature      float64         `json:"temperature"`
	System           string          `json:"system,omitempty"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeMessageResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
}

func NewBedrock(ctx context.Context, cfg *config.LLMConfig) (*Bedrock, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return &Bedrock{
		client: bedrockruntime.NewFromConfig(awsCfg),
		cfg:    cfg,
	}, nil
}

func (b *Bedrock) Name() string { return "bedrock" }

func (b *Bedrock) Complete(ctx context.Context, systemMessage, userMessage string, opts ...Option) (*Response, error) {
	options := applyOptions(Options{
		Model:       b.cfg.Model,
		Temperature: b.cfg.Temperature,
		MaxTokens:   b.cfg.MaxTokens,
	}, opts)
	if options.MaxTokens <= 0 {
		options.MaxTokens = 1000
	}

	payload := claudeMessageRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        options.MaxTokens,
		Temperature:      options.Temperature,
		System:           systemMessage,
		Messages: []claudeMessage{
			{Role: "user", Content: userMessage},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serialize bedrock request: %w", err)
	}

	output, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(options.Model),
		Body:        body,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		var respErr *awshttp.ResponseError
		if errors.As(err, &respErr) {
			return nil, &StatusError{Provider: b.Name(), StatusCode: respErr.HTTPStatusCode(), Message: respErr.Error()}
		}
		return nil, fmt.Errorf("invoke bedrock model: %w", err)
	}

	var decoded claudeMessageResponse
	if err := json.Unmarshal(output.Body, &decoded); err != nil {
		return nil, fmt.Errorf("unmarshal bedrock response: %w", err)
	}
	if len(decoded.Content) == 0 {
		return nil, ErrEmptyResponse
	}

	model := decoded.Model
	if model == "" {
		model = options.Model
	}
	return &Response{
		Content: decoded.Content[0].Text,
		Model:   model,
		Usage: Usage{
			PromptTokens:     decoded.Usage.InputTokens,
			CompletionTokens: decoded.Usage.OutputTokens,
			TotalTokens:      decoded.Usage.InputTokens + decoded.Usage.OutputTokens,
		},
	}, nil
}
