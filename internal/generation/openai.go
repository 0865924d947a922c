package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
)

var (
	// ErrEmptyPrompt is returned when Generate is called with an empty user prompt.
	ErrEmptyPrompt = errors.New("generation: user prompt is empty")
	// ErrNoChoicesInResponse is returned when the API response contains no completion.
	ErrNoChoicesInResponse = errors.New("generation: no choices in response")
)

const defaultChatModel = openaisdk.ChatModelGPT4oMini

// OpenAIClient calls the OpenAI chat completions API via the official SDK.
type OpenAIClient struct {
	sdk   openaisdk.Client
	model openaisdk.ChatModel
}

// OpenAIOption configures the OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithModel sets the chat model. Empty uses the default.
func WithModel(model string) OpenAIOption {
	return func(c *OpenAIClient) {
		if model != "" {
			c.model = openaisdk.ChatModel(model)
		}
	}
}

// NewOpenAIClient creates an OpenAI chat client using the official SDK.
func NewOpenAIClient(apiKey string, opts ...OpenAIOption) *OpenAIClient {
	client := &OpenAIClient{
		sdk:   openaisdk.NewClient(option.WithAPIKey(apiKey)),
		model: defaultChatModel,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

var _ Client = (*OpenAIClient)(nil)

// Generate returns the completion text for the given prompts.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.UserPrompt) == "" {
		return "", ErrEmptyPrompt
	}

	params := openaisdk.ChatCompletionNewParams{
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(req.SystemPrompt),
			openaisdk.UserMessage(req.UserPrompt),
		},
		Model:       c.model,
		Temperature: param.NewOpt(req.Temperature),
	}

	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(req.MaxTokens))
	}

	resp, err := c.sdk.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoicesInResponse
	}

	return resp.Choices[0].Message.Content, nil
}
