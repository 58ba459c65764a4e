package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/sashabaranov/go-openai"
)

// ErrExternalService marks failures of the text-generation collaborator, including responses that cannot be
// interpreted. These are never retried.
var ErrExternalService = errors.NewSentinel("external service error")

// Completer produces a text completion for a system and a user instruction.
type Completer interface {
	Complete(ctx context.Context, systemInstruction, userInstruction string, maxOutputTokens int) (string, error)
}

// Client is a [Completer] backed by an OpenAI compatible chat completions endpoint.
type Client struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewClient creates a client for the API at baseURL, e.g. https://api.openai.com/v1.
func NewClient(apiKey, baseURL, model string, logger *slog.Logger) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger.With("source", "ai.Client"),
	}
}

// Complete runs a single blocking chat completion and returns the content of the first choice.
//
// The full response is awaited. There is no retry and no streaming.
func (c *Client) Complete(
	ctx context.Context,
	systemInstruction string,
	userInstruction string,
	maxOutputTokens int,
) (string, error) {
	c.logger.LogAttrs(ctx, slog.LevelDebug, "requesting completion",
		slog.String("model", c.model),
		slog.Int("max_tokens", maxOutputTokens),
		slog.Int("prompt_length", len(userInstruction)))

	completion, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:     c.model,
			MaxTokens: maxOutputTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemInstruction}, //nolint:exhaustruct // text only
				{Role: openai.ChatMessageRoleUser, Content: userInstruction},     //nolint:exhaustruct // text only
			},
		},
	)
	if err != nil {
		return "", errors.Wrap(fmt.Errorf("%w: %w", ErrExternalService, err), "create chat completion",
			slog.String("model", c.model))
	}
	if len(completion.Choices) == 0 {
		return "", errors.Wrap(ErrExternalService, "completion has no choices", slog.String("model", c.model))
	}

	content := completion.Choices[0].Message.Content
	c.logger.LogAttrs(ctx, slog.LevelDebug, "received completion",
		slog.Int("completion_tokens", completion.Usage.CompletionTokens),
		slog.Int("content_length", len(content)))
	return content, nil
}
