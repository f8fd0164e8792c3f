// Package advisor talks to the LLM behind the advisor chat feature.
// Groq exposes an OpenAI-compatible API, so the client works against
// either vendor by switching base URL and model.
package advisor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL is Groq's OpenAI-compatible endpoint
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel is fast and cheap enough for interactive chat
	DefaultModel = "llama-3.3-70b-versatile"

	completionTimeout = 60 * time.Second
)

// Client calls a chat-completion API
type Client struct {
	api    *openai.Client
	model  string
	logger zerolog.Logger
}

// New creates an advisor client. baseURL and model fall back to the
// Groq defaults when empty.
func New(logger zerolog.Logger, apiKey, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL

	return &Client{
		api:    openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger.With().Str("component", "advisor-client").Logger(),
	}
}

// Complete sends the system prompt and user message and returns the
// model's markdown answer. The call is bounded by a timeout tied to
// the incoming ctx.
func (c *Client) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(cctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("chat completion failed")
		return "", fmt.Errorf("advisor completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("advisor completion: empty response")
	}

	return resp.Choices[0].Message.Content, nil
}
