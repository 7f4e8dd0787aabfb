// Package openaichat implements domain.ChatModel over an OpenAI-compatible
// chat completion endpoint.
package openaichat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"hotel_concierge/internal/adapters/observability"
	"hotel_concierge/internal/domain"
)

type Client struct {
	c     *openai.Client
	model string
}

// New builds a client. base may be empty for the default endpoint; model
// falls back to gpt-4o-mini.
func New(base, key, model string) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	cfg := openai.DefaultConfig(key)
	if base != "" {
		cfg.BaseURL = strings.TrimSuffix(base, "/")
	}
	return &Client{c: openai.NewClientWithConfig(cfg), model: model}, nil
}

var _ domain.ChatModel = (*Client)(nil)

// Complete returns free-form text. Temperature is pinned low for determinism.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	return c.complete(ctx, system, user, nil)
}

// CompleteJSON asks for a JSON object reply and returns the raw JSON text.
func (c *Client) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	return c.complete(ctx, system, user, &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	})
}

func (c *Client) complete(ctx context.Context, system, user string, format *openai.ChatCompletionResponseFormat) (string, error) {
	start := time.Now()
	resp, err := c.c.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: format,
	})
	if err != nil {
		log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("chat completion failed")
		return "", classify(err)
	}
	observability.ObserveExternal("openai", "chat", 200, time.Since(start))
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps provider rate/overload signals onto domain.ErrOverloaded so
// the pipeline can answer with the "please wait" message instead of failing.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode == 503 {
			return fmt.Errorf("%w: %v", domain.ErrOverloaded, err)
		}
	}
	low := strings.ToLower(err.Error())
	if strings.Contains(low, "rate limit") || strings.Contains(low, "overloaded") {
		return fmt.Errorf("%w: %v", domain.ErrOverloaded, err)
	}
	return err
}
