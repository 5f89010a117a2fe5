package summarize

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicBackend is the structured-client call shape, using the official
// SDK instead of a hand-built HTTP request.
type anthropicBackend struct {
	api   *anthropic.Client
	model anthropic.Model
}

func newAnthropicBackend(cfg Config) *anthropicBackend {
	opts := []option.RequestOption{}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)
	return &anthropicBackend{
		api:   &client,
		model: anthropic.Model(cfg.Model),
	}
}

func (b *anthropicBackend) complete(ctx context.Context, system, user string) (string, error) {
	msg, err := b.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     b.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in API response")
}
