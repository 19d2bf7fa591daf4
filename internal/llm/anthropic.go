package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/synthmed/radgen/internal/log"
)

const defaultClaudeModel = "claude-sonnet-4-20250514"

type AnthropicRefiner struct {
	client anthropic.Client
	model  string
}

func NewAnthropicRefiner(apiKey, model string) *AnthropicRefiner {
	if model == "" {
		model = defaultClaudeModel
	}
	return &AnthropicRefiner{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (r *AnthropicRefiner) Refine(ctx context.Context, instruction string) (string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("anthropic").With("model", r.model)
	log.Debug("refining prompt")

	msg, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(r.model),
		MaxTokens:   MaxTokens,
		Temperature: anthropic.Float(Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(instruction)),
		},
	})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
