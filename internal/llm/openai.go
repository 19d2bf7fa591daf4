package llm

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/synthmed/radgen/internal/log"
)

const defaultGPTModel = openai.GPT4Turbo

type OpenAIRefiner struct {
	client *openai.Client
	model  string
}

func NewOpenAIRefiner(apiKey, model string) *OpenAIRefiner {
	if model == "" {
		model = defaultGPTModel
	}
	return &OpenAIRefiner{client: openai.NewClient(apiKey), model: model}
}

func (r *OpenAIRefiner) Refine(ctx context.Context, instruction string) (string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("openai").With("model", r.model)
	log.Debug("refining prompt")

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		MaxTokens:   MaxTokens,
		Temperature: Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: instruction},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
