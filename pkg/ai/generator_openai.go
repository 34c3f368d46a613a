package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGenerator calls the OpenAI chat completions API.
type OpenAIGenerator struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIGenerator builds a generator for the given model. baseURL may be
// empty to use the public API endpoint. maxTokens caps completion length;
// zero means no cap.
func NewOpenAIGenerator(apiKey, baseURL, model string, maxTokens int) *OpenAIGenerator {
	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if s := strings.TrimSpace(baseURL); s != "" {
		cfg.BaseURL = strings.TrimRight(s, "/")
	}
	return &OpenAIGenerator{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (g *OpenAIGenerator) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if strings.TrimSpace(g.model) == "" {
		return "", errors.New("openai model is required")
	}
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userPrompt,
	})
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:               g.model,
		Messages:            messages,
		MaxCompletionTokens: g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response from openai api")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("empty response from openai api")
	}
	return text, nil
}
