package app

import (
	"context"
	"fmt"
	"strings"

	"bhashagen/pkg/ai"
	"bhashagen/pkg/domain"
)

// Config holds runtime configuration for the generation service core.
type Config struct {
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	Model               string
	MaxCompletionTokens int

	// Generator overrides the OpenAI-backed default; used in tests.
	Generator ai.TextGenerator
}

// App builds prompts and calls the LLM once per request.
type App struct {
	generator ai.TextGenerator
}

// New constructs the generation core.
func New(cfg Config) (*App, error) {
	generator := cfg.Generator
	if generator == nil {
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return nil, fmt.Errorf("openai api key required")
		}
		generator = ai.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model, cfg.MaxCompletionTokens)
	}
	return &App{generator: generator}, nil
}

// ValidateRequest checks required field presence. Enum membership is not
// enforced: unknown content types still generate, with no stylistic
// directive in the prompt.
func ValidateRequest(req domain.ContentRequest) error {
	if strings.TrimSpace(req.ProductService) == "" {
		return ErrProductServiceRequired
	}
	if strings.TrimSpace(req.ContentType) == "" {
		return ErrContentTypeRequired
	}
	if strings.TrimSpace(req.Language) == "" {
		return ErrLanguageRequired
	}
	if strings.TrimSpace(req.Tone) == "" {
		return ErrToneRequired
	}
	return nil
}

// Generate validates the request, builds the prompt, and issues exactly one
// LLM call. Any provider or transport failure is returned as-is for the
// handler to collapse into a single error response.
func (a *App) Generate(ctx context.Context, req domain.ContentRequest) (string, error) {
	if err := ValidateRequest(req); err != nil {
		return "", err
	}
	prompt := BuildPrompt(req)
	text, err := a.generator.GenerateText(ctx, SystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	return text, nil
}
