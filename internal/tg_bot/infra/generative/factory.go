package generative

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/DenisKhanov/SolarBot/internal/tg_bot/api"
	botServ "github.com/DenisKhanov/SolarBot/internal/tg_bot/service"
)

// ErrUnsupportedModel is returned for a GENERATIVE_NAME with no registered implementation.
var ErrUnsupportedModel = errors.New("unsupported generative model")

// Params configure a generative model. BaseURL overrides the provider endpoint and is
// ignored by providers without one.
type Params struct {
	APIKey    string
	BaseURL   string
	ModelName string
	MaxTokens int
}

// generativeCreator defines a function to create a FallbackResponder
type generativeCreator func(ctx context.Context, p Params) (botServ.FallbackResponder, error)

// generativeRegistry stores registered implementations
var generativeRegistry = map[string]generativeCreator{
	"openai": func(_ context.Context, p Params) (botServ.FallbackResponder, error) {
		return api.NewOpenAIAPI(p.APIKey, p.BaseURL, p.ModelName, p.MaxTokens)
	},
	"openrouter": func(_ context.Context, p Params) (botServ.FallbackResponder, error) {
		return api.NewOpenAIAPI(p.APIKey, orDefault(p.BaseURL, api.OpenRouterBaseURL), p.ModelName, p.MaxTokens)
	},
	"deepseek": func(_ context.Context, p Params) (botServ.FallbackResponder, error) {
		return api.NewOpenAIAPI(p.APIKey, orDefault(p.BaseURL, api.DeepSeekBaseURL), p.ModelName, p.MaxTokens)
	},
	"anthropic": func(_ context.Context, p Params) (botServ.FallbackResponder, error) {
		return api.NewAnthropicAPI(p.APIKey, p.ModelName, p.MaxTokens)
	},
	"gemini": func(ctx context.Context, p Params) (botServ.FallbackResponder, error) {
		return api.NewGeminiAPI(ctx, p.APIKey, p.ModelName, p.MaxTokens)
	},
	"ollama": func(_ context.Context, p Params) (botServ.FallbackResponder, error) {
		return api.NewOllamaAPI(p.BaseURL, p.ModelName, p.MaxTokens)
	},
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Names returns the registered implementation names, sorted.
func Names() []string {
	names := make([]string, 0, len(generativeRegistry))
	for name := range generativeRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ModelFactory creates a FallbackResponder implementation based on GENERATIVE_NAME
func ModelFactory(ctx context.Context, generativeName string, p Params) (botServ.FallbackResponder, error) {
	creator, exists := generativeRegistry[strings.ToLower(generativeName)]
	if !exists {
		return nil, fmt.Errorf("%w: %q (expected one of %s)", ErrUnsupportedModel, generativeName, strings.Join(Names(), ", "))
	}
	return creator(ctx, p)
}
