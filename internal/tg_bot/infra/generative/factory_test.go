package generative

import (
	"context"
	"testing"

	"github.com/DenisKhanov/SolarBot/internal/tg_bot/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelFactoryUnknownName(t *testing.T) {
	_, err := ModelFactory(context.Background(), "llama", Params{APIKey: "key", ModelName: "model"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedModel)
}

func TestModelFactoryBuildsResponders(t *testing.T) {
	tests := []struct {
		name string
		want interface{}
	}{
		{name: "openai", want: &api.OpenAIAPI{}},
		{name: "OpenRouter", want: &api.OpenAIAPI{}},
		{name: "deepseek", want: &api.OpenAIAPI{}},
		{name: "anthropic", want: &api.AnthropicAPI{}},
		{name: "ollama", want: &api.OllamaAPI{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ModelFactory(context.Background(), tt.name, Params{APIKey: "key", ModelName: "some-model", MaxTokens: 100})
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
		})
	}
}

func TestModelFactoryPropagatesValidation(t *testing.T) {
	_, err := ModelFactory(context.Background(), "openai", Params{ModelName: "gpt-4o-mini"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedModel)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"anthropic", "deepseek", "gemini", "ollama", "openai", "openrouter"}, Names())
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, api.OpenRouterBaseURL, orDefault("", api.OpenRouterBaseURL))
	assert.Equal(t, "http://proxy.local/v1/", orDefault("http://proxy.local/v1/", api.OpenRouterBaseURL))
}
