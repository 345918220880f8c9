package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"
)

// Base URLs of OpenAI-compatible providers.
const (
	OpenRouterBaseURL = "https://openrouter.ai/api/v1/"
	DeepSeekBaseURL   = "https://api.deepseek.com/v1/"
)

var errEmptyCompletion = errors.New("generative model returned no text")

// OpenAIAPI answers free-text questions through any OpenAI-compatible chat completions endpoint.
type OpenAIAPI struct {
	client    openai.Client // Клиент для взаимодействия с API
	modelName string        // Версия генеративной модели
	maxTokens int           // Максимальное количество токенов в ответе
}

// NewOpenAIAPI creates a new OpenAIAPI.
//
// Arguments:
//   - apiKey: provider API key.
//   - baseURL: endpoint of an OpenAI-compatible provider; empty means api.openai.com.
//   - modelName: chat model identifier.
//   - maxTokens: reply length limit; zero leaves the provider default.
//
// Returns:
//   - *OpenAIAPI: a ready client.
//   - error: an error if the key or model is missing.
func NewOpenAIAPI(apiKey, baseURL, modelName string, maxTokens int) (*OpenAIAPI, error) {
	if apiKey == "" {
		return nil, errors.New("api key can't be empty")
	}
	if modelName == "" {
		return nil, errors.New("model name can't be empty")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIAPI{
		client:    openai.NewClient(opts...),
		modelName: modelName,
		maxTokens: maxTokens,
	}, nil
}

// GenerateReply sends the system prompt, the recent dialog and the new user text, and returns the answer.
func (o *OpenAIAPI) GenerateReply(ctx context.Context, systemPrompt string, history []models.Message, text string) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	for _, m := range history {
		if m.Role == models.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(m.Content))
			continue
		}
		messages = append(messages, openai.UserMessage(m.Content))
	}
	messages = append(messages, openai.UserMessage(text))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.modelName),
		Messages: messages,
	}
	if o.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(o.maxTokens))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		err = fmt.Errorf("failed to create completion: %w", err)
		logrus.WithError(err).Errorf("Error creating %s request", o.modelName)
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

// ModelName returns the configured model.
func (o *OpenAIAPI) ModelName() string { return o.modelName }
