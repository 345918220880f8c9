package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// GeminiAPI представляет структуру для работы с Gemini API
type GeminiAPI struct {
	client    *genai.Client // Клиент для взаимодействия с API
	modelName string        // Версия генеративной модели
	maxTokens int32         // Максимальное количество токенов (опционально)
}

// NewGeminiAPI создает новый экземпляр GeminiAPI
func NewGeminiAPI(ctx context.Context, apiKey, modelName string, maxTokens int) (*GeminiAPI, error) {
	if apiKey == "" {
		return nil, errors.New("api key can't be empty")
	}
	if modelName == "" {
		return nil, errors.New("model name can't be empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiAPI{
		client:    client,
		modelName: modelName,
		maxTokens: int32(maxTokens),
	}, nil
}

// GenerateReply sends the system prompt, the recent dialog and the new user text, and returns the answer.
func (g *GeminiAPI) GenerateReply(ctx context.Context, systemPrompt string, history []models.Message, text string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		role := "user"
		if m.Role == models.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	contents = append(contents, &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: text}},
	})

	config := &genai.GenerateContentConfig{}
	if g.maxTokens > 0 {
		config.MaxOutputTokens = g.maxTokens
	}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, config)
	if err != nil {
		err = fmt.Errorf("failed to create request: %w", err)
		logrus.WithError(err).Error("Error creating Gemini request")
		return "", err
	}
	answer := result.Text()
	if answer == "" {
		return "", errEmptyCompletion
	}
	return answer, nil
}

// ModelName returns the configured model.
func (g *GeminiAPI) ModelName() string { return g.modelName }
