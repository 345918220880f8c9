package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
	ollama "github.com/ollama/ollama/api"
	"github.com/sirupsen/logrus"
)

// DefaultOllamaURL is the address of a local Ollama server.
const DefaultOllamaURL = "http://localhost:11434"

// OllamaAPI answers free-text questions with a self-hosted Ollama model.
type OllamaAPI struct {
	client    *ollama.Client
	modelName string
	maxTokens int
}

// NewOllamaAPI creates a new OllamaAPI. An empty hostURL means DefaultOllamaURL.
func NewOllamaAPI(hostURL, modelName string, maxTokens int) (*OllamaAPI, error) {
	if modelName == "" {
		return nil, errors.New("model name can't be empty")
	}
	if hostURL == "" {
		hostURL = DefaultOllamaURL
	}
	parsedURL, err := url.Parse(hostURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url: %w", err)
	}
	return &OllamaAPI{
		client:    ollama.NewClient(parsedURL, http.DefaultClient),
		modelName: modelName,
		maxTokens: maxTokens,
	}, nil
}

// GenerateReply sends the system prompt, the recent dialog and the new user text, and returns the answer.
func (o *OllamaAPI) GenerateReply(ctx context.Context, systemPrompt string, history []models.Message, text string) (string, error) {
	messages := make([]ollama.Message, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, ollama.Message{Role: "system", Content: systemPrompt})
	}
	for _, m := range history {
		messages = append(messages, ollama.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, ollama.Message{Role: models.RoleUser, Content: text})

	stream := false
	req := &ollama.ChatRequest{
		Model:    o.modelName,
		Messages: messages,
		Stream:   &stream,
	}
	if o.maxTokens > 0 {
		req.Options = map[string]any{"num_predict": o.maxTokens}
	}

	var response ollama.ChatResponse
	err := o.client.Chat(ctx, req, func(resp ollama.ChatResponse) error {
		response = resp
		return nil
	})
	if err != nil {
		err = fmt.Errorf("failed to create chat: %w", err)
		logrus.WithError(err).Errorf("Error creating %s request", o.modelName)
		return "", err
	}
	if response.Message.Content == "" {
		return "", errEmptyCompletion
	}
	return response.Message.Content, nil
}

// ModelName returns the configured model.
func (o *OllamaAPI) ModelName() string { return o.modelName }
