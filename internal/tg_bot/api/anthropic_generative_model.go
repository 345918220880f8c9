package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"
)

const defaultAnthropicMaxTokens = 400

// AnthropicAPI answers free-text questions with Claude models.
type AnthropicAPI struct {
	client    anthropic.Client
	modelName string
	maxTokens int64
}

// NewAnthropicAPI creates a new AnthropicAPI. The Messages API requires a token limit,
// so a non-positive maxTokens is replaced with a default.
func NewAnthropicAPI(apiKey, modelName string, maxTokens int) (*AnthropicAPI, error) {
	if apiKey == "" {
		return nil, errors.New("api key can't be empty")
	}
	if modelName == "" {
		return nil, errors.New("model name can't be empty")
	}
	limit := int64(maxTokens)
	if limit <= 0 {
		limit = defaultAnthropicMaxTokens
	}
	return &AnthropicAPI{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		modelName: modelName,
		maxTokens: limit,
	}, nil
}

// GenerateReply sends the system prompt, the recent dialog and the new user text, and returns the answer.
func (a *AnthropicAPI) GenerateReply(ctx context.Context, systemPrompt string, history []models.Message, text string) (string, error) {
	messages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, m := range history {
		role := anthropic.MessageParamRoleUser
		if m.Role == models.RoleAssistant {
			role = anthropic.MessageParamRoleAssistant
		}
		messages = append(messages, anthropic.MessageParam{
			Role:    role,
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(m.Content)},
		})
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.modelName),
		Messages:  messages,
		MaxTokens: a.maxTokens,
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt, Type: "text"}}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		err = fmt.Errorf("failed to create message: %w", err)
		logrus.WithError(err).Errorf("Error creating %s request", a.modelName)
		return "", err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	if sb.Len() == 0 {
		return "", errEmptyCompletion
	}
	return sb.String(), nil
}

// ModelName returns the configured model.
func (a *AnthropicAPI) ModelName() string { return a.modelName }
