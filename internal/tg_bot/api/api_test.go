package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnName(t *testing.T) {
	tests := map[int]string{1: "A", 9: "I", 26: "Z", 27: "AA", 52: "AZ", 53: "BA"}
	for n, want := range tests {
		assert.Equal(t, want, columnName(n), "column %d", n)
	}
}

func TestNewMailSender(t *testing.T) {
	_, err := NewMailSender("", 587, "bot@example.com", "secret", []string{"sales@example.com"})
	assert.Error(t, err)

	_, err = NewMailSender("smtp.example.com", 587, "bot@example.com", "secret", nil)
	assert.Error(t, err)

	m, err := NewMailSender("smtp.example.com", 587, "bot@example.com", "secret", []string{"a@example.com", "b@example.com"})
	require.NoError(t, err)

	msg := m.compose("SUNERA lead: Ana", "body")
	assert.Equal(t, []string{"bot@example.com"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"SUNERA lead: Ana"}, msg.GetHeader("Subject"))
}

func TestEncodeLead(t *testing.T) {
	id := uuid.MustParse("6f1c8d3e-2b7a-4c1e-9d5f-0a1b2c3d4e5f")
	lead := models.Lead{
		ID:        id,
		ChatID:    42,
		Username:  "ana",
		Language:  "es",
		Name:      "Ana",
		Phone:     "+34600111222",
		City:      "Valencia",
		Note:      "roof 40m2",
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	body, err := encodeLead(lead)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, id.String(), got["id"])
	assert.Equal(t, float64(42), got["chat_id"])
	assert.Equal(t, "+34600111222", got["phone"])
	assert.Equal(t, "2024-05-01T10:00:00Z", got["created_at"])
}

func TestNewLeadPublisherRequiresConfig(t *testing.T) {
	_, err := NewLeadPublisher("", "solar.leads")
	assert.Error(t, err)
}

func TestNewSheetsAppenderRequiresConfig(t *testing.T) {
	_, err := NewSheetsAppender(context.Background(), "", "sheet-id", "Leads", models.LeadSheetHeader)
	assert.Error(t, err)
}

func TestGenerativeConstructorsValidate(t *testing.T) {
	_, err := NewOpenAIAPI("", "", "gpt-4o-mini", 100)
	assert.Error(t, err)
	_, err = NewOpenAIAPI("key", "", "", 100)
	assert.Error(t, err)

	_, err = NewAnthropicAPI("", "claude-3-5-haiku-latest", 100)
	assert.Error(t, err)
	a, err := NewAnthropicAPI("key", "claude-3-5-haiku-latest", 0)
	require.NoError(t, err)
	assert.EqualValues(t, defaultAnthropicMaxTokens, a.maxTokens)

	_, err = NewGeminiAPI(context.Background(), "key", "", 100)
	assert.Error(t, err)
}

func TestOpenAIAPIGenerateReply(t *testing.T) {
	var request struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &request)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "test-model",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Panels last 25 years."}}]
		}`)
	}))
	defer srv.Close()

	o, err := NewOpenAIAPI("key", srv.URL+"/", "test-model", 50)
	require.NoError(t, err)

	history := []models.Message{
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleAssistant, Content: "hello"},
	}
	got, err := o.GenerateReply(context.Background(), "You are a solar consultant.", history, "how long do panels last?")
	require.NoError(t, err)
	assert.Equal(t, "Panels last 25 years.", got)

	assert.Equal(t, "test-model", request.Model)
	require.Len(t, request.Messages, 4)
	assert.Equal(t, "system", request.Messages[0].Role)
	assert.Equal(t, "assistant", request.Messages[2].Role)
	assert.Equal(t, "how long do panels last?", request.Messages[3].Content)
}

func TestOllamaAPIGenerateReply(t *testing.T) {
	var request struct {
		Model    string `json:"model"`
		Stream   *bool  `json:"stream"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &request)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"model":"llama3.1:8b","created_at":"2025-03-14T09:30:00Z","message":{"role":"assistant","content":"About 4 kW."},"done":true}`+"\n")
	}))
	defer srv.Close()

	o, err := NewOllamaAPI(srv.URL, "llama3.1:8b", 0)
	require.NoError(t, err)

	got, err := o.GenerateReply(context.Background(), "Be brief.", nil, "what size do I need?")
	require.NoError(t, err)
	assert.Equal(t, "About 4 kW.", got)

	assert.Equal(t, "llama3.1:8b", request.Model)
	require.NotNil(t, request.Stream)
	assert.False(t, *request.Stream)
	require.Len(t, request.Messages, 2)
	assert.Equal(t, "system", request.Messages[0].Role)
	assert.Equal(t, "what size do I need?", request.Messages[1].Content)
}

func TestNewOllamaAPIDefaults(t *testing.T) {
	_, err := NewOllamaAPI("", "", 0)
	assert.Error(t, err)

	o, err := NewOllamaAPI("", "phi4", 0)
	require.NoError(t, err)
	assert.Equal(t, "phi4", o.ModelName())
}
