package service

import (
	"context"
	"sync"

	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/mock"
)

type sentReply struct {
	ChatID int64
	Reply  models.Reply
}

type sentText struct {
	ChatID int64
	Text   string
}

// recordingMessenger records outgoing messages instead of sending them.
type recordingMessenger struct {
	mu        sync.Mutex
	replies   []sentReply
	texts     []sentText
	callbacks []string
}

func (m *recordingMessenger) Reply(chatID int64, reply models.Reply) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, sentReply{ChatID: chatID, Reply: reply})
	return nil
}

func (m *recordingMessenger) SendText(chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, sentText{ChatID: chatID, Text: text})
	return nil
}

func (m *recordingMessenger) AnswerCallback(callbackID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, callbackID)
}

func (m *recordingMessenger) Replies() []sentReply {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentReply(nil), m.replies...)
}

func (m *recordingMessenger) Texts() []sentText {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentText(nil), m.texts...)
}

// fakeBot stands in for *tgbotapi.BotAPI.
type fakeBot struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	requests []tgbotapi.Chattable
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeBot) Sent() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

type storeMock struct{ mock.Mock }

func (m *storeMock) SaveLead(ctx context.Context, lead models.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *storeMock) SaveCalculation(ctx context.Context, c models.Calculation) error {
	return m.Called(ctx, c).Error(0)
}

func (m *storeMock) UpsertUser(ctx context.Context, u models.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *storeMock) CountLeads(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *storeMock) CountUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type publisherMock struct{ mock.Mock }

func (m *publisherMock) PublishLead(ctx context.Context, lead models.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

type sheetsMock struct{ mock.Mock }

func (m *sheetsMock) AppendRow(ctx context.Context, fields []string) error {
	return m.Called(ctx, fields).Error(0)
}

type mailMock struct{ mock.Mock }

func (m *mailMock) Send(subject, body string) error {
	return m.Called(subject, body).Error(0)
}

type responderMock struct{ mock.Mock }

func (m *responderMock) GenerateReply(ctx context.Context, systemPrompt string, history []models.Message, text string) (string, error) {
	args := m.Called(ctx, systemPrompt, history, text)
	return args.String(0), args.Error(1)
}
