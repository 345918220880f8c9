package service

import (
	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Messenger delivers outgoing messages to chats.
type Messenger interface {
	Reply(chatID int64, reply models.Reply) error
	SendText(chatID int64, text string) error
	AnswerCallback(callbackID string)
}

// TelegramMessenger sends messages through the Telegram Bot API.
type TelegramMessenger struct {
	bot    BotSender
	locale Localizer
}

// NewTelegramMessenger creates a TelegramMessenger.
func NewTelegramMessenger(bot BotSender, locale Localizer) *TelegramMessenger {
	return &TelegramMessenger{bot: bot, locale: locale}
}

// Reply sends an engine reply with its keyboard rendered in the reply language.
func (m *TelegramMessenger) Reply(chatID int64, reply models.Reply) error {
	return m.sendMessage(chatID, reply.Text, 0, keyboardMarkup(m.locale, reply.Keyboard, reply.Language))
}

// SendText sends plain text without changing the keyboard.
func (m *TelegramMessenger) SendText(chatID int64, text string) error {
	return m.sendMessage(chatID, text, 0, nil)
}

// AnswerCallback stops the loading indicator of an inline button.
func (m *TelegramMessenger) AnswerCallback(callbackID string) {
	if _, err := m.bot.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		logrus.WithError(err).Error("Failed to answer callback query")
	}
}

// sendMessage sends a message to the specified chat with optional reply and markup.
// Arguments:
//   - chatID: the ID of the chat to send the message to.
//   - text: the text content of the message.
//   - replyToID: the ID of the message to reply to (0 if no reply).
//   - markup: an optional keyboard or inline markup (nil if none).
//
// Returns an error if the message fails to send.
func (m *TelegramMessenger) sendMessage(chatID int64, text string, replyToID int, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if replyToID != 0 {
		msg.ReplyToMessageID = replyToID
	}
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := m.bot.Send(msg)
	if err != nil {
		logrus.WithError(err).Errorf("Failed to send message to chat %d", chatID)
	}
	return err
}
