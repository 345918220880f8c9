// Package service connects the Telegram Bot API to the session engine.
// It decodes updates into engine events and executes the actions the engine returns.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DenisKhanov/SolarBot/internal/tg_bot/constant"
	"github.com/DenisKhanov/SolarBot/internal/tg_bot/metrics"
	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// BotSender is the part of *tgbotapi.BotAPI used by the service.
type BotSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Localizer provides localized texts and menu labels.
type Localizer interface {
	Text(lang, key string, vars map[string]string) string
	Label(lang string, action models.MenuAction) string
	MatchMenu(lang, label string) (models.MenuAction, bool)
	Supported(lang string) bool
	Languages() []string
	Pick(code string) string
}

// SessionEngine advances a session by one event.
type SessionEngine interface {
	Handle(s *models.Session, ev models.Event) []models.Action
}

// SessionRepository defines the interface for session state persistence.
type SessionRepository interface {
	Update(chatID int64, fn func(s *models.Session)) *models.Session
	GetOrCreate(chatID int64) *models.Session
	Len() int
}

// LeadStore persists leads, calculations and known users.
type LeadStore interface {
	SaveLead(ctx context.Context, lead models.Lead) error
	SaveCalculation(ctx context.Context, c models.Calculation) error
	UpsertUser(ctx context.Context, u models.User) error
	CountLeads(ctx context.Context) (int, error)
	CountUsers(ctx context.Context) (int, error)
}

// LeadPublisher forwards captured leads to external consumers.
type LeadPublisher interface {
	PublishLead(ctx context.Context, lead models.Lead) error
}

// SheetAppender appends rows to a spreadsheet.
type SheetAppender interface {
	AppendRow(ctx context.Context, fields []string) error
}

// MailSender sends email to the lead recipients.
type MailSender interface {
	Send(subject, body string) error
}

// FallbackResponder answers free text the menu could not handle.
type FallbackResponder interface {
	GenerateReply(ctx context.Context, systemPrompt string, history []models.Message, text string) (string, error)
}

// DialogRepository keeps the recent fallback dialog of each chat.
type DialogRepository interface {
	Recent(ctx context.Context, chatID int64) ([]models.Message, error)
	Append(ctx context.Context, chatID int64, lang string, msgs ...models.Message)
}

// Settings holds the adapter options that are not dependencies.
type Settings struct {
	AdminChatID int64
	FloodWindow time.Duration

	// Reported by /admin.
	SheetsEnabled bool
	EmailEnabled  bool
	FeedEnabled   bool
	LLMName       string
}

// TgBotServices is the main service struct for the Telegram bot, integrating all dependencies.
type TgBotServices struct {
	Engine     SessionEngine     // Conversation state machine.
	Locale     Localizer         // Localized texts and menu labels.
	Sessions   SessionRepository // Per-chat session state.
	Dispatcher *Dispatcher       // Executes engine actions.
	Messenger  Messenger         // Direct replies for commands handled outside the engine.
	Store      LeadStore         // Optional, used for user tracking and /admin counters.
	settings   Settings
	flood      *floodGuard
	now        func() time.Time
}

// NewTgBot creates a new TgBotServices instance with the specified dependencies.
// Arguments:
//   - engine: the session engine.
//   - locale: the localization table.
//   - sessions: the session store.
//   - dispatcher: the action dispatcher.
//   - messenger: the outgoing message sender.
//   - store: the relational store; may be nil.
//   - settings: admin chat, anti-flood window and integration status.
//
// Returns a pointer to a TgBotServices.
func NewTgBot(engine SessionEngine, locale Localizer, sessions SessionRepository, dispatcher *Dispatcher, messenger Messenger, store LeadStore, settings Settings) *TgBotServices {
	return &TgBotServices{
		Engine:     engine,
		Locale:     locale,
		Sessions:   sessions,
		Dispatcher: dispatcher,
		Messenger:  messenger,
		Store:      store,
		settings:   settings,
		flood:      newFloodGuard(settings.FloodWindow),
		now:        time.Now,
	}
}

// UpdateProcessing handles incoming Telegram updates (messages and callback queries).
// Arguments:
//   - ctx: context of the polling loop; side effects outlive it.
//   - update: the Telegram update to process.
func (b *TgBotServices) UpdateProcessing(ctx context.Context, update *tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.processCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.processMessage(ctx, update.Message)
	}
}

// processCallback handles presses on inline keyboards. Only the language picker uses them.
func (b *TgBotServices) processCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	b.Messenger.AnswerCallback(cq.ID)

	code, ok := strings.CutPrefix(cq.Data, constant.CALLBACK_LANG_PREFIX)
	if !ok {
		logrus.WithField("data", cq.Data).Warn("Unknown callback data")
		return
	}
	chatID := cq.From.ID
	if cq.Message != nil && cq.Message.Chat != nil {
		chatID = cq.Message.Chat.ID
	}
	b.handleEvent(ctx, chatID, cq.From.UserName, func(*models.Session) models.Event {
		return models.LanguageSelect{Code: code}
	})
}

// processMessage decodes a message into an engine event, or answers a service command directly.
func (b *TgBotServices) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	var username, languageCode string
	if msg.From != nil {
		username = msg.From.UserName
		languageCode = msg.From.LanguageCode
	}

	if !b.flood.Allow(chatID, b.now()) {
		metrics.RecordFloodDrop()
		logrus.WithField("chatID", chatID).Debug("Message dropped by anti-flood")
		return
	}

	if msg.IsCommand() {
		logrus.Infof("Command [%s] from %s (chat %d)", msg.Text, username, chatID)
		switch msg.Command() {
		case constant.COMMAND_START:
			code := b.Locale.Pick(languageCode)
			b.handleEvent(ctx, chatID, username, func(s *models.Session) models.Event {
				if s.Language != "" {
					code = s.Language
				}
				return models.LanguageSelect{Code: code}
			})
			return
		case constant.COMMAND_LANG:
			b.handleEvent(ctx, chatID, username, func(s *models.Session) models.Event {
				s.Reset()
				return models.MenuButton{Action: models.MenuLanguage, Label: b.Locale.Label(s.Language, models.MenuLanguage)}
			})
			return
		case constant.COMMAND_CANCEL:
			b.handleEvent(ctx, chatID, username, func(*models.Session) models.Event {
				return models.Cancel{}
			})
			return
		case constant.COMMAND_ID:
			b.sendText(chatID, fmt.Sprintf("chat_id: %d", chatID))
			return
		case constant.COMMAND_ADMIN:
			b.adminStatus(ctx, chatID)
			return
		}
	}

	switch {
	case msg.Contact != nil:
		contact := models.ContactShared{
			Phone:       msg.Contact.PhoneNumber,
			DisplayName: strings.TrimSpace(msg.Contact.FirstName + " " + msg.Contact.LastName),
		}
		b.handleEvent(ctx, chatID, username, func(*models.Session) models.Event { return contact })
	case strings.TrimSpace(msg.Text) != "":
		text := msg.Text
		b.handleEvent(ctx, chatID, username, func(s *models.Session) models.Event {
			if action, ok := b.Locale.MatchMenu(s.Language, text); ok {
				return models.MenuButton{Action: action, Label: strings.TrimSpace(text)}
			}
			return models.Text{Content: text}
		})
	default:
		logrus.WithField("chatID", chatID).Debug("Ignoring message without text")
	}
}

// handleEvent runs one event through the engine under the session lock and dispatches
// the resulting actions once the new state is committed. decode sees the current session,
// so menu labels are matched in the session's language.
func (b *TgBotServices) handleEvent(ctx context.Context, chatID int64, username string, decode func(s *models.Session) models.Event) {
	var actions []models.Action
	session := b.Sessions.Update(chatID, func(s *models.Session) {
		if username != "" {
			s.Username = username
		}
		ev := decode(s)
		metrics.RecordEvent(ev.EventKind())
		actions = b.Engine.Handle(s, ev)
	})

	logrus.WithFields(logrus.Fields{
		"chatID":  chatID,
		"step":    session.Step,
		"actions": len(actions),
	}).Debug("Event handled")

	b.Dispatcher.Dispatch(ctx, chatID, actions)
	b.trackUser(ctx, session)
}

// trackUser upserts the chat into the users table.
func (b *TgBotServices) trackUser(ctx context.Context, s *models.Session) {
	if b.Store == nil {
		return
	}
	user := models.User{
		ChatID:   s.ChatID,
		Username: s.Username,
		Language: s.Language,
		LastSeen: b.now(),
	}
	b.Dispatcher.Go(ctx, "upsert_user", func(ctx context.Context) error {
		return b.Store.UpsertUser(ctx, user)
	})
}

// adminStatus reports the bot state to the administrator.
func (b *TgBotServices) adminStatus(ctx context.Context, chatID int64) {
	if b.settings.AdminChatID == 0 || chatID != b.settings.AdminChatID {
		lang := b.Sessions.GetOrCreate(chatID).Language
		b.sendText(chatID, b.Locale.Text(lang, "admin_only", nil))
		return
	}

	var sb strings.Builder
	sb.WriteString(constant.EMOJI_BAR_CHART + " Status\n")
	fmt.Fprintf(&sb, "Sessions: %d\n", b.Sessions.Len())
	if b.Store != nil {
		if leads, err := b.Store.CountLeads(ctx); err == nil {
			fmt.Fprintf(&sb, "Leads: %d\n", leads)
		} else {
			logrus.WithError(err).Error("Failed to count leads")
		}
		if users, err := b.Store.CountUsers(ctx); err == nil {
			fmt.Fprintf(&sb, "Users: %d\n", users)
		} else {
			logrus.WithError(err).Error("Failed to count users")
		}
	}
	fmt.Fprintf(&sb, "Sheets: %s\n", onOff(b.settings.SheetsEnabled))
	fmt.Fprintf(&sb, "Email: %s\n", onOff(b.settings.EmailEnabled))
	fmt.Fprintf(&sb, "Lead feed: %s\n", onOff(b.settings.FeedEnabled))
	llm := "off"
	if b.settings.LLMName != "" {
		llm = b.settings.LLMName
	}
	fmt.Fprintf(&sb, "LLM: %s", llm)
	b.sendText(chatID, sb.String())
}

func (b *TgBotServices) sendText(chatID int64, text string) {
	if err := b.Messenger.SendText(chatID, text); err != nil {
		logrus.WithError(err).WithField("chatID", chatID).Error("Error sending message")
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
