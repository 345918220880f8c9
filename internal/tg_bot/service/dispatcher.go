package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DenisKhanov/SolarBot/internal/tg_bot/metrics"
	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
	"github.com/sirupsen/logrus"
)

const (
	defaultActionTimeout   = 30 * time.Second
	defaultFallbackTimeout = 60 * time.Second
)

// Sinks are the delivery collaborators of the dispatcher. A nil sink is skipped.
type Sinks struct {
	Store     LeadStore
	Publisher LeadPublisher
	Sheets    SheetAppender
	Mail      MailSender
	Responder FallbackResponder
	Dialogs   DialogRepository
}

// Dispatcher executes engine actions. Replies are sent synchronously and in order;
// every other action runs in the background so a slow sink never delays the user.
type Dispatcher struct {
	messenger   Messenger
	locale      Localizer
	sinks       Sinks
	adminChatID int64
	companyName string

	actionTimeout   time.Duration
	fallbackTimeout time.Duration

	wg sync.WaitGroup
}

// NewDispatcher creates a Dispatcher.
// Arguments:
//   - messenger: sends replies and admin notifications.
//   - locale: renders the fallback error text.
//   - sinks: storage and delivery collaborators.
//   - adminChatID: receiver of lead notifications; 0 disables them.
//   - companyName: used in the fallback system prompt.
//
// Returns a pointer to a Dispatcher.
func NewDispatcher(messenger Messenger, locale Localizer, sinks Sinks, adminChatID int64, companyName string) *Dispatcher {
	return &Dispatcher{
		messenger:       messenger,
		locale:          locale,
		sinks:           sinks,
		adminChatID:     adminChatID,
		companyName:     companyName,
		actionTimeout:   defaultActionTimeout,
		fallbackTimeout: defaultFallbackTimeout,
	}
}

// Dispatch executes actions produced for chatID.
func (d *Dispatcher) Dispatch(ctx context.Context, chatID int64, actions []models.Action) {
	for _, action := range actions {
		d.execute(ctx, chatID, action)
	}
}

func (d *Dispatcher) execute(ctx context.Context, chatID int64, action models.Action) {
	kind := action.ActionKind()
	switch a := action.(type) {
	case models.Reply:
		if err := d.messenger.Reply(chatID, a); err != nil {
			metrics.RecordAction(kind, "error")
			return
		}
		metrics.RecordAction(kind, "ok")

	case models.NotifyAdmin:
		if d.adminChatID == 0 {
			d.skip(kind)
			return
		}
		d.Go(ctx, kind, func(context.Context) error {
			return d.messenger.SendText(d.adminChatID, a.Text)
		})

	case models.PersistLead:
		metrics.RecordLead()
		if d.sinks.Store == nil && d.sinks.Publisher == nil {
			d.skip(kind)
			return
		}
		d.Go(ctx, kind, func(ctx context.Context) error {
			return d.persistLead(ctx, a.Lead)
		})

	case models.PersistCalculation:
		metrics.RecordCalculation(string(a.Calculation.Type))
		if d.sinks.Store == nil {
			d.skip(kind)
			return
		}
		d.Go(ctx, kind, func(ctx context.Context) error {
			return d.sinks.Store.SaveCalculation(ctx, a.Calculation)
		})

	case models.AppendSheetRow:
		if d.sinks.Sheets == nil {
			d.skip(kind)
			return
		}
		d.Go(ctx, kind, func(ctx context.Context) error {
			return d.sinks.Sheets.AppendRow(ctx, a.Fields)
		})

	case models.SendEmail:
		if d.sinks.Mail == nil {
			d.skip(kind)
			return
		}
		d.Go(ctx, kind, func(context.Context) error {
			return d.sinks.Mail.Send(a.Subject, a.Body)
		})

	case models.InvokeFallbackResponder:
		if d.sinks.Responder == nil {
			d.skip(kind)
			d.sendUnknown(chatID, a.Language)
			return
		}
		d.goWithTimeout(ctx, kind, d.fallbackTimeout, func(ctx context.Context) error {
			return d.fallback(ctx, chatID, a)
		})

	default:
		logrus.WithField("action", kind).Warn("Unknown action")
	}
}

// persistLead stores the lead and then forwards it to the lead feed.
func (d *Dispatcher) persistLead(ctx context.Context, lead models.Lead) error {
	if d.sinks.Store != nil {
		if err := d.sinks.Store.SaveLead(ctx, lead); err != nil {
			return fmt.Errorf("save lead: %w", err)
		}
	}
	if d.sinks.Publisher != nil {
		if err := d.sinks.Publisher.PublishLead(ctx, lead); err != nil {
			return fmt.Errorf("publish lead: %w", err)
		}
	}
	return nil
}

// fallback asks the generative model to answer text and records the exchange.
// A failed generation is answered with the localized "unknown" text.
func (d *Dispatcher) fallback(ctx context.Context, chatID int64, a models.InvokeFallbackResponder) error {
	var history []models.Message
	if d.sinks.Dialogs != nil {
		var err error
		if history, err = d.sinks.Dialogs.Recent(ctx, chatID); err != nil {
			logrus.WithError(err).WithField("chatID", chatID).Error("Failed to load dialog history")
			history = nil
		}
	}

	start := time.Now()
	answer, err := d.sinks.Responder.GenerateReply(ctx, systemPrompt(d.companyName, a.Language), history, a.Text)
	metrics.ObserveFallback(time.Since(start))
	if err != nil {
		d.sendUnknown(chatID, a.Language)
		return fmt.Errorf("generate reply: %w", err)
	}

	if err = d.messenger.Reply(chatID, models.Reply{Text: answer, Keyboard: models.KeyboardMainMenu, Language: a.Language}); err != nil {
		return err
	}
	if d.sinks.Dialogs != nil {
		d.sinks.Dialogs.Append(ctx, chatID, a.Language,
			models.Message{Role: models.RoleUser, Content: a.Text},
			models.Message{Role: models.RoleAssistant, Content: answer},
		)
	}
	return nil
}

func (d *Dispatcher) sendUnknown(chatID int64, lang string) {
	reply := models.Reply{Text: d.locale.Text(lang, "unknown", nil), Keyboard: models.KeyboardMainMenu, Language: lang}
	if err := d.messenger.Reply(chatID, reply); err != nil {
		logrus.WithError(err).WithField("chatID", chatID).Error("Failed to send fallback error reply")
	}
}

func (d *Dispatcher) skip(kind string) {
	metrics.RecordAction(kind, "skipped")
	logrus.WithField("action", kind).Debug("Action skipped, sink not configured")
}

// Go runs fn in the background with its own timeout. The parent context only carries
// values: cancelling it does not abort work that was already accepted.
func (d *Dispatcher) Go(ctx context.Context, kind string, fn func(ctx context.Context) error) {
	d.goWithTimeout(ctx, kind, d.actionTimeout, fn)
}

func (d *Dispatcher) goWithTimeout(ctx context.Context, kind string, timeout time.Duration, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			metrics.RecordAction(kind, "error")
			logrus.WithError(err).WithField("action", kind).Error("Action failed")
			return
		}
		metrics.RecordAction(kind, "ok")
	}()
}

// Wait blocks until every background action has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func systemPrompt(company, lang string) string {
	return fmt.Sprintf("You are the assistant of %s, a company that designs and installs solar power systems. "+
		"Answer briefly and politely in the language with ISO code %q. "+
		"If the question is not about solar energy, suggest using the menu or leaving a consultation request.", company, lang)
}
