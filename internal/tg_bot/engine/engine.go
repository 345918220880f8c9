// Package engine implements the conversational state machine of the bot.
//
// Handle maps a session and one inbound event to the session's next state and a list of
// actions. It performs no I/O: delivery, storage and generation are requested through the
// returned actions and carried out by the caller.
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/DenisKhanov/SolarBot/internal/tg_bot/calc"
	"github.com/DenisKhanov/SolarBot/internal/tg_bot/constant"
	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
	"github.com/google/uuid"
)

// Locale renders localized texts.
type Locale interface {
	Text(lang, key string, vars map[string]string) string
	Supported(lang string) bool
}

// PhoneNormalizer extracts a canonical phone number from free text.
type PhoneNormalizer interface {
	Normalize(text string) (string, error)
}

// Company holds the contact details shown to users.
type Company struct {
	Name     string
	Phone    string
	Website  string
	WhatsApp string
}

// Options tune the engine.
type Options struct {
	Company Company
	Solar   calc.SolarParams

	// FallbackEnabled routes unmatched idle text to the generative responder.
	FallbackEnabled bool
	// LanguageChangeResets makes the "change language" button forget the current
	// language, so the next event is answered with the picker.
	LanguageChangeResets bool
	// SheetLogCalculations appends calculator runs to the spreadsheet.
	SheetLogCalculations bool

	Now   func() time.Time
	NewID func() uuid.UUID
}

// Engine is safe for concurrent use; it holds no per-session state.
type Engine struct {
	locale Locale
	phone  PhoneNormalizer
	opts   Options
}

// New creates an Engine.
func New(locale Locale, phone PhoneNormalizer, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.New
	}
	if opts.Solar == (calc.SolarParams{}) {
		opts.Solar = calc.DefaultSolarParams()
	}
	return &Engine{locale: locale, phone: phone, opts: opts}
}

// Handle applies ev to s and returns the actions to execute, in order.
// s is mutated in place; the caller must hold the session's lock.
func (e *Engine) Handle(s *models.Session, ev models.Event) []models.Action {
	if sel, ok := ev.(models.LanguageSelect); ok {
		return e.selectLanguage(s, sel.Code)
	}
	if s.Language == "" {
		return []models.Action{languagePicker()}
	}
	if isCancel(ev) {
		s.Reset()
		return []models.Action{e.reply(s, "menu", nil, models.KeyboardMainMenu)}
	}

	switch s.Step {
	case models.StepAwaitingName:
		return e.onName(s, ev)
	case models.StepAwaitingPhone:
		return e.onPhone(s, ev)
	case models.StepAwaitingCity:
		return e.onCity(s, ev)
	case models.StepAwaitingNote:
		return e.onNote(s, ev)
	case models.StepAwaitingLoanInput:
		return e.onLoan(s, ev)
	case models.StepAwaitingSolarInput:
		return e.onSolar(s, ev)
	default:
		s.Reset()
		return e.onIdle(s, ev)
	}
}

func isCancel(ev models.Event) bool {
	switch ev := ev.(type) {
	case models.Cancel:
		return true
	case models.MenuButton:
		return ev.Action == models.MenuBack
	}
	return false
}

func (e *Engine) selectLanguage(s *models.Session, code string) []models.Action {
	if !e.locale.Supported(code) {
		return []models.Action{languagePicker()}
	}
	s.Language = code
	s.Reset()
	return []models.Action{e.reply(s, "welcome", map[string]string{"company": e.opts.Company.Name}, models.KeyboardMainMenu)}
}

func (e *Engine) onIdle(s *models.Session, ev models.Event) []models.Action {
	btn, ok := ev.(models.MenuButton)
	if !ok {
		if text, isText := ev.(models.Text); isText && e.opts.FallbackEnabled {
			return []models.Action{models.InvokeFallbackResponder{ChatID: s.ChatID, Language: s.Language, Text: text.Content}}
		}
		return []models.Action{e.reply(s, "unknown", nil, models.KeyboardMainMenu)}
	}

	c := e.opts.Company
	switch btn.Action {
	case models.MenuAbout:
		return []models.Action{e.reply(s, "about_text", map[string]string{"company": c.Name}, models.KeyboardMainMenu)}
	case models.MenuServices:
		return []models.Action{e.reply(s, "services_info", nil, models.KeyboardMainMenu)}
	case models.MenuWebsite:
		return []models.Action{e.reply(s, "website_text", map[string]string{"url": c.Website}, models.KeyboardMainMenu)}
	case models.MenuWhatsApp:
		return []models.Action{e.reply(s, "whatsapp_text", map[string]string{"url": whatsAppLink(c.WhatsApp)}, models.KeyboardMainMenu)}
	case models.MenuCall:
		return []models.Action{e.reply(s, "call_text", map[string]string{"phone": c.Phone}, models.KeyboardMainMenu)}
	case models.MenuLanguage:
		if e.opts.LanguageChangeResets {
			s.Language = ""
		}
		return []models.Action{languagePicker()}
	case models.MenuConsult:
		s.Step = models.StepAwaitingName
		s.Draft = &models.DraftLead{}
		return []models.Action{e.reply(s, "form_name", nil, models.KeyboardBackOnly)}
	case models.MenuLoan:
		s.Step = models.StepAwaitingLoanInput
		return []models.Action{e.reply(s, "loan_prompt", nil, models.KeyboardBackOnly)}
	case models.MenuSolar:
		s.Step = models.StepAwaitingSolarInput
		return []models.Action{e.reply(s, "solar_prompt", map[string]string{"psh": calc.Number(e.opts.Solar.DefaultPSH)}, models.KeyboardBackOnly)}
	}
	return []models.Action{e.reply(s, "unknown", nil, models.KeyboardMainMenu)}
}

func (e *Engine) reply(s *models.Session, key string, vars map[string]string, kb models.Keyboard) models.Reply {
	return models.Reply{Text: e.locale.Text(s.Language, key, vars), Keyboard: kb, Language: s.Language}
}

func languagePicker() models.Reply {
	return models.Reply{Text: constant.LANGUAGE_PICKER_TEXT, Keyboard: models.KeyboardLanguagePicker}
}

// inputText returns the text carried by ev in a data-collecting step. A menu press
// counts as its label, since free text is consumed as data first.
func inputText(ev models.Event) (string, bool) {
	switch ev := ev.(type) {
	case models.Text:
		return strings.TrimSpace(ev.Content), true
	case models.MenuButton:
		return strings.TrimSpace(ev.Label), true
	}
	return "", false
}

func whatsAppLink(number string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if digits == "" {
		return number
	}
	return fmt.Sprintf("https://wa.me/%s", digits)
}
