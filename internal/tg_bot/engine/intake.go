package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DenisKhanov/SolarBot/internal/tg_bot/constant"
	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
)

func (e *Engine) draft(s *models.Session) *models.DraftLead {
	if s.Draft == nil {
		s.Draft = &models.DraftLead{}
	}
	return s.Draft
}

// contactPhone normalizes the number of a shared contact, which the client
// may send without the leading '+'.
func (e *Engine) contactPhone(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if !strings.HasPrefix(raw, "+") {
		if p, err := e.phone.Normalize("+" + raw); err == nil {
			return p, true
		}
	}
	p, err := e.phone.Normalize(raw)
	return p, err == nil
}

func (e *Engine) onName(s *models.Session, ev models.Event) []models.Action {
	d := e.draft(s)

	if contact, ok := ev.(models.ContactShared); ok {
		if d.Name == "" {
			d.Name = strings.TrimSpace(contact.DisplayName)
		}
		p, valid := e.contactPhone(contact.Phone)
		switch {
		case d.Name == "":
			if valid {
				d.Phone = p
			}
			return []models.Action{e.reply(s, "form_name", nil, models.KeyboardBackOnly)}
		case valid:
			d.Phone = p
			s.Step = models.StepAwaitingCity
			return []models.Action{e.reply(s, "form_city", nil, models.KeyboardBackOnly)}
		default:
			s.Step = models.StepAwaitingPhone
			return []models.Action{e.reply(s, "form_phone", nil, models.KeyboardPhoneRequest)}
		}
	}

	name, ok := inputText(ev)
	if !ok || name == "" {
		return []models.Action{e.reply(s, "form_name", nil, models.KeyboardBackOnly)}
	}
	d.Name = name
	if d.Phone != "" {
		s.Step = models.StepAwaitingCity
		return []models.Action{e.reply(s, "form_city", nil, models.KeyboardBackOnly)}
	}
	s.Step = models.StepAwaitingPhone
	return []models.Action{e.reply(s, "form_phone", nil, models.KeyboardPhoneRequest)}
}

func (e *Engine) onPhone(s *models.Session, ev models.Event) []models.Action {
	var (
		p     string
		valid bool
	)
	if contact, ok := ev.(models.ContactShared); ok {
		p, valid = e.contactPhone(contact.Phone)
	} else if text, ok := inputText(ev); ok {
		var err error
		p, err = e.phone.Normalize(text)
		valid = err == nil
	}
	if !valid {
		return []models.Action{e.reply(s, "phone_invalid", nil, models.KeyboardPhoneRequest)}
	}
	e.draft(s).Phone = p
	s.Step = models.StepAwaitingCity
	return []models.Action{e.reply(s, "form_city", nil, models.KeyboardBackOnly)}
}

func (e *Engine) onCity(s *models.Session, ev models.Event) []models.Action {
	city, ok := inputText(ev)
	if !ok || city == "" {
		return []models.Action{e.reply(s, "form_city", nil, models.KeyboardBackOnly)}
	}
	e.draft(s).City = city
	s.Step = models.StepAwaitingNote
	return []models.Action{e.reply(s, "form_note", nil, models.KeyboardBackOnly)}
}

func (e *Engine) onNote(s *models.Session, ev models.Event) []models.Action {
	note, ok := inputText(ev)
	if !ok || note == "" {
		return []models.Action{e.reply(s, "form_note", nil, models.KeyboardBackOnly)}
	}
	d := e.draft(s)
	d.Note = note

	lead := models.Lead{
		ID:        e.opts.NewID(),
		ChatID:    s.ChatID,
		Username:  s.Username,
		Language:  s.Language,
		Name:      d.Name,
		Phone:     d.Phone,
		City:      d.City,
		Note:      d.Note,
		CreatedAt: e.opts.Now().UTC(),
	}
	s.Reset()

	text := e.leadText(lead)
	return []models.Action{
		models.PersistLead{Lead: lead},
		models.NotifyAdmin{Text: text},
		models.AppendSheetRow{Fields: lead.SheetRow()},
		models.SendEmail{Subject: fmt.Sprintf("%s lead: %s", e.opts.Company.Name, lead.Name), Body: text},
		e.reply(s, "form_ok", nil, models.KeyboardMainMenu),
	}
}

// leadText is the operator-facing summary of a lead.
func (e *Engine) leadText(l models.Lead) string {
	from := strconv.FormatInt(l.ChatID, 10)
	if l.Username != "" {
		from = "@" + l.Username
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s Lead (%s)\n", constant.EMOJI_NEW, e.opts.Company.Name)
	fmt.Fprintf(&b, "Name: %s\n", l.Name)
	fmt.Fprintf(&b, "Phone: %s\n", l.Phone)
	fmt.Fprintf(&b, "City: %s\n", l.City)
	fmt.Fprintf(&b, "Note: %s\n", l.Note)
	fmt.Fprintf(&b, "From: %s\n", from)
	fmt.Fprintf(&b, "Language: %s", l.Language)
	return b.String()
}
