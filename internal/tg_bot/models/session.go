package models

// Step is a position in a multi-turn dialogue.
type Step string

const (
	StepIdle               Step = "idle"
	StepAwaitingName       Step = "awaiting_name"
	StepAwaitingPhone      Step = "awaiting_phone"
	StepAwaitingCity       Step = "awaiting_city"
	StepAwaitingNote       Step = "awaiting_note"
	StepAwaitingLoanInput  Step = "awaiting_loan_input"
	StepAwaitingSolarInput Step = "awaiting_solar_input"
)

// IsIntake reports whether the step belongs to the lead intake flow.
func (s Step) IsIntake() bool {
	switch s {
	case StepAwaitingName, StepAwaitingPhone, StepAwaitingCity, StepAwaitingNote:
		return true
	}
	return false
}

// IsCalculator reports whether the step waits for calculator input.
func (s Step) IsCalculator() bool {
	return s == StepAwaitingLoanInput || s == StepAwaitingSolarInput
}

// DraftLead is a lead that is still being collected.
type DraftLead struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	City  string `json:"city,omitempty"`
	Note  string `json:"note,omitempty"`
}

// Session is the per-chat conversational state.
// Draft is non-nil only while Step is an intake step.
type Session struct {
	ChatID   int64      `json:"chatID"`
	Username string     `json:"username,omitempty"`
	Language string     `json:"language,omitempty"` // empty until resolved
	Step     Step       `json:"step"`
	Draft    *DraftLead `json:"draft,omitempty"`
}

// NewSession returns an idle session with no language.
func NewSession(chatID int64) *Session {
	return &Session{ChatID: chatID, Step: StepIdle}
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	c := *s
	if s.Draft != nil {
		d := *s.Draft
		c.Draft = &d
	}
	return &c
}

// Reset drops any in-progress dialogue and returns to idle.
func (s *Session) Reset() {
	s.Step = StepIdle
	s.Draft = nil
}
