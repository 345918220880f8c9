package models

// Keyboard is the reply keyboard attached to an outgoing message.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardMainMenu
	KeyboardBackOnly
	KeyboardLanguagePicker
	KeyboardPhoneRequest // share contact + back
)

// Action is an I/O request emitted by the engine and executed by the dispatcher.
type Action interface {
	ActionKind() string
}

// Reply sends text to the user. Language selects the keyboard labels.
type Reply struct {
	Text     string
	Keyboard Keyboard
	Language string
}

// NotifyAdmin sends text to the administrator chat.
type NotifyAdmin struct {
	Text string
}

// PersistLead stores a completed lead.
type PersistLead struct {
	Lead Lead
}

// PersistCalculation stores a calculator run.
type PersistCalculation struct {
	Calculation Calculation
}

// AppendSheetRow appends a row to the spreadsheet sink.
type AppendSheetRow struct {
	Fields []string
}

// SendEmail submits a message to the lead recipients.
type SendEmail struct {
	Subject string
	Body    string
}

// InvokeFallbackResponder asks the generative model to answer free text.
// History is looked up by ChatID.
type InvokeFallbackResponder struct {
	ChatID   int64
	Language string
	Text     string
}

func (Reply) ActionKind() string { return "reply" }
func (NotifyAdmin) ActionKind() string { return "notify_admin" }
func (PersistLead) ActionKind() string { return "persist_lead" }
func (PersistCalculation) ActionKind() string { return "persist_calculation" }
func (AppendSheetRow) ActionKind() string { return "append_sheet_row" }
func (SendEmail) ActionKind() string { return "send_email" }
func (InvokeFallbackResponder) ActionKind() string { return "fallback" }
