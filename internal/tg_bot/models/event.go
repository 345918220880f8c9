package models

// MenuAction is a language independent identifier of a main menu button.
type MenuAction string

const (
	MenuConsult  MenuAction = "consult"
	MenuLoan     MenuAction = "loan"
	MenuSolar    MenuAction = "solar"
	MenuAbout    MenuAction = "about"
	MenuServices MenuAction = "services"
	MenuWebsite  MenuAction = "website"
	MenuWhatsApp MenuAction = "whatsapp"
	MenuCall     MenuAction = "call"
	MenuLanguage MenuAction = "language"
	MenuBack     MenuAction = "back"
)

// Event is an inbound user input decoded by the transport adapter.
type Event interface {
	EventKind() string
}

// LanguageSelect picks the interface language.
type LanguageSelect struct {
	Code string
}

// Text is free text typed by the user.
type Text struct {
	Content string
}

// ContactShared carries a contact card sent through the share contact button.
type ContactShared struct {
	Phone       string
	DisplayName string
}

// MenuButton is a main menu press. Label keeps the text that was shown on the button.
type MenuButton struct {
	Action MenuAction
	Label  string
}

// Cancel aborts the current dialogue.
type Cancel struct{}

func (LanguageSelect) EventKind() string { return "language_select" }
func (Text) EventKind() string { return "text" }
func (ContactShared) EventKind() string { return "contact" }
func (MenuButton) EventKind() string { return "menu_button" }
func (Cancel) EventKind() string { return "cancel" }
