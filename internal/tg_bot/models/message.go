package models

// Roles of a dialogue turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the fallback conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
