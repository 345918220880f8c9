package models

import "time"

// User is the last known profile of a chat, upserted on every inbound update.
type User struct {
	ChatID   int64     `json:"chatID"`   // Идентификатор чата
	Username string    `json:"username"` // Telegram username without '@', may be empty
	Language string    `json:"language"` // Выбранный язык интерфейса
	LastSeen time.Time `json:"lastSeen"`
}
