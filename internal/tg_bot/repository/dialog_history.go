package repository

import (
	"context"
	"sync"

	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
	"github.com/sirupsen/logrus"
)

// DialogBacking is durable storage behind DialogHistory.
type DialogBacking interface {
	SaveDialogMessage(ctx context.Context, chatID int64, lang string, msg models.Message) error
	RecentDialog(ctx context.Context, chatID int64, limit int) ([]models.Message, error)
}

// DialogHistory keeps the last turns of every fallback conversation.
//
// It is an in-memory cache bounded to limit messages per chat. When a backing store is set,
// appended messages are written through to it and a chat missing from memory is loaded from it.
// Returned slices are copies, so callers cannot modify the cached history.
type DialogHistory struct {
	history map[int64][]models.Message // chat ID -> turns, oldest first
	limit   int
	backing DialogBacking
	mu      sync.RWMutex
}

// NewDialogHistory creates a DialogHistory keeping at most limit messages per chat.
// backing may be nil.
func NewDialogHistory(limit int, backing DialogBacking) *DialogHistory {
	if limit <= 0 {
		limit = 10
	}
	return &DialogHistory{
		history: make(map[int64][]models.Message),
		limit:   limit,
		backing: backing,
	}
}

// Recent returns up to limit messages of chatID, oldest first.
func (d *DialogHistory) Recent(ctx context.Context, chatID int64) ([]models.Message, error) {
	d.mu.RLock()
	history, ok := d.history[chatID]
	d.mu.RUnlock()

	if !ok && d.backing != nil {
		loaded, err := d.backing.RecentDialog(ctx, chatID, d.limit)
		if err != nil {
			return []models.Message{}, err
		}
		d.mu.Lock()
		if _, ok = d.history[chatID]; !ok {
			d.history[chatID] = loaded
		}
		history = d.history[chatID]
		d.mu.Unlock()
	}

	historyCopy := make([]models.Message, len(history))
	copy(historyCopy, history)
	return historyCopy, nil
}

// Append adds messages to the history of chatID, dropping the oldest beyond the limit.
// Backing write failures are logged; the cache is still updated.
func (d *DialogHistory) Append(ctx context.Context, chatID int64, lang string, msgs ...models.Message) {
	d.mu.Lock()
	history := append(d.history[chatID], msgs...)
	if len(history) > d.limit {
		history = append([]models.Message(nil), history[len(history)-d.limit:]...)
	}
	d.history[chatID] = history
	d.mu.Unlock()

	if d.backing == nil {
		return
	}
	for _, msg := range msgs {
		if err := d.backing.SaveDialogMessage(ctx, chatID, lang, msg); err != nil {
			logrus.WithError(err).WithField("chatID", chatID).Error("Failed to save dialog message")
		}
	}
}

// Clear forgets the cached history of chatID.
func (d *DialogHistory) Clear(chatID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.history, chatID)
}
