package repository

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreGetOrCreate(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "sessions.json"))

	s := store.GetOrCreate(42)
	assert.Equal(t, int64(42), s.ChatID)
	assert.Equal(t, models.StepIdle, s.Step)
	assert.Empty(t, s.Language)
	assert.Nil(t, s.Draft)
	assert.Equal(t, 1, store.Len())
}

func TestSessionStoreReturnsCopies(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "sessions.json"))

	s := store.GetOrCreate(1)
	s.Step = models.StepAwaitingCity
	s.Draft = &models.DraftLead{Name: "Ana"}
	assert.Equal(t, models.StepIdle, store.GetOrCreate(1).Step)

	store.Put(1, s)
	s.Draft.Name = "changed"
	assert.Equal(t, "Ana", store.GetOrCreate(1).Draft.Name)
}

func TestSessionStoreUpdateIsolation(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "sessions.json"))
	const perChat = 200

	var wg sync.WaitGroup
	for _, chatID := range []int64{1, 2} {
		for i := 0; i < perChat; i++ {
			wg.Add(1)
			go func(chatID int64) {
				defer wg.Done()
				store.Update(chatID, func(s *models.Session) {
					if s.Draft == nil {
						s.Step = models.StepAwaitingNote
						s.Draft = &models.DraftLead{}
					}
					s.Draft.Note += "x"
					s.Draft.Name = fmt.Sprintf("chat-%d", chatID)
				})
			}(chatID)
		}
	}
	wg.Wait()

	for _, chatID := range []int64{1, 2} {
		s := store.GetOrCreate(chatID)
		require.NotNil(t, s.Draft)
		assert.Len(t, s.Draft.Note, perChat)
		assert.Equal(t, fmt.Sprintf("chat-%d", chatID), s.Draft.Name)
	}
}

func TestSessionStoreFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	store := NewSessionStore(path)
	store.Put(7, &models.Session{Language: "es", Step: models.StepAwaitingPhone, Draft: &models.DraftLead{Name: "Ana"}})
	store.Put(8, &models.Session{Language: "de", Step: models.StepIdle})
	require.NoError(t, store.SaveBatchToFile())

	loaded := NewSessionStore(path)
	require.NoError(t, loaded.ReadFileToMemory())

	assert.Equal(t, 2, loaded.Len())
	s := loaded.GetOrCreate(7)
	assert.Equal(t, int64(7), s.ChatID)
	assert.Equal(t, "es", s.Language)
	assert.Equal(t, models.StepAwaitingPhone, s.Step)
	assert.Equal(t, "Ana", s.Draft.Name)
}

func TestSessionStoreMissingFile(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "absent.json"))
	assert.NoError(t, store.ReadFileToMemory())
	assert.Equal(t, 0, store.Len())
}
