// Package repository provides storage for chat sessions, dialogue history, leads and calculations.
// Sessions live in memory and are persisted to a JSON file.
package repository

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
	"github.com/sirupsen/logrus"
)

// sessionEntry serializes access to one session.
type sessionEntry struct {
	mu      sync.Mutex
	session *models.Session
}

// SessionStore keeps chat sessions in memory and on disk.
// Every read-modify-write of a session happens under that session's own lock,
// so distinct chats never wait on each other beyond the short map lookup.
type SessionStore struct {
	sessions        map[int64]*sessionEntry // In-memory store of sessions by chat ID.
	storageFilePath string                  // File path for persisting sessions.
	mu              *sync.RWMutex           // Protects the sessions map itself
}

// NewSessionStore creates a SessionStore with an empty memory buffer.
// Arguments:
//   - storagePath: file path where sessions are persisted.
//
// Returns a pointer to a SessionStore.
func NewSessionStore(storagePath string) *SessionStore {
	return &SessionStore{
		sessions:        make(map[int64]*sessionEntry),
		storageFilePath: storagePath,
		mu:              &sync.RWMutex{},
	}
}

// entry returns the entry of chatID, creating an idle session on first use.
func (m *SessionStore) entry(chatID int64) *sessionEntry {
	m.mu.RLock()
	e, ok := m.sessions[chatID]
	m.mu.RUnlock()
	if ok {
		return e
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok = m.sessions[chatID]; !ok {
		e = &sessionEntry{session: models.NewSession(chatID)}
		m.sessions[chatID] = e
	}
	return e
}

// GetOrCreate returns a copy of the session of chatID.
func (m *SessionStore) GetOrCreate(chatID int64) *models.Session {
	e := m.entry(chatID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone()
}

// Put replaces the session of chatID with a copy of s.
func (m *SessionStore) Put(chatID int64, s *models.Session) {
	e := m.entry(chatID)
	e.mu.Lock()
	defer e.mu.Unlock()
	c := s.Clone()
	c.ChatID = chatID
	e.session = c
}

// Update runs fn on the session of chatID while holding its lock and returns a copy
// of the result. Calls for the same chat are applied one at a time.
func (m *SessionStore) Update(chatID int64, fn func(s *models.Session)) *models.Session {
	e := m.entry(chatID)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.session)
	return e.session.Clone()
}

// Len returns the number of known sessions.
func (m *SessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// snapshot copies every session under its own lock.
func (m *SessionStore) snapshot() map[int64]*models.Session {
	m.mu.RLock()
	entries := make(map[int64]*sessionEntry, len(m.sessions))
	for id, e := range m.sessions {
		entries[id] = e
	}
	m.mu.RUnlock()

	out := make(map[int64]*models.Session, len(entries))
	for id, e := range entries {
		e.mu.Lock()
		out[id] = e.session.Clone()
		e.mu.Unlock()
	}
	return out
}

// ReadFileToMemory loads sessions from the storage file into memory.
// A missing or empty file is not an error.
func (m *SessionStore) ReadFileToMemory() error {
	data, err := os.ReadFile(m.storageFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.Infof("Storage file %s does not exist, starting with empty buffer", m.storageFilePath)
			return nil
		}
		err = fmt.Errorf("failed to read storage file %s: %w", m.storageFilePath, err)
		logrus.WithError(err).Error("Error reading storage file")
		return err
	}
	if len(data) == 0 {
		logrus.Infof("Storage file %s is empty, starting with empty buffer", m.storageFilePath)
		return nil
	}

	var buffer map[int64]*models.Session
	if err = json.Unmarshal(data, &buffer); err != nil {
		err = fmt.Errorf("failed to unmarshal storage file %s: %w", m.storageFilePath, err)
		logrus.WithError(err).Error("Error parsing storage file")
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range buffer {
		if s == nil {
			continue
		}
		s.ChatID = id
		if s.Step == "" {
			s.Step = models.StepIdle
		}
		m.sessions[id] = &sessionEntry{session: s}
	}
	logrus.Infof("Loaded %d sessions from %s", len(buffer), m.storageFilePath)
	return nil
}

// SaveBatchToFile writes all sessions to a temp file and renames it over the storage file.
func (m *SessionStore) SaveBatchToFile() error {
	startTime := time.Now()
	buffer := m.snapshot()

	tempPath := m.storageFilePath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		err = fmt.Errorf("failed to open temp file %s: %w", tempPath, err)
		logrus.WithError(err).Error("Error saving batch to file")
		return err
	}

	writer := bufio.NewWriter(file)
	if err = json.NewEncoder(writer).Encode(buffer); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to encode sessions to %s: %w", tempPath, err)
	}
	if err = writer.Flush(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to flush temp file %s: %w", tempPath, err)
	}
	if err = file.Close(); err != nil {
		return fmt.Errorf("failed to close temp file %s: %w", tempPath, err)
	}

	// Atomically rename a temp file to final destination
	if err = os.Rename(tempPath, m.storageFilePath); err != nil {
		err = fmt.Errorf("failed to rename temp file %s to %s: %w", tempPath, m.storageFilePath, err)
		logrus.WithError(err).Error("Error finalizing batch save")
		return err
	}

	logrus.Infof("Saved %d sessions to %s in %v", len(buffer), m.storageFilePath, time.Since(startTime))
	return nil
}
