package entities

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the status of a session
type SessionStatus string

const (
	SessionStatusActive     SessionStatus = "active"
	SessionStatusExpired    SessionStatus = "expired"
	SessionStatusTerminated SessionStatus = "terminated"
)

// sessionIdleTimeout is how long a session may sit without activity before
// it is considered expired.
const sessionIdleTimeout = 24 * time.Hour

// Session is the explicit context object for one user's translation
// session. It carries the state the original interface kept ambient: the
// current input text, the resolved source language, the latest translation,
// and the append-only history. Orchestration calls receive a session and
// record their outcomes on it; nothing else mutates it.
type Session struct {
	ID           string        `json:"id"`
	CreatedAt    time.Time     `json:"created_at"`
	LastActiveAt time.Time     `json:"last_active_at"`
	ExpiresAt    time.Time     `json:"expires_at"`
	Status       SessionStatus `json:"status"`

	InputText      string `json:"input_text"`
	TranslatedText string `json:"translated_text"`
	// SourceLanguageCode is the most recently resolved input language.
	// Empty until a recognition or translation has run.
	SourceLanguageCode string `json:"source_language_code"`

	history History
	mu      sync.Mutex
}

// NewSession creates a fresh session.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    now.Add(sessionIdleTimeout),
		Status:       SessionStatusActive,
	}
}

// RecordRecognition stores a recognition outcome as the session's current
// input state.
func (s *Session) RecordRecognition(result RecognitionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InputText = result.Text
	s.SourceLanguageCode = result.ResolvedLanguageCode
	s.touch()
}

// SetInputText replaces the current input text, e.g. when the user types
// instead of speaking.
func (s *Session) SetInputText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InputText = text
	s.touch()
}

// RecordTranslation stores a completed translation and appends its record
// to the history.
func (s *Session) RecordTranslation(record TranslationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TranslatedText = record.OutputText
	s.history.Append(record)
	s.touch()
}

// HistoryRecords returns a copy of the session's translation history.
func (s *Session) HistoryRecords() []TranslationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Records()
}

// UpdateLastActive refreshes the idle-expiry window.
func (s *Session) UpdateLastActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
}

func (s *Session) touch() {
	s.LastActiveAt = time.Now()
	s.ExpiresAt = s.LastActiveAt.Add(sessionIdleTimeout)
}

// IsExpired checks if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt) || s.Status != SessionStatusActive
}

// Terminate marks the session as terminated.
func (s *Session) Terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = SessionStatusTerminated
}

// Expire marks the session as expired.
func (s *Session) Expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = SessionStatusExpired
}

// Validate validates the session data.
func (s *Session) Validate() error {
	if s.ID == "" {
		return errors.New("session id is required")
	}
	if s.Status != SessionStatusActive && s.Status != SessionStatusExpired && s.Status != SessionStatusTerminated {
		return errors.New("invalid session status")
	}
	return nil
}
