package entities

import (
	"testing"
	"time"
)

func TestSessionCreation(t *testing.T) {
	session := NewSession()

	if session.ID == "" {
		t.Error("Expected session ID to be set")
	}
	if session.Status != SessionStatusActive {
		t.Errorf("Expected status %s, got %s", SessionStatusActive, session.Status)
	}
	if session.InputText != "" || session.SourceLanguageCode != "" {
		t.Error("Expected fresh session to carry no input state")
	}
	if len(session.HistoryRecords()) != 0 {
		t.Error("Expected empty history")
	}
	if err := session.Validate(); err != nil {
		t.Errorf("Fresh session should validate: %v", err)
	}
}

func TestRecordRecognition(t *testing.T) {
	session := NewSession()

	session.RecordRecognition(RecognitionResult{
		Text:                 "hello world",
		ResolvedLanguageCode: "en",
		Source:               ResolutionDetected,
	})

	if session.InputText != "hello world" {
		t.Errorf("Expected input text set, got %q", session.InputText)
	}
	if session.SourceLanguageCode != "en" {
		t.Errorf("Expected source language en, got %s", session.SourceLanguageCode)
	}
}

func TestSetInputTextOverridesRecognition(t *testing.T) {
	session := NewSession()
	session.RecordRecognition(RecognitionResult{Text: "spoken", ResolvedLanguageCode: "en"})

	session.SetInputText("typed instead")

	if session.InputText != "typed instead" {
		t.Errorf("Expected typed text, got %q", session.InputText)
	}
	// Typing replaces the text but keeps the resolved language.
	if session.SourceLanguageCode != "en" {
		t.Errorf("Expected source language preserved, got %s", session.SourceLanguageCode)
	}
}

func TestRecordTranslation(t *testing.T) {
	session := NewSession()

	session.RecordTranslation(NewTranslationRecord("en", "es", "hello", "hola"))
	session.RecordTranslation(NewTranslationRecord("en", "fr", "hello", "bonjour"))

	if session.TranslatedText != "bonjour" {
		t.Errorf("Expected latest translation, got %q", session.TranslatedText)
	}
	records := session.HistoryRecords()
	if len(records) != 2 {
		t.Fatalf("Expected 2 history records, got %d", len(records))
	}
	if records[0].OutputText != "hola" {
		t.Errorf("Expected first record preserved, got %q", records[0].OutputText)
	}
}

func TestSessionExpiration(t *testing.T) {
	session := NewSession()

	if session.IsExpired() {
		t.Error("Session should not be expired initially")
	}

	session.ExpiresAt = time.Now().Add(-time.Hour)
	if !session.IsExpired() {
		t.Error("Session should be expired when ExpiresAt is in the past")
	}

	session = NewSession()
	session.Terminate()
	if !session.IsExpired() {
		t.Error("Terminated session should count as expired")
	}
}

func TestActivityExtendsExpiry(t *testing.T) {
	session := NewSession()
	session.ExpiresAt = time.Now().Add(time.Minute)

	session.UpdateLastActive()

	if time.Until(session.ExpiresAt) < 23*time.Hour {
		t.Error("Activity should push expiry a full idle window out")
	}
}

func TestSessionValidate(t *testing.T) {
	session := NewSession()
	session.ID = ""
	if err := session.Validate(); err == nil {
		t.Error("Expected validation failure for empty ID")
	}

	session = NewSession()
	session.Status = SessionStatus("bogus")
	if err := session.Validate(); err == nil {
		t.Error("Expected validation failure for unknown status")
	}
}
