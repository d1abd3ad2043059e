package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/voxlate/voxlate/domain"
	"github.com/voxlate/voxlate/domain/entities"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supported message types
const (
	MessageTypeListeningStart    MessageType = "listening_start"
	MessageTypeListeningEnd      MessageType = "listening_end"
	MessageTypeRecognitionResult MessageType = "recognition_result"
	MessageTypeStatus            MessageType = "status"
	MessageTypePing              MessageType = "ping"
	MessageTypePong              MessageType = "pong"
	MessageTypeError             MessageType = "error"
)

// Capture stages reported to the client while a listen is in flight.
const (
	StageCalibrating = "calibrating"
	StageListening   = "listening"
	StageRecognizing = "recognizing"
)

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp"`
	MessageID string      `json:"message_id,omitempty"`
}

// ListeningStartMessage asks the server to capture and recognize one
// utterance. Language is a concrete code or the auto sentinel/empty for
// auto-detect.
type ListeningStartMessage struct {
	BaseMessage
	Language   string `json:"language,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"`
	Encoding   string `json:"encoding,omitempty"`
}

// ListeningEndMessage signals that the client has stopped streaming audio.
type ListeningEndMessage struct {
	BaseMessage
}

// RecognitionResultMessage carries a completed recognition back to the
// client.
type RecognitionResultMessage struct {
	BaseMessage
	Text         string `json:"text"`
	LanguageCode string `json:"language_code"`
	LanguageName string `json:"language_name"`
	Source       string `json:"source"`
}

// StatusMessage reports capture progress (calibrating, listening,
// recognizing).
type StatusMessage struct {
	BaseMessage
	Stage string `json:"stage"`
}

// PingMessage represents a ping message for connection health check
type PingMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// PongMessage represents a pong response
type PongMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// MessageValidator provides validation for WebSocket messages
type MessageValidator struct{}

// NewMessageValidator creates a new message validator
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{}
}

// ValidateMessage validates an incoming message
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	if base.Timestamp == "" {
		base.Timestamp = time.Now().Format(time.RFC3339)
	}

	switch base.Type {
	case MessageTypeListeningStart:
		var msg ListeningStartMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid listening_start message: %w", err)
		}
		if err := v.validateListeningStart(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MessageTypeListeningEnd:
		var msg ListeningEndMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid listening_end message: %w", err)
		}
		return &msg, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

// validateListeningStart validates listening_start message fields
func (v *MessageValidator) validateListeningStart(msg *ListeningStartMessage) error {
	if msg.SampleRate != 0 && (msg.SampleRate < 8000 || msg.SampleRate > 48000) {
		return fmt.Errorf("sample_rate must be between 8000 and 48000")
	}

	if msg.Encoding != "" {
		validEncodings := map[string]bool{
			"pcm": true, "wav": true, "LINEAR16": true,
		}
		if !validEncodings[msg.Encoding] {
			return fmt.Errorf("encoding must be one of: pcm, wav, LINEAR16")
		}
	}

	if msg.Language != "" && msg.Language != entities.AutoCode {
		if _, ok := entities.Languages[msg.Language]; !ok {
			return fmt.Errorf("unknown language code: %s", msg.Language)
		}
	}

	return nil
}

// ErrorCode maps pipeline errors onto wire-level error codes the client can
// branch on.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoSpeechDetected):
		return "no_speech_detected"
	case errors.Is(err, domain.ErrUnintelligibleAudio):
		return "unintelligible_audio"
	case errors.Is(err, domain.ErrServiceUnavailable):
		return "service_unavailable"
	case errors.Is(err, domain.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, domain.ErrNoTargetSelected):
		return "no_target_selected"
	case errors.Is(err, domain.ErrUnsupportedSynthesisLanguage):
		return "unsupported_synthesis_language"
	case errors.Is(err, domain.ErrSessionNotFound):
		return "session_not_found"
	default:
		return "internal_error"
	}
}

// CreateErrorMessage creates a standardized error message
func CreateErrorMessage(code, message, details string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeError,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Code:    code,
		Message: message,
		Details: details,
	}
}

// CreatePongMessage creates a pong response message
func CreatePongMessage(data string) *PongMessage {
	return &PongMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypePong,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Data: data,
	}
}

// CreateStatusMessage creates a capture progress message
func CreateStatusMessage(stage string) *StatusMessage {
	return &StatusMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeStatus,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Stage: stage,
	}
}

// CreateRecognitionResultMessage packages a recognition result for the wire
func CreateRecognitionResultMessage(result entities.RecognitionResult) *RecognitionResultMessage {
	return &RecognitionResultMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeRecognitionResult,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Text:         result.Text,
		LanguageCode: result.ResolvedLanguageCode,
		LanguageName: result.ResolvedLanguageName(),
		Source:       string(result.Source),
	}
}
