package api

import "time"

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CreateSessionResponse is returned by POST /api/v1/sessions.
type CreateSessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RecognizeRequest carries one pre-recorded utterance for recognition.
type RecognizeRequest struct {
	AudioData  string `json:"audio_data"` // base64 encoded
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
	Language   string `json:"language"` // concrete code, or "auto"/empty
}

// TranslateRequest translates the session's input text (optionally replaced
// by Text) into Target.
type TranslateRequest struct {
	Text   string `json:"text,omitempty"`
	Target string `json:"target"`
}

// TranslateResponse is the recorded translation.
type TranslateResponse struct {
	Timestamp      string `json:"timestamp"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	InputText      string `json:"input_text"`
	OutputText     string `json:"output_text"`
}

// SynthesizeRequest asks for spoken audio of the text.
type SynthesizeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// HistoryResponse lists the session's translation records, oldest first.
type HistoryResponse struct {
	Records []TranslateResponse `json:"records"`
}
