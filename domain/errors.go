package domain

import "errors"

// Error taxonomy for the recognition/translation/synthesis pipeline. Every
// upstream failure is mapped onto one of these sentinels so callers can
// branch with errors.Is and surface a distinct, user-displayable condition.
var (
	// ErrNoSpeechDetected means no speech began within the capture's
	// bounded wait.
	ErrNoSpeechDetected = errors.New("no speech detected")

	// ErrUnintelligibleAudio means audio was captured but could not be
	// decoded into text.
	ErrUnintelligibleAudio = errors.New("could not understand audio")

	// ErrServiceUnavailable means an upstream recognition, translation, or
	// synthesis dependency was unreachable or failed.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrEmptyInput means a translation was requested for blank text.
	ErrEmptyInput = errors.New("no input text")

	// ErrNoTargetSelected means a translation was requested without a
	// target language.
	ErrNoTargetSelected = errors.New("no target language selected")

	// ErrUnsupportedSynthesisLanguage means the requested language is not
	// in the synthesizer's supported set. The upstream service is never
	// called in this case.
	ErrUnsupportedSynthesisLanguage = errors.New("language not supported for speech synthesis")

	// ErrSessionNotFound means the session referenced by a request does
	// not exist or has expired.
	ErrSessionNotFound = errors.New("session not found")
)
