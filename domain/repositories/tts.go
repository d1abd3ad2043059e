package repositories

import "context"

// SpeechSynthesizer abstracts text-to-speech services. Synthesized audio is
// delivered as a stream of compressed (MP3) chunks.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string, languageCode string) (<-chan []byte, error)
	// Supports reports whether the synthesizer can speak the language.
	// Dispatch must check this before calling Synthesize; unsupported
	// languages never reach the upstream service.
	Supports(languageCode string) bool
}
