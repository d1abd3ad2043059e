package repositories

import "context"

// AudioSample is one captured utterance ready for recognition.
type AudioSample struct {
	Data       []byte `json:"data"`
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
}

// SpeechRecognizer abstracts speech recognition services.
type SpeechRecognizer interface {
	// Recognize converts an audio sample to text. An empty languageCode
	// means no language hint; the service picks its own default.
	Recognize(ctx context.Context, sample AudioSample, languageCode string) (string, error)
}
