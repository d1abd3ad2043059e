package stt

import (
	"context"

	"go.uber.org/zap"

	"github.com/voxlate/voxlate/domain"
	"github.com/voxlate/voxlate/domain/repositories"
)

// MockRecognizer is a placeholder recognizer for keyless development. It
// returns canned transcripts sized to the audio payload.
type MockRecognizer struct {
	logger *zap.Logger
}

var _ repositories.SpeechRecognizer = (*MockRecognizer)(nil)

// NewMockRecognizer creates a new mock recognizer.
func NewMockRecognizer(logger *zap.Logger) *MockRecognizer {
	return &MockRecognizer{logger: logger}
}

// Recognize returns a canned transcript. Empty audio maps to the
// unintelligible error so the taxonomy stays exercisable without real
// credentials.
func (m *MockRecognizer) Recognize(ctx context.Context, sample repositories.AudioSample, languageCode string) (string, error) {
	m.logger.Info("Mock recognition",
		zap.Int("audioSize", len(sample.Data)),
		zap.String("language", languageCode))

	if len(sample.Data) == 0 {
		return "", domain.ErrUnintelligibleAudio
	}

	switch {
	case len(sample.Data) > 10000:
		return "Good morning, could you tell me the way to the train station?", nil
	case len(sample.Data) > 1000:
		return "Good morning, how are you?", nil
	default:
		return "Hello", nil
	}
}
