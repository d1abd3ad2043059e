package tts

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/voxlate/voxlate/domain/entities"
	"github.com/voxlate/voxlate/domain/repositories"
)

// MockSynthesizer is a placeholder synthesizer for keyless development. It
// emits a short fake MP3 payload and supports the default language set.
type MockSynthesizer struct {
	languages map[string]bool
	logger    *zap.Logger
}

var _ repositories.SpeechSynthesizer = (*MockSynthesizer)(nil)

// NewMockSynthesizer creates a new mock synthesizer.
func NewMockSynthesizer(logger *zap.Logger) *MockSynthesizer {
	languages := make(map[string]bool, len(defaultLanguages))
	for _, code := range defaultLanguages {
		languages[code] = true
	}
	return &MockSynthesizer{languages: languages, logger: logger}
}

// Supports reports membership in the default language set.
func (m *MockSynthesizer) Supports(languageCode string) bool {
	code := strings.ToLower(languageCode)
	return m.languages[code] || m.languages[entities.BaseCode(code)]
}

// Synthesize streams a fake audio payload in small chunks.
func (m *MockSynthesizer) Synthesize(ctx context.Context, text string, languageCode string) (<-chan []byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	m.logger.Info("Mock synthesis",
		zap.String("language", languageCode),
		zap.Int("textLength", len(text)))

	audioChan := make(chan []byte, 4)
	go func() {
		defer close(audioChan)
		payload := []byte("ID3mock-audio:" + text)
		for len(payload) > 0 {
			n := 8
			if n > len(payload) {
				n = len(payload)
			}
			select {
			case audioChan <- payload[:n]:
				payload = payload[n:]
			case <-ctx.Done():
				return
			}
		}
	}()
	return audioChan, nil
}
