package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/voxlate/voxlate/domain"
	"github.com/voxlate/voxlate/domain/entities"
	"github.com/voxlate/voxlate/domain/repositories"
)

// SynthesisService dispatches text-to-speech requests. It guards the
// upstream service behind the synthesizer's supported-language set and
// makes a single attempt per request.
type SynthesisService struct {
	synthesizer repositories.SpeechSynthesizer
	logger      *zap.Logger
}

// NewSynthesisService creates a new synthesis service.
func NewSynthesisService(synthesizer repositories.SpeechSynthesizer, logger *zap.Logger) *SynthesisService {
	return &SynthesisService{
		synthesizer: synthesizer,
		logger:      logger,
	}
}

// Supports reports whether the synthesizer can speak the language.
func (s *SynthesisService) Supports(languageCode string) bool {
	return s.synthesizer.Supports(languageCode)
}

// Synthesize produces spoken audio for the text in the given language.
// Unsupported languages fail before any upstream call.
func (s *SynthesisService) Synthesize(ctx context.Context, text, languageCode string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyInput
	}

	if !s.synthesizer.Supports(languageCode) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedSynthesisLanguage, entities.LanguageName(languageCode))
	}

	audioChan, err := s.synthesizer.Synthesize(ctx, text, languageCode)
	if err != nil {
		return nil, fmt.Errorf("synthesize %s: %w", languageCode, err)
	}

	var buf bytes.Buffer
	for chunk := range audioChan {
		buf.Write(chunk)
	}

	if buf.Len() == 0 {
		return nil, fmt.Errorf("synthesize %s: empty audio stream: %w", languageCode, domain.ErrServiceUnavailable)
	}

	s.logger.Info("Synthesis completed",
		zap.String("language", languageCode),
		zap.Int("audioBytes", buf.Len()))

	return buf.Bytes(), nil
}
