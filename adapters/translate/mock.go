package translate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/voxlate/voxlate/domain/entities"
	"github.com/voxlate/voxlate/domain/repositories"
)

// MockTranslator is a placeholder translator for keyless development. It
// echoes the input annotated with the target language and always reports
// English as the detected source.
type MockTranslator struct {
	logger *zap.Logger
}

var (
	_ repositories.Translator       = (*MockTranslator)(nil)
	_ repositories.LanguageDetector = (*MockTranslator)(nil)
)

// NewMockTranslator creates a new mock translator.
func NewMockTranslator(logger *zap.Logger) *MockTranslator {
	return &MockTranslator{logger: logger}
}

// Translate echoes the text tagged with the target language name.
func (m *MockTranslator) Translate(ctx context.Context, text, sourceCode, targetCode string) (repositories.Translation, error) {
	m.logger.Info("Mock translation",
		zap.String("source", sourceCode),
		zap.String("target", targetCode))

	detected := sourceCode
	if detected == "" || detected == entities.AutoCode {
		detected = "en"
	}

	return repositories.Translation{
		Text:               fmt.Sprintf("[%s] %s", entities.LanguageName(targetCode), text),
		DetectedSourceCode: detected,
	}, nil
}

// DetectLanguage always reports English.
func (m *MockTranslator) DetectLanguage(ctx context.Context, text string) (repositories.Detection, error) {
	return repositories.Detection{LanguageCode: "en", Confidence: 0.5}, nil
}
