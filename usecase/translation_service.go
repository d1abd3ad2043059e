package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/voxlate/voxlate/domain"
	"github.com/voxlate/voxlate/domain/entities"
	"github.com/voxlate/voxlate/domain/repositories"
)

// TranslationService dispatches translation requests and records outcomes
// on the session's history.
type TranslationService struct {
	translator repositories.Translator
	logger     *zap.Logger
}

// NewTranslationService creates a new translation service.
func NewTranslationService(translator repositories.Translator, logger *zap.Logger) *TranslationService {
	return &TranslationService{
		translator: translator,
		logger:     logger,
	}
}

// Translate translates the session's current input text into targetCode and
// appends exactly one record to the session history. The record's source
// language comes from what the upstream service reports, not from the code
// that was sent: in auto mode the two can differ.
func (s *TranslationService) Translate(
	ctx context.Context,
	session *entities.Session,
	targetCode string,
) (entities.TranslationRecord, error) {
	text := strings.TrimSpace(session.InputText)
	if text == "" {
		return entities.TranslationRecord{}, domain.ErrEmptyInput
	}

	targetCode = strings.TrimSpace(targetCode)
	if targetCode == "" {
		return entities.TranslationRecord{}, domain.ErrNoTargetSelected
	}

	sourceCode := session.SourceLanguageCode
	if sourceCode == "" {
		sourceCode = entities.AutoCode
	}

	result, err := s.translator.Translate(ctx, text, sourceCode, targetCode)
	if err != nil {
		return entities.TranslationRecord{}, fmt.Errorf("translate %s to %s: %w", sourceCode, targetCode, err)
	}

	reportedSource := result.DetectedSourceCode
	if reportedSource == "" && sourceCode != entities.AutoCode {
		reportedSource = sourceCode
	}

	record := entities.NewTranslationRecord(reportedSource, targetCode, text, result.Text)
	session.RecordTranslation(record)

	s.logger.Info("Translation completed",
		zap.String("sessionID", session.ID),
		zap.String("from", record.SourceLanguageName),
		zap.String("to", record.TargetLanguageName))

	return record, nil
}
