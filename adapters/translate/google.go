package translate

import (
	"context"
	"fmt"
	"strings"

	gtranslate "cloud.google.com/go/translate"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/voxlate/voxlate/domain"
	"github.com/voxlate/voxlate/domain/entities"
	"github.com/voxlate/voxlate/domain/repositories"
)

// GoogleTranslator implements Translator and LanguageDetector using the
// Google Cloud Translation API.
type GoogleTranslator struct {
	client *gtranslate.Client
	logger *zap.Logger
}

var (
	_ repositories.Translator       = (*GoogleTranslator)(nil)
	_ repositories.LanguageDetector = (*GoogleTranslator)(nil)
)

// NewGoogleTranslator creates a translator backed by a Cloud Translation
// client.
func NewGoogleTranslator(ctx context.Context, logger *zap.Logger) (*GoogleTranslator, error) {
	client, err := gtranslate.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create translation client: %w", err)
	}
	return &GoogleTranslator{client: client, logger: logger}, nil
}

// Close releases the underlying client connection.
func (g *GoogleTranslator) Close() error {
	return g.client.Close()
}

// Translate translates text into targetCode. When sourceCode is the auto
// sentinel the service detects the source itself; the detected code is
// returned either way.
func (g *GoogleTranslator) Translate(ctx context.Context, text, sourceCode, targetCode string) (repositories.Translation, error) {
	target, err := language.Parse(targetCode)
	if err != nil {
		return repositories.Translation{}, fmt.Errorf("invalid target language %q: %w", targetCode, err)
	}

	opts := &gtranslate.Options{Format: gtranslate.Text}
	if sourceCode != "" && sourceCode != entities.AutoCode {
		source, err := language.Parse(sourceCode)
		if err != nil {
			return repositories.Translation{}, fmt.Errorf("invalid source language %q: %w", sourceCode, err)
		}
		opts.Source = source
	}

	resp, err := g.client.Translate(ctx, []string{text}, target, opts)
	if err != nil {
		return repositories.Translation{}, fmt.Errorf("translation service: %v: %w", err, domain.ErrServiceUnavailable)
	}
	if len(resp) == 0 {
		return repositories.Translation{}, fmt.Errorf("translation service returned no result: %w", domain.ErrServiceUnavailable)
	}

	var detected string
	if sourceCode != "" && sourceCode != entities.AutoCode {
		detected = sourceCode
	}
	if resp[0].Source != (language.Tag{}) {
		detected = normalizeTag(resp[0].Source)
	}

	g.logger.Debug("Translation completed",
		zap.String("source", detected),
		zap.String("target", targetCode))

	return repositories.Translation{
		Text:               resp[0].Text,
		DetectedSourceCode: detected,
	}, nil
}

// DetectLanguage identifies the language of the text.
func (g *GoogleTranslator) DetectLanguage(ctx context.Context, text string) (repositories.Detection, error) {
	resp, err := g.client.DetectLanguage(ctx, []string{text})
	if err != nil {
		return repositories.Detection{}, fmt.Errorf("detection service: %v: %w", err, domain.ErrServiceUnavailable)
	}
	if len(resp) == 0 || len(resp[0]) == 0 {
		return repositories.Detection{}, fmt.Errorf("detection service returned no result: %w", domain.ErrServiceUnavailable)
	}

	best := resp[0][0]
	for _, candidate := range resp[0] {
		if candidate.Confidence > best.Confidence {
			best = candidate
		}
	}

	return repositories.Detection{
		LanguageCode: normalizeTag(best.Language),
		Confidence:   best.Confidence,
	}, nil
}

// normalizeTag renders a BCP 47 tag in the lowercase form the language
// table uses ("zh-CN" -> "zh-cn").
func normalizeTag(tag language.Tag) string {
	return strings.ToLower(tag.String())
}
