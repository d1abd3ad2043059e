package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/voxlate/voxlate/domain"
	"github.com/voxlate/voxlate/domain/entities"
	"github.com/voxlate/voxlate/domain/repositories"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiTranslator implements Translator and LanguageDetector by prompting
// Gemini. It is an alternative backend for deployments without a Cloud
// Translation project, selected with TRANSLATOR_PROVIDER=gemini.
type GeminiTranslator struct {
	client *genai.Client
	logger *zap.Logger
	model  string
}

var (
	_ repositories.Translator       = (*GeminiTranslator)(nil)
	_ repositories.LanguageDetector = (*GeminiTranslator)(nil)
)

// NewGeminiTranslator creates a Gemini-backed translator. Requires
// GEMINI_API_KEY.
func NewGeminiTranslator(ctx context.Context, logger *zap.Logger) (*GeminiTranslator, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiTranslator{client: client, logger: logger, model: model}, nil
}

type geminiTranslation struct {
	Translation    string `json:"translation"`
	SourceLanguage string `json:"source_language"`
}

// Translate asks the model for a translation plus the source language it
// translated from, as a JSON object.
func (g *GeminiTranslator) Translate(ctx context.Context, text, sourceCode, targetCode string) (repositories.Translation, error) {
	targetName := entities.LanguageName(targetCode)
	if targetName == "Unknown" {
		targetName = targetCode
	}

	var sourceClause string
	if sourceCode == "" || sourceCode == entities.AutoCode {
		sourceClause = "Identify the source language yourself."
	} else {
		sourceClause = fmt.Sprintf("The source language is %s.", entities.LanguageName(sourceCode))
	}

	prompt := fmt.Sprintf(`Translate the following text into %s. %s
Respond with a JSON object of the form
{"translation": "...", "source_language": "<ISO 639-1 code>"} and nothing else.

Text:
%s`, targetName, sourceClause, text)

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(float32(0.1)),
	}

	response, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return repositories.Translation{}, fmt.Errorf("gemini: %v: %w", err, domain.ErrServiceUnavailable)
	}

	raw := responseText(response)
	if raw == "" {
		return repositories.Translation{}, fmt.Errorf("gemini returned no content: %w", domain.ErrServiceUnavailable)
	}

	var parsed geminiTranslation
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return repositories.Translation{}, fmt.Errorf("gemini returned malformed JSON: %w", err)
	}

	detected := strings.ToLower(strings.TrimSpace(parsed.SourceLanguage))
	if detected == "" && sourceCode != entities.AutoCode {
		detected = sourceCode
	}

	g.logger.Debug("Gemini translation completed",
		zap.String("source", detected),
		zap.String("target", targetCode))

	return repositories.Translation{
		Text:               parsed.Translation,
		DetectedSourceCode: detected,
	}, nil
}

// DetectLanguage asks the model for the ISO 639-1 code of the text.
func (g *GeminiTranslator) DetectLanguage(ctx context.Context, text string) (repositories.Detection, error) {
	prompt := fmt.Sprintf(`Identify the language of the following text.
Respond with a JSON object of the form {"language": "<ISO 639-1 code>"} and nothing else.

Text:
%s`, text)

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(float32(0)),
	}

	response, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return repositories.Detection{}, fmt.Errorf("gemini: %v: %w", err, domain.ErrServiceUnavailable)
	}

	raw := responseText(response)
	if raw == "" {
		return repositories.Detection{}, fmt.Errorf("gemini returned no content: %w", domain.ErrServiceUnavailable)
	}

	var parsed struct {
		Language string `json:"language"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return repositories.Detection{}, fmt.Errorf("gemini returned malformed JSON: %w", err)
	}

	code := strings.ToLower(strings.TrimSpace(parsed.Language))
	if code == "" {
		return repositories.Detection{}, fmt.Errorf("gemini returned no language code: %w", domain.ErrServiceUnavailable)
	}

	// Confidence is not part of the model's answer; report certainty so
	// downstream consumers treating it as advisory see a concrete value.
	return repositories.Detection{LanguageCode: code, Confidence: 1}, nil
}

func responseText(response *genai.GenerateContentResponse) string {
	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range response.Candidates[0].Content.Parts {
		text += part.Text
	}
	return strings.TrimSpace(text)
}
