package repositories

import "context"

// Detection is a language-detection verdict. Confidence is reported by the
// service but unused by the orchestration flow.
type Detection struct {
	LanguageCode string  `json:"language_code"`
	Confidence   float64 `json:"confidence"`
}

// LanguageDetector abstracts text language identification.
type LanguageDetector interface {
	DetectLanguage(ctx context.Context, text string) (Detection, error)
}

// Translation is a machine-translation result. DetectedSourceCode is the
// source language the service actually translated from, which may differ
// from the requested one when the request used the auto sentinel.
type Translation struct {
	Text               string `json:"text"`
	DetectedSourceCode string `json:"detected_source_code"`
}

// Translator abstracts machine translation services. sourceCode may be the
// auto sentinel; targetCode must be concrete.
type Translator interface {
	Translate(ctx context.Context, text, sourceCode, targetCode string) (Translation, error)
}
