package entities

// ResolutionSource tags how a recognition result's language was resolved.
type ResolutionSource string

const (
	// ResolutionExplicit means the user selected the language themselves.
	ResolutionExplicit ResolutionSource = "explicit"
	// ResolutionDetected means auto mode detected the language and the
	// second recognition pass succeeded.
	ResolutionDetected ResolutionSource = "detected"
	// ResolutionFallbackRaw means auto mode detected the language but the
	// second recognition pass failed, so the raw first-pass transcript was
	// kept.
	ResolutionFallbackRaw ResolutionSource = "fallback_raw"
)

// RecognitionResult is the outcome of one recognition attempt. The language
// code is always concrete; the auto sentinel never appears here.
type RecognitionResult struct {
	Text                 string           `json:"text"`
	ResolvedLanguageCode string           `json:"resolved_language_code"`
	Source               ResolutionSource `json:"source"`
}

// ResolvedLanguageName returns the display name of the resolved language.
func (r RecognitionResult) ResolvedLanguageName() string {
	return LanguageName(r.ResolvedLanguageCode)
}
