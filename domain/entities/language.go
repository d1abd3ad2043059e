package entities

import "strings"

// AutoCode is the request-time sentinel for "detect the language for me".
// It is never stored in a RecognitionResult or TranslationRecord.
const AutoCode = "auto"

// LanguageSelection is the user's choice of input language for one request.
// Either Auto is true, or Code holds a concrete language code.
type LanguageSelection struct {
	Auto bool
	Code string
}

// AutoSelection returns a selection that asks for language detection.
func AutoSelection() LanguageSelection {
	return LanguageSelection{Auto: true}
}

// ExplicitSelection returns a selection for a concrete language code.
func ExplicitSelection(code string) LanguageSelection {
	return LanguageSelection{Code: code}
}

// SelectionFromCode interprets a wire-level language code, treating the
// empty string and the auto sentinel as auto-detect.
func SelectionFromCode(code string) LanguageSelection {
	code = strings.TrimSpace(code)
	if code == "" || code == AutoCode {
		return AutoSelection()
	}
	return ExplicitSelection(code)
}

// BaseCode strips a country suffix from a language code: "te-IN" and
// "te_IN" both yield "te". Codes with no suffix pass through unchanged.
func BaseCode(code string) string {
	if idx := strings.IndexAny(code, "-_"); idx >= 0 {
		return code[:idx]
	}
	return code
}
