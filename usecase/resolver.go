package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/voxlate/voxlate/domain/entities"
	"github.com/voxlate/voxlate/domain/repositories"
)

// DefaultRecognitionRemap maps generic language codes to the
// country-specific variants the recognizer requires. The remap is applied
// on the way in only; resolved results always carry the base code. Extend
// this table rather than special-casing codes elsewhere.
var DefaultRecognitionRemap = map[string]string{
	"te": "te-IN",
}

// Resolver turns a language selection plus a captured audio sample into a
// recognition result with a concrete language code. It holds no state
// across calls and never mutates the session; callers store the outcome.
type Resolver struct {
	recognizer repositories.SpeechRecognizer
	detector   repositories.LanguageDetector
	remap      map[string]string
	logger     *zap.Logger
}

// NewResolver creates a resolver using the default recognition remap table.
func NewResolver(
	recognizer repositories.SpeechRecognizer,
	detector repositories.LanguageDetector,
	logger *zap.Logger,
) *Resolver {
	return &Resolver{
		recognizer: recognizer,
		detector:   detector,
		remap:      DefaultRecognitionRemap,
		logger:     logger,
	}
}

// WithRemap replaces the recognition remap table.
func (r *Resolver) WithRemap(remap map[string]string) *Resolver {
	r.remap = remap
	return r
}

// Listen captures one utterance and resolves it. Capture errors propagate
// untouched, so a timed-out capture leaves the caller's state unchanged.
func (r *Resolver) Listen(
	ctx context.Context,
	capture repositories.AudioCapture,
	config repositories.CaptureConfig,
	selection entities.LanguageSelection,
) (entities.RecognitionResult, error) {
	sample, err := capture.Capture(ctx, config)
	if err != nil {
		return entities.RecognitionResult{}, err
	}
	return r.Resolve(ctx, sample, selection)
}

// Resolve performs at most two recognition calls and returns a result whose
// language code is always concrete, never the auto sentinel.
func (r *Resolver) Resolve(
	ctx context.Context,
	sample repositories.AudioSample,
	selection entities.LanguageSelection,
) (entities.RecognitionResult, error) {
	if selection.Auto {
		return r.resolveAuto(ctx, sample)
	}
	return r.resolveExplicit(ctx, sample, selection.Code)
}

func (r *Resolver) resolveExplicit(
	ctx context.Context,
	sample repositories.AudioSample,
	code string,
) (entities.RecognitionResult, error) {
	upstream := code
	if mapped, ok := r.remap[code]; ok {
		upstream = mapped
	}

	text, err := r.recognizer.Recognize(ctx, sample, upstream)
	if err != nil {
		return entities.RecognitionResult{}, fmt.Errorf("recognize %q: %w", upstream, err)
	}

	result := entities.RecognitionResult{
		Text:                 text,
		ResolvedLanguageCode: entities.BaseCode(upstream),
		Source:               entities.ResolutionExplicit,
	}
	r.logger.Info("Speech resolved",
		zap.String("language", result.ResolvedLanguageCode),
		zap.String("source", string(result.Source)))
	return result, nil
}

// autoOutcome is the tagged result of the detect-then-retry pipeline:
// either the detected-language second pass succeeded, or the raw first-pass
// transcript was kept.
type autoOutcome struct {
	text     string
	code     string
	fallback bool
}

func (r *Resolver) resolveAuto(
	ctx context.Context,
	sample repositories.AudioSample,
) (entities.RecognitionResult, error) {
	rawText, err := r.recognizer.Recognize(ctx, sample, "")
	if err != nil {
		return entities.RecognitionResult{}, fmt.Errorf("recognize without hint: %w", err)
	}

	detection, err := r.detector.DetectLanguage(ctx, rawText)
	if err != nil {
		return entities.RecognitionResult{}, fmt.Errorf("detect language: %w", err)
	}

	outcome := r.retryWithDetected(ctx, sample, rawText, detection.LanguageCode)

	// The detected code is kept verbatim: detectors report table codes like
	// "zh-cn" that base-stripping would turn into unknown languages.
	result := entities.RecognitionResult{
		Text:                 outcome.text,
		ResolvedLanguageCode: outcome.code,
		Source:               entities.ResolutionDetected,
	}
	if outcome.fallback {
		result.Source = entities.ResolutionFallbackRaw
	}
	r.logger.Info("Speech resolved",
		zap.String("language", result.ResolvedLanguageCode),
		zap.String("source", string(result.Source)))
	return result, nil
}

// retryWithDetected runs the second recognition pass with the detected
// language. A failure here degrades to the raw transcript instead of
// failing the whole operation; this is the only locally recovered error in
// the pipeline.
func (r *Resolver) retryWithDetected(
	ctx context.Context,
	sample repositories.AudioSample,
	rawText string,
	detectedCode string,
) autoOutcome {
	text, err := r.recognizer.Recognize(ctx, sample, detectedCode)
	if err != nil {
		r.logger.Warn("Second-pass recognition failed, keeping raw transcript",
			zap.String("detectedLanguage", detectedCode),
			zap.Error(err))
		return autoOutcome{text: rawText, code: detectedCode, fallback: true}
	}
	return autoOutcome{text: text, code: detectedCode}
}
