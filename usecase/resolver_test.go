package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/voxlate/voxlate/adapters/capture"
	"github.com/voxlate/voxlate/domain"
	"github.com/voxlate/voxlate/domain/entities"
	"github.com/voxlate/voxlate/domain/repositories"
)

// fakeRecognizer scripts per-language-hint transcripts and records the hints
// it was called with.
type fakeRecognizer struct {
	transcripts map[string]string
	errs        map[string]error
	hints       []string
}

func (f *fakeRecognizer) Recognize(ctx context.Context, sample repositories.AudioSample, languageCode string) (string, error) {
	f.hints = append(f.hints, languageCode)
	if err, ok := f.errs[languageCode]; ok {
		return "", err
	}
	if text, ok := f.transcripts[languageCode]; ok {
		return text, nil
	}
	return "", domain.ErrUnintelligibleAudio
}

type fakeDetector struct {
	detection repositories.Detection
	err       error
	calls     int
}

func (f *fakeDetector) DetectLanguage(ctx context.Context, text string) (repositories.Detection, error) {
	f.calls++
	return f.detection, f.err
}

func sample() repositories.AudioSample {
	return repositories.AudioSample{Data: []byte{0, 0, 0, 0}, SampleRate: 16000, Encoding: "LINEAR16"}
}

func TestResolveExplicit(t *testing.T) {
	recognizer := &fakeRecognizer{transcripts: map[string]string{"es": "hola mundo"}}
	resolver := NewResolver(recognizer, &fakeDetector{}, zaptest.NewLogger(t))

	result, err := resolver.Resolve(context.Background(), sample(), entities.ExplicitSelection("es"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if result.Text != "hola mundo" {
		t.Errorf("Expected transcript 'hola mundo', got %q", result.Text)
	}
	if result.ResolvedLanguageCode != "es" {
		t.Errorf("Expected language es, got %s", result.ResolvedLanguageCode)
	}
	if result.Source != entities.ResolutionExplicit {
		t.Errorf("Expected source %s, got %s", entities.ResolutionExplicit, result.Source)
	}
}

func TestResolveExplicitRemap(t *testing.T) {
	recognizer := &fakeRecognizer{transcripts: map[string]string{"te-IN": "telugu text"}}
	resolver := NewResolver(recognizer, &fakeDetector{}, zaptest.NewLogger(t))

	result, err := resolver.Resolve(context.Background(), sample(), entities.ExplicitSelection("te"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	// The country variant goes upstream, the base code comes back.
	if len(recognizer.hints) != 1 || recognizer.hints[0] != "te-IN" {
		t.Errorf("Expected upstream hint te-IN, got %v", recognizer.hints)
	}
	if result.ResolvedLanguageCode != "te" {
		t.Errorf("Expected resolved code te, got %s", result.ResolvedLanguageCode)
	}
}

func TestResolveExplicitError(t *testing.T) {
	recognizer := &fakeRecognizer{errs: map[string]error{"fr": domain.ErrServiceUnavailable}}
	resolver := NewResolver(recognizer, &fakeDetector{}, zaptest.NewLogger(t))

	_, err := resolver.Resolve(context.Background(), sample(), entities.ExplicitSelection("fr"))
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("Expected ErrServiceUnavailable, got %v", err)
	}
}

func TestResolveAuto(t *testing.T) {
	recognizer := &fakeRecognizer{transcripts: map[string]string{
		"":   "bonjour tout le monde",
		"fr": "bonjour tout le monde !",
	}}
	detector := &fakeDetector{detection: repositories.Detection{LanguageCode: "fr", Confidence: 0.97}}
	resolver := NewResolver(recognizer, detector, zaptest.NewLogger(t))

	result, err := resolver.Resolve(context.Background(), sample(), entities.AutoSelection())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if len(recognizer.hints) != 2 {
		t.Fatalf("Expected two recognition passes, got %d", len(recognizer.hints))
	}
	if recognizer.hints[0] != "" || recognizer.hints[1] != "fr" {
		t.Errorf("Expected hints [\"\" fr], got %v", recognizer.hints)
	}
	if result.Text != "bonjour tout le monde !" {
		t.Errorf("Expected second-pass transcript, got %q", result.Text)
	}
	if result.ResolvedLanguageCode != "fr" {
		t.Errorf("Expected language fr, got %s", result.ResolvedLanguageCode)
	}
	if result.Source != entities.ResolutionDetected {
		t.Errorf("Expected source %s, got %s", entities.ResolutionDetected, result.Source)
	}
}

func TestResolveAutoKeepsDetectedCodeVerbatim(t *testing.T) {
	recognizer := &fakeRecognizer{transcripts: map[string]string{
		"":      "ni hao",
		"zh-cn": "ni hao",
	}}
	detector := &fakeDetector{detection: repositories.Detection{LanguageCode: "zh-cn", Confidence: 0.9}}
	resolver := NewResolver(recognizer, detector, zaptest.NewLogger(t))

	result, err := resolver.Resolve(context.Background(), sample(), entities.AutoSelection())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if result.ResolvedLanguageCode != "zh-cn" {
		t.Errorf("Expected detected code zh-cn kept verbatim, got %s", result.ResolvedLanguageCode)
	}
	if got := result.ResolvedLanguageName(); got != "Chinese (Simplified)" {
		t.Errorf("Expected Chinese (Simplified), got %s", got)
	}
}

func TestResolveAutoFallbackToRaw(t *testing.T) {
	recognizer := &fakeRecognizer{
		transcripts: map[string]string{"": "raw transcript"},
		errs:        map[string]error{"de": domain.ErrServiceUnavailable},
	}
	detector := &fakeDetector{detection: repositories.Detection{LanguageCode: "de"}}
	resolver := NewResolver(recognizer, detector, zaptest.NewLogger(t))

	result, err := resolver.Resolve(context.Background(), sample(), entities.AutoSelection())
	if err != nil {
		t.Fatalf("Expected fallback, got error: %v", err)
	}

	if result.Text != "raw transcript" {
		t.Errorf("Expected raw transcript to survive, got %q", result.Text)
	}
	if result.ResolvedLanguageCode != "de" {
		t.Errorf("Expected detected code de, got %s", result.ResolvedLanguageCode)
	}
	if result.Source != entities.ResolutionFallbackRaw {
		t.Errorf("Expected source %s, got %s", entities.ResolutionFallbackRaw, result.Source)
	}
}

func TestResolveAutoFirstPassError(t *testing.T) {
	recognizer := &fakeRecognizer{errs: map[string]error{"": domain.ErrUnintelligibleAudio}}
	detector := &fakeDetector{}
	resolver := NewResolver(recognizer, detector, zaptest.NewLogger(t))

	_, err := resolver.Resolve(context.Background(), sample(), entities.AutoSelection())
	if !errors.Is(err, domain.ErrUnintelligibleAudio) {
		t.Errorf("Expected ErrUnintelligibleAudio, got %v", err)
	}
	if detector.calls != 0 {
		t.Errorf("Detector should not run when the first pass fails, ran %d times", detector.calls)
	}
}

func TestResolveAutoDetectionError(t *testing.T) {
	recognizer := &fakeRecognizer{transcripts: map[string]string{"": "some text"}}
	detector := &fakeDetector{err: domain.ErrServiceUnavailable}
	resolver := NewResolver(recognizer, detector, zaptest.NewLogger(t))

	_, err := resolver.Resolve(context.Background(), sample(), entities.AutoSelection())
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("Expected detection error to propagate, got %v", err)
	}
	// Only the first recognition pass should have run.
	if len(recognizer.hints) != 1 {
		t.Errorf("Expected one recognition pass, got %d", len(recognizer.hints))
	}
}

func TestListenPropagatesCaptureError(t *testing.T) {
	recognizer := &fakeRecognizer{}
	resolver := NewResolver(recognizer, &fakeDetector{}, zaptest.NewLogger(t))

	mock := &capture.MockCapture{Err: domain.ErrNoSpeechDetected}
	_, err := resolver.Listen(context.Background(), mock, repositories.CaptureConfig{}, entities.AutoSelection())
	if !errors.Is(err, domain.ErrNoSpeechDetected) {
		t.Errorf("Expected ErrNoSpeechDetected, got %v", err)
	}
	if len(recognizer.hints) != 0 {
		t.Errorf("Recognizer should not run when capture fails, ran %d times", len(recognizer.hints))
	}
}

func TestListenResolvesCapturedSample(t *testing.T) {
	recognizer := &fakeRecognizer{transcripts: map[string]string{"es": "hola"}}
	resolver := NewResolver(recognizer, &fakeDetector{}, zaptest.NewLogger(t))

	mock := &capture.MockCapture{Sample: sample()}
	result, err := resolver.Listen(context.Background(), mock, repositories.CaptureConfig{}, entities.ExplicitSelection("es"))
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	if result.Text != "hola" {
		t.Errorf("Expected transcript 'hola', got %q", result.Text)
	}
}
