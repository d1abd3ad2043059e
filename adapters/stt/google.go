package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/voxlate/voxlate/domain"
	"github.com/voxlate/voxlate/domain/repositories"
)

// defaultRecognitionLanguage is used when the caller passes no language
// hint. The Speech API requires a language code on every request, so the
// hint-less first pass of auto mode runs against this default.
const defaultRecognitionLanguage = "en-US"

// GoogleRecognizer implements SpeechRecognizer using Google Cloud
// Speech-to-Text.
type GoogleRecognizer struct {
	client *speech.Client
	logger *zap.Logger
}

var _ repositories.SpeechRecognizer = (*GoogleRecognizer)(nil)

// NewGoogleRecognizer creates a recognizer backed by a Google Cloud Speech
// client. Credentials come from the usual GOOGLE_APPLICATION_CREDENTIALS
// environment.
func NewGoogleRecognizer(ctx context.Context, logger *zap.Logger) (*GoogleRecognizer, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return &GoogleRecognizer{client: client, logger: logger}, nil
}

// Close releases the underlying client connection.
func (g *GoogleRecognizer) Close() error {
	return g.client.Close()
}

// Recognize converts one audio sample to text. Empty results map to
// domain.ErrUnintelligibleAudio; transport failures map to
// domain.ErrServiceUnavailable.
func (g *GoogleRecognizer) Recognize(ctx context.Context, sample repositories.AudioSample, languageCode string) (string, error) {
	encoding, err := audioEncoding(sample.Encoding)
	if err != nil {
		return "", err
	}

	config := &speechpb.RecognitionConfig{
		Encoding:        encoding,
		SampleRateHertz: int32(sample.SampleRate),
		LanguageCode:    languageCode,
	}
	if config.LanguageCode == "" {
		config.LanguageCode = defaultRecognitionLanguage
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: config,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: sample.Data},
		},
	})
	if err != nil {
		return "", mapRecognitionError(err)
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			parts = append(parts, result.Alternatives[0].Transcript)
		}
	}
	transcript := strings.TrimSpace(strings.Join(parts, " "))
	if transcript == "" {
		return "", domain.ErrUnintelligibleAudio
	}

	g.logger.Debug("Recognition completed",
		zap.String("language", config.LanguageCode),
		zap.Int("audioBytes", len(sample.Data)))

	return transcript, nil
}

// mapRecognitionError folds gRPC failures into the error taxonomy. Anything
// that looks like the service being unreachable or overloaded is reported
// as unavailable; other codes keep their original message.
func mapRecognitionError(err error) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Unauthenticated, codes.Internal:
		return fmt.Errorf("speech service: %v: %w", err, domain.ErrServiceUnavailable)
	default:
		return fmt.Errorf("speech service: %w", err)
	}
}

// audioEncoding converts a sample's encoding string to the Speech API enum.
func audioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch encoding {
	case "WAV", "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "AMR":
		return speechpb.RecognitionConfig_AMR, nil
	case "AMR_WB":
		return speechpb.RecognitionConfig_AMR_WB, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}
