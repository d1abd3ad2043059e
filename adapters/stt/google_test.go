package stt

import (
	"errors"
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/voxlate/voxlate/domain"
)

func TestAudioEncoding(t *testing.T) {
	cases := map[string]speechpb.RecognitionConfig_AudioEncoding{
		"WAV":       speechpb.RecognitionConfig_LINEAR16,
		"LINEAR16":  speechpb.RecognitionConfig_LINEAR16,
		"FLAC":      speechpb.RecognitionConfig_FLAC,
		"MULAW":     speechpb.RecognitionConfig_MULAW,
		"OGG_OPUS":  speechpb.RecognitionConfig_OGG_OPUS,
		"WEBM_OPUS": speechpb.RecognitionConfig_WEBM_OPUS,
	}

	for input, want := range cases {
		got, err := audioEncoding(input)
		if err != nil {
			t.Errorf("audioEncoding(%q) failed: %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("audioEncoding(%q): expected %v, got %v", input, want, got)
		}
	}

	if _, err := audioEncoding("mp3"); err == nil {
		t.Error("Expected error for unsupported encoding")
	}
}

func TestMapRecognitionError(t *testing.T) {
	unavailable := []codes.Code{
		codes.Unavailable,
		codes.DeadlineExceeded,
		codes.ResourceExhausted,
		codes.Unauthenticated,
		codes.Internal,
	}
	for _, code := range unavailable {
		err := mapRecognitionError(status.Error(code, "boom"))
		if !errors.Is(err, domain.ErrServiceUnavailable) {
			t.Errorf("Code %v: expected ErrServiceUnavailable, got %v", code, err)
		}
	}

	err := mapRecognitionError(status.Error(codes.InvalidArgument, "bad config"))
	if errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("InvalidArgument should not map to unavailable: %v", err)
	}
}
