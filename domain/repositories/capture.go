package repositories

import (
	"context"
	"time"
)

// CaptureConfig bounds one audio capture. All three durations are
// configurable; expiry of MaxWait without speech yields
// domain.ErrNoSpeechDetected.
type CaptureConfig struct {
	// CalibrationDuration is how much leading audio is used to measure the
	// ambient noise floor before listening for speech.
	CalibrationDuration time.Duration
	// MaxWait is the longest to wait for speech to begin.
	MaxWait time.Duration
	// MaxPhraseDuration caps the length of the captured phrase.
	MaxPhraseDuration time.Duration
}

// AudioCapture abstracts acquiring one utterance from the user. A capture
// blocks until speech ends, the phrase limit is hit, or a bound expires;
// it cannot be interrupted mid-flight other than by its bounds or ctx.
type AudioCapture interface {
	Capture(ctx context.Context, config CaptureConfig) (AudioSample, error)
}
