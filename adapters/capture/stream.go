package capture

import (
	"context"
	"encoding/binary"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/voxlate/voxlate/domain"
	"github.com/voxlate/voxlate/domain/repositories"
)

const (
	// Fallback bounds applied when a CaptureConfig field is zero.
	defaultCalibration = 1500 * time.Millisecond
	defaultMaxWait     = 10 * time.Second
	defaultMaxPhrase   = 25 * time.Second

	// speechStartFactor scales the ambient RMS into the onset threshold.
	speechStartFactor = 2.5
	// minThreshold is the onset floor for near-silent rooms.
	minThreshold = 300.0
	// silenceGap is the trailing quiet that ends a phrase.
	silenceGap = 900 * time.Millisecond
)

// StreamCapture implements AudioCapture over a channel of little-endian
// PCM16 chunks, typically fed by a WebSocket client. One StreamCapture
// serves one capture; the channel closing before speech starts counts as no
// speech.
type StreamCapture struct {
	chunks     <-chan []byte
	sampleRate int
	logger     *zap.Logger
}

var _ repositories.AudioCapture = (*StreamCapture)(nil)

// NewStreamCapture wraps a PCM16 chunk channel as an audio capture source.
func NewStreamCapture(chunks <-chan []byte, sampleRate int, logger *zap.Logger) *StreamCapture {
	return &StreamCapture{
		chunks:     chunks,
		sampleRate: sampleRate,
		logger:     logger,
	}
}

// Capture calibrates an ambient-noise floor, waits (bounded) for speech to
// begin, then accumulates audio until a trailing silence gap or the phrase
// limit. Expiry of the initial wait yields domain.ErrNoSpeechDetected.
func (s *StreamCapture) Capture(ctx context.Context, config repositories.CaptureConfig) (repositories.AudioSample, error) {
	calibration := config.CalibrationDuration
	if calibration <= 0 {
		calibration = defaultCalibration
	}
	maxWait := config.MaxWait
	if maxWait <= 0 {
		maxWait = defaultMaxWait
	}
	maxPhrase := config.MaxPhraseDuration
	if maxPhrase <= 0 {
		maxPhrase = defaultMaxPhrase
	}

	ambient, err := s.calibrate(ctx, calibration)
	if err != nil {
		return repositories.AudioSample{}, err
	}

	threshold := ambient * speechStartFactor
	if threshold < minThreshold {
		threshold = minThreshold
	}
	s.logger.Debug("Capture calibrated",
		zap.Float64("ambientRMS", ambient),
		zap.Float64("threshold", threshold))

	first, err := s.waitForSpeech(ctx, threshold, maxWait)
	if err != nil {
		return repositories.AudioSample{}, err
	}

	data := s.accumulatePhrase(ctx, first, threshold, maxPhrase)

	return repositories.AudioSample{
		Data:       data,
		SampleRate: s.sampleRate,
		Encoding:   "LINEAR16",
	}, nil
}

// calibrate measures the ambient RMS over the leading calibration window.
func (s *StreamCapture) calibrate(ctx context.Context, duration time.Duration) (float64, error) {
	var (
		sumSquares float64
		samples    int
	)
	needed := int(duration.Seconds() * float64(s.sampleRate))

	for samples < needed {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case chunk, ok := <-s.chunks:
			if !ok {
				return 0, domain.ErrNoSpeechDetected
			}
			for _, v := range pcmSamples(chunk) {
				sumSquares += float64(v) * float64(v)
			}
			samples += len(chunk) / 2
		}
	}

	if samples == 0 {
		return 0, nil
	}
	return math.Sqrt(sumSquares / float64(samples)), nil
}

// waitForSpeech blocks until a chunk crosses the onset threshold, returning
// that chunk. The bounded wait expiring or the source closing yields
// ErrNoSpeechDetected; context cancellation returns the context error.
func (s *StreamCapture) waitForSpeech(ctx context.Context, threshold float64, maxWait time.Duration) ([]byte, error) {
	deadline := time.NewTimer(maxWait)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, domain.ErrNoSpeechDetected
		case chunk, ok := <-s.chunks:
			if !ok {
				return nil, domain.ErrNoSpeechDetected
			}
			if rms(chunk) >= threshold {
				return chunk, nil
			}
		}
	}
}

// accumulatePhrase collects audio from speech onset until a trailing
// silence gap or the phrase duration limit. Durations are measured in audio
// time, not wall-clock time.
func (s *StreamCapture) accumulatePhrase(ctx context.Context, first []byte, threshold float64, maxPhrase time.Duration) []byte {
	data := append([]byte(nil), first...)
	var trailingSilence time.Duration

	for {
		if s.audioDuration(len(data)) >= maxPhrase {
			s.logger.Debug("Phrase limit reached", zap.Duration("limit", maxPhrase))
			return data
		}

		select {
		case <-ctx.Done():
			return data
		case chunk, ok := <-s.chunks:
			if !ok {
				return data
			}
			data = append(data, chunk...)
			if rms(chunk) < threshold {
				trailingSilence += s.audioDuration(len(chunk))
				if trailingSilence >= silenceGap {
					return data
				}
			} else {
				trailingSilence = 0
			}
		}
	}
}

func (s *StreamCapture) audioDuration(byteLen int) time.Duration {
	if s.sampleRate == 0 {
		return 0
	}
	samples := byteLen / 2
	return time.Duration(float64(samples) / float64(s.sampleRate) * float64(time.Second))
}

func pcmSamples(chunk []byte) []int16 {
	samples := make([]int16, len(chunk)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(chunk[2*i:]))
	}
	return samples
}

func rms(chunk []byte) float64 {
	samples := pcmSamples(chunk)
	if len(samples) == 0 {
		return 0
	}
	var sumSquares float64
	for _, v := range samples {
		sumSquares += float64(v) * float64(v)
	}
	return math.Sqrt(sumSquares / float64(len(samples)))
}
