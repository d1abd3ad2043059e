package config

import (
	"os"
	"strconv"
	"time"

	"github.com/voxlate/voxlate/domain/repositories"
)

// Translator provider names accepted in TRANSLATOR_PROVIDER.
const (
	ProviderGoogle = "google"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

// Config carries the process configuration, read once at startup from the
// environment (a .env file is honored in development).
type Config struct {
	Port      string
	JWTSecret string

	// TranslatorProvider selects the translation/detection backend.
	TranslatorProvider string

	// Capture bounds, applied to every listen request.
	CaptureCalibration time.Duration
	CaptureMaxWait     time.Duration
	CaptureMaxPhrase   time.Duration

	// SampleRate expected from the browser's PCM stream.
	SampleRate int
}

// Load reads configuration from the environment, applying defaults.
func Load() Config {
	return Config{
		Port:               envString("PORT", "8080"),
		JWTSecret:          envString("JWT_SECRET", ""),
		TranslatorProvider: envString("TRANSLATOR_PROVIDER", ProviderGoogle),
		CaptureCalibration: envDuration("CAPTURE_CALIBRATION_MS", 1500*time.Millisecond),
		CaptureMaxWait:     envDuration("CAPTURE_MAX_WAIT_MS", 10*time.Second),
		CaptureMaxPhrase:   envDuration("CAPTURE_MAX_PHRASE_MS", 25*time.Second),
		SampleRate:         envInt("CAPTURE_SAMPLE_RATE", 16000),
	}
}

// CaptureConfig returns the capture bounds as a repository config.
func (c Config) CaptureConfig() repositories.CaptureConfig {
	return repositories.CaptureConfig{
		CalibrationDuration: c.CaptureCalibration,
		MaxWait:             c.CaptureMaxWait,
		MaxPhraseDuration:   c.CaptureMaxPhrase,
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return fallback
}
