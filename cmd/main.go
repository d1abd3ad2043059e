package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/voxlate/voxlate/adapters/capture"
	"github.com/voxlate/voxlate/adapters/memory"
	"github.com/voxlate/voxlate/adapters/stt"
	"github.com/voxlate/voxlate/adapters/translate"
	"github.com/voxlate/voxlate/adapters/tts"
	"github.com/voxlate/voxlate/domain/repositories"
	"github.com/voxlate/voxlate/internal/api"
	"github.com/voxlate/voxlate/internal/config"
	"github.com/voxlate/voxlate/internal/websocket"
	"github.com/voxlate/voxlate/usecase"
)

func main() {
	// Load .env file if present (development convenience)
	_ = godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize adapters. Each falls back to its mock when the upstream
	// credentials are absent, so the server always starts.
	recognizer := newRecognizer(ctx, logger)
	translator, detector := newTranslator(ctx, cfg, logger)
	synthesizer := newSynthesizer(logger)
	sessions := memory.NewSessionStore(logger)

	// Initialize usecase services
	resolver := usecase.NewResolver(recognizer, detector, logger)
	translationService := usecase.NewTranslationService(translator, logger)
	synthesisService := usecase.NewSynthesisService(synthesizer, logger)

	// Initialize WebSocket hub for live capture
	captureFactory := func(chunks <-chan []byte, sampleRate int) repositories.AudioCapture {
		return capture.NewStreamCapture(chunks, sampleRate, logger)
	}
	hub := websocket.NewHub(resolver, sessions, cfg.CaptureConfig(), cfg.SampleRate, captureFactory, logger)
	go hub.Run()

	cleanup := websocket.NewSessionCleanup(sessions, 10*time.Minute, logger)
	go cleanup.Run(ctx)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize API routes
	handler := &api.Handler{
		Sessions:    sessions,
		Resolver:    resolver,
		Translation: translationService,
		Synthesis:   synthesisService,
		Logger:      logger,
	}
	api.InitRoutes(e, handler, hub)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("port", cfg.Port),
		zap.String("translatorProvider", cfg.TranslatorProvider))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// newRecognizer prefers the Google Cloud Speech client and falls back to the
// mock when no credentials are configured.
func newRecognizer(ctx context.Context, logger *zap.Logger) repositories.SpeechRecognizer {
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		logger.Warn("GOOGLE_APPLICATION_CREDENTIALS not set, using mock speech recognizer")
		return stt.NewMockRecognizer(logger)
	}

	recognizer, err := stt.NewGoogleRecognizer(ctx, logger)
	if err != nil {
		logger.Warn("Failed to initialize Google speech recognizer, using mock", zap.Error(err))
		return stt.NewMockRecognizer(logger)
	}
	return recognizer
}

// newTranslator selects the translation backend from TRANSLATOR_PROVIDER.
// The same adapter serves both translation and language detection.
func newTranslator(ctx context.Context, cfg config.Config, logger *zap.Logger) (repositories.Translator, repositories.LanguageDetector) {
	switch cfg.TranslatorProvider {
	case config.ProviderGemini:
		gemini, err := translate.NewGeminiTranslator(ctx, logger)
		if err != nil {
			logger.Warn("Failed to initialize Gemini translator, using mock", zap.Error(err))
			break
		}
		return gemini, gemini

	case config.ProviderGoogle:
		google, err := translate.NewGoogleTranslator(ctx, logger)
		if err != nil {
			logger.Warn("Failed to initialize Google translator, using mock", zap.Error(err))
			break
		}
		return google, google

	case config.ProviderMock:
		// fall through to the mock below

	default:
		logger.Warn("Unknown translator provider, using mock",
			zap.String("provider", cfg.TranslatorProvider))
	}

	mock := translate.NewMockTranslator(logger)
	return mock, mock
}

// newSynthesizer prefers Eleven Labs and falls back to the mock when no API
// key is configured.
func newSynthesizer(logger *zap.Logger) repositories.SpeechSynthesizer {
	elevenCfg := tts.NewElevenLabsConfigFromEnv()
	if elevenCfg.APIKey == "" {
		logger.Warn("ELEVEN_LABS_API_KEY not set, using mock speech synthesizer")
		return tts.NewMockSynthesizer(logger)
	}

	synthesizer, err := tts.NewElevenLabsTTS(elevenCfg, logger)
	if err != nil {
		logger.Warn("Failed to initialize Eleven Labs synthesizer, using mock", zap.Error(err))
		return tts.NewMockSynthesizer(logger)
	}
	return synthesizer
}
