package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/voxlate/voxlate/domain"
	"github.com/voxlate/voxlate/domain/entities"
	"github.com/voxlate/voxlate/domain/repositories"
	"github.com/voxlate/voxlate/internal/auth"
	"github.com/voxlate/voxlate/internal/websocket"
	"github.com/voxlate/voxlate/usecase"
)

// Handler bundles the services the HTTP surface dispatches into.
type Handler struct {
	Sessions    repositories.SessionRepository
	Resolver    *usecase.Resolver
	Translation *usecase.TranslationService
	Synthesis   *usecase.SynthesisService
	Logger      *zap.Logger
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, h *Handler, hub *websocket.Hub) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "voxlate",
		})
	})

	e.POST("/api/v1/sessions", h.createSession)

	// Session-scoped APIs
	v1 := e.Group("/api/v1", h.sessionAuth)
	v1.GET("/languages", h.listLanguages)
	v1.GET("/languages/synthesis", h.listSynthesisLanguages)
	v1.POST("/recognize", h.recognize)
	v1.POST("/translate", h.translate)
	v1.POST("/synthesize", h.synthesize)
	v1.GET("/history", h.history)

	// WebSocket endpoint for live capture
	e.GET("/ws", func(c echo.Context) error {
		return h.websocketWithAuth(hub, c)
	})
}

// createSession creates a session context and issues its token.
func (h *Handler) createSession(c echo.Context) error {
	session := entities.NewSession()
	if err := h.Sessions.Create(c.Request().Context(), session); err != nil {
		h.Logger.Error("Failed to create session", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to create session",
		})
	}

	token, err := auth.GenerateSessionToken(session.ID)
	if err != nil {
		h.Logger.Error("Failed to generate session token",
			zap.String("sessionID", session.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate session token",
		})
	}

	h.Logger.Info("Session issued", zap.String("sessionID", session.ID))

	return c.JSON(http.StatusOK, CreateSessionResponse{
		SessionID: session.ID,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	})
}

// sessionAuth resolves the Bearer token into the caller's session.
func (h *Handler) sessionAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "missing_token",
				Message: "Session token is required in Authorization header",
			})
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_token",
				Message: "Invalid or expired session token",
			})
		}

		session, err := h.Sessions.Get(c.Request().Context(), claims.SessionID)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "session_not_found",
				Message: "Session not found or expired",
			})
		}

		c.Set("session", session)
		return next(c)
	}
}

func sessionFromContext(c echo.Context) *entities.Session {
	session, _ := c.Get("session").(*entities.Session)
	return session
}

func (h *Handler) listLanguages(c echo.Context) error {
	return c.JSON(http.StatusOK, entities.LanguageOptions())
}

func (h *Handler) listSynthesisLanguages(c echo.Context) error {
	all := entities.LanguageOptions()
	supported := make([]entities.LanguageOption, 0, len(all))
	for _, option := range all {
		if h.Synthesis.Supports(option.Code) {
			supported = append(supported, option)
		}
	}
	return c.JSON(http.StatusOK, supported)
}

// recognize resolves a pre-recorded utterance uploaded by the client.
func (h *Handler) recognize(c echo.Context) error {
	session := sessionFromContext(c)

	var req RecognizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	audioData, err := base64.StdEncoding.DecodeString(req.AudioData)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_audio",
			Message: "audio_data must be base64 encoded",
		})
	}

	encoding := req.Encoding
	if encoding == "" {
		encoding = "LINEAR16"
	}
	sample := repositories.AudioSample{
		Data:       audioData,
		SampleRate: req.SampleRate,
		Encoding:   encoding,
	}

	result, err := h.Resolver.Resolve(c.Request().Context(), sample, entities.SelectionFromCode(req.Language))
	if err != nil {
		h.Logger.Warn("Recognition failed",
			zap.String("sessionID", session.ID),
			zap.Error(err))
		return h.errorJSON(c, err)
	}

	session.RecordRecognition(result)

	return c.JSON(http.StatusOK, result)
}

// translate translates the session's input text into the target language.
func (h *Handler) translate(c echo.Context) error {
	session := sessionFromContext(c)

	var req TranslateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	if strings.TrimSpace(req.Text) != "" {
		session.SetInputText(req.Text)
	}

	record, err := h.Translation.Translate(c.Request().Context(), session, req.Target)
	if err != nil {
		h.Logger.Warn("Translation failed",
			zap.String("sessionID", session.ID),
			zap.Error(err))
		return h.errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, translateResponse(record))
}

// synthesize returns spoken audio of the text as a downloadable MP3.
func (h *Handler) synthesize(c echo.Context) error {
	session := sessionFromContext(c)

	var req SynthesizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	audio, err := h.Synthesis.Synthesize(c.Request().Context(), req.Text, req.Language)
	if err != nil {
		h.Logger.Warn("Synthesis failed",
			zap.String("sessionID", session.ID),
			zap.Error(err))
		return h.errorJSON(c, err)
	}

	filename := fmt.Sprintf("translation_%s.mp3", time.Now().Format("20060102_150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, "audio/mpeg", audio)
}

// history lists the session's translation records, oldest first.
func (h *Handler) history(c echo.Context) error {
	session := sessionFromContext(c)

	records := session.HistoryRecords()
	response := HistoryResponse{Records: make([]TranslateResponse, 0, len(records))}
	for _, record := range records {
		response.Records = append(response.Records, translateResponse(record))
	}

	return c.JSON(http.StatusOK, response)
}

func translateResponse(record entities.TranslationRecord) TranslateResponse {
	return TranslateResponse{
		Timestamp:      record.FormattedTimestamp(),
		SourceLanguage: record.SourceLanguageName,
		TargetLanguage: record.TargetLanguageName,
		InputText:      record.InputText,
		OutputText:     record.OutputText,
	}
}

// errorJSON maps pipeline errors onto HTTP statuses.
func (h *Handler) errorJSON(c echo.Context, err error) error {
	code := websocket.ErrorCode(err)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrEmptyInput), errors.Is(err, domain.ErrNoTargetSelected):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNoSpeechDetected):
		status = http.StatusRequestTimeout
	case errors.Is(err, domain.ErrUnintelligibleAudio), errors.Is(err, domain.ErrUnsupportedSynthesisLanguage):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrServiceUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusUnauthorized
	}

	return c.JSON(status, ErrorResponse{
		Error:   code,
		Message: err.Error(),
	})
}

// websocketWithAuth handles WebSocket connections with session token
// authentication. Browsers cannot set headers on WebSocket requests, so the
// token is also accepted as a query parameter.
func (h *Handler) websocketWithAuth(hub *websocket.Hub, c echo.Context) error {
	token := bearerToken(c)
	if token == "" {
		token = c.QueryParam("token")
	}

	if token == "" {
		h.Logger.Warn("WebSocket connection rejected: missing token")
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_token",
			Message: "Session token is required",
		})
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		h.Logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired session token",
		})
	}

	if _, err := h.Sessions.Get(c.Request().Context(), claims.SessionID); err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "session_not_found",
			Message: "Session not found or expired",
		})
	}

	h.Logger.Info("WebSocket connection authenticated",
		zap.String("sessionID", claims.SessionID))

	return websocket.HandleWebSocketWithAuth(hub, c, claims.SessionID, h.Logger)
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return header[7:]
	}
	return ""
}
