package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"

	"github.com/voxlate/voxlate/adapters/memory"
	"github.com/voxlate/voxlate/domain"
	"github.com/voxlate/voxlate/domain/entities"
	"github.com/voxlate/voxlate/domain/repositories"
	"github.com/voxlate/voxlate/usecase"
)

// drainCapture collects every chunk until the stream closes and hands the
// bytes back as one sample.
type drainCapture struct {
	chunks     <-chan []byte
	sampleRate int
	err        error
}

func (d *drainCapture) Capture(ctx context.Context, config repositories.CaptureConfig) (repositories.AudioSample, error) {
	if d.err != nil {
		return repositories.AudioSample{}, d.err
	}
	var data []byte
	for chunk := range d.chunks {
		data = append(data, chunk...)
	}
	return repositories.AudioSample{Data: data, SampleRate: d.sampleRate, Encoding: "LINEAR16"}, nil
}

type echoRecognizer struct{}

func (echoRecognizer) Recognize(ctx context.Context, sample repositories.AudioSample, languageCode string) (string, error) {
	return "transcribed audio", nil
}

type staticDetector struct{}

func (staticDetector) DetectLanguage(ctx context.Context, text string) (repositories.Detection, error) {
	return repositories.Detection{LanguageCode: "en", Confidence: 0.9}, nil
}

// dialTestHub stands up a hub on the given capture factory and dials it.
func dialTestHub(t *testing.T, factory CaptureFactory) (*websocket.Conn, func()) {
	t.Helper()
	logger := zaptest.NewLogger(t)

	sessions := memory.NewSessionStore(logger)
	session := entities.NewSession()
	if err := sessions.Create(context.Background(), session); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	resolver := usecase.NewResolver(echoRecognizer{}, staticDetector{}, logger)
	hub := NewHub(resolver, sessions, repositories.CaptureConfig{
		CalibrationDuration: 10 * time.Millisecond,
		MaxWait:             time.Second,
		MaxPhraseDuration:   time.Second,
	}, 16000, factory, logger)
	go hub.Run()

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return HandleWebSocketWithAuth(hub, c, session.ID, logger)
	})
	server := httptest.NewServer(e)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		server.Close()
		t.Fatalf("Failed to dial: %v", err)
	}

	return conn, func() {
		conn.Close()
		server.Close()
	}
}

// readUntil reads messages until one of the given type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, messageType string) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Read failed while waiting for %s: %v", messageType, err)
		}

		var msg map[string]interface{}
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("Unparseable message: %s", payload)
		}
		if msg["type"] == messageType {
			return msg
		}
		if msg["type"] == "error" && messageType != "error" {
			t.Fatalf("Unexpected error message: %s", payload)
		}
	}
}

func TestHubCaptureFlow(t *testing.T) {
	factory := func(chunks <-chan []byte, sampleRate int) repositories.AudioCapture {
		return &drainCapture{chunks: chunks, sampleRate: sampleRate}
	}
	conn, cleanup := dialTestHub(t, factory)
	defer cleanup()

	start := map[string]interface{}{"type": "listening_start", "language": "en", "sample_rate": 16000}
	if err := conn.WriteJSON(start); err != nil {
		t.Fatalf("Failed to send listening_start: %v", err)
	}

	status := readUntil(t, conn, "status")
	if status["stage"] != StageCalibrating {
		t.Errorf("Expected calibrating first, got %v", status["stage"])
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, make([]byte, 640)); err != nil {
		t.Fatalf("Failed to send audio chunk: %v", err)
	}
	if err := conn.WriteJSON(map[string]interface{}{"type": "listening_end"}); err != nil {
		t.Fatalf("Failed to send listening_end: %v", err)
	}

	result := readUntil(t, conn, "recognition_result")
	if result["text"] != "transcribed audio" {
		t.Errorf("Unexpected transcript: %v", result["text"])
	}
	if result["language_code"] != "en" {
		t.Errorf("Expected language en, got %v", result["language_code"])
	}
	if result["source"] != string(entities.ResolutionExplicit) {
		t.Errorf("Expected explicit resolution, got %v", result["source"])
	}
}

func TestHubNoSpeech(t *testing.T) {
	factory := func(chunks <-chan []byte, sampleRate int) repositories.AudioCapture {
		return &drainCapture{err: domain.ErrNoSpeechDetected}
	}
	conn, cleanup := dialTestHub(t, factory)
	defer cleanup()

	start := map[string]interface{}{"type": "listening_start"}
	if err := conn.WriteJSON(start); err != nil {
		t.Fatalf("Failed to send listening_start: %v", err)
	}

	errMsg := readUntil(t, conn, "error")
	if errMsg["error_code"] != "no_speech_detected" {
		t.Errorf("Expected no_speech_detected, got %v", errMsg["error_code"])
	}
}

func TestHubRejectsDoubleStart(t *testing.T) {
	block := make(chan struct{})
	factory := func(chunks <-chan []byte, sampleRate int) repositories.AudioCapture {
		return &blockingCapture{unblock: block}
	}
	conn, cleanup := dialTestHub(t, factory)
	defer cleanup()
	defer close(block)

	if err := conn.WriteJSON(map[string]interface{}{"type": "listening_start"}); err != nil {
		t.Fatalf("Failed to send first listening_start: %v", err)
	}
	readUntil(t, conn, "status")

	if err := conn.WriteJSON(map[string]interface{}{"type": "listening_start"}); err != nil {
		t.Fatalf("Failed to send second listening_start: %v", err)
	}

	errMsg := readUntil(t, conn, "error")
	if errMsg["error_code"] != "capture_in_progress" {
		t.Errorf("Expected capture_in_progress, got %v", errMsg["error_code"])
	}
}

func TestHubPingPong(t *testing.T) {
	factory := func(chunks <-chan []byte, sampleRate int) repositories.AudioCapture {
		return &drainCapture{chunks: chunks}
	}
	conn, cleanup := dialTestHub(t, factory)
	defer cleanup()

	if err := conn.WriteJSON(map[string]interface{}{"type": "ping", "data": "hello"}); err != nil {
		t.Fatalf("Failed to send ping: %v", err)
	}

	pong := readUntil(t, conn, "pong")
	if pong["data"] != "hello" {
		t.Errorf("Expected pong data echoed, got %v", pong["data"])
	}
}

func TestSendAfterCloseIsDropped(t *testing.T) {
	client := &Client{
		send:   make(chan WriteData, 1),
		logger: zaptest.NewLogger(t),
	}

	client.closeSend()
	client.closeSend() // idempotent

	// Must drop silently, not panic on the closed channel.
	client.sendJSON(CreateStatusMessage(StageListening))

	if _, ok := <-client.send; ok {
		t.Error("Expected closed, empty send queue")
	}
}

func TestHubSurvivesDisconnectDuringCapture(t *testing.T) {
	block := make(chan struct{})
	factory := func(chunks <-chan []byte, sampleRate int) repositories.AudioCapture {
		return &blockingCapture{unblock: block}
	}
	conn, cleanup := dialTestHub(t, factory)
	defer cleanup()

	if err := conn.WriteJSON(map[string]interface{}{"type": "listening_start"}); err != nil {
		t.Fatalf("Failed to send listening_start: %v", err)
	}
	readUntil(t, conn, "status")

	// Drop the connection while the capture is still in flight, then let
	// the capture finish. Its result messages must be dropped, not panic
	// the capture goroutine.
	conn.Close()
	time.Sleep(50 * time.Millisecond)
	close(block)
	time.Sleep(50 * time.Millisecond)
}

type blockingCapture struct {
	unblock <-chan struct{}
}

func (b *blockingCapture) Capture(ctx context.Context, config repositories.CaptureConfig) (repositories.AudioSample, error) {
	select {
	case <-b.unblock:
	case <-ctx.Done():
	}
	return repositories.AudioSample{}, domain.ErrNoSpeechDetected
}
