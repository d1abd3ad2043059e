package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/voxlate/voxlate/domain/entities"
	"github.com/voxlate/voxlate/domain/repositories"
	"github.com/voxlate/voxlate/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512 * 1024 // 512KB for audio chunks

	// captureSlack pads the capture context deadline past the configured
	// audio bounds to leave room for the recognition calls.
	captureSlack = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// CaptureFactory builds an AudioCapture over a live chunk stream. Injected
// so the hub stays independent of the concrete capture implementation.
type CaptureFactory func(chunks <-chan []byte, sampleRate int) repositories.AudioCapture

// Hub maintains the set of active clients, one per session.
type Hub struct {
	// Registered clients keyed by session ID.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	resolver      *usecase.Resolver
	sessions      repositories.SessionRepository
	captureConfig repositories.CaptureConfig
	sampleRate    int
	newCapture    CaptureFactory

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(
	resolver *usecase.Resolver,
	sessions repositories.SessionRepository,
	captureConfig repositories.CaptureConfig,
	sampleRate int,
	newCapture CaptureFactory,
	logger *zap.Logger,
) *Hub {
	return &Hub{
		clients:       make(map[string]*Client),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		resolver:      resolver,
		sessions:      sessions,
		captureConfig: captureConfig,
		sampleRate:    sampleRate,
		newCapture:    newCapture,
		logger:        logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.sessionID] = client
			h.mu.Unlock()
			h.logger.Info("Client registered", zap.String("sessionID", client.sessionID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.sessionID]; ok {
				delete(h.clients, client.sessionID)
				client.closeSend()
			}
			h.mu.Unlock()
			h.logger.Info("Client unregistered", zap.String("sessionID", client.sessionID))
		}
	}
}

type WriteData struct {
	// MessageType is the type of the websocket message.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan WriteData

	// Session ID for this client
	sessionID string

	// Logger
	logger *zap.Logger

	validator *MessageValidator

	// Capture state for the in-flight listen, if any.
	listening    bool
	chunks       chan []byte
	chunksClosed bool

	// sendClosed marks the outbound queue closed after unregistration. A
	// capture goroutine can outlive its connection, so every send has to
	// check it under the mutex.
	sendClosed bool

	mutex sync.Mutex
}

// closeSend closes the outbound queue exactly once.
func (c *Client) closeSend() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if !c.sendClosed {
		c.sendClosed = true
		close(c.send)
	}
}

// HandleWebSocketWithAuth handles websocket requests with a
// pre-authenticated session ID.
func HandleWebSocketWithAuth(hub *Hub, c echo.Context, sessionID string, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan WriteData, 256),
		sessionID: sessionID,
		logger:    logger,
		validator: NewMessageValidator(),
	}

	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			// Control messages (listening_start, listening_end, ping)
			c.processMessage(message)
		case websocket.BinaryMessage:
			// Raw PCM audio from the browser
			c.processBinaryAudioChunk(message)
		default:
			c.logger.Warn("Received unknown message type", zap.Int("type", messageType))
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processMessage processes incoming control messages from the client.
func (c *Client) processMessage(message []byte) {
	parsed, err := c.validator.ValidateMessage(message)
	if err != nil {
		c.logger.Warn("Invalid message", zap.Error(err))
		c.sendJSON(CreateErrorMessage("invalid_message", "Invalid message", err.Error()))
		return
	}

	switch msg := parsed.(type) {
	case *ListeningStartMessage:
		c.handleListeningStart(msg)
	case *ListeningEndMessage:
		c.handleListeningEnd()
	case *PingMessage:
		c.sendJSON(CreatePongMessage(msg.Data))
	}
}

// processBinaryAudioChunk feeds audio into the in-flight capture, if any.
func (c *Client) processBinaryAudioChunk(data []byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.listening || c.chunks == nil || c.chunksClosed {
		c.logger.Warn("Received audio chunk with no capture in progress",
			zap.String("sessionID", c.sessionID))
		return
	}

	select {
	case c.chunks <- data:
	default:
		c.logger.Warn("Capture buffer full, dropping audio chunk",
			zap.String("sessionID", c.sessionID),
			zap.Int("size", len(data)))
	}
}

// handleListeningStart begins one capture-and-recognize flow.
func (c *Client) handleListeningStart(msg *ListeningStartMessage) {
	c.mutex.Lock()
	if c.listening {
		c.mutex.Unlock()
		c.sendJSON(CreateErrorMessage("capture_in_progress", "A capture is already in progress", ""))
		return
	}

	c.listening = true
	c.chunksClosed = false
	c.chunks = make(chan []byte, 256)
	chunks := c.chunks
	c.mutex.Unlock()

	sampleRate := msg.SampleRate
	if sampleRate == 0 {
		sampleRate = c.hub.sampleRate
	}
	selection := entities.SelectionFromCode(msg.Language)

	c.logger.Info("Capture started",
		zap.String("sessionID", c.sessionID),
		zap.String("language", msg.Language),
		zap.Int("sampleRate", sampleRate))

	c.sendJSON(CreateStatusMessage(StageCalibrating))

	go c.runCapture(chunks, sampleRate, selection)
}

// handleListeningEnd closes the audio stream; the capture in flight sees
// end-of-stream and finishes with whatever it has.
func (c *Client) handleListeningEnd() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.listening && c.chunks != nil && !c.chunksClosed {
		close(c.chunks)
		c.chunksClosed = true
	}
}

// runCapture drives capture and recognition for one utterance and reports
// the outcome over the socket.
func (c *Client) runCapture(chunks <-chan []byte, sampleRate int, selection entities.LanguageSelection) {
	defer c.endListening()

	cfg := c.hub.captureConfig
	deadline := cfg.CalibrationDuration + cfg.MaxWait + cfg.MaxPhraseDuration + captureSlack
	ctx, cancel := context.WithTimeout(context.Background(), deadline)
	defer cancel()

	session, err := c.hub.sessions.Get(ctx, c.sessionID)
	if err != nil {
		c.sendJSON(CreateErrorMessage(ErrorCode(err), "Session not found", err.Error()))
		return
	}

	capturer := c.hub.newCapture(chunks, sampleRate)

	c.sendJSON(CreateStatusMessage(StageListening))

	sample, err := capturer.Capture(ctx, cfg)
	if err != nil {
		c.logger.Warn("Capture failed",
			zap.String("sessionID", c.sessionID),
			zap.Error(err))
		c.sendJSON(CreateErrorMessage(ErrorCode(err), "No speech detected. Please try again.", err.Error()))
		return
	}

	c.sendJSON(CreateStatusMessage(StageRecognizing))

	result, err := c.hub.resolver.Resolve(ctx, sample, selection)
	if err != nil {
		c.logger.Warn("Recognition failed",
			zap.String("sessionID", c.sessionID),
			zap.Error(err))
		c.sendJSON(CreateErrorMessage(ErrorCode(err), "Recognition failed", err.Error()))
		return
	}

	session.RecordRecognition(result)
	c.sendJSON(CreateRecognitionResultMessage(result))
}

// endListening resets capture state after a listen finishes.
func (c *Client) endListening() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.listening = false
	c.chunks = nil
	c.chunksClosed = false
}

// sendJSON marshals a message onto the outbound queue, dropping it if the
// queue is full or already closed.
func (c *Client) sendJSON(message interface{}) {
	payload, err := json.Marshal(message)
	if err != nil {
		c.logger.Error("Failed to marshal outbound message", zap.Error(err))
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.sendClosed {
		c.logger.Debug("Client gone, dropping message",
			zap.String("sessionID", c.sessionID))
		return
	}

	select {
	case c.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
	default:
		c.logger.Warn("Outbound queue full, dropping message",
			zap.String("sessionID", c.sessionID))
	}
}
