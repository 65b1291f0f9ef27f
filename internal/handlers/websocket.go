package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sessionshell/internal/models"
	"github.com/ternarybob/sessionshell/internal/services/settings"
)

const (
	// requestTimeout bounds one settings channel request, navigation included
	requestTimeout = 30 * time.Second
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameOrigin,
}

// sameOrigin admits the shell's own pages and non-browser clients. Pages of the
// remote site share the browser and must not read stored credentials.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// WebSocketHandler serves the settings channel. Each connection is read and answered
// sequentially; replies carry the id of the request they answer.
type WebSocketHandler struct {
	logger           arbor.ILogger
	service          SettingsService
	clients          map[*websocket.Conn]string
	mu               sync.RWMutex
	serverInstanceID string // Unique ID generated on startup - clients use to detect server restart
}

func NewWebSocketHandler(service SettingsService, logger arbor.ILogger) *WebSocketHandler {
	h := &WebSocketHandler{
		logger:           logger,
		service:          service,
		clients:          make(map[*websocket.Conn]string),
		serverInstanceID: uuid.New().String(),
	}

	logger.Info().Str("server_instance_id", h.serverInstanceID).Msg("Settings channel initialized")

	return h
}

// ServerInstanceID returns the id sent in the X-Server-Instance header of every upgrade
func (h *WebSocketHandler) ServerInstanceID() string {
	return h.serverInstanceID
}

// ClientCount returns the number of open settings channel connections
func (h *WebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the request and serves settings channel messages until the
// peer disconnects
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	header := http.Header{}
	header.Set("X-Server-Instance", h.serverInstanceID)

	conn, err := upgrader.Upgrade(w, r, header)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade settings channel connection")
		return
	}

	connectionID := uuid.New().String()
	h.mu.Lock()
	h.clients[conn] = connectionID
	h.mu.Unlock()

	h.logger.Debug().Str("connection_id", connectionID).Str("remote", r.RemoteAddr).Msg("Settings channel connected")

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
		h.logger.Debug().Str("connection_id", connectionID).Msg("Settings channel disconnected")
	}()

	conn.SetReadLimit(maxMessageSize)

	for {
		var msg models.ChannelMessage
		if err := conn.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			// A truncated frame decodes as io.ErrUnexpectedEOF rather than a syntax error
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
				if writeErr := conn.WriteJSON(errorReply("", "malformed message")); writeErr != nil {
					return
				}
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				h.logger.Warn().Err(err).Str("connection_id", connectionID).Msg("Settings channel read failed")
			}
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		reply := h.handleMessage(ctx, msg)
		cancel()

		if err := conn.WriteJSON(reply); err != nil {
			h.logger.Warn().Err(err).Str("connection_id", connectionID).Msg("Failed to write settings channel reply")
			return
		}
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, msg models.ChannelMessage) models.ChannelMessage {
	h.logger.Debug().Str("type", msg.Type).Str("id", msg.ID).Msg("Settings channel request")

	switch msg.Type {
	case models.MessageGetSettings:
		stored, err := h.service.GetSettings(ctx)
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to load settings")
			return errorReply(msg.ID, err.Error())
		}
		// Nothing saved yet replies with a null payload
		return reply(msg.ID, models.MessageSettings, stored)

	case models.MessageGetURL:
		stored, err := h.service.GetURL(ctx)
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to load url")
			return errorReply(msg.ID, err.Error())
		}
		return reply(msg.ID, models.MessageURL, models.URLPayload{URL: stored})

	case models.MessageSetSettings:
		var payload models.Settings
		if err := decodePayload(msg.Payload, &payload); err != nil {
			return errorReply(msg.ID, "invalid set-settings payload")
		}
		return ackReply(msg.ID, h.service.SetSettings(ctx, payload))

	case models.MessageSetURL:
		var payload models.URLPayload
		if err := decodePayload(msg.Payload, &payload); err != nil {
			return errorReply(msg.ID, "invalid set-url payload")
		}
		return ackReply(msg.ID, h.service.SetURL(ctx, payload.URL))

	default:
		h.logger.Warn().Str("type", msg.Type).Msg("Unknown settings channel message type")
		return errorReply(msg.ID, "unknown message type: "+msg.Type)
	}
}

func decodePayload(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return errors.New("missing payload")
	}
	return json.Unmarshal(raw, v)
}

// ackReply acknowledges a set request. Navigation failures still ack because the
// settings were persisted.
func ackReply(id string, err error) models.ChannelMessage {
	switch {
	case err == nil:
		return reply(id, models.MessageAck, models.AckPayload{Navigated: true})
	case errors.Is(err, settings.ErrNavigation):
		return reply(id, models.MessageAck, models.AckPayload{Navigated: false})
	default:
		return errorReply(id, err.Error())
	}
}

func reply(id, messageType string, payload interface{}) models.ChannelMessage {
	data, err := json.Marshal(payload)
	if err != nil {
		return errorReply(id, err.Error())
	}
	return models.ChannelMessage{ID: id, Type: messageType, Payload: data}
}

func errorReply(id, message string) models.ChannelMessage {
	data, _ := json.Marshal(models.ErrorPayload{Message: message})
	return models.ChannelMessage{ID: id, Type: models.MessageError, Payload: data}
}
