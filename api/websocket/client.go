package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/OldStager01/driftwatch/internal/logger"
	"github.com/OldStager01/driftwatch/pkg/config"
	"github.com/OldStager01/driftwatch/pkg/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Settings are the tunable connection parameters from the websocket config
// section.
type Settings struct {
	ReadBufferSize  int
	WriteBufferSize int
	ClientBuffer    int
	MaxMessageSize  int64
}

func NewSettings(cfg *config.WebSocketConfig) Settings {
	s := Settings{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		ClientBuffer:    256,
		MaxMessageSize:  512,
	}
	if cfg == nil {
		return s
	}
	if cfg.ReadBufferSize > 0 {
		s.ReadBufferSize = cfg.ReadBufferSize
	}
	if cfg.WriteBufferSize > 0 {
		s.WriteBufferSize = cfg.WriteBufferSize
	}
	if cfg.ClientBuffer > 0 {
		s.ClientBuffer = cfg.ClientBuffer
	}
	if cfg.MaxMessageSize > 0 {
		s.MaxMessageSize = cfg.MaxMessageSize
	}
	return s
}

// Client is one connected event feed consumer. An empty filter means the
// client receives every event type.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	mu     sync.RWMutex
	filter map[models.EventType]bool
}

type IncomingMessage struct {
	Type      string `json:"type"`
	EventType string `json:"event_type,omitempty"`
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, hub.settings.ClientBuffer),
		filter: make(map[models.EventType]bool),
	}
}

func (c *Client) wants(eventType models.EventType) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.filter) == 0 {
		return true
	}
	return c.filter[eventType]
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.hub.settings.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("WebSocket error: %v", err)
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.handleMessage(&msg)
		}
	}
}

func (c *Client) WritePump() {
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

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to current websocket frame
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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

func (c *Client) handleMessage(msg *IncomingMessage) {
	switch msg.Type {
	case "subscribe":
		if msg.EventType != "" {
			c.mu.Lock()
			c.filter[models.EventType(msg.EventType)] = true
			c.mu.Unlock()
			logger.Infof("Client subscribed to events: %s", msg.EventType)
			c.sendConfirmation("subscribed", msg.EventType)
		}
	case "unsubscribe":
		c.mu.Lock()
		if msg.EventType != "" {
			delete(c.filter, models.EventType(msg.EventType))
		} else {
			c.filter = make(map[models.EventType]bool)
		}
		c.mu.Unlock()
		c.sendConfirmation("unsubscribed", msg.EventType)
	}
}

func (c *Client) sendConfirmation(action, eventType string) {
	confirmation := map[string]interface{}{
		"type":       "subscription_update",
		"action":     action,
		"event_type": eventType,
		"timestamp":  time.Now(),
	}
	data, err := json.Marshal(confirmation)
	if err != nil {
		logger.Errorf("Failed to marshal confirmation: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
		logger.Warn("Client send channel full, dropping confirmation")
	}
}

func ServeWebSocket(hub *Hub) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  hub.settings.ReadBufferSize,
		WriteBufferSize: hub.settings.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return true // Allow all origins in dev
		},
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Errorf("WebSocket upgrade failed: %v", err)
			return
		}

		client := NewClient(hub, conn)

		// An event_type query parameter pre-populates the filter.
		if eventType := c.Query("event_type"); eventType != "" {
			client.filter[models.EventType(eventType)] = true
		}

		hub.Register(client)

		go client.WritePump()
		go client.ReadPump()
	}
}
