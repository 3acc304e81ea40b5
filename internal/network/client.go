package network

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/derivaventura/server/internal/auth"
	"github.com/derivaventura/server/internal/engine"
	"github.com/derivaventura/server/internal/events"
	"github.com/derivaventura/server/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 1024
)

// PlayerAction represents an incoming command from the frontend.
type PlayerAction struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client holds one player's connection. It is the events.Sink for the
// player's session: the session goroutine calls Emit, the bytes go
// out through the send channel and WritePump.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	engine   *engine.Engine
	identity auth.Identity
	// sessionID is fixed per connection; reconnecting starts a new session.
	sessionID string
	send      chan []byte
	limiter   *rate.Limiter
	metrics   *metrics.Collector
}

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn, eng *engine.Engine, id auth.Identity, limiter *rate.Limiter) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		engine:    eng,
		identity:  id,
		sessionID: fmt.Sprintf("%d-%d", id.PlayerID, time.Now().UnixNano()),
		send:      make(chan []byte, 256),
		limiter:   limiter,
		metrics:   metrics.Get(),
	}
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
	c.metrics.RecordWSConnection(1)
}

// Emit implements events.Sink. A slow consumer loses events rather
// than stalling the session goroutine.
func (c *Client) Emit(e events.Event) {
	payload, err := events.Marshal(e)
	if err != nil {
		c.hub.logger.Error("Failed to serialize %s event: %v", e.EventType(), err)
		c.metrics.RecordWSError()
		return
	}
	select {
	case c.send <- payload:
		c.metrics.RecordWSMessage(false)
	default:
		c.metrics.RecordWSError()
	}
}

// ReadPump pumps messages from the websocket connection to the engine.
func (c *Client) ReadPump() {
	defer func() {
		c.engine.Disconnect(c.sessionID)
		c.hub.unregister <- c
		c.conn.Close()
		c.metrics.RecordWSConnection(-1)
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("WebSocket read error: %v", err)
			}
			break
		}
		c.metrics.RecordWSMessage(true)

		var action PlayerAction
		if err := json.Unmarshal(message, &action); err != nil {
			c.hub.logger.Error("Failed to parse PlayerAction from WebSocket. err: %s", err.Error())
			continue
		}

		c.handlePlayerAction(action)
	}
}

func (c *Client) handlePlayerAction(action PlayerAction) {
	if !c.limiter.Allow() {
		c.hub.logger.Warn("Rate limit exceeded for %s, dropping %s", c.identity.Username, action.Type)
		return
	}

	switch action.Type {
	case "start_level":
		c.handleStartLevel(action.Payload)
	case "submit_answer":
		c.handleSubmitAnswer(action.Payload)
	case "use_powerup":
		c.handleUsePowerup(action.Payload)
	case "toggle_pause":
		c.handleTogglePause(action.Payload)
	default:
		c.hub.logger.Warn("Unknown PlayerAction type: %s", action.Type)
		c.sendError("unknown action type: " + action.Type)
	}
}

func (c *Client) handleStartLevel(rawPayload []byte) {
	var parsed struct {
		LevelID int `json:"level_id"`
	}
	if err := json.Unmarshal(rawPayload, &parsed); err != nil {
		c.sendError("malformed start_level payload")
		return
	}

	err := c.engine.StartLevel(context.Background(), c.sessionID, c.identity.PlayerID, parsed.LevelID, c)
	if err != nil {
		c.hub.logger.Warn("start_level rejected for %s: %v", c.identity.Username, err)
		c.sendError(err.Error())
	}
}

func (c *Client) handleSubmitAnswer(rawPayload []byte) {
	var parsed struct {
		EnemyID int64  `json:"enemy_id"`
		Answer  string `json:"answer"`
	}
	if err := json.Unmarshal(rawPayload, &parsed); err != nil {
		c.sendError("malformed submit_answer payload")
		return
	}
	c.engine.SubmitAnswer(c.sessionID, parsed.EnemyID, parsed.Answer)
}

func (c *Client) handleUsePowerup(rawPayload []byte) {
	var parsed struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(rawPayload, &parsed); err != nil {
		c.sendError("malformed use_powerup payload")
		return
	}
	switch engine.PowerupKind(parsed.Kind) {
	case engine.PowerupBomb, engine.PowerupFreeze:
		c.engine.UsePowerup(c.sessionID, engine.PowerupKind(parsed.Kind))
	default:
		c.sendError("unknown powerup kind: " + parsed.Kind)
	}
}

func (c *Client) handleTogglePause(rawPayload []byte) {
	var parsed struct {
		Paused bool `json:"paused"`
	}
	if err := json.Unmarshal(rawPayload, &parsed); err != nil {
		c.sendError("malformed toggle_pause payload")
		return
	}
	c.engine.SetPaused(c.sessionID, parsed.Paused)
}

func (c *Client) sendError(msg string) {
	c.Emit(events.Error{Message: msg})
}

// WritePump pumps messages from the send channel to the websocket connection.
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
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
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
