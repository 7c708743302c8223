// internal/server/handlers/websocket.go

package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"

	"convosense/internal/adapter/notify"
)

// WebSocketClient represents a connected WebSocket client following one
// analysis session's event stream.
type WebSocketClient struct {
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
	natsConn  *nats.Conn
	natsSub   *nats.Subscription
	closeOnce sync.Once
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 64 * 1024,
	}
}

// WebSocketUpgrader is used to upgrade HTTP connections to WebSocket
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, this should be more restrictive
		return true
	},
}

// AnalysisWebSocketHandler handles WebSocket connections that stream one
// session's analysis progress events to the client.
func AnalysisWebSocketHandler(natsConn *nats.Conn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "session")
		if sessionID == "" {
			http.Error(w, "Missing session ID", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Failed to upgrade to WebSocket: %v", err)
			return
		}

		client := &WebSocketClient{
			conn:      conn,
			send:      make(chan []byte, 256),
			sessionID: sessionID,
			natsConn:  natsConn,
		}

		if err := client.subscribeToSession(); err != nil {
			log.Printf("Failed to subscribe to session events: %v", err)
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()

		welcomeMsg := map[string]interface{}{
			"type":       "welcome",
			"session_id": sessionID,
			"time":       time.Now(),
		}
		welcomeJSON, _ := json.Marshal(welcomeMsg)
		client.enqueue(welcomeJSON)

		log.Printf("New WebSocket connection for session %s", sessionID)
	}
}

// subscribeToSession subscribes to the session's NATS event subject
func (c *WebSocketClient) subscribeToSession() error {
	sub, err := c.natsConn.Subscribe(notify.SubjectFor(c.sessionID), func(msg *nats.Msg) {
		c.enqueue(msg.Data)
	})
	if err != nil {
		return err
	}
	c.natsSub = sub
	return nil
}

// enqueue hands a message to the write pump, dropping it if the client is
// too slow to keep up. Progress delivery is best-effort.
func (c *WebSocketClient) enqueue(message []byte) {
	select {
	case c.send <- message:
	default:
		log.Printf("Dropping event for slow session %s", c.sessionID)
	}
}

// readPump discards inbound frames; the stream is one-way. It exists to
// process control messages and detect the peer going away.
func (c *WebSocketClient) readPump() {
	config := DefaultWebSocketConfig()

	defer c.closeConnection()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps session events to the WebSocket connection
func (c *WebSocketClient) writePump() {
	config := DefaultWebSocketConfig()
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeConnection tears down the NATS subscription and the connection
func (c *WebSocketClient) closeConnection() {
	c.closeOnce.Do(func() {
		if c.natsSub != nil {
			c.natsSub.Unsubscribe()
		}
		c.conn.Close()
		log.Printf("WebSocket connection closed for session %s", c.sessionID)
	})
}
