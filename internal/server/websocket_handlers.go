package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/MeKo-Tech/photoflow/internal/batch"
	"github.com/gorilla/websocket"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, you should check against allowed origins
		return true
	},
}

// ProgressMessage is the envelope pushed to WebSocket clients for every
// progress update of the runner.
type ProgressMessage struct {
	Type     string         `json:"type"`
	Progress batch.Progress `json:"progress"`
}

// progressHub fans progress updates out to all connected WebSocket
// clients. Writes to a single connection are serialized per client.
type progressHub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newProgressHub() *progressHub {
	return &progressHub{clients: make(map[*wsClient]struct{})}
}

func (h *progressHub) add(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *progressHub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// broadcast sends a progress snapshot to every connected client.
// Clients whose connection errors are dropped from the hub.
func (h *progressHub) broadcast(p batch.Progress) {
	msg := ProgressMessage{Type: "progress", Progress: p}
	if p.State.Terminal() {
		msg.Type = "complete"
		recordRunOutcome(p)
	}

	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.writeJSON(msg); err != nil {
			slog.Debug("Dropping WebSocket client", "error", err)
			h.remove(c)
			_ = c.conn.Close()
			continue
		}
		websocketMessagesTotal.WithLabelValues("sent").Inc()
	}
}

func (c *wsClient) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(v)
}

// progressWebSocketHandler upgrades the connection and streams batch
// progress until the client disconnects.
func (s *Server) progressWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	client := &wsClient{conn: conn}
	s.hub.add(client)
	defer func() {
		s.hub.remove(client)
		_ = conn.Close()
	}()

	// New clients immediately get the current snapshot.
	if err := client.writeJSON(ProgressMessage{Type: "progress", Progress: s.runner.Snapshot()}); err != nil {
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()

	// Send ping messages to keep connection alive
	stopPing := make(chan struct{})
	defer close(stopPing)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			case <-stopPing:
				return
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Clients only listen; drain reads until the connection closes.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()
	}
}
