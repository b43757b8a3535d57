package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/lcalzada-xor/wguard/internal/core/domain"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 64
)

// WSMessage is the envelope of every pushed message.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type client struct {
	conn *gws.Conn
	send chan []byte
}

// WSManager pushes alerts to connected websocket clients. It implements
// ports.AlertSink; Notify never blocks on a slow client.
type WSManager struct {
	upgrader gws.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	dropped int64
}

func NewWSManager(logger *slog.Logger) *WSManager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &WSManager{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
	m.upgrader = gws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     m.checkOrigin,
	}
	return m
}

// checkOrigin accepts requests without an Origin header and same-host origins.
func (m *WSManager) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err == nil && u.Host == r.Host {
		return true
	}
	m.logger.Warn("websocket origin rejected", "origin", origin)
	return false
}

// HandleWebSocket upgrades the request and registers the client.
func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	m.mu.Lock()
	m.clients[c] = struct{}{}
	m.mu.Unlock()
	m.logger.Info("websocket connected", "remote", r.RemoteAddr)

	go m.writeLoop(c)
	go m.readLoop(c)
}

func (m *WSManager) readLoop(c *client) {
	defer m.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (m *WSManager) writeLoop(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(gws.TextMessage, data); err != nil {
			m.remove(c)
			return
		}
	}
	c.conn.WriteControl(gws.CloseMessage,
		gws.FormatCloseMessage(gws.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func (m *WSManager) remove(c *client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[c]; !ok {
		return
	}
	delete(m.clients, c)
	close(c.send)
}

// Notify pushes an alert to every client. A client whose buffer is full
// misses the message.
func (m *WSManager) Notify(_ context.Context, alert domain.Alert) {
	m.broadcastMessage(WSMessage{Type: "alert", Payload: alert})
}

// BroadcastJob pushes a deauth job status update.
func (m *WSManager) BroadcastJob(status domain.DeauthJobStatus) {
	m.broadcastMessage(WSMessage{Type: "deauth.status", Payload: status})
}

func (m *WSManager) broadcastMessage(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		m.logger.Error("websocket marshal failed", "error", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for c := range m.clients {
		select {
		case c.send <- data:
		default:
			m.dropped++
		}
	}
}

// Clients returns the number of connected clients.
func (m *WSManager) Clients() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

// Dropped returns the number of messages skipped for slow clients.
func (m *WSManager) Dropped() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// Close disconnects every client.
func (m *WSManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for c := range m.clients {
		delete(m.clients, c)
		close(c.send)
	}
}
