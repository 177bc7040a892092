// Package ws fans store change events out to connected UI clients.
package ws

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"log/slog"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMessage = 64 << 10
)

const sendBuffer = 128

type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type client struct {
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once

	mu     sync.Mutex
	closed bool
	topics map[string]struct{} // nil receives every topic
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
		_ = c.conn.Close()
	})
}

// trySend queues b without blocking and reports false when the buffer is full.
func (c *client) trySend(b []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

func (c *client) wants(topic string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.topics == nil {
		return true
	}
	_, ok := c.topics[topic]
	return ok
}

func (c *client) subscribe(topics []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(topics) == 0 {
		c.topics = nil
		return
	}
	c.topics = make(map[string]struct{}, len(topics))
	for _, t := range topics {
		c.topics[t] = struct{}{}
	}
}

type Manager struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger:  logger.With("component", "ws"),
		clients: make(map[*client]struct{}),
	}
}

func (m *Manager) Handler() http.Handler {
	return http.HandlerFunc(m.handle)
}

// Publish implements feed.Publisher. It never blocks; clients that cannot keep up are dropped.
func (m *Manager) Publish(topic string, payload any) {
	m.Broadcast(Envelope{Type: topic, Payload: payload})
}

func (m *Manager) Broadcast(env Envelope) {
	clients := m.snapshotClients()
	if len(clients) == 0 {
		return
	}
	b, err := encodeJSON(env)
	if err != nil {
		m.logger.Error("ws broadcast marshal failed", "error", err, "type", env.Type)
		return
	}

	for _, c := range clients {
		if !c.wants(env.Type) {
			continue
		}
		if !c.trySend(b) {
			m.logger.Warn("ws slow client dropped", "type", env.Type)
			m.untrack(c)
			c.close()
		}
	}
}

func (m *Manager) CloseAll() {
	clients := m.snapshotClients()
	for _, c := range clients {
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutdown"),
			time.Now().Add(writeWait),
		)
		m.untrack(c)
		c.close()
	}
}

func (m *Manager) ClientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (m *Manager) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Warn("ws upgrade failed", "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	m.track(c)
	defer m.untrack(c)
	defer c.close()

	m.logger.Info("ws connected", "remoteAddr", r.RemoteAddr)

	conn.SetReadLimit(maxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go m.writePump(c, r.RemoteAddr)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			m.logger.Info("ws disconnected", "remoteAddr", r.RemoteAddr, "error", err)
			return
		}
		m.handleClientMessage(c, msg)
	}
}

func (m *Manager) writePump(c *client, remoteAddr string) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				m.logger.Info("ws write failed", "remoteAddr", remoteAddr, "error", err)
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}

func (m *Manager) snapshotClients() []*client {
	m.mu.Lock()
	defer m.mu.Unlock()

	clients := make([]*client, 0, len(m.clients))
	for c := range m.clients {
		clients = append(clients, c)
	}
	return clients
}

func (m *Manager) track(c *client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[c] = struct{}{}
}

func (m *Manager) untrack(c *client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, c)
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

type clientMessage struct {
	Type   string   `json:"type"`
	Topics []string `json:"topics"`
}

// handleClientMessage accepts {"type":"subscribe","topics":[...]}; an empty list restores every
// topic. Anything else is ignored.
func (m *Manager) handleClientMessage(c *client, msg []byte) {
	var cm clientMessage
	if err := json.Unmarshal(msg, &cm); err != nil {
		return
	}

	switch cm.Type {
	case "subscribe":
		c.subscribe(cm.Topics)
		b, err := encodeJSON(Envelope{Type: "subscribed", Payload: map[string]any{"topics": cm.Topics}})
		if err != nil {
			return
		}
		_ = c.trySend(b)
	}
}
