package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nerrad567/posbridge/internal/infrastructure/logging"
	"github.com/nerrad567/posbridge/internal/session"
)

const (
	// writeWait bounds every frame write, including pings and close frames.
	writeWait = 10 * time.Second

	wsBufferSize = 1024
)

// upgrader accepts any origin. POS front ends are served from arbitrary local
// origins and the bridge listens on loopback by default; access control is
// the in-band auth command.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  wsBufferSize,
	WriteBufferSize: wsBufferSize,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// Hub tracks open websocket connections so they can be counted and closed
// on shutdown.
type Hub struct {
	logger *logging.Logger
	conns  map[*wsConn]struct{}
	closed bool
	mu     sync.RWMutex
}

// wsConn is one client connection and its session.
type wsConn struct {
	id      string
	conn    *websocket.Conn
	session *session.Session
	remote  string
}

// NewHub creates an empty hub.
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		logger: logger,
		conns:  make(map[*wsConn]struct{}),
	}
}

// register adds c unless the hub is already shut down.
func (h *Hub) register(c *wsConn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.conns[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *wsConn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

// ConnectionCount returns the number of open connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// AuthenticatedCount returns how many open connections have authenticated.
func (h *Hub) AuthenticatedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for c := range h.conns {
		if c.session.Authenticated() {
			n++
		}
	}
	return n
}

// CloseAll sends a going-away close frame to every connection and closes it.
// Connections arriving afterwards are refused.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*wsConn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, c := range conns {
		//nolint:errcheck // Best-effort close frame; the peer may already be gone
		c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		c.conn.Close()
	}
	if len(conns) > 0 {
		h.logger.Info("closed websocket connections", "count", len(conns))
	}
}

// handleWebSocket upgrades the request and runs the connection on the
// request goroutine until the client goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		s.logger.Debug("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	id := uuid.NewString()
	c := &wsConn{
		id:      id,
		conn:    conn,
		session: session.New(id),
		remote:  r.RemoteAddr,
	}
	if !s.hub.register(c) {
		conn.Close()
		return
	}
	defer s.hub.unregister(c)

	s.serveConn(c)
}

// serveConn reads commands one at a time and answers each before reading the
// next. It returns on any read or write failure.
func (s *Server) serveConn(c *wsConn) {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	defer c.conn.Close()

	log := s.logger.With("connection_id", c.id, "remote", c.remote)
	log.Info("websocket client connected")

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic recovered in websocket connection", "panic", r)
		}
	}()

	c.conn.SetReadLimit(int64(s.wsCfg.MaxMessageSize))

	pingInterval := time.Duration(s.wsCfg.PingInterval) * time.Second
	pongWait := time.Duration(s.wsCfg.PongTimeout) * time.Second
	if pingInterval > 0 {
		c.conn.SetPongHandler(func(string) error {
			return c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
		})
		go c.pingLoop(ctx, pingInterval)
	}

	for {
		if pingInterval > 0 {
			//nolint:errcheck // Best-effort deadline; a broken conn fails the read below
			c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
		}

		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read error", "error", err)
			} else {
				log.Info("websocket client disconnected")
			}
			return
		}
		if msgType != websocket.TextMessage {
			log.Debug("ignoring non-text frame", "type", msgType)
			continue
		}

		resp := s.dispatcher.Handle(ctx, c.session, data)

		payload, err := json.Marshal(resp)
		if err != nil {
			log.Error("failed to encode response", "error", err)
			return
		}
		//nolint:errcheck // Best-effort deadline; write error caught below
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Warn("failed to send response", "error", err)
			return
		}
	}
}

// pingLoop sends keepalive pings until ctx is cancelled or a ping fails.
// WriteControl is safe to call alongside the connection's other writes.
func (c *wsConn) pingLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
