package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"PromoPulse/internal/domain/models"
	applogger "PromoPulse/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// FeedHub pushes every detection cycle's batch to connected dashboard
// clients. Slow clients whose send buffer fills are dropped rather than
// allowed to stall the broadcast.
type FeedHub struct {
	logger   *applogger.Logger
	upgrader websocket.Upgrader
	bufSize  int

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []*models.DetectedAnomaly
}

// NewFeedHub creates a hub. bufSize is the per-client batch buffer.
func NewFeedHub(l *applogger.Logger, bufSize int) *FeedHub {
	if l == nil {
		l = applogger.Nop()
	}
	if bufSize <= 0 {
		bufSize = 16
	}
	return &FeedHub{
		logger: l,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// dashboard origin enforcement happens at the edge proxy
			CheckOrigin: func(*http.Request) bool { return true },
		},
		bufSize: bufSize,
		clients: make(map[*client]struct{}),
	}
}

// RegisterRoutes attaches the feed endpoint.
func (h *FeedHub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/anomalies", h.Serve)
}

// Serve upgrades the connection and streams anomaly batches until the
// client goes away.
func (h *FeedHub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	cl := &client{conn: conn, send: make(chan []*models.DetectedAnomaly, h.bufSize)}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("feed client connected", applogger.Int("clients", n))

	go h.writeLoop(cl)
	go h.readLoop(cl)
	return nil
}

// Broadcast fans a batch out to every connected client. Empty batches are
// skipped. Never blocks the detection cycle.
func (h *FeedHub) Broadcast(batch []*models.DetectedAnomaly) {
	if len(batch) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- batch:
		default:
			// client cannot keep up
			delete(h.clients, cl)
			close(cl.send)
			h.logger.Warn("feed client dropped: send buffer full")
		}
	}
}

// Close disconnects all clients.
func (h *FeedHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		delete(h.clients, cl)
		close(cl.send)
	}
}

func (h *FeedHub) writeLoop(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()

	for {
		select {
		case batch, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := cl.conn.WriteJSON(batch); err != nil {
				h.remove(cl)
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(cl)
				return
			}
		}
	}
}

func (h *FeedHub) readLoop(cl *client) {
	// clients only listen; the read loop just detects disconnects
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			h.remove(cl)
			return
		}
	}
}

func (h *FeedHub) remove(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
	h.mu.Unlock()
}
