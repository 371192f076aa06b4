package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/phrazzld/taskflow/internal/domain"
	"github.com/phrazzld/taskflow/internal/platform/logger"
)

const (
	// EventProjectUpdated names the only event this package sends.
	EventProjectUpdated = "project.updated"

	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth. Updates
	// arriving while it is full are dropped for that client.
	sendBufSize = 16

	maxMessageSize = 512
)

// Subscriber registers handlers for a project's updates.
// *events.Broker satisfies it.
type Subscriber interface {
	Subscribe(ctx context.Context, projectID uuid.UUID, fn func(domain.Project)) (func(), error)
}

// Message is the JSON envelope written for every update.
type Message struct {
	Event string         `json:"event"`
	Data  domain.Project `json:"data"`
}

// Config controls the upgrade handshake.
type Config struct {
	// AllowedOrigins lists the Origin values accepted on upgrade. When
	// empty, only same-host origins are accepted.
	AllowedOrigins []string
}

// Handler upgrades GET /api/projects/{id}/updates and relays the project's
// updates until the client disconnects.
type Handler struct {
	updates  Subscriber
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHandler creates a Handler that subscribes through updates.
func NewHandler(updates Subscriber, cfg Config, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	h := &Handler{
		updates: updates,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger:  log.With(slog.String("component", "ws_handler")),
		clients: make(map[*client]struct{}),
	}
	if len(cfg.AllowedOrigins) > 0 {
		allowed := slices.Clone(cfg.AllowedOrigins)
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			return slices.Contains(allowed, r.Header.Get("Origin"))
		}
	}
	return h
}

type client struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// ServeHTTP serves one client. It blocks until the connection closes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the error response.
		log.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufSize),
		done: make(chan struct{}),
	}
	h.register(c)
	defer h.unregister(c)

	unsubscribe, err := h.updates.Subscribe(r.Context(), projectID, func(p domain.Project) {
		h.deliver(c, p)
	})
	if err != nil {
		log.Warn("failed to subscribe websocket client",
			slog.String("project_id", projectID.String()),
			slog.String("error", err.Error()))
		msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "updates unavailable")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
		_ = conn.Close()
		return
	}
	defer unsubscribe()

	log.Debug("websocket client connected", slog.String("project_id", projectID.String()))

	go c.writePump()
	c.readPump()
	c.close()

	log.Debug("websocket client disconnected", slog.String("project_id", projectID.String()))
}

// deliver queues p for c without blocking the broker's worker.
func (h *Handler) deliver(c *client, p domain.Project) {
	data, err := json.Marshal(Message{Event: EventProjectUpdated, Data: p})
	if err != nil {
		h.logger.Error("failed to encode project update", slog.String("error", err.Error()))
		return
	}
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- data:
	default:
		h.logger.Debug("dropping update for slow websocket client",
			slog.String("project_id", p.ID.String()))
	}
}

// Count returns the number of connected clients.
func (h *Handler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAll sends a close frame to every client. http.Server.Shutdown does
// not close hijacked connections, so the server calls this on shutdown.
func (h *Handler) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.close()
	}
}

func (h *Handler) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Handler) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// writePump forwards queued messages and sends pings. It owns all writes
// to the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return

		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.close()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}

// readPump handles pong and close frames and detects disconnects. Clients
// are not expected to send data; anything they send is discarded.
func (c *client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
