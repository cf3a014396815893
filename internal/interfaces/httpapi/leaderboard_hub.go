package httpapi

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/playoff-pool/internal/domain/scoring"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 512
	wsSendBuffer     = 16
	hubBroadcastSize = 32
)

// LeaderboardSource supplies the standings pushed to live clients.
type LeaderboardSource interface {
	Leaderboard(ctx context.Context) ([]scoring.Standing, error)
}

type leaderboardMessage struct {
	Type      string        `json:"type"`
	SentAt    time.Time     `json:"sent_at"`
	Standings []standingDTO `json:"standings"`
}

type hubClient struct {
	hub  *LeaderboardHub
	conn *websocket.Conn
	send chan []byte
}

// LeaderboardHub fans leaderboard snapshots out to websocket clients. It satisfies
// usecase.LeaderboardNotifier; Run must be running for clients to be served.
type LeaderboardHub struct {
	logger     *logging.Logger
	upgrader   websocket.Upgrader
	register   chan *hubClient
	unregister chan *hubClient
	broadcast  chan []byte
	done       chan struct{}
	clients    map[*hubClient]struct{}
	count      atomic.Int64

	mu     sync.RWMutex
	source LeaderboardSource
	now    func() time.Time
}

func NewLeaderboardHub(logger *logging.Logger, allowedOrigins []string) *LeaderboardHub {
	if logger == nil {
		logger = logging.Default()
	}

	h := &LeaderboardHub{
		logger:     logger,
		register:   make(chan *hubClient),
		unregister: make(chan *hubClient),
		broadcast:  make(chan []byte, hubBroadcastSize),
		done:       make(chan struct{}),
		clients:    make(map[*hubClient]struct{}),
		now:        time.Now,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// SetSource binds the standings provider. The scoring service takes the hub as its
// notifier, so the two are wired after both exist.
func (h *LeaderboardHub) SetSource(source LeaderboardSource) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.source = source
}

func (h *LeaderboardHub) leaderboardSource() LeaderboardSource {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.source
}

// Clients is the number of connected websocket clients.
func (h *LeaderboardHub) Clients() int {
	return int(h.count.Load())
}

// Run owns the client set until ctx is done, then closes every client.
func (h *LeaderboardHub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.count.Store(0)
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Store(int64(len(h.clients)))
			h.logger.Debug("leaderboard client registered", "clients", len(h.clients))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.count.Store(int64(len(h.clients)))
				h.logger.Debug("leaderboard client unregistered", "clients", len(h.clients))
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow reader: drop it rather than stall every other client.
					delete(h.clients, c)
					close(c.send)
					h.logger.Warn("leaderboard client dropped, send buffer full")
				}
			}
			h.count.Store(int64(len(h.clients)))
		}
	}
}

// LeaderboardChanged pushes the current standings to every connected client. It
// never blocks the caller: with no clients it does nothing, and a full broadcast
// queue drops the update.
func (h *LeaderboardHub) LeaderboardChanged(ctx context.Context) {
	ctx, span := startSpan(ctx, "httpapi.LeaderboardHub.LeaderboardChanged")
	defer span.End()

	if h.Clients() == 0 {
		return
	}
	msg, err := h.snapshot(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "leaderboard snapshot failed", "error", err)
		return
	}

	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		h.logger.WarnContext(ctx, "leaderboard broadcast queue full, update dropped")
	}
}

func (h *LeaderboardHub) snapshot(ctx context.Context) ([]byte, error) {
	source := h.leaderboardSource()
	standings := []scoring.Standing{}
	if source != nil {
		items, err := source.Leaderboard(ctx)
		if err != nil {
			return nil, err
		}
		standings = items
	}
	return sonic.Marshal(leaderboardMessage{
		Type:      "leaderboard",
		SentAt:    h.now().UTC(),
		Standings: standingsToDTO(standings),
	})
}

// ServeWS upgrades the request and streams leaderboard snapshots, starting with the
// current one.
func (h *LeaderboardHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.WarnContext(ctx, "websocket upgrade failed", "error", err)
		return
	}

	c := &hubClient{hub: h, conn: conn, send: make(chan []byte, wsSendBuffer)}
	if msg, err := h.snapshot(ctx); err == nil {
		c.send <- msg
	} else {
		h.logger.WarnContext(ctx, "initial leaderboard snapshot failed", "error", err)
	}

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump only services control frames; client messages are discarded.
func (c *hubClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(wsMaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("leaderboard client read failed", "error", err)
			}
			return
		}
	}
}

func (c *hubClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// originChecker mirrors the CORS allow-list. An empty list or "*" accepts any origin;
// requests without an Origin header (non-browser clients) are always accepted.
func originChecker(allowedOrigins []string) func(*http.Request) bool {
	allowAll := len(allowedOrigins) == 0
	allowMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		candidate := strings.TrimSpace(origin)
		if candidate == "*" {
			allowAll = true
			continue
		}
		if candidate != "" {
			allowMap[candidate] = struct{}{}
		}
	}

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if allowAll || origin == "" {
			return true
		}
		_, ok := allowMap[origin]
		return ok
	}
}
