package handler

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Ch4rC0M1n0U/osintgenerator/internal/security/auth"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/service"
)

// ActivityHandler pushes bundle lifecycle events to websocket subscribers.
// It doubles as the service.ActivityPublisher: the profile service publishes
// into it, connected clients receive JSON events.
type ActivityHandler struct {
	tokens         *auth.TokenManager
	logger         *slog.Logger
	allowedOrigins []string

	mu      sync.RWMutex
	clients map[*websocket.Conn]chan service.ActivityEvent
}

// NewActivityHandler creates a new activity feed handler
func NewActivityHandler(tokens *auth.TokenManager, logger *slog.Logger, allowedOrigins []string) *ActivityHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ActivityHandler{
		tokens:         tokens,
		logger:         logger,
		allowedOrigins: allowedOrigins,
		clients:        map[*websocket.Conn]chan service.ActivityEvent{},
	}
}

// Publish fans an event out to every connected client. Slow clients have
// their buffer dropped rather than blocking the publisher.
func (h *ActivityHandler) Publish(event service.ActivityEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn, ch := range h.clients {
		select {
		case ch <- event:
		default:
			h.logger.Warn("dropping activity event for slow client",
				slog.String("remote", conn.RemoteAddr().String()),
			)
		}
	}
}

// upgrader is initialized per-request to use instance's allowed origins
func (h *ActivityHandler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Allow requests with no origin (e.g., non-browser clients)
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeHTTP handles GET /ws/activity?token=...
// Browsers cannot set an Authorization header on websocket upgrades, so the
// JWT arrives as a query parameter instead.
func (h *ActivityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	upgrader := h.getUpgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	events := make(chan service.ActivityEvent, 16)
	h.mu.Lock()
	h.clients[ws] = events
	h.mu.Unlock()

	h.logger.Info("activity feed client connected",
		slog.Int64("user_id", claims.UserID),
		slog.String("remote", ws.RemoteAddr().String()),
	)

	defer func() {
		h.mu.Lock()
		delete(h.clients, ws)
		h.mu.Unlock()
		ws.Close()
	}()

	// Reader goroutine: we never expect client messages, but reading is what
	// surfaces the close frame.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case event := <-events:
			if err := ws.WriteJSON(event); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logger.Debug("activity feed client closed",
						slog.Int64("user_id", claims.UserID),
					)
				}
				return
			}
		case <-ticker.C:
			_ = ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
