package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ProofINer/proofin-backend/internal/domain"
)

// NotificationHub fans freshly created notifications out to live
// websocket subscribers, one channel per connection. It implements
// service.NotificationPublisher.
type NotificationHub struct {
	mu      sync.RWMutex
	clients map[string]map[chan []byte]bool
	logger  *slog.Logger
}

// NewNotificationHub creates an empty hub.
func NewNotificationHub(logger *slog.Logger) *NotificationHub {
	return &NotificationHub{
		clients: map[string]map[chan []byte]bool{},
		logger:  logger,
	}
}

// Publish sends a notification to every live subscriber for the user.
// Slow subscribers are skipped rather than blocked on.
func (hub *NotificationHub) Publish(userID string, n *domain.Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		hub.logger.Error("failed to marshal notification", slog.String("error", err.Error()))
		return
	}

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	for ch := range hub.clients[domain.NormalizeAddress(userID)] {
		select {
		case ch <- payload:
		default:
		}
	}
}

func (hub *NotificationHub) subscribe(userID string) chan []byte {
	ch := make(chan []byte, 16)
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if hub.clients[userID] == nil {
		hub.clients[userID] = map[chan []byte]bool{}
	}
	hub.clients[userID][ch] = true
	return ch
}

func (hub *NotificationHub) unsubscribe(userID string, ch chan []byte) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	delete(hub.clients[userID], ch)
	if len(hub.clients[userID]) == 0 {
		delete(hub.clients, userID)
	}
}

// StreamHandler upgrades websocket connections for live notification
// delivery.
type StreamHandler struct {
	hub            *NotificationHub
	logger         *slog.Logger
	allowedOrigins []string
}

// NewStreamHandler creates the stream handler.
func NewStreamHandler(hub *NotificationHub, allowedOrigins []string, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{hub: hub, logger: logger, allowedOrigins: allowedOrigins}
}

func (h *StreamHandler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Non-browser clients carry no origin.
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed || allowed == "*" {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeHTTP handles GET /ws/notifications/{address}.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	address := domain.NormalizeAddress(r.PathValue("address"))
	if address == "" {
		http.Error(w, "missing address", http.StatusBadRequest)
		return
	}

	upgrader := h.getUpgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer ws.Close()

	ch := h.hub.subscribe(address)
	defer h.hub.unsubscribe(address, ch)

	h.logger.Debug("notification stream opened", slog.String("address", address))

	// Reader goroutine detects the peer closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
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
		case payload := <-ch:
			if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logger.Debug("websocket closed", slog.String("address", address))
				}
				return
			}
		case <-ticker.C:
			_ = ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
