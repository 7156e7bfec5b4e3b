package handler

import (
	"log/slog"
	"net/http"

	"github.com/ProofINer/proofin-backend/internal/domain"
	"github.com/ProofINer/proofin-backend/internal/service"
)

// CreateNotificationRequest carries a manually created notification.
type CreateNotificationRequest struct {
	UserID  string         `json:"userId"`
	Type    string         `json:"type"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// NotificationHandler handles the per-user notification feeds.
type NotificationHandler struct {
	notifications *service.NotificationService
	logger        *slog.Logger
}

// NewNotificationHandler creates the notification handler.
func NewNotificationHandler(notifications *service.NotificationService, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

// Create handles POST /api/notifications.
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateNotificationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	n, err := h.notifications.Create(req.UserID, domain.NotificationType(req.Type), req.Title, req.Message, req.Data)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, n)
}

// ListForUser handles GET /api/notifications/user/{address}. The
// response carries the unread count alongside the list.
func (h *NotificationHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	list, unread, err := h.notifications.ListForUser(r.PathValue("address"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"notifications": list,
		"count":         len(list),
		"unreadCount":   unread,
	})
}

// UnreadCount handles GET /api/notifications/user/{address}/unread.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	unread, err := h.notifications.UnreadCount(r.PathValue("address"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"unreadCount": unread})
}

// MarkRead handles PUT /api/notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.MarkRead(r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, n)
}

// MarkAllRead handles PUT /api/notifications/user/{address}/read-all.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	count, err := h.notifications.MarkAllRead(r.PathValue("address"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"updated": count})
}

// Delete handles DELETE /api/notifications/{id}.
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	removed, err := h.notifications.Delete(r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !removed {
		writeErrorMessage(w, http.StatusNotFound, "notification not found")
		return
	}
	writeMessage(w, http.StatusOK, "notification deleted")
}

// DeleteAllForUser handles DELETE /api/notifications/user/{address}.
func (h *NotificationHandler) DeleteAllForUser(w http.ResponseWriter, r *http.Request) {
	count, err := h.notifications.DeleteAllForUser(r.PathValue("address"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"deleted": count})
}
