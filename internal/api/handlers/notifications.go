package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hugh/teamhub/internal/api/dto"
	"github.com/hugh/teamhub/internal/api/middleware"
	"github.com/hugh/teamhub/internal/notifications"
)

type NotificationHandler struct {
	notifications *notifications.Service
	logger        *slog.Logger
}

func NewNotificationHandler(svc *notifications.Service, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: svc, logger: logger}
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	inbox, err := h.notifications.ListForUser(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	out := dto.InboxDTO{
		Notifications: make([]dto.NotificationDTO, 0, len(inbox.Notifications)),
		UnreadCount:   inbox.UnreadCount,
	}
	for i := range inbox.Notifications {
		out.Notifications = append(out.Notifications, dto.NewNotificationDTO(&inbox.Notifications[i]))
	}
	writeData(w, http.StatusOK, out, "")
}

// MarkRead handles POST /api/v1/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	id, ok := urlID(w, r, "id", "Notification not found")
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, notifications.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Notification not found")
			return
		}
		writeServiceError(w, h.logger, err)
		return
	}
	writeMessage(w, "Notification marked as read")
}

// MarkAllRead handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	n, err := h.notifications.MarkAllRead(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, map[string]int64{"updated": n}, "All notifications marked as read")
}
