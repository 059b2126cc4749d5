package handler

import (
	"net/http"

	"github.com/dukerupert/apex/internal/store"
)

type NotificationHandler struct {
	store *store.NotificationStore
}

func NewNotificationHandler(s *store.NotificationStore) *NotificationHandler {
	return &NotificationHandler{store: s}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.List())
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.store.MarkRead(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.store.MarkAllRead(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}
