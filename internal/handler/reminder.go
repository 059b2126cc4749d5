package handler

import (
	"net/http"
	"time"

	"github.com/dukerupert/apex/internal/apperr"
	"github.com/dukerupert/apex/internal/model"
	"github.com/dukerupert/apex/internal/store"
	"github.com/dukerupert/apex/internal/websocket"
)

type ReminderHandler struct {
	store *store.ReminderStore
	hub   *websocket.Hub
}

func NewReminderHandler(s *store.ReminderStore, hub *websocket.Hub) *ReminderHandler {
	return &ReminderHandler{store: s, hub: hub}
}

func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.List())
}

func (h *ReminderHandler) Save(w http.ResponseWriter, r *http.Request) {
	var patch model.ReminderPatch
	if err := decode(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	created := patch.ID == ""
	rem, err := h.store.Save(patch)
	if err != nil {
		writeError(w, err)
		return
	}

	action := "updated"
	status := http.StatusOK
	if created {
		action = "created"
		status = http.StatusCreated
	}
	h.hub.Broadcast(websocket.ChangeEvent("reminder", action, rem.ID))
	writeJSON(w, status, rem)
}

func (h *ReminderHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.Dismiss(id); err != nil {
		writeError(w, err)
		return
	}

	h.hub.Broadcast(websocket.ChangeEvent("reminder", "dismissed", id))
	writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

type snoozeRequest struct {
	Until time.Time `json:"until"`
}

func (h *ReminderHandler) Snooze(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req snoozeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !req.Until.After(time.Now()) {
		writeError(w, apperr.ErrValidation)
		return
	}

	if err := h.store.Snooze(id, req.Until); err != nil {
		writeError(w, err)
		return
	}

	h.hub.Broadcast(websocket.ChangeEvent("reminder", "snoozed", id))
	writeJSON(w, http.StatusOK, map[string]string{"status": "snoozed"})
}
