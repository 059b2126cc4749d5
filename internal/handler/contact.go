package handler

import (
	"net/http"

	"github.com/dukerupert/apex/internal/model"
	"github.com/dukerupert/apex/internal/store"
	"github.com/dukerupert/apex/internal/websocket"
)

type ContactHandler struct {
	store *store.ContactStore
	hub   *websocket.Hub
}

func NewContactHandler(s *store.ContactStore, hub *websocket.Hub) *ContactHandler {
	return &ContactHandler{store: s, hub: hub}
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.List())
}

func (h *ContactHandler) Save(w http.ResponseWriter, r *http.Request) {
	var patch model.ContactPatch
	if err := decode(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	created := patch.ID == ""
	contact, err := h.store.Save(patch)
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
	h.hub.Broadcast(websocket.ChangeEvent("contact", action, contact.ID))
	writeJSON(w, status, contact)
}

func (h *ContactHandler) SaveBatch(w http.ResponseWriter, r *http.Request) {
	var patches []model.ContactPatch
	if err := decode(r, &patches); err != nil {
		writeError(w, err)
		return
	}

	if err := h.store.SaveBatch(patches); err != nil {
		writeError(w, err)
		return
	}

	h.hub.Broadcast(websocket.ChangeEvent("contact", "imported", ""))
	writeJSON(w, http.StatusCreated, map[string]int{"imported": len(patches)})
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.Delete(id); err != nil {
		writeError(w, err)
		return
	}

	h.hub.Broadcast(websocket.ChangeEvent("contact", "deleted", id))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
