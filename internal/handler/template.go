package handler

import (
	"net/http"

	"github.com/dukerupert/apex/internal/model"
	"github.com/dukerupert/apex/internal/store"
	"github.com/dukerupert/apex/internal/websocket"
)

type TemplateHandler struct {
	store *store.TemplateStore
	hub   *websocket.Hub
}

func NewTemplateHandler(s *store.TemplateStore, hub *websocket.Hub) *TemplateHandler {
	return &TemplateHandler{store: s, hub: hub}
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.List())
}

func (h *TemplateHandler) Save(w http.ResponseWriter, r *http.Request) {
	var patch model.TemplatePatch
	if err := decode(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	created := patch.ID == ""
	tpl, err := h.store.Save(patch)
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
	h.hub.Broadcast(websocket.ChangeEvent("template", action, tpl.ID))
	writeJSON(w, status, tpl)
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.Delete(id); err != nil {
		writeError(w, err)
		return
	}

	h.hub.Broadcast(websocket.ChangeEvent("template", "deleted", id))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
