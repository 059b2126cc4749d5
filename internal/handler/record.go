package handler

import (
	"net/http"

	"github.com/dukerupert/apex/internal/model"
	"github.com/dukerupert/apex/internal/store"
	"github.com/dukerupert/apex/internal/websocket"
)

type RecordHandler struct {
	store *store.RecordStore
	hub   *websocket.Hub
}

func NewRecordHandler(s *store.RecordStore, hub *websocket.Hub) *RecordHandler {
	return &RecordHandler{store: s, hub: hub}
}

func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.List())
}

// Save creates when the patch carries no ID and updates otherwise.
func (h *RecordHandler) Save(w http.ResponseWriter, r *http.Request) {
	var patch model.RecordPatch
	if err := decode(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	created := patch.ID == ""
	rec, err := h.store.Save(patch)
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
	h.hub.Broadcast(websocket.ChangeEvent("record", action, rec.ID))
	writeJSON(w, status, rec)
}

func (h *RecordHandler) SaveBatch(w http.ResponseWriter, r *http.Request) {
	var patches []model.RecordPatch
	if err := decode(r, &patches); err != nil {
		writeError(w, err)
		return
	}

	if err := h.store.SaveBatch(patches); err != nil {
		writeError(w, err)
		return
	}

	h.hub.Broadcast(websocket.ChangeEvent("record", "imported", ""))
	writeJSON(w, http.StatusCreated, map[string]int{"imported": len(patches)})
}

func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.Delete(id); err != nil {
		writeError(w, err)
		return
	}

	h.hub.Broadcast(websocket.ChangeEvent("record", "deleted", id))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
