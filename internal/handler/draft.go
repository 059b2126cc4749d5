package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dukerupert/apex/internal/draft"
)

type DraftHandler struct {
	cache *draft.Cache
}

func NewDraftHandler(c *draft.Cache) *DraftHandler {
	return &DraftHandler{cache: c}
}

// Get returns the saved draft for a form, or null when none exists.
func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	data := h.cache.Get(r.PathValue("form"))
	if data == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *DraftHandler) Save(w http.ResponseWriter, r *http.Request) {
	var data json.RawMessage
	if err := decode(r, &data); err != nil {
		writeError(w, err)
		return
	}

	if err := h.cache.Save(r.PathValue("form"), data); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *DraftHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Clear(r.PathValue("form")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
