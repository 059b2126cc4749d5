package handler

import (
	"net/http"

	"github.com/dukerupert/apex/internal/backup"
)

type BackupHandler struct {
	manager *backup.Manager
}

func NewBackupHandler(m *backup.Manager) *BackupHandler {
	return &BackupHandler{manager: m}
}

func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Status())
}

// Run triggers a snapshot synchronously and returns the object key.
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.manager.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "backup not configured"})
		return
	}

	key, err := h.manager.RunNow(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key})
}
