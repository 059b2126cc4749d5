package handler

import (
	"net/http"

	"github.com/dukerupert/apex/internal/audit"
)

type AuditHandler struct {
	log *audit.Log
}

func NewAuditHandler(log *audit.Log) *AuditHandler {
	return &AuditHandler{log: log}
}

// List returns the session user's activity, newest first.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.log.List())
}
