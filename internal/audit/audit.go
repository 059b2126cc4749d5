// Package audit keeps the append-only forensic trail of mutations. The
// trail is auxiliary: a failed append must never block the mutation that
// triggered it.
package audit

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/apex/internal/auth"
	"github.com/dukerupert/apex/internal/collection"
	"github.com/dukerupert/apex/internal/kv"
	"github.com/dukerupert/apex/internal/model"
)

const (
	logsKey = "apex_logs_v3"

	// maxEntries caps the stored trail. Older entries are discarded, not
	// archived.
	maxEntries = 1000
)

type Log struct {
	// mu serializes the load-prepend-save below; appends arrive from
	// concurrent handler goroutines sharing one namespace.
	mu     sync.Mutex
	store  kv.Store
	auth   *auth.Service
	logger *slog.Logger
}

func NewLog(store kv.Store, authSvc *auth.Service, logger *slog.Logger) *Log {
	return &Log{store: store, auth: authSvc, logger: logger}
}

// Append prepends one entry, newest first, and truncates to the most recent
// 1000. Without a session it is a no-op: an entry with no owning user is
// meaningless. The returned error is discardable; callers log and move on.
func (l *Log) Append(action, entityID string, entityType model.LogEntityType, message string, status model.LogStatus) error {
	user := l.auth.CurrentUser()
	if user == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries := collection.Load[model.ExecutionLog](l.store, logsKey)
	entry := model.ExecutionLog{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Action:     action,
		EntityID:   entityID,
		EntityType: entityType,
		Status:     status,
		Message:    message,
		ExecutedAt: time.Now(),
	}

	entries = append([]model.ExecutionLog{entry}, entries...)
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}

	if err := collection.Save(l.store, logsKey, entries); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// Record is Append with the error swallowed into a diagnostic, for the
// mutation paths where the trail must never interfere.
func (l *Log) Record(action, entityID string, entityType model.LogEntityType, message string) {
	if err := l.Append(action, entityID, entityType, message, model.LogSuccess); err != nil {
		l.logger.Warn("audit append failed", "action", action, "error", err)
	}
}

// RecordFailure is Record with FAILURE status.
func (l *Log) RecordFailure(action, entityID string, entityType model.LogEntityType, message string) {
	if err := l.Append(action, entityID, entityType, message, model.LogFailure); err != nil {
		l.logger.Warn("audit append failed", "action", action, "error", err)
	}
}

// List returns the current user's entries in stored (newest-first) order.
// Unauthenticated reads return an empty trail.
func (l *Log) List() []model.ExecutionLog {
	user := l.auth.CurrentUser()
	if user == nil {
		return []model.ExecutionLog{}
	}

	entries := collection.Load[model.ExecutionLog](l.store, logsKey)
	mine := make([]model.ExecutionLog, 0, len(entries))
	for _, e := range entries {
		if e.UserID == user.ID {
			mine = append(mine, e)
		}
	}
	return mine
}
