// Package store holds the repository façades over the kv collections. Every
// mutation verifies the active session, enforces ownership, and leaves an
// audit entry. Reads are lenient: without a session they return empty data
// so UI refresh loops never crash.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/apex/internal/apperr"
	"github.com/dukerupert/apex/internal/audit"
	"github.com/dukerupert/apex/internal/auth"
	"github.com/dukerupert/apex/internal/collection"
	"github.com/dukerupert/apex/internal/kv"
	"github.com/dukerupert/apex/internal/model"
)

const recordsKey = "apex_records_v3"

const dateLayout = "2006-01-02"

type RecordStore struct {
	mu    sync.Mutex
	store kv.Store
	auth  *auth.Service
	audit *audit.Log
}

func NewRecordStore(store kv.Store, authSvc *auth.Service, auditLog *audit.Log) *RecordStore {
	return &RecordStore{store: store, auth: authSvc, audit: auditLog}
}

// List returns the current user's records, or an empty slice when
// unauthenticated.
func (s *RecordStore) List() []model.TrackingRecord {
	user := s.auth.CurrentUser()
	if user == nil {
		return []model.TrackingRecord{}
	}

	all := collection.Load[model.TrackingRecord](s.store, recordsKey)
	mine := make([]model.TrackingRecord, 0, len(all))
	for _, r := range all {
		if r.UserID == user.ID {
			mine = append(mine, r)
		}
	}
	return mine
}

// Save creates (no ID) or updates (ID set) one record. Creation is
// permissive: missing fields get defaults rather than rejections —
// validation is a UI concern upstream of this boundary. Updates fail with
// apperr.ErrNotFound unless a row matches both id and the session user.
func (s *RecordStore) Save(patch model.RecordPatch) (*model.TrackingRecord, error) {
	user := s.auth.CurrentUser()
	if user == nil {
		return nil, apperr.ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := collection.Load[model.TrackingRecord](s.store, recordsKey)
	now := time.Now()

	if patch.ID != "" {
		idx := -1
		for i, r := range all {
			if r.ID == patch.ID && r.UserID == user.ID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, apperr.ErrNotFound
		}

		rec := all[idx]
		patch.Apply(&rec)
		// updatedAt is monotonically non-decreasing even against a clock
		// that stands still between two calls.
		if !now.After(rec.UpdatedAt) {
			now = rec.UpdatedAt.Add(time.Nanosecond)
		}
		rec.UpdatedAt = now

		all[idx] = rec
		if err := collection.Save(s.store, recordsKey, all); err != nil {
			return nil, fmt.Errorf("save records: %w", err)
		}
		s.audit.Record("UPDATE", rec.ID, model.EntityRecord,
			fmt.Sprintf("Record updated for %s at %s", rec.RoleTitle, rec.Company))
		return &rec, nil
	}

	rec := newRecord(user.ID, now)
	patch.Apply(&rec)

	all = append([]model.TrackingRecord{rec}, all...)
	if err := collection.Save(s.store, recordsKey, all); err != nil {
		return nil, fmt.Errorf("save records: %w", err)
	}
	s.audit.Record("CREATE", rec.ID, model.EntityRecord,
		fmt.Sprintf("New tracking record for %s", rec.Company))
	return &rec, nil
}

// SaveBatch bulk-creates records with import defaulting, one write and one
// BATCH_IMPORT audit entry for the whole batch. Append-only: re-importing
// the same rows produces duplicates.
func (s *RecordStore) SaveBatch(patches []model.RecordPatch) error {
	user := s.auth.CurrentUser()
	if user == nil {
		return apperr.ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := collection.Load[model.TrackingRecord](s.store, recordsKey)
	now := time.Now()

	imported := make([]model.TrackingRecord, 0, len(patches))
	for _, patch := range patches {
		rec := newRecord(user.ID, now)
		rec.RoleTitle = "Imported Role"
		patch.Apply(&rec)

		// Import provenance fields are fixed regardless of input.
		rec.EmailType = model.EmailCold
		rec.SubjectLineUsed = "Imported via CSV"
		rec.ValuePitchSummary = "Imported"
		rec.ReplyReceived = false
		rec.FollowUpSent = false
		rec.Attachments = []model.Attachment{}

		imported = append(imported, rec)
	}

	if err := collection.Save(s.store, recordsKey, append(imported, all...)); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	s.audit.Record("BATCH_IMPORT", "CSV", model.EntitySystem,
		fmt.Sprintf("Batch imported %d records.", len(imported)))
	return nil
}

// Delete removes the record if it exists and belongs to the session user,
// otherwise fails with apperr.ErrDeleteFailure.
func (s *RecordStore) Delete(id string) error {
	user := s.auth.CurrentUser()
	if user == nil {
		return apperr.ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := collection.Load[model.TrackingRecord](s.store, recordsKey)
	kept := make([]model.TrackingRecord, 0, len(all))
	for _, r := range all {
		if r.ID == id && r.UserID == user.ID {
			continue
		}
		kept = append(kept, r)
	}

	if len(kept) == len(all) {
		s.audit.RecordFailure("DELETE_FAIL", id, model.EntityRecord,
			fmt.Sprintf("Failed attempt to delete record %s", id))
		return apperr.ErrDeleteFailure
	}

	if err := collection.Save(s.store, recordsKey, kept); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	s.audit.Record("DELETE", id, model.EntityRecord,
		fmt.Sprintf("Record purged from registry: %s", id))
	return nil
}

// newRecord carries the create-path defaults for omitted fields.
func newRecord(userID string, now time.Time) model.TrackingRecord {
	return model.TrackingRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		DateSent:    now.Format(dateLayout),
		Name:        "Unknown",
		Company:     "Unknown",
		RoleTitle:   "Unknown Role",
		EmailType:   model.EmailCold,
		Status:      model.StatusSent,
		Attachments: []model.Attachment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
