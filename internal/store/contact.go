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

const contactsKey = "apex_contacts_v3"

type ContactStore struct {
	mu    sync.Mutex
	store kv.Store
	auth  *auth.Service
	audit *audit.Log
}

func NewContactStore(store kv.Store, authSvc *auth.Service, auditLog *audit.Log) *ContactStore {
	return &ContactStore{store: store, auth: authSvc, audit: auditLog}
}

func (s *ContactStore) List() []model.Contact {
	user := s.auth.CurrentUser()
	if user == nil {
		return []model.Contact{}
	}

	all := collection.Load[model.Contact](s.store, contactsKey)
	mine := make([]model.Contact, 0, len(all))
	for _, c := range all {
		if c.UserID == user.ID {
			mine = append(mine, c)
		}
	}
	return mine
}

func (s *ContactStore) Save(patch model.ContactPatch) (*model.Contact, error) {
	user := s.auth.CurrentUser()
	if user == nil {
		return nil, apperr.ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := collection.Load[model.Contact](s.store, contactsKey)
	now := time.Now()

	if patch.ID != "" {
		idx := -1
		for i, c := range all {
			if c.ID == patch.ID && c.UserID == user.ID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, apperr.ErrNotFound
		}

		c := all[idx]
		patch.Apply(&c)
		if !now.After(c.UpdatedAt) {
			now = c.UpdatedAt.Add(time.Nanosecond)
		}
		c.UpdatedAt = now

		all[idx] = c
		if err := collection.Save(s.store, contactsKey, all); err != nil {
			return nil, fmt.Errorf("save contacts: %w", err)
		}
		s.audit.Record("UPDATE", c.ID, model.EntityContact,
			fmt.Sprintf("Contact %s updated.", c.Name))
		return &c, nil
	}

	c := model.Contact{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Name:      "Unknown",
		Company:   "Unknown",
		CreatedAt: now,
		UpdatedAt: now,
	}
	patch.Apply(&c)

	all = append([]model.Contact{c}, all...)
	if err := collection.Save(s.store, contactsKey, all); err != nil {
		return nil, fmt.Errorf("save contacts: %w", err)
	}
	s.audit.Record("CREATE", c.ID, model.EntityContact,
		fmt.Sprintf("New contact %s added.", c.Name))
	return &c, nil
}

func (s *ContactStore) SaveBatch(patches []model.ContactPatch) error {
	user := s.auth.CurrentUser()
	if user == nil {
		return apperr.ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := collection.Load[model.Contact](s.store, contactsKey)
	now := time.Now()

	imported := make([]model.Contact, 0, len(patches))
	for _, patch := range patches {
		c := model.Contact{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Name:      "Imported Contact",
			Company:   "Unknown",
			Notes:     "Imported via CSV",
			CreatedAt: now,
			UpdatedAt: now,
		}
		patch.Apply(&c)
		imported = append(imported, c)
	}

	if err := collection.Save(s.store, contactsKey, append(imported, all...)); err != nil {
		return fmt.Errorf("save contacts: %w", err)
	}
	s.audit.Record("BATCH_IMPORT", "CSV", model.EntityContact,
		fmt.Sprintf("Batch imported %d contacts.", len(imported)))
	return nil
}

func (s *ContactStore) Delete(id string) error {
	user := s.auth.CurrentUser()
	if user == nil {
		return apperr.ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := collection.Load[model.Contact](s.store, contactsKey)
	kept := make([]model.Contact, 0, len(all))
	for _, c := range all {
		if c.ID == id && c.UserID == user.ID {
			continue
		}
		kept = append(kept, c)
	}

	if len(kept) == len(all) {
		return apperr.ErrDeleteFailure
	}

	if err := collection.Save(s.store, contactsKey, kept); err != nil {
		return fmt.Errorf("save contacts: %w", err)
	}
	s.audit.Record("DELETE", id, model.EntityContact,
		fmt.Sprintf("Contact purged from registry: %s", id))
	return nil
}
