package store

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dukerupert/apex/internal/apperr"
	"github.com/dukerupert/apex/internal/audit"
	"github.com/dukerupert/apex/internal/auth"
	"github.com/dukerupert/apex/internal/collection"
	"github.com/dukerupert/apex/internal/kv"
	"github.com/dukerupert/apex/internal/model"
)

const templatesKey = "apex_templates_v3"

type TemplateStore struct {
	mu    sync.Mutex
	store kv.Store
	auth  *auth.Service
	audit *audit.Log
}

func NewTemplateStore(store kv.Store, authSvc *auth.Service, auditLog *audit.Log) *TemplateStore {
	return &TemplateStore{store: store, auth: authSvc, audit: auditLog}
}

func (s *TemplateStore) List() []model.OutreachTemplate {
	user := s.auth.CurrentUser()
	if user == nil {
		return []model.OutreachTemplate{}
	}

	all := collection.Load[model.OutreachTemplate](s.store, templatesKey)
	mine := make([]model.OutreachTemplate, 0, len(all))
	for _, t := range all {
		if t.UserID == user.ID {
			mine = append(mine, t)
		}
	}
	return mine
}

func (s *TemplateStore) Save(patch model.TemplatePatch) (*model.OutreachTemplate, error) {
	user := s.auth.CurrentUser()
	if user == nil {
		return nil, apperr.ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := collection.Load[model.OutreachTemplate](s.store, templatesKey)

	if patch.ID != "" {
		idx := -1
		for i, t := range all {
			if t.ID == patch.ID && t.UserID == user.ID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, apperr.ErrNotFound
		}

		t := all[idx]
		patch.Apply(&t)

		all[idx] = t
		if err := collection.Save(s.store, templatesKey, all); err != nil {
			return nil, fmt.Errorf("save templates: %w", err)
		}
		s.audit.Record("UPDATE", t.ID, model.EntityTemplate,
			fmt.Sprintf("Template %q modified.", t.Title))
		return &t, nil
	}

	t := model.OutreachTemplate{
		ID:       uuid.NewString(),
		UserID:   user.ID,
		Title:    "Untitled Draft",
		Category: model.EmailCold,
	}
	patch.Apply(&t)

	all = append([]model.OutreachTemplate{t}, all...)
	if err := collection.Save(s.store, templatesKey, all); err != nil {
		return nil, fmt.Errorf("save templates: %w", err)
	}
	s.audit.Record("CREATE", t.ID, model.EntityTemplate,
		fmt.Sprintf("New template %q created.", t.Title))
	return &t, nil
}

func (s *TemplateStore) Delete(id string) error {
	user := s.auth.CurrentUser()
	if user == nil {
		return apperr.ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := collection.Load[model.OutreachTemplate](s.store, templatesKey)
	kept := make([]model.OutreachTemplate, 0, len(all))
	for _, t := range all {
		if t.ID == id && t.UserID == user.ID {
			continue
		}
		kept = append(kept, t)
	}

	if len(kept) == len(all) {
		return apperr.ErrDeleteFailure
	}

	if err := collection.Save(s.store, templatesKey, kept); err != nil {
		return fmt.Errorf("save templates: %w", err)
	}
	s.audit.Record("DELETE", id, model.EntityTemplate,
		fmt.Sprintf("Template purged: %s", id))
	return nil
}
