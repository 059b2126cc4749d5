package store

import (
	"errors"
	"testing"

	"github.com/dukerupert/apex/internal/apperr"
	"github.com/dukerupert/apex/internal/model"
)

func TestContactCRUD(t *testing.T) {
	e := setupEnv(t)
	e.signup(t, "Ada", "ada@x.com")
	cs := NewContactStore(e.store, e.auth, e.audit)

	c, err := cs.Save(model.ContactPatch{
		Name:    strPtr("Grace"),
		Email:   strPtr("grace@acme.com"),
		Company: strPtr("Acme"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID == "" {
		t.Error("expected non-empty id")
	}
	if !c.CreatedAt.Equal(c.UpdatedAt) {
		t.Error("createdAt != updatedAt on create")
	}

	updated, err := cs.Save(model.ContactPatch{ID: c.ID, Notes: strPtr("met at conf")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Notes != "met at conf" || updated.Name != "Grace" {
		t.Errorf("merge wrong: %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Error("updatedAt not bumped")
	}

	if err := cs.Delete(c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(cs.List()) != 0 {
		t.Error("contact still listed after delete")
	}
}

func TestContactCreateDefaults(t *testing.T) {
	e := setupEnv(t)
	e.signup(t, "Ada", "ada@x.com")
	cs := NewContactStore(e.store, e.auth, e.audit)

	c, err := cs.Save(model.ContactPatch{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Name != "Unknown" || c.Company != "Unknown" {
		t.Errorf("defaults = %q %q", c.Name, c.Company)
	}
}

func TestContactOwnership(t *testing.T) {
	e := setupEnv(t)
	cs := NewContactStore(e.store, e.auth, e.audit)

	e.signup(t, "Ada", "ada@x.com")
	c, _ := cs.Save(model.ContactPatch{Name: strPtr("Grace")})
	e.auth.Logout()

	e.signup(t, "Bob", "bob@x.com")
	if len(cs.List()) != 0 {
		t.Error("bob sees ada's contacts")
	}
	if _, err := cs.Save(model.ContactPatch{ID: c.ID, Name: strPtr("stolen")}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := cs.Delete(c.ID); !errors.Is(err, apperr.ErrDeleteFailure) {
		t.Errorf("expected ErrDeleteFailure, got %v", err)
	}
}

func TestContactBatchImport(t *testing.T) {
	e := setupEnv(t)
	e.signup(t, "Ada", "ada@x.com")
	cs := NewContactStore(e.store, e.auth, e.audit)

	err := cs.SaveBatch([]model.ContactPatch{
		{Name: strPtr("Grace"), Company: strPtr("Acme")},
		{Email: strPtr("lone@wolf.com")},
	})
	if err != nil {
		t.Fatalf("batch import: %v", err)
	}

	list := cs.List()
	if len(list) != 2 {
		t.Fatalf("listed %d contacts, want 2", len(list))
	}
	var nameless *model.Contact
	for i := range list {
		if list[i].Email == "lone@wolf.com" {
			nameless = &list[i]
		}
	}
	if nameless == nil || nameless.Name != "Imported Contact" || nameless.Notes != "Imported via CSV" {
		t.Errorf("import defaults missing: %+v", nameless)
	}
}

// Deleting a contact does not cascade to records that reference it; the
// reference is non-owning.
func TestContactDeleteDoesNotCascade(t *testing.T) {
	e := setupEnv(t)
	e.signup(t, "Ada", "ada@x.com")
	cs := NewContactStore(e.store, e.auth, e.audit)
	rs := NewRecordStore(e.store, e.auth, e.audit)

	c, _ := cs.Save(model.ContactPatch{Name: strPtr("Grace")})
	rec, err := rs.Save(model.RecordPatch{Company: strPtr("Acme"), ContactID: strPtr(c.ID)})
	if err != nil {
		t.Fatalf("create record: %v", err)
	}

	if err := cs.Delete(c.ID); err != nil {
		t.Fatalf("delete contact: %v", err)
	}

	list := rs.List()
	if len(list) != 1 || list[0].ID != rec.ID {
		t.Fatal("record vanished with its contact")
	}
	if list[0].ContactID != c.ID {
		t.Errorf("dangling reference rewritten: %q", list[0].ContactID)
	}
}
