// Package draft is the best-effort cache of unsaved form state. Drafts live
// in their own namespace so an oversized or corrupt draft blob can never
// jeopardize the committed collections.
package draft

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/apex/internal/auth"
	"github.com/dukerupert/apex/internal/kv"
)

const draftsKey = "apex_form_drafts_v3"

type entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

type Cache struct {
	// mu serializes the load-modify-save of the shared drafts blob.
	mu     sync.Mutex
	store  kv.Store
	auth   *auth.Service
	logger *slog.Logger
}

func NewCache(store kv.Store, authSvc *auth.Service, logger *slog.Logger) *Cache {
	return &Cache{store: store, auth: authSvc, logger: logger}
}

// Save overwrites the draft for (current user, formKey). Without a session
// it is a no-op; a write failure is returned but discardable — drafts are
// explicitly lower priority than committed data.
func (c *Cache) Save(formKey string, data json.RawMessage) error {
	user := c.auth.CurrentUser()
	if user == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	drafts := c.load()
	drafts[scopedKey(user.ID, formKey)] = entry{Data: data, Timestamp: time.Now()}

	if err := c.save(drafts); err != nil {
		return fmt.Errorf("save draft %q: %w", formKey, err)
	}
	return nil
}

// Get returns the draft for (current user, formKey), or nil if absent,
// unauthenticated, or unreadable.
func (c *Cache) Get(formKey string) json.RawMessage {
	user := c.auth.CurrentUser()
	if user == nil {
		return nil
	}

	e, ok := c.load()[scopedKey(user.ID, formKey)]
	if !ok {
		return nil
	}
	return e.Data
}

// Clear drops the draft for (current user, formKey). Called after a real
// save so stale drafts don't resurface when the form reopens.
func (c *Cache) Clear(formKey string) error {
	user := c.auth.CurrentUser()
	if user == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	drafts := c.load()
	key := scopedKey(user.ID, formKey)
	if _, ok := drafts[key]; !ok {
		return nil
	}
	delete(drafts, key)

	if err := c.save(drafts); err != nil {
		return fmt.Errorf("clear draft %q: %w", formKey, err)
	}
	return nil
}

func (c *Cache) load() map[string]entry {
	raw, ok, err := c.store.Get(draftsKey)
	if err != nil {
		c.logger.Warn("read drafts", "error", err)
		return map[string]entry{}
	}
	if !ok || raw == "" {
		return map[string]entry{}
	}

	var drafts map[string]entry
	if err := json.Unmarshal([]byte(raw), &drafts); err != nil {
		c.logger.Warn("drafts blob corrupt, starting empty", "error", err)
		return map[string]entry{}
	}
	if drafts == nil {
		return map[string]entry{}
	}
	return drafts
}

func (c *Cache) save(drafts map[string]entry) error {
	data, err := json.Marshal(drafts)
	if err != nil {
		return err
	}
	return c.store.Set(draftsKey, string(data))
}

func scopedKey(userID, formKey string) string {
	return userID + ":" + formKey
}
