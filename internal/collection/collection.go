// Package collection encodes named collections as JSON arrays over the kv
// store. Reads never fail: a corrupt namespace degrades to an empty
// collection instead of taking the application down with it.
package collection

import (
	"encoding/json"
	"log/slog"

	"github.com/dukerupert/apex/internal/kv"
)

// Load decodes the collection under key. Malformed JSON, a non-array top
// level, or a read failure all degrade to an empty slice with a diagnostic;
// losing sight of one namespace must not crash callers.
func Load[T any](store kv.Store, key string) []T {
	raw, ok, err := store.Get(key)
	if err != nil {
		slog.Error("collection read failed", "key", key, "error", err)
		return []T{}
	}
	if !ok || raw == "" {
		return []T{}
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		slog.Error("collection corrupt, degrading to empty", "key", key, "error", err)
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

// Save encodes items under key. A rejected write surfaces unchanged so
// callers see apperr.ErrStorageFull.
func Save[T any](store kv.Store, key string, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return store.Set(key, string(data))
}
