package store

import (
	"fmt"
	"sync"

	"github.com/dukerupert/apex/internal/apperr"
	"github.com/dukerupert/apex/internal/auth"
	"github.com/dukerupert/apex/internal/collection"
	"github.com/dukerupert/apex/internal/kv"
	"github.com/dukerupert/apex/internal/model"
)

// NotificationsKey is shared with the scheduler, which emits notifications
// outside any user session.
const NotificationsKey = "apex_notifications_v3"

type NotificationStore struct {
	mu    sync.Mutex
	store kv.Store
	auth  *auth.Service
}

func NewNotificationStore(store kv.Store, authSvc *auth.Service) *NotificationStore {
	return &NotificationStore{store: store, auth: authSvc}
}

func (s *NotificationStore) List() []model.Notification {
	user := s.auth.CurrentUser()
	if user == nil {
		return []model.Notification{}
	}

	all := collection.Load[model.Notification](s.store, NotificationsKey)
	mine := make([]model.Notification, 0, len(all))
	for _, n := range all {
		if n.UserID == user.ID {
			mine = append(mine, n)
		}
	}
	return mine
}

// prependSystem adds scheduler-emitted notifications without a session.
// Called with the reminder lock held; lock order is reminders, then
// notifications.
func (s *NotificationStore) prependSystem(batch []model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := collection.Load[model.Notification](s.store, NotificationsKey)
	all = append(append([]model.Notification{}, batch...), all...)
	if err := collection.Save(s.store, NotificationsKey, all); err != nil {
		return fmt.Errorf("save notifications: %w", err)
	}
	return nil
}

// MarkRead toggles one owned notification to read.
func (s *NotificationStore) MarkRead(id string) error {
	user := s.auth.CurrentUser()
	if user == nil {
		return apperr.ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := collection.Load[model.Notification](s.store, NotificationsKey)
	idx := -1
	for i, n := range all {
		if n.ID == id && n.UserID == user.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return apperr.ErrNotFound
	}

	all[idx].Read = true
	if err := collection.Save(s.store, NotificationsKey, all); err != nil {
		return fmt.Errorf("save notifications: %w", err)
	}
	return nil
}

// MarkAllRead marks every unread notification of the session user.
func (s *NotificationStore) MarkAllRead() error {
	user := s.auth.CurrentUser()
	if user == nil {
		return apperr.ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := collection.Load[model.Notification](s.store, NotificationsKey)
	changed := false
	for i := range all {
		if all[i].UserID == user.ID && !all[i].Read {
			all[i].Read = true
			changed = true
		}
	}
	if !changed {
		return nil
	}

	if err := collection.Save(s.store, NotificationsKey, all); err != nil {
		return fmt.Errorf("save notifications: %w", err)
	}
	return nil
}
