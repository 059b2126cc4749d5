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

// RemindersKey is shared with the scheduler, which scans the collection
// outside any user session.
const RemindersKey = "apex_reminders_v3"

type ReminderStore struct {
	mu    sync.Mutex
	store kv.Store
	auth  *auth.Service
	audit *audit.Log
}

func NewReminderStore(store kv.Store, authSvc *auth.Service, auditLog *audit.Log) *ReminderStore {
	return &ReminderStore{store: store, auth: authSvc, audit: auditLog}
}

func (s *ReminderStore) List() []model.Reminder {
	user := s.auth.CurrentUser()
	if user == nil {
		return []model.Reminder{}
	}

	all := collection.Load[model.Reminder](s.store, RemindersKey)
	mine := make([]model.Reminder, 0, len(all))
	for _, r := range all {
		if r.UserID == user.ID {
			mine = append(mine, r)
		}
	}
	return mine
}

func (s *ReminderStore) Save(patch model.ReminderPatch) (*model.Reminder, error) {
	user := s.auth.CurrentUser()
	if user == nil {
		return nil, apperr.ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := collection.Load[model.Reminder](s.store, RemindersKey)
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

		r := all[idx]
		patch.Apply(&r)

		all[idx] = r
		if err := collection.Save(s.store, RemindersKey, all); err != nil {
			return nil, fmt.Errorf("save reminders: %w", err)
		}
		s.audit.Record("UPDATE", r.ID, model.EntityReminder,
			fmt.Sprintf("Reminder %q updated.", r.Title))
		return &r, nil
	}

	r := model.Reminder{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Title:     "Follow up",
		DueAt:     now,
		Status:    model.ReminderPending,
		CreatedAt: now,
	}
	patch.Apply(&r)

	all = append([]model.Reminder{r}, all...)
	if err := collection.Save(s.store, RemindersKey, all); err != nil {
		return nil, fmt.Errorf("save reminders: %w", err)
	}
	s.audit.Record("CREATE", r.ID, model.EntityReminder,
		fmt.Sprintf("Reminder %q scheduled.", r.Title))
	return &r, nil
}

// Dismiss is the terminal user-driven transition; a dismissed reminder
// never fires.
func (s *ReminderStore) Dismiss(id string) error {
	return s.transition(id, "DISMISS", func(r *model.Reminder) {
		r.Status = model.ReminderDismissed
	})
}

// Snooze defers the reminder to a new due time. A snoozed reminder remains
// eligible to fire once the new time arrives.
func (s *ReminderStore) Snooze(id string, until time.Time) error {
	return s.transition(id, "SNOOZE", func(r *model.Reminder) {
		r.Status = model.ReminderSnoozed
		r.DueAt = until
	})
}

// FireDue flips every PENDING or SNOOZED reminder due at now to FIRED and
// emits one notification per firing. The reminder lock is held across the
// whole load, emit, and write-back, so user transitions such as Dismiss
// serialize against firing instead of interleaving with it. Notifications
// persist before the flip: a lost flip duplicates a notification on the
// next pass, while flipping first could silently drop a due reminder.
// Runs without a session.
func (s *ReminderStore) FireDue(now time.Time, notifications *NotificationStore) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := collection.Load[model.Reminder](s.store, RemindersKey)
	var due []int
	for i, r := range all {
		if dueForFiring(r, now) {
			due = append(due, i)
		}
	}
	if len(due) == 0 {
		return nil, nil
	}

	created := make([]model.Notification, 0, len(due))
	for _, i := range due {
		r := all[i]
		created = append(created, model.Notification{
			ID:        uuid.NewString(),
			UserID:    r.UserID,
			Type:      model.NotifReminder,
			Title:     "Follow-up due",
			Message:   fmt.Sprintf("Reminder: %s", r.Title),
			CreatedAt: now,
			LinkToID:  r.RecordID,
		})
	}

	if err := notifications.prependSystem(created); err != nil {
		return nil, fmt.Errorf("emit notifications: %w", err)
	}

	for _, i := range due {
		all[i].Status = model.ReminderFired
	}
	if err := collection.Save(s.store, RemindersKey, all); err != nil {
		return created, fmt.Errorf("save reminders: %w", err)
	}
	return created, nil
}

// dueForFiring selects reminders whose time has come. Snoozed reminders
// re-arm at their deferred due time; FIRED and DISMISSED are terminal and
// never fire again.
func dueForFiring(r model.Reminder, now time.Time) bool {
	if r.Status != model.ReminderPending && r.Status != model.ReminderSnoozed {
		return false
	}
	return !r.DueAt.After(now)
}

func (s *ReminderStore) transition(id, action string, mutate func(*model.Reminder)) error {
	user := s.auth.CurrentUser()
	if user == nil {
		return apperr.ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := collection.Load[model.Reminder](s.store, RemindersKey)
	idx := -1
	for i, r := range all {
		if r.ID == id && r.UserID == user.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return apperr.ErrNotFound
	}

	mutate(&all[idx])
	if err := collection.Save(s.store, RemindersKey, all); err != nil {
		return fmt.Errorf("save reminders: %w", err)
	}
	s.audit.Record(action, id, model.EntityReminder,
		fmt.Sprintf("Reminder %q now %s.", all[idx].Title, all[idx].Status))
	return nil
}
