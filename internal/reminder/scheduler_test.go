package reminder

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dukerupert/apex/internal/audit"
	"github.com/dukerupert/apex/internal/auth"
	"github.com/dukerupert/apex/internal/collection"
	"github.com/dukerupert/apex/internal/database"
	"github.com/dukerupert/apex/internal/kv"
	"github.com/dukerupert/apex/internal/model"
	"github.com/dukerupert/apex/internal/store"
)

func setupScheduler(t *testing.T, onFire func(model.Notification)) (*Scheduler, kv.Store) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	kvStore := kv.NewSQLiteStore(db, 0)

	authSvc := auth.NewService(kvStore, slog.Default())
	auditLog := audit.NewLog(kvStore, authSvc, slog.Default())
	reminders := store.NewReminderStore(kvStore, authSvc, auditLog)
	notifications := store.NewNotificationStore(kvStore, authSvc)

	return NewScheduler(reminders, notifications, time.Minute, onFire, slog.Default()), kvStore
}

func seedReminders(t *testing.T, kvStore kv.Store, reminders []model.Reminder) {
	t.Helper()
	if err := collection.Save(kvStore, store.RemindersKey, reminders); err != nil {
		t.Fatalf("seed reminders: %v", err)
	}
}

func TestTickFiresDueReminders(t *testing.T) {
	var fired []model.Notification
	s, kvStore := setupScheduler(t, func(n model.Notification) { fired = append(fired, n) })

	now := time.Now()
	seedReminders(t, kvStore, []model.Reminder{
		{ID: "r1", UserID: "u1", RecordID: "rec1", Title: "Chase Acme", DueAt: now.Add(-time.Minute), Status: model.ReminderPending},
		{ID: "r2", UserID: "u1", RecordID: "rec2", Title: "Not yet", DueAt: now.Add(time.Hour), Status: model.ReminderPending},
		{ID: "r3", UserID: "u2", RecordID: "rec3", Title: "Dismissed", DueAt: now.Add(-time.Hour), Status: model.ReminderDismissed},
	})

	s.tick(now)

	notifications := collection.Load[model.Notification](kvStore, store.NotificationsKey)
	if len(notifications) != 1 {
		t.Fatalf("emitted %d notifications, want 1", len(notifications))
	}
	n := notifications[0]
	if n.Type != model.NotifReminder || n.Read || n.LinkToID != "rec1" || n.UserID != "u1" {
		t.Errorf("unexpected notification: %+v", n)
	}

	reminders := collection.Load[model.Reminder](kvStore, store.RemindersKey)
	if reminders[0].Status != model.ReminderFired {
		t.Errorf("r1 status = %q, want FIRED", reminders[0].Status)
	}
	if reminders[1].Status != model.ReminderPending {
		t.Errorf("r2 status = %q, want still PENDING", reminders[1].Status)
	}
	if reminders[2].Status != model.ReminderDismissed {
		t.Errorf("r3 status = %q, want still DISMISSED", reminders[2].Status)
	}

	if len(fired) != 1 || fired[0].ID != n.ID {
		t.Errorf("onFire calls = %+v", fired)
	}
}

func TestFiringIsIdempotent(t *testing.T) {
	s, kvStore := setupScheduler(t, nil)

	now := time.Now()
	seedReminders(t, kvStore, []model.Reminder{
		{ID: "r1", UserID: "u1", RecordID: "rec1", Title: "Once only", DueAt: now.Add(-time.Minute), Status: model.ReminderPending},
	})

	s.tick(now)
	s.tick(now.Add(time.Minute))
	s.tick(now.Add(2 * time.Minute))

	notifications := collection.Load[model.Notification](kvStore, store.NotificationsKey)
	if len(notifications) != 1 {
		t.Fatalf("fired reminder emitted %d notifications across ticks, want 1", len(notifications))
	}
}

func TestSnoozedReminderRearms(t *testing.T) {
	s, kvStore := setupScheduler(t, nil)

	now := time.Now()
	seedReminders(t, kvStore, []model.Reminder{
		{ID: "r1", UserID: "u1", Title: "Deferred", DueAt: now.Add(time.Hour), Status: model.ReminderSnoozed},
	})

	s.tick(now)
	if got := collection.Load[model.Notification](kvStore, store.NotificationsKey); len(got) != 0 {
		t.Fatalf("snoozed reminder fired early: %d notifications", len(got))
	}

	s.tick(now.Add(2 * time.Hour))
	if got := collection.Load[model.Notification](kvStore, store.NotificationsKey); len(got) != 1 {
		t.Fatalf("snoozed reminder did not fire at deferred time: %d notifications", len(got))
	}
}

func TestStartStop(t *testing.T) {
	s, kvStore := setupScheduler(t, nil)

	seedReminders(t, kvStore, []model.Reminder{
		{ID: "r1", UserID: "u1", Title: "Background", DueAt: time.Now().Add(-time.Minute), Status: model.ReminderPending},
	})

	s.Start(context.Background())
	s.Stop() // must not hang or panic, regardless of whether a tick ran

	// Stop twice is safe, mirroring idempotent logout semantics for the
	// session-tied lifecycle.
	s.Stop()
}
