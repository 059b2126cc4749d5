// Package reminder drives the PENDING -> FIRED transition: a polling loop
// that turns due reminders into notifications.
package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/apex/internal/model"
	"github.com/dukerupert/apex/internal/store"
)

const defaultInterval = 30 * time.Second

// Scheduler periodically fires due reminders. It runs under the process,
// not a user session, so it sees every user's reminders. The mutation
// itself lives in the reminder store, under the same lock user transitions
// take.
type Scheduler struct {
	mu            sync.RWMutex
	reminders     *store.ReminderStore
	notifications *store.NotificationStore
	interval      time.Duration
	onFire        func(model.Notification)
	logger        *slog.Logger
	cancel        context.CancelFunc
	done          chan struct{}
}

// NewScheduler creates a reminder scheduler. onFire, if non-nil, is invoked
// for each emitted notification (the change feed hooks in here); interval 0
// means the default.
func NewScheduler(reminders *store.ReminderStore, notifications *store.NotificationStore, interval time.Duration, onFire func(model.Notification), logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{
		reminders:     reminders,
		notifications: notifications,
		interval:      interval,
		onFire:        onFire,
		logger:        logger,
	}
}

// Start begins the polling loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(time.Now())
			}
		}
	}()
}

// Stop cancels the loop and waits for the in-flight tick to finish.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(now time.Time) {
	fired, err := s.reminders.FireDue(now, s.notifications)
	if err != nil {
		s.logger.Error("reminder scheduler: fire due reminders", "error", err)
	}

	if s.onFire != nil {
		for _, n := range fired {
			s.onFire(n)
		}
	}
}
