package model

import "time"

type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "PENDING"
	ReminderFired     ReminderStatus = "FIRED"
	ReminderDismissed ReminderStatus = "DISMISSED"
	ReminderSnoozed   ReminderStatus = "SNOOZED"
)

// Reminder schedules a follow-up for a record. PENDING -> FIRED is the only
// system-driven transition; DISMISSED and SNOOZED are user-driven.
type Reminder struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	RecordID  string         `json:"recordId"`
	Title     string         `json:"title"`
	DueAt     time.Time      `json:"dueAt"`
	Status    ReminderStatus `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
}

type ReminderPatch struct {
	ID string `json:"id,omitempty"`

	RecordID *string         `json:"recordId,omitempty"`
	Title    *string         `json:"title,omitempty"`
	DueAt    *time.Time      `json:"dueAt,omitempty"`
	Status   *ReminderStatus `json:"status,omitempty"`
}

func (p ReminderPatch) Apply(r *Reminder) {
	setStr(&r.RecordID, p.RecordID)
	setStr(&r.Title, p.Title)
	if p.DueAt != nil {
		r.DueAt = *p.DueAt
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
}
