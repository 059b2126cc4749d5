package model

import "time"

type LogEntityType string

const (
	EntityRecord       LogEntityType = "RECORD"
	EntityAuth         LogEntityType = "AUTH"
	EntitySystem       LogEntityType = "SYSTEM"
	EntityTemplate     LogEntityType = "TEMPLATE"
	EntityContact      LogEntityType = "CONTACT"
	EntityReminder     LogEntityType = "REMINDER"
	EntityNotification LogEntityType = "NOTIFICATION"
)

type LogStatus string

const (
	LogSuccess LogStatus = "SUCCESS"
	LogFailure LogStatus = "FAILURE"
	LogInfo    LogStatus = "INFO"
)

// ExecutionLog is an immutable audit entry. EntityID is historical, not a
// foreign key: the referenced entity may be deleted later and the entry
// persists.
type ExecutionLog struct {
	ID         string        `json:"id"`
	UserID     string        `json:"userId"`
	Action     string        `json:"action"`
	EntityID   string        `json:"entityId"`
	EntityType LogEntityType `json:"entityType"`
	Status     LogStatus     `json:"status"`
	Message    string        `json:"message"`
	ExecutedAt time.Time     `json:"executedAt"`
}
