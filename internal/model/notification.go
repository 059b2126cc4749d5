package model

import "time"

type NotificationType string

const (
	NotifInfo     NotificationType = "INFO"
	NotifSuccess  NotificationType = "SUCCESS"
	NotifWarning  NotificationType = "WARNING"
	NotifError    NotificationType = "ERROR"
	NotifReminder NotificationType = "REMINDER"
)

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
	LinkToID  string           `json:"linkToId,omitempty"`
}
