package models

import "time"

// Notification types surfaced to the UI.
const (
	NotificationSuccess = "success"
	NotificationError   = "error"
	NotificationMessage = "message"
)

// Notification is a system message shown in the notification list and,
// transiently, as the active toast.
type Notification struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Time        time.Time `json:"time"`
	IsRead      bool      `json:"is_read"`
	Type        string    `json:"type"`
}
