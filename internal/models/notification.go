package models

import "time"

type Notification struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	SentAt      time.Time `json:"sent_at"`
}

// UserNotification is a notification as seen by one recipient.
type UserNotification struct {
	ID             int       `json:"id"`
	NotificationID int       `json:"notification_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"created_at"`
}
