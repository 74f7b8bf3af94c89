package domain

import "time"

// Notification read flags as the remote system stores them.
const (
	NotificationUnread = 0
	NotificationRead   = 1
)

// Notification is owned by the remote notification system; IsRead is only
// authoritative there. Local "looks read already" state is kept in the
// reconciler overlay and never persisted.
type Notification struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    int       `json:"is_read"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
