package model

import "time"

type SupportiveMessage struct {
	ID        int        `json:"message_id"`
	UserID    int        `json:"-"`
	Content   string     `json:"content"`
	IsRead    bool       `json:"is_read"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"-"`
}

// NotificationCandidate is a user with notifications enabled, their schedule, and when
// they last received a supportive message (nil if never).
type NotificationCandidate struct {
	UserID                int
	NotificationFrequency int
	ActiveHoursStart      ClockTime
	ActiveHoursEnd        ClockTime
	LastMessageAt         *time.Time
}
