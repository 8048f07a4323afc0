package mq

import "time"

const (
	RoutingKeyMessageCreated           = "conversation.message_created"
	RoutingKeySupportiveMessageCreated = "supportive_message.created"
)

// MessageCreatedPayload announces a completed chat turn; consumers run a notification sweep.
type MessageCreatedPayload struct {
	UserID     int       `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SupportiveMessageCreatedPayload is handed to whatever delivers notifications to devices.
type SupportiveMessageCreatedPayload struct {
	MessageID int       `json:"message_id"`
	UserID    int       `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
