package model

import "time"

const DefaultConversationTitle = "New Conversation"

type Conversation struct {
	ID        int       `json:"conversation_id"`
	UserID    int       `json:"-"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Message struct {
	ID              int       `json:"message_id"`
	ConversationID  int       `json:"-"`
	Content         string    `json:"content"`
	IsUser          bool      `json:"is_user"`
	PositiveReframe *string   `json:"positive_reframe"`
	Timestamp       time.Time `json:"timestamp"`
}
