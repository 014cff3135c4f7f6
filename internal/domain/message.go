package domain

import (
	"context"
	"time"
)

// Message is one chat message in a park conversation. IDs are generated by the
// sender so an optimistic append and the pushed copy of the same message can
// be deduplicated.
// swagger:model Message
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}

// MessageRepository defines storage operations for chat messages.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id string) (*Message, error)
	ListByConversation(ctx context.Context, conversationID string) ([]*Message, error)
}

// MessageService defines park chat operations.
type MessageService interface {
	Send(ctx context.Context, m *Message) error
	GetMessage(ctx context.Context, id string) (*Message, error)
	ListConversation(ctx context.Context, conversationID string) ([]*Message, error)
}
