package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"parkpack/internal/domain"
)

type messageService struct {
	messageRepo domain.MessageRepository
	now         func() time.Time
}

// NewMessageService creates a MessageService over the given repository.
func NewMessageService(messageRepo domain.MessageRepository) domain.MessageService {
	return &messageService{
		messageRepo: messageRepo,
		now:         time.Now,
	}
}

func (s *messageService) Send(ctx context.Context, m *domain.Message) error {
	// The id must come from the sender so the optimistic copy and the pushed
	// copy of the same message dedupe against each other.
	if m.ID == "" || m.ConversationID == "" || m.SenderID == "" {
		return domain.ErrInvalidInput
	}
	if strings.TrimSpace(m.Body) == "" {
		return fmt.Errorf("%w: message body is required", domain.ErrInvalidInput)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	if err := s.messageRepo.Create(ctx, m); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

func (s *messageService) GetMessage(ctx context.Context, id string) (*domain.Message, error) {
	return s.messageRepo.GetByID(ctx, id)
}

func (s *messageService) ListConversation(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	messages, err := s.messageRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}
