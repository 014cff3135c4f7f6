package postgres

import (
	"context"
	"database/sql"
	"errors"

	"parkpack/internal/domain"
)

type messageRepository struct {
	DB *sql.DB
}

func NewMessageRepository(db *sql.DB) domain.MessageRepository {
	return &messageRepository{
		DB: db,
	}
}

func (r *messageRepository) Create(ctx context.Context, m *domain.Message) error {
	// The id is sender-generated so the optimistic copy and the pushed copy of
	// the same message share it.
	query := `
		INSERT INTO messages (id, conversation_id, sender_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.DB.ExecContext(ctx, query, m.ID, m.ConversationID, m.SenderID, m.Body, m.CreatedAt)
	return err
}

func (r *messageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, body, created_at
		FROM messages
		WHERE id = $1
	`
	m := &domain.Message{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, body, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]*domain.Message, 0)
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
