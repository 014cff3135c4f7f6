package live

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"parkpack/internal/domain"

	"github.com/google/uuid"
)

// MessagesView is the live transcript of one park conversation. Sends append
// optimistically under a locally generated id; because the backend stores the
// same id, the pushed copy of an own message dedupes instead of duplicating.
type MessagesView struct {
	svc            domain.MessageService
	conversationID string
	senderID       string
	sub            domain.Subscription
	logger         *slog.Logger
	now            func() time.Time

	mu       sync.Mutex
	messages []*domain.Message
	loaded   bool
	err      error
	closed   bool
	done     chan struct{}
}

// NewMessagesView loads the transcript once and starts watching.
func NewMessagesView(ctx context.Context, svc domain.MessageService, feed domain.ChangeFeed, conversationID, senderID string, opts Options) (*MessagesView, error) {
	sub, err := feed.Subscribe(domain.CollectionMessages, conversationID)
	if err != nil {
		return nil, fmt.Errorf("subscribe messages: %w", err)
	}
	v := &MessagesView{
		svc:            svc,
		conversationID: conversationID,
		senderID:       senderID,
		sub:            sub,
		logger:         opts.logger(),
		now:            time.Now,
		done:           make(chan struct{}),
	}
	v.reload(ctx)
	go v.watch()
	return v, nil
}

func (v *MessagesView) watch() {
	for {
		select {
		case c, ok := <-v.sub.Changes():
			if !ok {
				return
			}
			v.apply(context.Background(), c)
		case <-v.done:
			return
		}
	}
}

// apply handles one change. Inserts with an id fetch just the new message and
// append it; everything else (updates, deletes, reconnect wakes) reloads the
// whole transcript.
func (v *MessagesView) apply(ctx context.Context, c domain.Change) {
	if c.Op != domain.OpInsert || c.ID == "" {
		v.reload(ctx)
		return
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	for _, m := range v.messages {
		if m.ID == c.ID {
			// Already present: the push echoes an optimistic append.
			v.mu.Unlock()
			return
		}
	}
	v.mu.Unlock()

	msg, err := v.svc.GetMessage(ctx, c.ID)
	if err != nil {
		v.logger.Warn("fetch pushed message failed", "id", c.ID, "err", err)
		v.reload(ctx)
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	for _, m := range v.messages {
		if m.ID == msg.ID {
			return
		}
	}
	v.messages = append(v.messages, msg)
}

func (v *MessagesView) reload(ctx context.Context) {
	messages, err := v.svc.ListConversation(ctx, v.conversationID)
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	if err != nil {
		if !v.loaded {
			v.err = err
		}
		v.logger.Warn("messages reload failed", "conversation", v.conversationID, "err", err)
		return
	}
	v.messages = messages
	v.loaded = true
	v.err = nil
}

// Send appends the message locally, then persists it. On a persist failure
// the optimistic copy is removed again and the error returned.
func (v *MessagesView) Send(ctx context.Context, body string) (*domain.Message, error) {
	msg := &domain.Message{
		ID:             uuid.New().String(),
		ConversationID: v.conversationID,
		SenderID:       v.senderID,
		Body:           body,
		CreatedAt:      v.now(),
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, fmt.Errorf("view closed")
	}
	v.messages = append(v.messages, msg)
	v.mu.Unlock()

	if err := v.svc.Send(ctx, msg); err != nil {
		v.mu.Lock()
		if !v.closed {
			for i, m := range v.messages {
				if m.ID == msg.ID {
					v.messages = append(v.messages[:i], v.messages[i+1:]...)
					break
				}
			}
		}
		v.mu.Unlock()
		return nil, err
	}
	return msg, nil
}

// Snapshot returns the current transcript.
func (v *MessagesView) Snapshot() ([]*domain.Message, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return nil, v.err
	}
	out := make([]*domain.Message, len(v.messages))
	copy(out, v.messages)
	return out, nil
}

// Close stops the watcher. Safe to call more than once.
func (v *MessagesView) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.mu.Unlock()
	close(v.done)
	v.sub.Close()
}
