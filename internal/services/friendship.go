package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parkpack/internal/domain"
)

type friendshipService struct {
	friendshipRepo domain.FriendshipRepository
	now            func() time.Time
}

// NewFriendshipService creates a FriendshipService over the given repository.
func NewFriendshipService(friendshipRepo domain.FriendshipRepository) domain.FriendshipService {
	return &friendshipService{
		friendshipRepo: friendshipRepo,
		now:            time.Now,
	}
}

func (s *friendshipService) SendRequest(ctx context.Context, requesterID, addresseeID string) (*domain.Friendship, error) {
	if requesterID == "" || addresseeID == "" || requesterID == addresseeID {
		return nil, domain.ErrInvalidInput
	}

	// One record per unordered pair. Read both directions first and turn what
	// would be a backend conflict into an actionable error.
	existing, err := s.friendshipRepo.GetByPair(ctx, requesterID, addresseeID)
	if err == nil {
		switch existing.Status {
		case domain.FriendshipPending:
			return nil, domain.ErrRequestPending
		case domain.FriendshipAccepted:
			return nil, domain.ErrAlreadyFriends
		case domain.FriendshipDeclined:
			return nil, domain.ErrRequestDeclined
		default:
			return nil, fmt.Errorf("unexpected friendship status %q", existing.Status)
		}
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get friendship: %w", err)
	}

	now := s.now()
	f := &domain.Friendship{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      domain.FriendshipPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.friendshipRepo.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("create friendship: %w", err)
	}
	return f, nil
}

func (s *friendshipService) Accept(ctx context.Context, id, callerID string) (*domain.Friendship, error) {
	return s.answer(ctx, id, callerID, domain.FriendshipAccepted)
}

func (s *friendshipService) Decline(ctx context.Context, id, callerID string) (*domain.Friendship, error) {
	return s.answer(ctx, id, callerID, domain.FriendshipDeclined)
}

func (s *friendshipService) answer(ctx context.Context, id, callerID string, status domain.FriendshipStatus) (*domain.Friendship, error) {
	f, err := s.friendshipRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get friendship: %w", err)
	}
	// Only the addressee answers, and only a pending request has an answer.
	if f.AddresseeID != callerID {
		return nil, domain.ErrForbidden
	}
	if f.Status != domain.FriendshipPending {
		return nil, domain.ErrInvalidInput
	}
	updated, err := s.friendshipRepo.UpdateStatus(ctx, id, status, s.now())
	if err != nil {
		return nil, fmt.Errorf("update friendship: %w", err)
	}
	return updated, nil
}

func (s *friendshipService) Remove(ctx context.Context, id, callerID string) error {
	f, err := s.friendshipRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get friendship: %w", err)
	}
	if !f.Involves(callerID) {
		return domain.ErrForbidden
	}
	if err := s.friendshipRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete friendship: %w", err)
	}
	return nil
}

func (s *friendshipService) RemoveByCounterpart(ctx context.Context, userID, otherID string) error {
	f, err := s.friendshipRepo.GetByPair(ctx, userID, otherID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get friendship: %w", err)
	}
	return s.Remove(ctx, f.ID, userID)
}

func (s *friendshipService) ListFriends(ctx context.Context, userID string) ([]*domain.Profile, error) {
	friends, err := s.friendshipRepo.ListFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	if friends == nil {
		friends = []*domain.Profile{}
	}
	return friends, nil
}
