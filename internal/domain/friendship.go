package domain

import (
	"context"
	"time"
)

// FriendshipStatus is the state of a friend request.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipDeclined FriendshipStatus = "declined"
)

// Friendship is one record per unordered user pair. The requester/addressee
// roles are fixed at creation; only the addressee answers.
// swagger:model Friendship
type Friendship struct {
	ID          string           `json:"id"`
	RequesterID string           `json:"requester_id"`
	AddresseeID string           `json:"addressee_id"`
	Status      FriendshipStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Involves reports whether the user is either side of the pair.
func (f *Friendship) Involves(userID string) bool {
	return f.RequesterID == userID || f.AddresseeID == userID
}

// FriendshipRepository defines storage operations for friendships.
type FriendshipRepository interface {
	Create(ctx context.Context, f *Friendship) error
	GetByID(ctx context.Context, id string) (*Friendship, error)
	// GetByPair looks the pair up in both directions.
	GetByPair(ctx context.Context, userA, userB string) (*Friendship, error)
	UpdateStatus(ctx context.Context, id string, status FriendshipStatus, at time.Time) (*Friendship, error)
	Delete(ctx context.Context, id string) error
	// ListFriends returns the profiles on the far side of the user's accepted
	// friendships.
	ListFriends(ctx context.Context, userID string) ([]*Profile, error)
}

// FriendshipService defines the friend request lifecycle.
type FriendshipService interface {
	// SendRequest creates a pending request. An existing record for the pair
	// maps to ErrRequestPending, ErrAlreadyFriends, or ErrRequestDeclined by
	// its status.
	SendRequest(ctx context.Context, requesterID, addresseeID string) (*Friendship, error)
	Accept(ctx context.Context, id, callerID string) (*Friendship, error)
	Decline(ctx context.Context, id, callerID string) (*Friendship, error)
	// Remove deletes the friendship; callable by either participant.
	Remove(ctx context.Context, id, callerID string) error
	RemoveByCounterpart(ctx context.Context, userID, otherID string) error
	ListFriends(ctx context.Context, userID string) ([]*Profile, error)
}
