package domain

import (
	"context"
	"time"
)

// Presence is one user's visit to a park: open while CheckedOutAt is nil,
// closed once it is set. A user holds at most one open presence at a time.
// swagger:model Presence
type Presence struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	LocationID   string     `json:"location_id"`
	CheckedInAt  time.Time  `json:"checked_in_at"`
	CheckedOutAt *time.Time `json:"checked_out_at"`
	AnimalIDs    []string   `json:"animal_ids"`
}

// NewPresence returns an open Presence. ID is set by the repository on create.
func NewPresence(userID, locationID string, now time.Time) *Presence {
	return &Presence{
		UserID:      userID,
		LocationID:  locationID,
		CheckedInAt: now,
		AnimalIDs:   []string{},
	}
}

// RosterEntry is one open presence enriched with the visitor's profile and
// the animals they brought along.
// swagger:model RosterEntry
type RosterEntry struct {
	Presence *Presence `json:"presence"`
	Profile  *Profile  `json:"profile"`
	Animals  []*Animal `json:"animals"`
}

// PresenceRepository defines storage operations for presences.
type PresenceRepository interface {
	Create(ctx context.Context, p *Presence) error
	AttachAnimal(ctx context.Context, presenceID, animalID string) error
	// Delete removes the presence and, via cascade, its animal attachments.
	Delete(ctx context.Context, id string) error
	// CheckOut closes an open presence. Returns false without error when the
	// presence is absent or already closed.
	CheckOut(ctx context.Context, id string, at time.Time) (bool, error)
	// GetOpenByUser returns the user's open presence or ErrNotFound.
	GetOpenByUser(ctx context.Context, userID string) (*Presence, error)
	ListOpenByLocation(ctx context.Context, locationID string) ([]*Presence, error)
}

// PresenceService defines park visit operations.
type PresenceService interface {
	// CheckIn opens a presence with the given animal companions. A partial
	// failure while attaching companions rolls the whole check-in back.
	CheckIn(ctx context.Context, userID, locationID string, animalIDs []string) (*Presence, error)
	// CheckOut closes the presence. Closing an absent or already-closed
	// presence is a no-op.
	CheckOut(ctx context.Context, presenceID string) error
	ListRoster(ctx context.Context, locationID string) ([]*RosterEntry, error)
}
