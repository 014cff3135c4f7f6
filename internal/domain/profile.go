package domain

import (
	"context"
	"time"
)

// Profile is a park visitor. Account creation and profile editing live in a
// separate system; this layer only reads profiles to enrich rosters and
// friend lists.
// swagger:model Profile
type Profile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// Animal is a pet owned by a profile.
// swagger:model Animal
type Animal struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Breed     string    `json:"breed"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileRepository defines read access to profiles and animals.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Profile, error)
	ListAnimalsByIDs(ctx context.Context, ids []string) ([]*Animal, error)
	ListAnimalsByOwner(ctx context.Context, ownerID string) ([]*Animal, error)
}
