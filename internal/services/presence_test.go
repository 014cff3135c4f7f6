package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"parkpack/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePresenceRepo is an in-memory PresenceRepository for tests.
type fakePresenceRepo struct {
	byID      map[string]*domain.Presence
	animals   map[string][]string // presence id -> attached animal ids
	nextID    int
	attachErr map[string]error // animal id -> error to return from AttachAnimal
	deleteErr error
}

func newFakePresenceRepo() *fakePresenceRepo {
	return &fakePresenceRepo{
		byID:      make(map[string]*domain.Presence),
		animals:   make(map[string][]string),
		nextID:    1,
		attachErr: make(map[string]error),
	}
}

func (f *fakePresenceRepo) Create(ctx context.Context, p *domain.Presence) error {
	p.ID = fmt.Sprintf("pres-%d", f.nextID)
	f.nextID++
	f.byID[p.ID] = p
	return nil
}

func (f *fakePresenceRepo) AttachAnimal(ctx context.Context, presenceID, animalID string) error {
	if err := f.attachErr[animalID]; err != nil {
		return err
	}
	f.animals[presenceID] = append(f.animals[presenceID], animalID)
	return nil
}

func (f *fakePresenceRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	delete(f.animals, id)
	return nil
}

func (f *fakePresenceRepo) CheckOut(ctx context.Context, id string, at time.Time) (bool, error) {
	p, ok := f.byID[id]
	if !ok || p.CheckedOutAt != nil {
		return false, nil
	}
	p.CheckedOutAt = &at
	return true, nil
}

func (f *fakePresenceRepo) GetOpenByUser(ctx context.Context, userID string) (*domain.Presence, error) {
	for _, p := range f.byID {
		if p.UserID == userID && p.CheckedOutAt == nil {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakePresenceRepo) ListOpenByLocation(ctx context.Context, locationID string) ([]*domain.Presence, error) {
	out := make([]*domain.Presence, 0)
	for _, p := range f.byID {
		if p.LocationID == locationID && p.CheckedOutAt == nil {
			cp := *p
			cp.AnimalIDs = f.animals[p.ID]
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeProfileRepo is an in-memory ProfileRepository for tests.
type fakeProfileRepo struct {
	profiles map[string]*domain.Profile
	animals  map[string]*domain.Animal
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		profiles: make(map[string]*domain.Profile),
		animals:  make(map[string]*domain.Animal),
	}
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeProfileRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.Profile, error) {
	out := make([]*domain.Profile, 0)
	for _, id := range ids {
		if p, ok := f.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProfileRepo) ListAnimalsByIDs(ctx context.Context, ids []string) ([]*domain.Animal, error) {
	out := make([]*domain.Animal, 0)
	for _, id := range ids {
		if a, ok := f.animals[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeProfileRepo) ListAnimalsByOwner(ctx context.Context, ownerID string) ([]*domain.Animal, error) {
	out := make([]*domain.Animal, 0)
	for _, a := range f.animals {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func TestPresenceService_CheckIn(t *testing.T) {
	ctx := context.Background()

	t.Run("success with companions", func(t *testing.T) {
		repo := newFakePresenceRepo()
		svc := NewPresenceService(repo, newFakeProfileRepo())

		p, err := svc.CheckIn(ctx, "user-1", "park-1", []string{"dog-1", "dog-2"})
		require.NoError(t, err)
		require.NotEmpty(t, p.ID)
		assert.Equal(t, []string{"dog-1", "dog-2"}, p.AnimalIDs)
		assert.Equal(t, []string{"dog-1", "dog-2"}, repo.animals[p.ID])
	})

	t.Run("second open check-in rejected", func(t *testing.T) {
		repo := newFakePresenceRepo()
		svc := NewPresenceService(repo, newFakeProfileRepo())

		_, err := svc.CheckIn(ctx, "user-1", "park-1", nil)
		require.NoError(t, err)
		_, err = svc.CheckIn(ctx, "user-1", "park-2", nil)
		require.ErrorIs(t, err, domain.ErrAlreadyCheckedIn)
	})

	t.Run("check-in allowed again after checkout", func(t *testing.T) {
		repo := newFakePresenceRepo()
		svc := NewPresenceService(repo, newFakeProfileRepo())

		p, err := svc.CheckIn(ctx, "user-1", "park-1", nil)
		require.NoError(t, err)
		require.NoError(t, svc.CheckOut(ctx, p.ID))
		_, err = svc.CheckIn(ctx, "user-1", "park-2", nil)
		require.NoError(t, err)
	})

	t.Run("companion failure rolls the check-in back", func(t *testing.T) {
		repo := newFakePresenceRepo()
		repo.attachErr["dog-2"] = errors.New("constraint violation")
		svc := NewPresenceService(repo, newFakeProfileRepo())

		_, err := svc.CheckIn(ctx, "user-1", "park-1", []string{"dog-1", "dog-2"})
		require.Error(t, err)
		// No ghost presence left behind.
		assert.Empty(t, repo.byID)
		_, err = svc.CheckIn(ctx, "user-1", "park-1", nil)
		require.NoError(t, err)
	})

	t.Run("rollback failure reports both errors", func(t *testing.T) {
		repo := newFakePresenceRepo()
		repo.attachErr["dog-1"] = errors.New("attach failed")
		repo.deleteErr = errors.New("delete failed")
		svc := NewPresenceService(repo, newFakeProfileRepo())

		_, err := svc.CheckIn(ctx, "user-1", "park-1", []string{"dog-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "attach failed")
		assert.Contains(t, err.Error(), "delete failed")
	})

	t.Run("missing ids rejected", func(t *testing.T) {
		svc := NewPresenceService(newFakePresenceRepo(), newFakeProfileRepo())
		_, err := svc.CheckIn(ctx, "", "park-1", nil)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestPresenceService_CheckOut(t *testing.T) {
	ctx := context.Background()
	repo := newFakePresenceRepo()
	svc := NewPresenceService(repo, newFakeProfileRepo())

	p, err := svc.CheckIn(ctx, "user-1", "park-1", nil)
	require.NoError(t, err)

	require.NoError(t, svc.CheckOut(ctx, p.ID))
	// Closing again, or closing something unknown, is still fine.
	require.NoError(t, svc.CheckOut(ctx, p.ID))
	require.NoError(t, svc.CheckOut(ctx, "no-such-presence"))
	require.NoError(t, svc.CheckOut(ctx, ""))
}

func TestPresenceService_ListRoster(t *testing.T) {
	ctx := context.Background()
	repo := newFakePresenceRepo()
	profiles := newFakeProfileRepo()
	profiles.profiles["user-1"] = &domain.Profile{ID: "user-1", DisplayName: "Sam"}
	profiles.animals["dog-1"] = &domain.Animal{ID: "dog-1", OwnerID: "user-1", Name: "Biscuit"}
	svc := NewPresenceService(repo, profiles)

	_, err := svc.CheckIn(ctx, "user-1", "park-1", []string{"dog-1"})
	require.NoError(t, err)
	_, err = svc.CheckIn(ctx, "user-2", "park-other", nil)
	require.NoError(t, err)

	roster, err := svc.ListRoster(ctx, "park-1")
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "Sam", roster[0].Profile.DisplayName)
	require.Len(t, roster[0].Animals, 1)
	assert.Equal(t, "Biscuit", roster[0].Animals[0].Name)

	empty, err := svc.ListRoster(ctx, "park-empty")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
