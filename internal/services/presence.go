package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parkpack/internal/domain"
)

type presenceService struct {
	presenceRepo domain.PresenceRepository
	profileRepo  domain.ProfileRepository
	now          func() time.Time
}

// NewPresenceService creates a PresenceService with the given repositories.
func NewPresenceService(presenceRepo domain.PresenceRepository, profileRepo domain.ProfileRepository) domain.PresenceService {
	return &presenceService{
		presenceRepo: presenceRepo,
		profileRepo:  profileRepo,
		now:          time.Now,
	}
}

func (s *presenceService) CheckIn(ctx context.Context, userID, locationID string, animalIDs []string) (*domain.Presence, error) {
	if userID == "" || locationID == "" {
		return nil, domain.ErrInvalidInput
	}

	// One open presence per user. Pre-validate so the caller gets an
	// actionable error instead of a backend conflict.
	if _, err := s.presenceRepo.GetOpenByUser(ctx, userID); err == nil {
		return nil, domain.ErrAlreadyCheckedIn
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get open presence: %w", err)
	}

	p := domain.NewPresence(userID, locationID, s.now())
	if err := s.presenceRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create presence: %w", err)
	}

	// The backend has no multi-row atomicity here: companions are attached one
	// by one, and a failure after the presence row exists must roll the whole
	// check-in back so no ghost record reaches any roster.
	for _, animalID := range animalIDs {
		if err := s.presenceRepo.AttachAnimal(ctx, p.ID, animalID); err != nil {
			attachErr := fmt.Errorf("attach companion %s: %w", animalID, err)
			if delErr := s.presenceRepo.Delete(ctx, p.ID); delErr != nil {
				return nil, errors.Join(attachErr, fmt.Errorf("roll back check-in: %w", delErr))
			}
			return nil, attachErr
		}
	}
	p.AnimalIDs = append(p.AnimalIDs, animalIDs...)
	return p, nil
}

func (s *presenceService) CheckOut(ctx context.Context, presenceID string) error {
	if presenceID == "" {
		return nil
	}
	// Closing an absent or already-closed presence is a no-op; the caller is
	// responsible for knowing its own state.
	if _, err := s.presenceRepo.CheckOut(ctx, presenceID, s.now()); err != nil {
		return fmt.Errorf("check out: %w", err)
	}
	return nil
}

func (s *presenceService) ListRoster(ctx context.Context, locationID string) ([]*domain.RosterEntry, error) {
	presences, err := s.presenceRepo.ListOpenByLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("list open presences: %w", err)
	}
	if len(presences) == 0 {
		return []*domain.RosterEntry{}, nil
	}

	userIDs := make([]string, 0, len(presences))
	animalIDs := make([]string, 0)
	for _, p := range presences {
		userIDs = append(userIDs, p.UserID)
		animalIDs = append(animalIDs, p.AnimalIDs...)
	}

	profiles, err := s.profileRepo.ListByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	profileByID := make(map[string]*domain.Profile, len(profiles))
	for _, p := range profiles {
		profileByID[p.ID] = p
	}

	animalByID := make(map[string]*domain.Animal)
	if len(animalIDs) > 0 {
		animals, err := s.profileRepo.ListAnimalsByIDs(ctx, animalIDs)
		if err != nil {
			return nil, fmt.Errorf("list animals: %w", err)
		}
		for _, a := range animals {
			animalByID[a.ID] = a
		}
	}

	entries := make([]*domain.RosterEntry, 0, len(presences))
	for _, p := range presences {
		entry := &domain.RosterEntry{
			Presence: p,
			Profile:  profileByID[p.UserID],
			Animals:  make([]*domain.Animal, 0, len(p.AnimalIDs)),
		}
		for _, id := range p.AnimalIDs {
			if a, ok := animalByID[id]; ok {
				entry.Animals = append(entry.Animals, a)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
