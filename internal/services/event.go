package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"parkpack/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	rsvpRepo       domain.RSVPRepository
	invitationRepo domain.EventInvitationRepository
	profileRepo    domain.ProfileRepository
	emailService   domain.EmailService
	contextTimeout time.Duration
	now            func() time.Time
}

func NewEventService(eventRepo domain.EventRepository,
	rsvpRepo domain.RSVPRepository,
	invitationRepo domain.EventInvitationRepository,
	profileRepo domain.ProfileRepository,
	emailService domain.EmailService,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		rsvpRepo:       rsvpRepo,
		invitationRepo: invitationRepo,
		profileRepo:    profileRepo,
		emailService:   emailService,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.OrganizerID == "" || event.LocationID == "" {
		return domain.ErrInvalidInput
	}
	if strings.TrimSpace(event.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	// Enforced at creation only; never re-checked later.
	if !event.EndsAt.After(event.StartsAt) {
		return fmt.Errorf("%w: end time must be after start time", domain.ErrInvalidInput)
	}
	if event.MaxCapacity != nil && *event.MaxCapacity < 1 {
		return fmt.Errorf("%w: capacity must be positive", domain.ErrInvalidInput)
	}

	event.Status = domain.EventScheduled
	event.CreatedAt = s.now()
	event.UpdatedAt = event.CreatedAt
	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) CancelEvent(ctx context.Context, eventID, organizerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != organizerID {
		return nil, domain.ErrForbidden
	}
	if event.Over(s.now()) {
		return nil, domain.ErrEventOver
	}
	cancelled, err := s.eventRepo.Cancel(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Lost a race against another cancel or an expiration.
			return nil, domain.ErrEventOver
		}
		return nil, fmt.Errorf("cancel event: %w", err)
	}
	return cancelled, nil
}

func (s *eventService) FetchWithExpirationCheck(ctx context.Context, eventID string) (*domain.Event, []*domain.RSVP, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.reconcile(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	rsvps, err := s.rsvpRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("list rsvps: %w", err)
	}
	return event, rsvps, nil
}

// reconcile loads the event and, when it is scheduled but past its end time,
// pushes the completed transition. Expiration is discovered, not scheduled:
// there is no server timer, so every reader that notices it applies the
// correction, and force_expire makes redundant concurrent calls harmless.
func (s *eventService) reconcile(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.Status == domain.EventScheduled && !s.now().Before(event.EndsAt) {
		expired, err := s.eventRepo.ForceExpire(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("force expire: %w", err)
		}
		event = expired
	}
	return event, nil
}

func (s *eventService) RSVPWithExpirationCheck(ctx context.Context, eventID, userID, animalID string, status domain.RSVPStatus) (*domain.RSVP, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if status != domain.RSVPGoing && status != domain.RSVPMaybe {
		return nil, fmt.Errorf("%w: unknown rsvp status %q", domain.ErrInvalidInput, status)
	}

	// Re-read the event right before writing: the UI may have rendered it
	// minutes ago and it can expire or be cancelled in between.
	event, err := s.reconcile(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Over(s.now()) {
		return nil, domain.ErrEventOver
	}

	animals, err := s.profileRepo.ListAnimalsByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list animals: %w", err)
	}
	owned := false
	for _, a := range animals {
		if a.ID == animalID {
			owned = true
			break
		}
	}
	if !owned {
		return nil, domain.ErrForbidden
	}

	rsvp := &domain.RSVP{
		EventID:   eventID,
		UserID:    userID,
		AnimalID:  animalID,
		Status:    status,
		UpdatedAt: s.now(),
	}
	if err := s.rsvpRepo.Upsert(ctx, rsvp); err != nil {
		return nil, fmt.Errorf("upsert rsvp: %w", err)
	}
	return rsvp, nil
}

func (s *eventService) CancelRSVP(ctx context.Context, rsvpID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rsvp, err := s.rsvpRepo.GetByID(ctx, rsvpID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get rsvp: %w", err)
	}
	if rsvp.UserID != userID {
		return domain.ErrForbidden
	}
	if err := s.rsvpRepo.Delete(ctx, rsvpID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete rsvp: %w", err)
	}
	return nil
}

func (s *eventService) ListActive(ctx context.Context, locationID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.ListActiveByLocation(ctx, locationID, s.now())
}

func (s *eventService) ListPast(ctx context.Context, locationID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.ListPastByLocation(ctx, locationID, s.now())
}

func (s *eventService) ListMine(ctx context.Context, userID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	// The backend has no single query for "organizing or attending"; fetch
	// both sides independently and merge client-side.
	organized, err := s.eventRepo.ListByOrganizer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list organized events: %w", err)
	}
	attending, err := s.eventRepo.ListAttending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list attending events: %w", err)
	}

	seen := make(map[string]struct{}, len(organized)+len(attending))
	merged := make([]*domain.Event, 0, len(organized)+len(attending))
	for _, e := range append(organized, attending...) {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		merged = append(merged, e)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].StartsAt.After(merged[j].StartsAt)
	})
	return merged, nil
}

func (s *eventService) SendEventInvitations(ctx context.Context, eventID, organizerID string, emails []string) (sent int, failed []string, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil, domain.ErrNotFound
		}
		return 0, nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != organizerID {
		return 0, nil, domain.ErrForbidden
	}

	organizerName := "A parkpack member"
	if organizer, err := s.profileRepo.GetByID(ctx, organizerID); err == nil && organizer.DisplayName != "" {
		organizerName = organizer.DisplayName
	}

	for _, email := range emails {
		email = strings.TrimSpace(strings.ToLower(email))
		if email == "" {
			continue
		}
		inv := &domain.EventInvitation{
			EventID: eventID,
			Email:   email,
			SentAt:  s.now(),
		}
		if err := s.invitationRepo.Create(ctx, inv); err != nil {
			failed = append(failed, email)
			continue
		}
		data := &domain.EventInvitationEmailData{
			Email:         email,
			OrganizerName: organizerName,
			EventTitle:    event.Title,
			StartsAt:      event.StartsAt.Format(time.RFC1123),
		}
		if err := s.emailService.SendEventInvitation(ctx, data); err != nil {
			failed = append(failed, email)
			continue
		}
		sent++
	}
	return sent, failed, nil
}
