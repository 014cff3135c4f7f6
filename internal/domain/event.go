package domain

import (
	"context"
	"time"
)

// EventStatus is the lifecycle state of a play date.
type EventStatus string

const (
	EventScheduled EventStatus = "scheduled"
	EventCancelled EventStatus = "cancelled"
	EventCompleted EventStatus = "completed"
)

// Event represents a scheduled play date at a park.
//
// State machine: scheduled -> cancelled (organizer action) and
// scheduled -> completed (discovered lazily once EndsAt passes). Both are
// terminal. EndsAt > StartsAt is enforced at creation only.
// swagger:model Event
type Event struct {
	ID          string      `json:"id"`
	OrganizerID string      `json:"organizer_id"`
	LocationID  string      `json:"location_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	StartsAt    time.Time   `json:"starts_at"`
	EndsAt      time.Time   `json:"ends_at"`
	MaxCapacity *int        `json:"max_capacity"`
	Status      EventStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewEvent returns a new scheduled Event. ID is set by the repository on create.
func NewEvent(organizerID, locationID, title, description string, startsAt, endsAt time.Time, maxCapacity *int, now time.Time) *Event {
	return &Event{
		OrganizerID: organizerID,
		LocationID:  locationID,
		Title:       title,
		Description: description,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		MaxCapacity: maxCapacity,
		Status:      EventScheduled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Active reports whether the event is still open for RSVPs: scheduled and not
// yet past its end time. This is the single predicate used by the expiration
// check, the RSVP guard, and every list filter.
func (e *Event) Active(now time.Time) bool {
	return e.Status == EventScheduled && now.Before(e.EndsAt)
}

// Over is the negation of Active.
func (e *Event) Over(now time.Time) bool {
	return !e.Active(now)
}

// RSVPStatus is the attendance answer for one animal.
type RSVPStatus string

const (
	RSVPGoing RSVPStatus = "going"
	RSVPMaybe RSVPStatus = "maybe"
)

// RSVP represents one animal's attendance answer for an event. At most one
// RSVP exists per (event, animal); a second answer replaces the first.
// swagger:model RSVP
type RSVP struct {
	ID        string     `json:"id"`
	EventID   string     `json:"event_id"`
	UserID    string     `json:"user_id"`
	AnimalID  string     `json:"animal_id"`
	Status    RSVPStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// EventInvitation represents an email invited to a play date.
// swagger:model EventInvitation
type EventInvitation struct {
	ID      string    `json:"id"`
	EventID string    `json:"event_id"`
	Email   string    `json:"email"`
	SentAt  time.Time `json:"sent_at"`
}

// EventRepository defines storage operations for events.
type EventRepository interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// Cancel transitions scheduled -> cancelled. Returns ErrNotFound when the
	// event is absent or no longer scheduled.
	Cancel(ctx context.Context, id string) (*Event, error)
	// ForceExpire invokes the idempotent expiration procedure and returns the
	// resulting row. Safe to call concurrently; redundant calls are no-ops on
	// an already completed event.
	ForceExpire(ctx context.Context, id string) (*Event, error)
	ListActiveByLocation(ctx context.Context, locationID string, now time.Time) ([]*Event, error)
	ListPastByLocation(ctx context.Context, locationID string, now time.Time) ([]*Event, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]*Event, error)
	// ListAttending returns events with an RSVP by one of the user's animals.
	ListAttending(ctx context.Context, userID string) ([]*Event, error)
}

// RSVPRepository defines storage operations for RSVPs.
type RSVPRepository interface {
	// Upsert inserts or replaces the RSVP keyed by (event_id, animal_id).
	Upsert(ctx context.Context, r *RSVP) error
	GetByID(ctx context.Context, id string) (*RSVP, error)
	Delete(ctx context.Context, id string) error
	ListByEventID(ctx context.Context, eventID string) ([]*RSVP, error)
}

// EventInvitationRepository defines storage operations for play date invitations.
type EventInvitationRepository interface {
	Create(ctx context.Context, inv *EventInvitation) error
	ListByEventID(ctx context.Context, eventID string) ([]*EventInvitation, error)
}

// EventService defines the play date lifecycle.
type EventService interface {
	CreateEvent(ctx context.Context, e *Event) error
	CancelEvent(ctx context.Context, eventID, organizerID string) (*Event, error)
	// FetchWithExpirationCheck loads the event and, if it is scheduled but past
	// its end time, pushes the completed transition on behalf of all clients.
	FetchWithExpirationCheck(ctx context.Context, eventID string) (*Event, []*RSVP, error)
	// RSVPWithExpirationCheck re-reads the event and rejects with ErrEventOver
	// when it is no longer active, then upserts the RSVP.
	RSVPWithExpirationCheck(ctx context.Context, eventID, userID, animalID string, status RSVPStatus) (*RSVP, error)
	CancelRSVP(ctx context.Context, rsvpID, userID string) error
	ListActive(ctx context.Context, locationID string) ([]*Event, error)
	ListPast(ctx context.Context, locationID string) ([]*Event, error)
	// ListMine returns events the user organizes or attends via an RSVP'd
	// animal, deduplicated and re-sorted client-side.
	ListMine(ctx context.Context, userID string) ([]*Event, error)
	SendEventInvitations(ctx context.Context, eventID, organizerID string, emails []string) (sent int, failed []string, err error)
}
