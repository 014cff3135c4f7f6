package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"parkpack/internal/delivery/http/helpers"
	"parkpack/internal/delivery/http/middleware"
	"parkpack/internal/domain"
)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	LocationID  string    `json:"location_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	MaxCapacity *int      `json:"max_capacity"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if c.LocationID == "" {
		errs = append(errs, "location_id is required")
	}
	if c.Title == "" {
		errs = append(errs, "title is required")
	}
	if c.StartsAt.IsZero() || c.EndsAt.IsZero() {
		errs = append(errs, "starts_at and ends_at are required")
	}
	return errs
}

// RSVPRequest is the request body for POST /events/{eventID}/rsvps.
type RSVPRequest struct {
	AnimalID string `json:"animal_id"`
	Status   string `json:"status"`
}

// Validate implements Validator.
func (r RSVPRequest) Validate() []string {
	var errs []string
	if r.AnimalID == "" {
		errs = append(errs, "animal_id is required")
	}
	if r.Status != string(domain.RSVPGoing) && r.Status != string(domain.RSVPMaybe) {
		errs = append(errs, "status must be going or maybe")
	}
	return errs
}

// InviteRequest is the request body for POST /events/{eventID}/invitations.
type InviteRequest struct {
	Emails []string `json:"emails"`
}

// Validate implements Validator.
func (i InviteRequest) Validate() []string {
	if len(i.Emails) == 0 {
		return []string{"emails is required"}
	}
	return nil
}

// InviteResponse reports the invitation outcome per address.
type InviteResponse struct {
	Sent   int      `json:"sent"`
	Failed []string `json:"failed"`
}

// EventDetailResponse is the response body for GET /events/{eventID}.
type EventDetailResponse struct {
	Event *domain.Event  `json:"event"`
	RSVPs []*domain.RSVP `json:"rsvps"`
}

// PastEventsResponse is the paginated response body for scope=past listings.
type PastEventsResponse struct {
	Events     []*domain.Event        `json:"events"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create a play date
// @Description Schedules a play date at a park. The authenticated user becomes the organizer. End time must be after start time.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Play date data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event := domain.NewEvent(userID, req.LocationID, req.Title, req.Description, req.StartsAt, req.EndsAt, req.MaxCapacity, time.Now())
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetEvent godoc
// @Summary Get a play date with its RSVPs
// @Description Returns the event and all RSVPs. Reading an event whose end time has passed marks it completed first.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event and rsvps"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	event, rsvps, err := c.Service.FetchWithExpirationCheck(r.Context(), eventID)
	if err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventDetailResponse{Event: event, RSVPs: rsvps})
}

// CancelEvent godoc
// @Summary Cancel a play date
// @Description Cancels a scheduled play date. Only the organizer may cancel, and only while the event is still active.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the cancelled event"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (event over)"
// @Router /events/{eventID} [delete]
func (c *EventController) CancelEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Service.CancelEvent(r.Context(), eventID, userID)
	if err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// RSVP godoc
// @Summary RSVP to a play date
// @Description Answers for one of the caller's animals. A second answer for the same animal replaces the first. Rejected once the event is over.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param rsvp body RSVPRequest true "RSVP data"
// @Success 201 {object} helpers.APIResponse "data contains the rsvp"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not your animal)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (event over)"
// @Router /events/{eventID}/rsvps [post]
func (c *EventController) RSVP(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	var req RSVPRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	rsvp, err := c.Service.RSVPWithExpirationCheck(r.Context(), eventID, userID, req.AnimalID, domain.RSVPStatus(req.Status))
	if err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, rsvp)
}

// CancelRSVP godoc
// @Summary Withdraw an RSVP
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param rsvpID path string true "RSVP ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /rsvps/{rsvpID} [delete]
func (c *EventController) CancelRSVP(w http.ResponseWriter, r *http.Request) {
	rsvpID := r.PathValue("rsvpID")
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.CancelRSVP(r.Context(), rsvpID, userID); err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// ListByLocation godoc
// @Summary List play dates at a park
// @Description scope=active (default) returns scheduled events whose end time has not passed. scope=past returns the rest, paginated.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param locationID path string true "Park location ID"
// @Param scope query string false "active or past" default(active)
// @Param page query int false "Page (past scope only)"
// @Param page_size query int false "Page size (past scope only)"
// @Success 200 {object} helpers.APIResponse
// @Router /parks/{locationID}/events [get]
func (c *EventController) ListByLocation(w http.ResponseWriter, r *http.Request) {
	locationID := r.PathValue("locationID")
	if locationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing locationID")
		return
	}
	scope := r.URL.Query().Get("scope")
	switch scope {
	case "", "active":
		events, err := c.Service.ListActive(r.Context(), locationID)
		if err != nil {
			respondServiceError(c.Logger, w, r, err)
			return
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, events)
	case "past":
		events, err := c.Service.ListPast(r.Context(), locationID)
		if err != nil {
			respondServiceError(c.Logger, w, r, err)
			return
		}
		p := helpers.ParsePagination(r)
		start, end := p.Slice(len(events))
		helpers.WriteJSONSuccess(w, http.StatusOK, PastEventsResponse{
			Events:     events[start:end],
			Pagination: helpers.NewPaginationMeta(p.Page, p.PageSize, len(events)),
		})
	default:
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "scope must be active or past")
	}
}

// ListMine godoc
// @Summary List my play dates
// @Description Returns events the caller organizes or attends, newest first.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse
// @Router /me/events [get]
func (c *EventController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.ListMine(r.Context(), userID)
	if err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// Invite godoc
// @Summary Email play date invitations
// @Description Sends invitation emails for the event. Only the organizer may invite. Failed addresses are reported, not fatal.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param invitations body InviteRequest true "Recipient emails"
// @Success 200 {object} helpers.APIResponse "data contains sent count and failed addresses"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /events/{eventID}/invitations [post]
func (c *EventController) Invite(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	var req InviteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	sent, failed, err := c.Service.SendEventInvitations(r.Context(), eventID, userID, req.Emails)
	if err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, InviteResponse{Sent: sent, Failed: failed})
}
