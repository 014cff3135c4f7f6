package controllers

import (
	"log/slog"
	"net/http"

	"parkpack/internal/delivery/http/helpers"
	"parkpack/internal/delivery/http/middleware"
	"parkpack/internal/domain"
)

// CheckInRequest is the request body for POST /parks/{locationID}/checkins.
type CheckInRequest struct {
	AnimalIDs []string `json:"animal_ids"`
}

type PresenceController struct {
	Logger  *slog.Logger
	Service domain.PresenceService
}

func NewPresenceController(logger *slog.Logger, svc domain.PresenceService) *PresenceController {
	return &PresenceController{
		Logger:  logger,
		Service: svc,
	}
}

// CheckIn godoc
// @Summary Check in at a park
// @Description Opens a presence at the park for the authenticated user with the given animal companions. A user can hold at most one open presence.
// @Tags presences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param locationID path string true "Park location ID"
// @Param checkin body CheckInRequest true "Animal companions"
// @Success 201 {object} helpers.APIResponse "data contains the created presence"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already checked in)"
// @Router /parks/{locationID}/checkins [post]
func (c *PresenceController) CheckIn(w http.ResponseWriter, r *http.Request) {
	locationID := r.PathValue("locationID")
	if locationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing locationID")
		return
	}
	var req CheckInRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	presence, err := c.Service.CheckIn(r.Context(), userID, locationID, req.AnimalIDs)
	if err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, presence)
}

// CheckOut godoc
// @Summary Check out of a park
// @Description Closes the presence. Checking out of an absent or already-closed presence still succeeds.
// @Tags presences
// @Produce json
// @Security BearerAuth
// @Param presenceID path string true "Presence ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /checkins/{presenceID} [delete]
func (c *PresenceController) CheckOut(w http.ResponseWriter, r *http.Request) {
	presenceID := r.PathValue("presenceID")
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.CheckOut(r.Context(), presenceID); err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "checked out"})
}

// ListRoster godoc
// @Summary List who is at a park right now
// @Description Returns the open presences at the park, each enriched with the visitor's profile and animals.
// @Tags presences
// @Produce json
// @Security BearerAuth
// @Param locationID path string true "Park location ID"
// @Success 200 {object} helpers.APIResponse "data contains the roster entries"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /parks/{locationID}/roster [get]
func (c *PresenceController) ListRoster(w http.ResponseWriter, r *http.Request) {
	locationID := r.PathValue("locationID")
	if locationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing locationID")
		return
	}
	entries, err := c.Service.ListRoster(r.Context(), locationID)
	if err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entries)
}
