package controllers

import (
	"log/slog"
	"net/http"

	"parkpack/internal/delivery/http/helpers"
	"parkpack/internal/delivery/http/middleware"
	"parkpack/internal/domain"
)

// ToggleResponse reports the vote state after a toggle.
type ToggleResponse struct {
	Voted bool `json:"voted"`
}

type VoteController struct {
	Logger  *slog.Logger
	Service domain.VoteService
}

func NewVoteController(logger *slog.Logger, svc domain.VoteService) *VoteController {
	return &VoteController{
		Logger:  logger,
		Service: svc,
	}
}

func parseVoteKind(w http.ResponseWriter, r *http.Request) (domain.VoteKind, bool) {
	switch r.PathValue("kind") {
	case "photos":
		return domain.VotePhoto, true
	case "reviews":
		return domain.VoteReview, true
	default:
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "kind must be photos or reviews")
		return "", false
	}
}

// Toggle godoc
// @Summary Toggle a vote
// @Description Flips the caller's vote on a photo or review and reports whether a vote now exists.
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Param kind path string true "photos or reviews"
// @Param subjectID path string true "Subject ID"
// @Success 200 {object} helpers.APIResponse "data contains the resulting vote state"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /votes/{kind}/{subjectID}/toggle [post]
func (c *VoteController) Toggle(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseVoteKind(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	voted, err := c.Service.Toggle(r.Context(), kind, r.PathValue("subjectID"), userID)
	if err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ToggleResponse{Voted: voted})
}

// Unvote godoc
// @Summary Remove a vote
// @Description Removes the caller's vote if present. Removing an absent vote still succeeds.
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Param kind path string true "photos or reviews"
// @Param subjectID path string true "Subject ID"
// @Success 200 {object} helpers.APIResponse
// @Router /votes/{kind}/{subjectID} [delete]
func (c *VoteController) Unvote(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseVoteKind(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Unvote(r.Context(), kind, r.PathValue("subjectID"), userID); err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "removed"})
}
