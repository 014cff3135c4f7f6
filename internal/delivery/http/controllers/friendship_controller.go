package controllers

import (
	"context"
	"log/slog"
	"net/http"

	"parkpack/internal/delivery/http/helpers"
	"parkpack/internal/delivery/http/middleware"
	"parkpack/internal/domain"
)

// FriendRequestBody is the request body for POST /friendships.
type FriendRequestBody struct {
	AddresseeID string `json:"addressee_id"`
}

// Validate implements Validator.
func (f FriendRequestBody) Validate() []string {
	if f.AddresseeID == "" {
		return []string{"addressee_id is required"}
	}
	return nil
}

type FriendshipController struct {
	Logger  *slog.Logger
	Service domain.FriendshipService
}

func NewFriendshipController(logger *slog.Logger, svc domain.FriendshipService) *FriendshipController {
	return &FriendshipController{
		Logger:  logger,
		Service: svc,
	}
}

// SendRequest godoc
// @Summary Send a friend request
// @Description Creates a pending request. A pending, accepted, or declined record for the pair is reported as a conflict.
// @Tags friendships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body FriendRequestBody true "Addressee"
// @Success 201 {object} helpers.APIResponse "data contains the pending friendship"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /friendships [post]
func (c *FriendshipController) SendRequest(w http.ResponseWriter, r *http.Request) {
	var req FriendRequestBody
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	friendship, err := c.Service.SendRequest(r.Context(), userID, req.AddresseeID)
	if err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, friendship)
}

// Accept godoc
// @Summary Accept a friend request
// @Description Only the addressee of a pending request may accept.
// @Tags friendships
// @Produce json
// @Security BearerAuth
// @Param friendshipID path string true "Friendship ID"
// @Success 200 {object} helpers.APIResponse "data contains the accepted friendship"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /friendships/{friendshipID}/accept [post]
func (c *FriendshipController) Accept(w http.ResponseWriter, r *http.Request) {
	c.answer(w, r, c.Service.Accept)
}

// Decline godoc
// @Summary Decline a friend request
// @Description Only the addressee of a pending request may decline.
// @Tags friendships
// @Produce json
// @Security BearerAuth
// @Param friendshipID path string true "Friendship ID"
// @Success 200 {object} helpers.APIResponse "data contains the declined friendship"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /friendships/{friendshipID}/decline [post]
func (c *FriendshipController) Decline(w http.ResponseWriter, r *http.Request) {
	c.answer(w, r, c.Service.Decline)
}

func (c *FriendshipController) answer(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id, callerID string) (*domain.Friendship, error)) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	friendship, err := fn(r.Context(), r.PathValue("friendshipID"), userID)
	if err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, friendship)
}

// Remove godoc
// @Summary Remove a friendship
// @Description Deletes the friendship record. Either participant may remove it; removal also clears a declined record so a new request can be sent.
// @Tags friendships
// @Produce json
// @Security BearerAuth
// @Param friendshipID path string true "Friendship ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /friendships/{friendshipID} [delete]
func (c *FriendshipController) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Remove(r.Context(), r.PathValue("friendshipID"), userID); err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "removed"})
}

// ListFriends godoc
// @Summary List my friends
// @Description Returns the profiles on the far side of the caller's accepted friendships.
// @Tags friendships
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse
// @Router /me/friends [get]
func (c *FriendshipController) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	friends, err := c.Service.ListFriends(r.Context(), userID)
	if err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, friends)
}
