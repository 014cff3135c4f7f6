package controllers

import (
	"log/slog"
	"net/http"

	"parkpack/internal/delivery/http/helpers"
	"parkpack/internal/delivery/http/middleware"
	"parkpack/internal/domain"
)

// AddPhotoRequest is the request body for POST /parks/{locationID}/photos.
type AddPhotoRequest struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// Validate implements Validator.
func (a AddPhotoRequest) Validate() []string {
	if a.URL == "" {
		return []string{"url is required"}
	}
	return nil
}

// AddReviewRequest is the request body for POST /parks/{locationID}/reviews.
type AddReviewRequest struct {
	Rating int    `json:"rating"`
	Body   string `json:"body"`
}

// Validate implements Validator.
func (a AddReviewRequest) Validate() []string {
	var errs []string
	if a.Rating < 1 || a.Rating > 5 {
		errs = append(errs, "rating must be between 1 and 5")
	}
	if a.Body == "" {
		errs = append(errs, "body is required")
	}
	return errs
}

type MediaController struct {
	Logger  *slog.Logger
	Service domain.MediaService
}

func NewMediaController(logger *slog.Logger, svc domain.MediaService) *MediaController {
	return &MediaController{
		Logger:  logger,
		Service: svc,
	}
}

// AddPhoto godoc
// @Summary Add a park photo
// @Tags media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param locationID path string true "Park location ID"
// @Param photo body AddPhotoRequest true "Photo data"
// @Success 201 {object} helpers.APIResponse "data contains the created photo"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /parks/{locationID}/photos [post]
func (c *MediaController) AddPhoto(w http.ResponseWriter, r *http.Request) {
	var req AddPhotoRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	photo := &domain.Photo{
		LocationID: r.PathValue("locationID"),
		UploaderID: userID,
		URL:        req.URL,
		Caption:    req.Caption,
	}
	if err := c.Service.AddPhoto(r.Context(), photo); err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, photo)
}

// ListPhotos godoc
// @Summary List park photos with vote tallies
// @Description Returns the park's photos newest first, each with its vote count and whether the caller voted.
// @Tags media
// @Produce json
// @Security BearerAuth
// @Param locationID path string true "Park location ID"
// @Success 200 {object} helpers.APIResponse
// @Router /parks/{locationID}/photos [get]
func (c *MediaController) ListPhotos(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	photos, err := c.Service.ListPhotos(r.Context(), r.PathValue("locationID"), userID)
	if err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, photos)
}

// AddReview godoc
// @Summary Add a park review
// @Tags media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param locationID path string true "Park location ID"
// @Param review body AddReviewRequest true "Review data"
// @Success 201 {object} helpers.APIResponse "data contains the created review"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /parks/{locationID}/reviews [post]
func (c *MediaController) AddReview(w http.ResponseWriter, r *http.Request) {
	var req AddReviewRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	review := &domain.Review{
		LocationID: r.PathValue("locationID"),
		AuthorID:   userID,
		Rating:     req.Rating,
		Body:       req.Body,
	}
	if err := c.Service.AddReview(r.Context(), review); err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, review)
}

// ListReviews godoc
// @Summary List park reviews with vote tallies
// @Tags media
// @Produce json
// @Security BearerAuth
// @Param locationID path string true "Park location ID"
// @Success 200 {object} helpers.APIResponse
// @Router /parks/{locationID}/reviews [get]
func (c *MediaController) ListReviews(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reviews, err := c.Service.ListReviews(r.Context(), r.PathValue("locationID"), userID)
	if err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reviews)
}
