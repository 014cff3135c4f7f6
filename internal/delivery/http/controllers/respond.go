package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"parkpack/internal/delivery/http/helpers"
	"parkpack/internal/domain"
)

// respondServiceError maps domain errors onto the API error envelope.
// Anything unmapped is a 500 and gets logged; the mapped cases are expected
// client outcomes and stay quiet.
func respondServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, err.Error())
	case errors.Is(err, domain.ErrAlreadyCheckedIn),
		errors.Is(err, domain.ErrEventOver),
		errors.Is(err, domain.ErrRequestPending),
		errors.Is(err, domain.ErrAlreadyFriends),
		errors.Is(err, domain.ErrRequestDeclined):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
