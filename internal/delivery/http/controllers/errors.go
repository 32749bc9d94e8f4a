package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	h "hirelens/internal/delivery/http/helpers"
	"hirelens/internal/domain"
)

// writeServiceError maps domain sentinels to the API error envelope.
// Anything unrecognised is logged and answered with a generic internal_error.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrSlotUnavailable):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeSlotUnavailable, "slot is no longer available, refresh availability and try again")
	case errors.Is(err, domain.ErrInvalidCredentials):
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid email or password")
	case errors.Is(err, domain.ErrUnauthorized):
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrSlotBooked):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "slot already has a meeting")
	case errors.Is(err, domain.ErrDuplicateEmail):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "email already registered")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteInternalError(w)
	}
}
