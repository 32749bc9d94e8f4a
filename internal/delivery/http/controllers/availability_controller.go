package controllers

import (
	"log/slog"
	"net/http"
	"regexp"

	h "hirelens/internal/delivery/http/helpers"
	"hirelens/internal/delivery/http/middleware"
	"hirelens/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var slotTimePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

// AddSlotRequest is the request body for POST /api/auth/availability
type AddSlotRequest struct {
	Date string `json:"date"` // YYYY-MM-DD
	Time string `json:"time"` // HH:MM, 24h
}

// Validate implements helpers.Validator.
func (a AddSlotRequest) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Date, validation.Required, validation.Date(domain.SlotDateLayout).Error("must be a date in YYYY-MM-DD format")),
		validation.Field(&a.Time, validation.Required,
			validation.Match(slotTimePattern).Error("must be a time in HH:MM format"),
			validation.Date(domain.SlotTimeLayout).Error("must be a time in HH:MM format")),
	)
}

// AvailabilityController serves profiles, the interviewer directory and
// an interviewer's own availability.
type AvailabilityController struct {
	Logger  *slog.Logger
	Service domain.AvailabilityService
}

func NewAvailabilityController(logger *slog.Logger, svc domain.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{
		Logger:  logger,
		Service: svc,
	}
}

// Me godoc
// @Summary Current user's profile
// @Description Returns the authenticated user. Interviewers also get their availability.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse{data=domain.Profile}
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/auth/me [get]
func (c *AvailabilityController) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	profile, err := c.Service.GetProfile(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, profile)
}

// ListInterviewers godoc
// @Summary Interviewer directory
// @Description Lists every interviewer's public profile with their availability.
// @Tags auth
// @Produce json
// @Success 200 {object} helpers.APIResponse{data=[]domain.InterviewerListing}
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/auth/interviewers [get]
func (c *AvailabilityController) ListInterviewers(w http.ResponseWriter, r *http.Request) {
	listings, err := c.Service.ListInterviewers(r.Context())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, listings)
}

// AddSlot godoc
// @Summary Publish an availability slot
// @Description Adds a slot for the authenticated interviewer and returns their full availability.
// @Tags availability
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AddSlotRequest true "Slot date and time"
// @Success 201 {object} helpers.APIResponse{data=[]domain.Slot}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/auth/availability [post]
func (c *AvailabilityController) AddSlot(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req AddSlotRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	slots, err := c.Service.AddSlot(r.Context(), p, req.Date, req.Time)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, slots)
}

// RemoveSlot godoc
// @Summary Remove an availability slot
// @Description Deletes one of the interviewer's unbooked slots and returns the remaining availability.
// @Tags availability
// @Produce json
// @Security BearerAuth
// @Param slotID path string true "Slot ID"
// @Success 200 {object} helpers.APIResponse{data=[]domain.Slot}
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/auth/availability/{slotID} [delete]
func (c *AvailabilityController) RemoveSlot(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	slotID := r.PathValue("slotID")
	if slotID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "slot id is required")
		return
	}
	slots, err := c.Service.RemoveSlot(r.Context(), p, slotID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, slots)
}
