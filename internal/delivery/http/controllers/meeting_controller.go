package controllers

import (
	"log/slog"
	"net/http"

	h "hirelens/internal/delivery/http/helpers"
	"hirelens/internal/delivery/http/middleware"
	"hirelens/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// BookMeetingRequest is the request body for POST /api/meetings
type BookMeetingRequest struct {
	InterviewerID string `json:"interviewer_id"`
	Date          string `json:"date"` // YYYY-MM-DD
	Time          string `json:"time"` // HH:MM, 24h
}

// Validate implements helpers.Validator. Calendar checks are left to the
// booking service so both layers report the same message.
func (b BookMeetingRequest) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.InterviewerID, validation.Required),
		validation.Field(&b.Date, validation.Required),
		validation.Field(&b.Time, validation.Required),
	)
}

type MeetingController struct {
	Logger  *slog.Logger
	Service domain.BookingService
}

func NewMeetingController(logger *slog.Logger, svc domain.BookingService) *MeetingController {
	return &MeetingController{
		Logger:  logger,
		Service: svc,
	}
}

// Book godoc
// @Summary Book an interview
// @Description Reserves the interviewer's unbooked slot at the given date and time and creates a meeting. Only interviewees may book. A slot that is gone (never existed, already booked, or lost to a concurrent request) yields slot_unavailable.
// @Tags meetings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body BookMeetingRequest true "Interviewer and slot"
// @Success 201 {object} helpers.APIResponse{data=domain.Meeting}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or slot_unavailable"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 429 {object} helpers.APIResponse "error.code: rate_limited"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/meetings [post]
func (c *MeetingController) Book(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req BookMeetingRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	meeting, err := c.Service.ReserveSlot(r.Context(), p, req.InterviewerID, req.Date, req.Time)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, meeting)
}

// List godoc
// @Summary List my meetings
// @Description Meetings where the caller is the interviewer or the interviewee, with both participants' public profiles.
// @Tags meetings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse{data=[]domain.MeetingWithParticipants}
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/meetings [get]
func (c *MeetingController) List(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	meetings, err := c.Service.ListMeetingsFor(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if meetings == nil {
		meetings = []*domain.MeetingWithParticipants{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, meetings)
}
