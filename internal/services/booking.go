package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hirelens/internal/domain"
	"hirelens/internal/metrics"

	"github.com/google/uuid"
)

const (
	roomIDPrefix  = "room-"
	notifyTimeout = 10 * time.Second
)

// BookingMetrics receives booking outcomes. *metrics.Collector implements it.
type BookingMetrics interface {
	RecordBooking(result string)
	ObserveClaim(d time.Duration)
	RecordEmailFailure()
}

type bookingService struct {
	users     domain.UserRepository
	meetings  domain.MeetingRepository
	emails    domain.EmailService
	metrics   BookingMetrics
	logger    *slog.Logger
	now       func() time.Time
	newRoomID func() string
}

// BookingOption configures optional collaborators of the booking service.
type BookingOption func(*bookingService)

// WithEmailService sends a confirmation to both participants after each booking.
func WithEmailService(emails domain.EmailService) BookingOption {
	return func(s *bookingService) { s.emails = emails }
}

// WithBookingMetrics records booking outcomes.
func WithBookingMetrics(m BookingMetrics) BookingOption {
	return func(s *bookingService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewBookingService returns the BookingService that reserves slots and lists meetings.
func NewBookingService(users domain.UserRepository, meetings domain.MeetingRepository, logger *slog.Logger, opts ...BookingOption) domain.BookingService {
	s := &bookingService{
		users:     users,
		meetings:  meetings,
		metrics:   (*metrics.Collector)(nil),
		logger:    logger,
		now:       time.Now,
		newRoomID: func() string { return roomIDPrefix + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReserveSlot books the first free slot of interviewerID at date/clock for the
// calling interviewee and creates the meeting. The claim itself is not cancelled
// when ctx is, so a booking is either fully stored or not stored at all.
func (s *bookingService) ReserveSlot(ctx context.Context, caller domain.Principal, interviewerID, date, clock string) (*domain.Meeting, error) {
	if caller.Role != domain.RoleInterviewee {
		s.metrics.RecordBooking(metrics.BookingRejected)
		return nil, fmt.Errorf("%w: only interviewees can book", domain.ErrForbidden)
	}
	interviewerID = strings.TrimSpace(interviewerID)
	if interviewerID == "" {
		s.metrics.RecordBooking(metrics.BookingRejected)
		return nil, fmt.Errorf("%w: interviewer id is required", domain.ErrInvalidInput)
	}
	scheduledAt, err := domain.ParseSlotTime(date, clock)
	if err != nil {
		s.metrics.RecordBooking(metrics.BookingRejected)
		return nil, err
	}

	interviewer, err := s.users.GetByID(ctx, interviewerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.metrics.RecordBooking(metrics.BookingRejected)
			return nil, fmt.Errorf("%w: interviewer", domain.ErrNotFound)
		}
		s.metrics.RecordBooking(metrics.BookingError)
		return nil, fmt.Errorf("failed to load interviewer: %w", err)
	}
	if !interviewer.IsInterviewer() {
		s.metrics.RecordBooking(metrics.BookingRejected)
		return nil, fmt.Errorf("%w: interviewer", domain.ErrNotFound)
	}

	m := domain.NewMeeting(interviewer.ID, caller.UserID, s.newRoomID(), scheduledAt, s.now().UTC())
	claimCtx := context.WithoutCancel(ctx)
	start := time.Now()
	err = s.meetings.ClaimSlot(claimCtx, date, clock, m)
	s.metrics.ObserveClaim(time.Since(start))
	if err != nil {
		if errors.Is(err, domain.ErrSlotUnavailable) {
			s.metrics.RecordBooking(metrics.BookingUnavailable)
			return nil, err
		}
		s.metrics.RecordBooking(metrics.BookingError)
		return nil, fmt.Errorf("failed to reserve slot: %w", err)
	}
	s.metrics.RecordBooking(metrics.BookingSuccess)
	s.logger.InfoContext(ctx, "slot reserved",
		"meeting_id", m.ID, "interviewer_id", m.InterviewerID, "interviewee_id", m.IntervieweeID,
		"date", date, "time", clock)

	s.notify(claimCtx, interviewer, m, date, clock)
	return m, nil
}

// notify sends the confirmation to both participants. Failures are logged only.
func (s *bookingService) notify(ctx context.Context, interviewer *domain.User, m *domain.Meeting, date, clock string) {
	if s.emails == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	interviewee, err := s.users.GetByID(ctx, m.IntervieweeID)
	if err != nil {
		s.metrics.RecordEmailFailure()
		s.logger.WarnContext(ctx, "booking confirmation skipped", "meeting_id", m.ID, "err", err)
		return
	}
	mails := []*domain.BookingConfirmationEmailData{
		{
			Email:           interviewee.Email,
			RecipientName:   interviewee.Name,
			CounterpartName: interviewer.Name,
			Company:         interviewer.Company,
			Date:            date,
			Time:            clock,
			RoomID:          m.RoomID,
		},
		{
			Email:           interviewer.Email,
			RecipientName:   interviewer.Name,
			CounterpartName: interviewee.Name,
			Date:            date,
			Time:            clock,
			RoomID:          m.RoomID,
		},
	}
	for _, data := range mails {
		if err := s.emails.SendBookingConfirmation(ctx, data); err != nil {
			s.metrics.RecordEmailFailure()
			s.logger.WarnContext(ctx, "booking confirmation failed", "meeting_id", m.ID, "err", err)
		}
	}
}

// ListMeetingsFor returns every meeting userID takes part in, with both
// participants' public profiles and the counterpart relative to userID.
func (s *bookingService) ListMeetingsFor(ctx context.Context, userID string) ([]*domain.MeetingWithParticipants, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	list, err := s.meetings.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	for _, item := range list {
		if item.Meeting.InterviewerID == userID {
			item.Counterpart = item.Interviewee
		} else {
			item.Counterpart = item.Interviewer
		}
	}
	return nonNil(list), nil
}
