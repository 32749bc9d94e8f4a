package domain

import (
	"context"
	"time"
)

// AIAnalysis is feedback attached to a meeting after the call by an external process.
type AIAnalysis struct {
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions"`
}

// Meeting is the record of a confirmed booking.
// swagger:model Meeting
type Meeting struct {
	ID            string      `json:"id"`
	InterviewerID string      `json:"interviewer_id"`
	IntervieweeID string      `json:"interviewee_id"`
	SlotID        string      `json:"slot_id"`
	ScheduledAt   time.Time   `json:"scheduled_at"`
	RoomID        string      `json:"room_id"`
	AIAnalysis    *AIAnalysis `json:"ai_analysis,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// NewMeeting returns a new Meeting. ID and SlotID are set by the repository when the slot is claimed.
func NewMeeting(interviewerID, intervieweeID, roomID string, scheduledAt, createdAt time.Time) *Meeting {
	return &Meeting{
		InterviewerID: interviewerID,
		IntervieweeID: intervieweeID,
		ScheduledAt:   scheduledAt,
		RoomID:        roomID,
		CreatedAt:     createdAt,
	}
}

// HasParticipant reports whether userID is the interviewer or the interviewee.
func (m *Meeting) HasParticipant(userID string) bool {
	return m.InterviewerID == userID || m.IntervieweeID == userID
}

// MeetingWithParticipants bundles a meeting with both participants' public profiles.
// swagger:model MeetingWithParticipants
type MeetingWithParticipants struct {
	Meeting     *Meeting       `json:"meeting"`
	Interviewer *PublicProfile `json:"interviewer"`
	Interviewee *PublicProfile `json:"interviewee"`
	// Counterpart is the other participant relative to the user the list was built for.
	Counterpart *PublicProfile `json:"counterpart,omitempty"`
}

// MeetingRepository defines storage for meetings.
type MeetingRepository interface {
	// ClaimSlot marks the first unbooked slot of m.InterviewerID at (date, clock)
	// as booked and stores m in one atomic unit, setting m.ID and m.SlotID.
	// Returns ErrSlotUnavailable when no such slot exists; nothing is written then.
	ClaimSlot(ctx context.Context, date, clock string, m *Meeting) error
	ListByParticipant(ctx context.Context, userID string) ([]*MeetingWithParticipants, error)
}

// BookingService defines slot reservation and the meeting list.
type BookingService interface {
	ReserveSlot(ctx context.Context, caller Principal, interviewerID, date, clock string) (*Meeting, error)
	ListMeetingsFor(ctx context.Context, userID string) ([]*MeetingWithParticipants, error)
}
