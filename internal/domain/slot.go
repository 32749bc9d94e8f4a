package domain

import (
	"context"
	"fmt"
	"time"
)

// Layouts of the date and time strings a Slot is keyed by.
const (
	SlotDateLayout = "2006-01-02"
	SlotTimeLayout = "15:04"
)

// Slot is a single bookable date/time unit in an interviewer's availability.
// IsBooked goes from false to true at most once.
// swagger:model Slot
type Slot struct {
	ID            string    `json:"id"`
	InterviewerID string    `json:"interviewer_id"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	IsBooked      bool      `json:"is_booked"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewSlot returns an unbooked Slot. ID is typically set by the repository on create.
func NewSlot(interviewerID, date, clock string, createdAt time.Time) *Slot {
	return &Slot{
		InterviewerID: interviewerID,
		Date:          date,
		Time:          clock,
		CreatedAt:     createdAt,
	}
}

// ParseSlotTime validates date ("2006-01-02") and clock ("15:04") and returns
// the instant they describe in UTC. Both must be zero padded, so "9:00" is
// rejected. Errors wrap ErrInvalidInput.
func ParseSlotTime(date, clock string) (time.Time, error) {
	d, err := time.Parse(SlotDateLayout, date)
	if err != nil || d.Format(SlotDateLayout) != date {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	c, err := time.Parse(SlotTimeLayout, clock)
	if err != nil || c.Format(SlotTimeLayout) != clock {
		return time.Time{}, fmt.Errorf("%w: time must be HH:MM", ErrInvalidInput)
	}
	return d.Add(time.Duration(c.Hour())*time.Hour + time.Duration(c.Minute())*time.Minute), nil
}

// AvailabilityRepository defines storage for interviewer slots. Lists are
// returned in insertion order.
type AvailabilityRepository interface {
	AddSlot(ctx context.Context, slot *Slot) error
	// DeleteSlot removes an unbooked slot. Returns ErrNotFound or ErrSlotBooked.
	DeleteSlot(ctx context.Context, interviewerID, slotID string) error
	ListByInterviewer(ctx context.Context, interviewerID string) ([]*Slot, error)
	ListByInterviewers(ctx context.Context, interviewerIDs []string) (map[string][]*Slot, error)
}

// InterviewerListing is an interviewer's public profile with its availability.
// swagger:model InterviewerListing
type InterviewerListing struct {
	Profile      *PublicProfile `json:"profile"`
	Availability []*Slot        `json:"availability"`
}

// Profile is a user's own view of its account.
// swagger:model Profile
type Profile struct {
	User         *User   `json:"user"`
	Availability []*Slot `json:"availability"`
}

// AvailabilityService defines availability management and the interviewer directory.
type AvailabilityService interface {
	AddSlot(ctx context.Context, caller Principal, date, clock string) ([]*Slot, error)
	RemoveSlot(ctx context.Context, caller Principal, slotID string) ([]*Slot, error)
	ListInterviewers(ctx context.Context) ([]*InterviewerListing, error)
	GetProfile(ctx context.Context, userID string) (*Profile, error)
}
