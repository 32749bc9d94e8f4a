package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hirelens/internal/domain"
)

type availabilityService struct {
	users domain.UserRepository
	slots domain.AvailabilityRepository
	now   func() time.Time
}

// NewAvailabilityService returns an AvailabilityService backed by the given repositories.
func NewAvailabilityService(users domain.UserRepository, slots domain.AvailabilityRepository) domain.AvailabilityService {
	return &availabilityService{users: users, slots: slots, now: time.Now}
}

func (s *availabilityService) AddSlot(ctx context.Context, caller domain.Principal, date, clock string) ([]*domain.Slot, error) {
	if caller.Role != domain.RoleInterviewer {
		return nil, fmt.Errorf("%w: only interviewers can publish availability", domain.ErrForbidden)
	}
	if _, err := domain.ParseSlotTime(date, clock); err != nil {
		return nil, err
	}
	if err := s.slots.AddSlot(ctx, domain.NewSlot(caller.UserID, date, clock, s.now().UTC())); err != nil {
		return nil, fmt.Errorf("failed to add slot: %w", err)
	}
	return s.list(ctx, caller.UserID)
}

func (s *availabilityService) RemoveSlot(ctx context.Context, caller domain.Principal, slotID string) ([]*domain.Slot, error) {
	if caller.Role != domain.RoleInterviewer {
		return nil, fmt.Errorf("%w: only interviewers can manage availability", domain.ErrForbidden)
	}
	slotID = strings.TrimSpace(slotID)
	if slotID == "" {
		return nil, fmt.Errorf("%w: slot id is required", domain.ErrInvalidInput)
	}
	if err := s.slots.DeleteSlot(ctx, caller.UserID, slotID); err != nil {
		return nil, fmt.Errorf("failed to remove slot: %w", err)
	}
	return s.list(ctx, caller.UserID)
}

func (s *availabilityService) ListInterviewers(ctx context.Context) ([]*domain.InterviewerListing, error) {
	interviewers, err := s.users.ListByRole(ctx, domain.RoleInterviewer)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviewers: %w", err)
	}
	ids := make([]string, len(interviewers))
	for i, u := range interviewers {
		ids[i] = u.ID
	}
	slots, err := s.slots.ListByInterviewers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load availability: %w", err)
	}

	out := make([]*domain.InterviewerListing, 0, len(interviewers))
	for _, u := range interviewers {
		out = append(out, &domain.InterviewerListing{
			Profile:      u.PublicProfile(),
			Availability: nonNil(slots[u.ID]),
		})
	}
	return out, nil
}

func (s *availabilityService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	p := &domain.Profile{User: user, Availability: []*domain.Slot{}}
	if user.IsInterviewer() {
		if p.Availability, err = s.list(ctx, user.ID); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *availabilityService) list(ctx context.Context, interviewerID string) ([]*domain.Slot, error) {
	slots, err := s.slots.ListByInterviewer(ctx, interviewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability: %w", err)
	}
	return nonNil(slots), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
