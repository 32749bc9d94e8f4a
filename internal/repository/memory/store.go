// Package memory is an in-process implementation of the user, availability and
// meeting repositories. It backs STORE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"hirelens/internal/domain"
)

// Store implements domain.UserRepository, domain.AvailabilityRepository and
// domain.MeetingRepository. Slot claims lock only the interviewer's own slot
// list, so bookings for different interviewers never contend.
type Store struct {
	mu      sync.RWMutex
	users   map[string]*domain.User
	byEmail map[string]string
	slots   map[string]*slotList

	meetingsMu sync.RWMutex
	meetings   []*domain.Meeting
	rooms      map[string]struct{}
}

type slotList struct {
	mu    sync.Mutex
	slots []*domain.Slot
}

func NewStore() *Store {
	return &Store{
		users:   make(map[string]*domain.User),
		byEmail: make(map[string]string),
		slots:   make(map[string]*slotList),
		rooms:   make(map[string]struct{}),
	}
}

var (
	_ domain.UserRepository         = (*Store)(nil)
	_ domain.AvailabilityRepository = (*Store)(nil)
	_ domain.MeetingRepository      = (*Store)(nil)
)

func (s *Store) Create(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, exists := s.byEmail[email]; exists {
		return domain.ErrDuplicateEmail
	}
	u.ID = uuid.NewString()
	stored := *u
	s.users[u.ID] = &stored
	s.byEmail[email] = u.ID
	if u.IsInterviewer() {
		s.slots[u.ID] = &slotList{}
	}
	return nil
}

func (s *Store) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := *s.users[id]
	return &u, nil
}

func (s *Store) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) ListByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.User
	for _, u := range s.users {
		if u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) slotListFor(interviewerID string) (*slotList, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.slots[interviewerID]
	return l, ok
}

func (s *Store) AddSlot(_ context.Context, slot *domain.Slot) error {
	l, ok := s.slotListFor(slot.InterviewerID)
	if !ok {
		return domain.ErrNotFound
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	slot.ID = uuid.NewString()
	slot.IsBooked = false
	stored := *slot
	l.slots = append(l.slots, &stored)
	return nil
}

func (s *Store) DeleteSlot(_ context.Context, interviewerID, slotID string) error {
	l, ok := s.slotListFor(interviewerID)
	if !ok {
		return domain.ErrNotFound
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, slot := range l.slots {
		if slot.ID != slotID {
			continue
		}
		if slot.IsBooked {
			return domain.ErrSlotBooked
		}
		l.slots = append(l.slots[:i], l.slots[i+1:]...)
		return nil
	}
	return domain.ErrNotFound
}

func (s *Store) ListByInterviewer(_ context.Context, interviewerID string) ([]*domain.Slot, error) {
	l, ok := s.slotListFor(interviewerID)
	if !ok {
		return nil, nil
	}
	return l.snapshot(), nil
}

func (s *Store) ListByInterviewers(_ context.Context, interviewerIDs []string) (map[string][]*domain.Slot, error) {
	out := make(map[string][]*domain.Slot, len(interviewerIDs))
	for _, id := range interviewerIDs {
		if l, ok := s.slotListFor(id); ok {
			if slots := l.snapshot(); len(slots) > 0 {
				out[id] = slots
			}
		}
	}
	return out, nil
}

func (l *slotList) snapshot() []*domain.Slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*domain.Slot, len(l.slots))
	for i, slot := range l.slots {
		cp := *slot
		out[i] = &cp
	}
	return out
}

func (s *Store) ClaimSlot(_ context.Context, date, clock string, m *domain.Meeting) error {
	l, ok := s.slotListFor(m.InterviewerID)
	if !ok {
		return domain.ErrSlotUnavailable
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	var claimed *domain.Slot
	for _, slot := range l.slots {
		if slot.Date == date && slot.Time == clock && !slot.IsBooked {
			claimed = slot
			break
		}
	}
	if claimed == nil {
		return domain.ErrSlotUnavailable
	}

	s.meetingsMu.Lock()
	defer s.meetingsMu.Unlock()
	if _, taken := s.rooms[m.RoomID]; taken {
		return fmt.Errorf("room id %q already in use", m.RoomID)
	}
	m.ID = uuid.NewString()
	m.SlotID = claimed.ID
	stored := *m
	s.meetings = append(s.meetings, &stored)
	s.rooms[m.RoomID] = struct{}{}
	claimed.IsBooked = true
	return nil
}

func (s *Store) ListByParticipant(_ context.Context, userID string) ([]*domain.MeetingWithParticipants, error) {
	s.meetingsMu.RLock()
	var mine []domain.Meeting
	for _, m := range s.meetings {
		if m.HasParticipant(userID) {
			mine = append(mine, *m)
		}
	}
	s.meetingsMu.RUnlock()

	sort.SliceStable(mine, func(i, j int) bool { return mine[i].ScheduledAt.Before(mine[j].ScheduledAt) })

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.MeetingWithParticipants, 0, len(mine))
	for i := range mine {
		m := &mine[i]
		out = append(out, &domain.MeetingWithParticipants{
			Meeting:     m,
			Interviewer: s.profile(m.InterviewerID),
			Interviewee: s.profile(m.IntervieweeID),
		})
	}
	return out, nil
}

// profile must be called with s.mu held.
func (s *Store) profile(id string) *domain.PublicProfile {
	if u, ok := s.users[id]; ok {
		return u.PublicProfile()
	}
	return &domain.PublicProfile{ID: id}
}

// SetAIAnalysis attaches feedback to a meeting. It stands in for the external
// process that writes analysis rows in the database.
func (s *Store) SetAIAnalysis(meetingID string, a *domain.AIAnalysis) error {
	s.meetingsMu.Lock()
	defer s.meetingsMu.Unlock()
	for _, m := range s.meetings {
		if m.ID == meetingID {
			m.AIAnalysis = a
			return nil
		}
	}
	return domain.ErrNotFound
}
