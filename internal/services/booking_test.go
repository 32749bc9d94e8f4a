package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hirelens/internal/domain"
	"hirelens/internal/metrics"
	"hirelens/internal/repository/memory"
)

type bookingFixture struct {
	store       *memory.Store
	interviewer *domain.User
	students    []*domain.User
}

func newBookingFixture(t *testing.T, students int) *bookingFixture {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	f := &bookingFixture{store: memory.NewStore()}
	f.interviewer = domain.NewUser("Ada", "ada@example.com", domain.RoleInterviewer, "Acme", "Staff", now, now)
	require.NoError(t, f.store.Create(ctx, f.interviewer))
	for i := 0; i < students; i++ {
		u := domain.NewUser(fmt.Sprintf("Student %d", i), fmt.Sprintf("s%d@example.com", i), domain.RoleInterviewee, "", "", now, now)
		require.NoError(t, f.store.Create(ctx, u))
		f.students = append(f.students, u)
	}
	return f
}

func (f *bookingFixture) addSlot(t *testing.T, date, clock string) {
	t.Helper()
	require.NoError(t, f.store.AddSlot(context.Background(), domain.NewSlot(f.interviewer.ID, date, clock, time.Now())))
}

func principal(u *domain.User) domain.Principal {
	return domain.Principal{UserID: u.ID, Role: u.Role}
}

func TestBookingService_ReserveSlot_scenario(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t, 2)
	f.addSlot(t, "2024-01-10", "14:00")
	svc := NewBookingService(f.store, f.store, testLogger())
	b, c := f.students[0], f.students[1]

	m, err := svc.ReserveSlot(ctx, principal(b), f.interviewer.ID, "2024-01-10", "14:00")
	require.NoError(t, err)
	assert.Regexp(t, `^room-[0-9a-f-]{36}$`, m.RoomID)
	assert.Equal(t, time.Date(2024, 1, 10, 14, 0, 0, 0, time.UTC), m.ScheduledAt)
	assert.NotEmpty(t, m.SlotID)

	slots, err := f.store.ListByInterviewer(ctx, f.interviewer.ID)
	require.NoError(t, err)
	assert.True(t, slots[0].IsBooked)

	_, err = svc.ReserveSlot(ctx, principal(c), f.interviewer.ID, "2024-01-10", "14:00")
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
}

func TestBookingService_ReserveSlot_failed_retry_is_stable(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t, 2)
	f.addSlot(t, "2024-01-10", "14:00")
	svc := NewBookingService(f.store, f.store, testLogger())

	_, err := svc.ReserveSlot(ctx, principal(f.students[0]), f.interviewer.ID, "2024-01-10", "14:00")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := svc.ReserveSlot(ctx, principal(f.students[1]), f.interviewer.ID, "2024-01-10", "14:00")
		require.ErrorIs(t, err, domain.ErrSlotUnavailable)
	}
	meetings, err := svc.ListMeetingsFor(ctx, f.interviewer.ID)
	require.NoError(t, err)
	assert.Len(t, meetings, 1)
}

func TestBookingService_ReserveSlot_concurrent(t *testing.T) {
	ctx := context.Background()
	const n = 32
	f := newBookingFixture(t, n)
	f.addSlot(t, "2024-01-10", "14:00")
	m := newFakeBookingMetrics()
	svc := NewBookingService(f.store, f.store, testLogger(), WithBookingMetrics(m))

	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.ReserveSlot(ctx, principal(f.students[i]), f.interviewer.ID, "2024-01-10", "14:00")
		}(i)
	}
	close(start)
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, m.results[metrics.BookingSuccess])
	assert.Equal(t, n-1, m.results[metrics.BookingUnavailable])

	meetings, err := svc.ListMeetingsFor(ctx, f.interviewer.ID)
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	slots, _ := f.store.ListByInterviewer(ctx, f.interviewer.ID)
	assert.Equal(t, slots[0].ID, meetings[0].Meeting.SlotID)
}

func TestBookingService_ReserveSlot_validation(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t, 1)
	f.addSlot(t, "2024-01-10", "14:00")
	svc := NewBookingService(f.store, f.store, testLogger())
	student := principal(f.students[0])

	tests := []struct {
		name          string
		caller        domain.Principal
		interviewerID string
		date, clock   string
		wantErr       error
	}{
		{"interviewer cannot book", principal(f.interviewer), f.interviewer.ID, "2024-01-10", "14:00", domain.ErrForbidden},
		{"bad date", student, f.interviewer.ID, "10/01/2024", "14:00", domain.ErrInvalidInput},
		{"bad time", student, f.interviewer.ID, "2024-01-10", "2pm", domain.ErrInvalidInput},
		{"impossible date", student, f.interviewer.ID, "2024-02-30", "14:00", domain.ErrInvalidInput},
		{"unpadded hour", student, f.interviewer.ID, "2024-01-10", "9:00", domain.ErrInvalidInput},
		{"unpadded month", student, f.interviewer.ID, "2024-1-10", "14:00", domain.ErrInvalidInput},
		{"missing interviewer id", student, " ", "2024-01-10", "14:00", domain.ErrInvalidInput},
		{"unknown interviewer", student, "missing", "2024-01-10", "14:00", domain.ErrNotFound},
		{"target is not an interviewer", student, f.students[0].ID, "2024-01-10", "14:00", domain.ErrNotFound},
		{"no such slot", student, f.interviewer.ID, "2024-01-10", "15:00", domain.ErrSlotUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ReserveSlot(ctx, tt.caller, tt.interviewerID, tt.date, tt.clock)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	slots, _ := f.store.ListByInterviewer(ctx, f.interviewer.ID)
	assert.False(t, slots[0].IsBooked)
}

func TestBookingService_ReserveSlot_storage_failure(t *testing.T) {
	f := newBookingFixture(t, 1)
	f.addSlot(t, "2024-01-10", "14:00")
	repo := &fakeMeetingRepo{MeetingRepository: f.store, claimErr: errors.New("connection reset")}
	m := newFakeBookingMetrics()
	svc := NewBookingService(f.store, repo, testLogger(), WithBookingMetrics(m))

	_, err := svc.ReserveSlot(context.Background(), principal(f.students[0]), f.interviewer.ID, "2024-01-10", "14:00")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSlotUnavailable)
	assert.ErrorContains(t, err, "connection reset")
	assert.Equal(t, 1, m.results[metrics.BookingError])
}

func TestBookingService_ReserveSlot_lookup_failure_is_internal(t *testing.T) {
	f := newBookingFixture(t, 1)
	users := &fakeUserRepo{UserRepository: f.store, getErr: errors.New("timeout")}
	svc := NewBookingService(users, f.store, testLogger())

	_, err := svc.ReserveSlot(context.Background(), principal(f.students[0]), f.interviewer.ID, "2024-01-10", "14:00")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingService_ReserveSlot_claim_survives_cancellation(t *testing.T) {
	f := newBookingFixture(t, 1)
	f.addSlot(t, "2024-01-10", "14:00")
	repo := &fakeMeetingRepo{MeetingRepository: f.store}
	svc := NewBookingService(f.store, repo, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := svc.ReserveSlot(ctx, principal(f.students[0]), f.interviewer.ID, "2024-01-10", "14:00")
	require.NoError(t, err)

	cancel()
	require.NotNil(t, repo.claimCtx)
	assert.NoError(t, repo.claimCtx.Err())
}

func TestBookingService_ReserveSlot_sends_confirmations(t *testing.T) {
	f := newBookingFixture(t, 1)
	f.addSlot(t, "2024-01-10", "14:00")
	emails := &fakeEmailService{}
	svc := NewBookingService(f.store, f.store, testLogger(), WithEmailService(emails))

	m, err := svc.ReserveSlot(context.Background(), principal(f.students[0]), f.interviewer.ID, "2024-01-10", "14:00")
	require.NoError(t, err)
	require.Len(t, emails.sent, 2)
	assert.Equal(t, "s0@example.com", emails.sent[0].Email)
	assert.Equal(t, "Ada", emails.sent[0].CounterpartName)
	assert.Equal(t, "Acme", emails.sent[0].Company)
	assert.Equal(t, "ada@example.com", emails.sent[1].Email)
	assert.Equal(t, m.RoomID, emails.sent[1].RoomID)
}

func TestBookingService_ReserveSlot_email_failure_keeps_booking(t *testing.T) {
	f := newBookingFixture(t, 1)
	f.addSlot(t, "2024-01-10", "14:00")
	m := newFakeBookingMetrics()
	svc := NewBookingService(f.store, f.store, testLogger(),
		WithEmailService(&fakeEmailService{err: errors.New("ses down")}),
		WithBookingMetrics(m),
	)

	_, err := svc.ReserveSlot(context.Background(), principal(f.students[0]), f.interviewer.ID, "2024-01-10", "14:00")
	require.NoError(t, err)
	assert.Equal(t, 2, m.emailFailure)
	assert.Equal(t, 1, m.results[metrics.BookingSuccess])
}

func TestBookingService_ListMeetingsFor(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t, 3)
	f.addSlot(t, "2024-01-10", "14:00")
	f.addSlot(t, "2024-01-11", "09:30")
	svc := NewBookingService(f.store, f.store, testLogger())
	b, c, outsider := f.students[0], f.students[1], f.students[2]

	mb, err := svc.ReserveSlot(ctx, principal(b), f.interviewer.ID, "2024-01-10", "14:00")
	require.NoError(t, err)
	mc, err := svc.ReserveSlot(ctx, principal(c), f.interviewer.ID, "2024-01-11", "09:30")
	require.NoError(t, err)

	forInterviewer, err := svc.ListMeetingsFor(ctx, f.interviewer.ID)
	require.NoError(t, err)
	require.Len(t, forInterviewer, 2)
	assert.Equal(t, mb.ID, forInterviewer[0].Meeting.ID)
	assert.Equal(t, b.Name, forInterviewer[0].Counterpart.Name)
	assert.Equal(t, mc.ID, forInterviewer[1].Meeting.ID)

	forB, err := svc.ListMeetingsFor(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, forB, 1)
	assert.Equal(t, mb.ID, forB[0].Meeting.ID)
	assert.Equal(t, "Acme", forB[0].Counterpart.Company)
	assert.Equal(t, "Staff", forB[0].Interviewer.Position)

	forOutsider, err := svc.ListMeetingsFor(ctx, outsider.ID)
	require.NoError(t, err)
	assert.NotNil(t, forOutsider)
	assert.Empty(t, forOutsider)

	_, err = svc.ListMeetingsFor(ctx, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
