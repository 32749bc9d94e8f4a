package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hirelens/internal/delivery/http/helpers"
	"hirelens/internal/delivery/http/middleware"
	"hirelens/internal/domain"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func withPrincipal(r *http.Request, p *domain.Principal) *http.Request {
	if p == nil {
		return r
	}
	return r.WithContext(middleware.SetPrincipal(r.Context(), *p))
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

// decodeEnvelope decodes the response envelope, unmarshalling data into out when non-nil.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, out any) *helpers.APIError {
	t.Helper()
	var raw struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&raw))
	if out != nil && raw.Error == nil {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return raw.Error
}

var (
	interviewerPrincipal = &domain.Principal{UserID: "iv-1", Role: domain.RoleInterviewer}
	intervieweePrincipal = &domain.Principal{UserID: "ie-1", Role: domain.RoleInterviewee}
)

type fakeAuthService struct {
	token   string
	user    *domain.User
	err     error
	lastIn  domain.RegisterInput
	lastPwd string
}

func (f *fakeAuthService) Register(_ context.Context, in domain.RegisterInput) (string, *domain.User, error) {
	f.lastIn = in
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func (f *fakeAuthService) Login(_ context.Context, _, password string) (string, *domain.User, error) {
	f.lastPwd = password
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

type fakeAvailabilityService struct {
	slots     []*domain.Slot
	listings  []*domain.InterviewerListing
	profile   *domain.Profile
	err       error
	gotCaller domain.Principal
	gotArgs   []string
}

func (f *fakeAvailabilityService) AddSlot(_ context.Context, caller domain.Principal, date, clock string) ([]*domain.Slot, error) {
	f.gotCaller, f.gotArgs = caller, []string{date, clock}
	return f.slots, f.err
}

func (f *fakeAvailabilityService) RemoveSlot(_ context.Context, caller domain.Principal, slotID string) ([]*domain.Slot, error) {
	f.gotCaller, f.gotArgs = caller, []string{slotID}
	return f.slots, f.err
}

func (f *fakeAvailabilityService) ListInterviewers(context.Context) ([]*domain.InterviewerListing, error) {
	return f.listings, f.err
}

func (f *fakeAvailabilityService) GetProfile(_ context.Context, userID string) (*domain.Profile, error) {
	f.gotArgs = []string{userID}
	return f.profile, f.err
}

type fakeBookingService struct {
	meeting   *domain.Meeting
	meetings  []*domain.MeetingWithParticipants
	err       error
	gotCaller domain.Principal
	gotArgs   []string
}

func (f *fakeBookingService) ReserveSlot(_ context.Context, caller domain.Principal, interviewerID, date, clock string) (*domain.Meeting, error) {
	f.gotCaller, f.gotArgs = caller, []string{interviewerID, date, clock}
	if f.err != nil {
		return nil, f.err
	}
	return f.meeting, nil
}

func (f *fakeBookingService) ListMeetingsFor(_ context.Context, userID string) ([]*domain.MeetingWithParticipants, error) {
	f.gotArgs = []string{userID}
	return f.meetings, f.err
}
