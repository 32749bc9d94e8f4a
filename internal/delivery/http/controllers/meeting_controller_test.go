package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hirelens/internal/delivery/http/helpers"
	"hirelens/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeetingController_Book(t *testing.T) {
	meeting := &domain.Meeting{
		ID:            "m1",
		InterviewerID: "iv-1",
		IntervieweeID: "ie-1",
		SlotID:        "s1",
		ScheduledAt:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		RoomID:        "room-abc",
	}
	validBody := `{"interviewer_id":"iv-1","date":"2026-03-01","time":"09:00"}`

	tests := []struct {
		name       string
		principal  *domain.Principal
		body       string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{name: "booked", principal: intervieweePrincipal, body: validBody, wantStatus: http.StatusCreated},
		{name: "no principal", body: validBody, wantStatus: http.StatusUnauthorized, wantCode: helpers.ErrCodeUnauthorized},
		{name: "missing interviewer", principal: intervieweePrincipal, body: `{"date":"2026-03-01","time":"09:00"}`, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{
			name:       "slot gone",
			principal:  intervieweePrincipal,
			body:       validBody,
			svcErr:     fmt.Errorf("claim slot: %w", domain.ErrSlotUnavailable),
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeSlotUnavailable,
		},
		{
			name:       "bad calendar date",
			principal:  intervieweePrincipal,
			body:       `{"interviewer_id":"iv-1","date":"2026-02-30","time":"09:00"}`,
			svcErr:     fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "interviewer cannot book",
			principal:  interviewerPrincipal,
			body:       validBody,
			svcErr:     fmt.Errorf("%w: only interviewees can book", domain.ErrForbidden),
			wantStatus: http.StatusForbidden,
			wantCode:   helpers.ErrCodeForbidden,
		},
		{
			name:       "unknown interviewer",
			principal:  intervieweePrincipal,
			body:       validBody,
			svcErr:     fmt.Errorf("%w: interviewer", domain.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   helpers.ErrCodeNotFound,
		},
		{
			name:       "storage failure",
			principal:  intervieweePrincipal,
			body:       validBody,
			svcErr:     fmt.Errorf("claim slot: %w", assert.AnError),
			wantStatus: http.StatusInternalServerError,
			wantCode:   helpers.ErrCodeInternalError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeBookingService{meeting: meeting, err: tt.svcErr}
			ctrl := NewMeetingController(testLogger(), svc)
			req := withPrincipal(httptest.NewRequest(http.MethodPost, "/api/meetings", jsonBody(tt.body)), tt.principal)
			rr := httptest.NewRecorder()

			ctrl.Book(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var got domain.Meeting
			apiErr := decodeEnvelope(t, rr, &got)
			if tt.wantCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				assert.NotContains(t, apiErr.Message, assert.AnError.Error())
				return
			}
			assert.Equal(t, "m1", got.ID)
			assert.Equal(t, "room-abc", got.RoomID)
			assert.True(t, meeting.ScheduledAt.Equal(got.ScheduledAt))
			assert.Equal(t, *intervieweePrincipal, svc.gotCaller)
			assert.Equal(t, []string{"iv-1", "2026-03-01", "09:00"}, svc.gotArgs)
		})
	}
}

func TestMeetingController_List(t *testing.T) {
	t.Run("returns meetings with participants", func(t *testing.T) {
		svc := &fakeBookingService{meetings: []*domain.MeetingWithParticipants{{
			Meeting:     &domain.Meeting{ID: "m1", RoomID: "room-abc", AIAnalysis: &domain.AIAnalysis{Summary: "solid", Suggestions: []string{"practice"}}},
			Interviewer: &domain.PublicProfile{ID: "iv-1", Name: "Ivy"},
			Interviewee: &domain.PublicProfile{ID: "ie-1", Name: "Eve"},
			Counterpart: &domain.PublicProfile{ID: "iv-1", Name: "Ivy"},
		}}}
		ctrl := NewMeetingController(testLogger(), svc)
		rr := httptest.NewRecorder()

		ctrl.List(rr, withPrincipal(httptest.NewRequest(http.MethodGet, "/api/meetings", nil), intervieweePrincipal))

		require.Equal(t, http.StatusOK, rr.Code)
		var got []*domain.MeetingWithParticipants
		require.Nil(t, decodeEnvelope(t, rr, &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Ivy", got[0].Counterpart.Name)
		assert.Equal(t, "solid", got[0].Meeting.AIAnalysis.Summary)
		assert.Equal(t, []string{"ie-1"}, svc.gotArgs)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		ctrl := NewMeetingController(testLogger(), &fakeBookingService{})
		rr := httptest.NewRecorder()

		ctrl.List(rr, withPrincipal(httptest.NewRequest(http.MethodGet, "/api/meetings", nil), intervieweePrincipal))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"data":[],"error":null}`, rr.Body.String())
	})

	t.Run("no principal", func(t *testing.T) {
		ctrl := NewMeetingController(testLogger(), &fakeBookingService{})
		rr := httptest.NewRecorder()

		ctrl.List(rr, httptest.NewRequest(http.MethodGet, "/api/meetings", nil))

		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
