package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hirelens/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRateLimiter(t *testing.T, perMinute float64, burst int) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(RateLimiterConfig{PerMinute: perMinute, Burst: burst, CleanupInterval: time.Hour}, testLogger())
	t.Cleanup(rl.Stop)
	return rl
}

func serveAs(rl *RateLimiter, userID string) *httptest.ResponseRecorder {
	handler := rl.Middleware()(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	req := httptest.NewRequest(http.MethodPost, "/api/meetings", nil)
	if userID != "" {
		req = req.WithContext(SetPrincipal(req.Context(), domain.Principal{UserID: userID, Role: domain.RoleInterviewee}))
	}
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestRateLimiter_PerUserBurst(t *testing.T) {
	rl := newTestRateLimiter(t, 6, 2)

	assert.Equal(t, http.StatusCreated, serveAs(rl, "alice").Code)
	assert.Equal(t, http.StatusCreated, serveAs(rl, "alice").Code)

	rr := serveAs(rl, "alice")
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "10", rr.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limited", errorCode(t, rr))

	assert.Equal(t, http.StatusCreated, serveAs(rl, "bob").Code, "other users keep their own bucket")
	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiter_RequiresPrincipal(t *testing.T) {
	rl := newTestRateLimiter(t, 10, 10)

	rr := serveAs(rl, "")

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, 0, rl.Len())
}

func TestRateLimiter_CleanupEvictsIdleUsers(t *testing.T) {
	rl := newTestRateLimiter(t, 10, 10)
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	serveAs(rl, "alice")
	now = now.Add(90 * time.Minute)
	serveAs(rl, "bob")
	now = now.Add(90 * time.Minute)
	rl.cleanup()

	assert.Equal(t, 1, rl.Len())
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{}, testLogger())
	defer rl.Stop()
	rl.Stop()

	assert.Equal(t, 10, rl.burst)
	assert.Equal(t, 6, rl.retryAfterSeconds())
}
