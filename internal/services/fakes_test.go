package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"hirelens/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct {
	saltErr error
}

func (f *fakePasswordHasher) GenerateSalt() (string, error) {
	if f.saltErr != nil {
		return "", f.saltErr
	}
	return "salt", nil
}
func (f *fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash-" + salt + password, nil
}
func (f *fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash != "hash-"+salt+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err    error
	expiry time.Duration
}

func (f *fakeTokenIssuer) Issue(user *domain.User, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.expiry = expiry
	return "token-" + user.ID, nil
}

// fakeUserRepo wraps lookups with injectable failures.
type fakeUserRepo struct {
	domain.UserRepository
	getErr  error
	listErr error
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.UserRepository.GetByID(ctx, id)
}

func (f *fakeUserRepo) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.UserRepository.ListByRole(ctx, role)
}

// fakeMeetingRepo records the context it was called with.
type fakeMeetingRepo struct {
	domain.MeetingRepository
	claimErr error
	claimCtx context.Context
}

func (f *fakeMeetingRepo) ClaimSlot(ctx context.Context, date, clock string, m *domain.Meeting) error {
	f.claimCtx = ctx
	if f.claimErr != nil {
		return f.claimErr
	}
	return f.MeetingRepository.ClaimSlot(ctx, date, clock, m)
}

// fakeEmailService implements domain.EmailService for tests.
type fakeEmailService struct {
	mu   sync.Mutex
	sent []*domain.BookingConfirmationEmailData
	err  error
}

func (f *fakeEmailService) SendBookingConfirmation(ctx context.Context, data *domain.BookingConfirmationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	return f.err
}

// fakeBookingMetrics implements BookingMetrics for tests.
type fakeBookingMetrics struct {
	mu           sync.Mutex
	results      map[string]int
	emailFailure int
}

func newFakeBookingMetrics() *fakeBookingMetrics {
	return &fakeBookingMetrics{results: make(map[string]int)}
}

func (f *fakeBookingMetrics) RecordBooking(result string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[result]++
}
func (f *fakeBookingMetrics) ObserveClaim(time.Duration) {}
func (f *fakeBookingMetrics) RecordEmailFailure() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emailFailure++
}

// fakeMailer implements domain.Mailer for tests.
type fakeMailer struct {
	to, subject, html, text string
	err                     error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	f.to, f.subject, f.html, f.text = to, subject, html, text
	return f.err
}

// fakeRenderer implements domain.EmailTemplateRenderer for tests.
type fakeRenderer struct {
	name string
	err  error
}

func (f *fakeRenderer) Render(templateName string, data any) (string, string, string, error) {
	f.name = templateName
	if f.err != nil {
		return "", "", "", f.err
	}
	return "subject", "<p>html</p>", "text", nil
}
