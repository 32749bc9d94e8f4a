package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"hirelens/internal/domain"
)

type availabilityRepository struct {
	DB *sql.DB
}

func NewAvailabilityRepository(db *sql.DB) domain.AvailabilityRepository {
	return &availabilityRepository{DB: db}
}

func (r *availabilityRepository) AddSlot(ctx context.Context, s *domain.Slot) error {
	query := `
		INSERT INTO availability_slots (interviewer_id, slot_date, slot_time, is_booked, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, s.InterviewerID, s.Date, s.Time, s.CreatedAt).Scan(&s.ID)
	if err != nil {
		if isForeignKeyViolation(err) || isMalformedID(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert slot: %w", err)
	}
	return nil
}

func (r *availabilityRepository) DeleteSlot(ctx context.Context, interviewerID, slotID string) error {
	result, err := r.DB.ExecContext(ctx, `
		DELETE FROM availability_slots
		WHERE id = $1 AND interviewer_id = $2 AND is_booked = FALSE
	`, slotID, interviewerID)
	if err != nil {
		if isMalformedID(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete slot: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var booked bool
	err = r.DB.QueryRowContext(ctx, `
		SELECT is_booked FROM availability_slots
		WHERE id = $1 AND interviewer_id = $2
	`, slotID, interviewerID).Scan(&booked)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.ErrNotFound
	case err != nil:
		return fmt.Errorf("lookup slot: %w", err)
	case booked:
		return domain.ErrSlotBooked
	}
	// Deleted concurrently between the two statements.
	return domain.ErrNotFound
}

func (r *availabilityRepository) ListByInterviewer(ctx context.Context, interviewerID string) ([]*domain.Slot, error) {
	query := `
		SELECT id, interviewer_id, slot_date, slot_time, is_booked, created_at
		FROM availability_slots
		WHERE interviewer_id = $1
		ORDER BY position
	`
	rows, err := r.DB.QueryContext(ctx, query, interviewerID)
	if err != nil {
		if isMalformedID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []*domain.Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *availabilityRepository) ListByInterviewers(ctx context.Context, interviewerIDs []string) (map[string][]*domain.Slot, error) {
	out := make(map[string][]*domain.Slot, len(interviewerIDs))
	if len(interviewerIDs) == 0 {
		return out, nil
	}
	query := `
		SELECT id, interviewer_id, slot_date, slot_time, is_booked, created_at
		FROM availability_slots
		WHERE interviewer_id = ANY($1)
		ORDER BY position
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(interviewerIDs))
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out[s.InterviewerID] = append(out[s.InterviewerID], s)
	}
	return out, rows.Err()
}

func scanSlot(row rowScanner) (*domain.Slot, error) {
	s := &domain.Slot{}
	if err := row.Scan(&s.ID, &s.InterviewerID, &s.Date, &s.Time, &s.IsBooked, &s.CreatedAt); err != nil {
		return nil, err
	}
	return s, nil
}
