package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"hirelens/internal/domain"
)

type meetingRepository struct {
	DB *sql.DB
}

func NewMeetingRepository(db *sql.DB) domain.MeetingRepository {
	return &meetingRepository{DB: db}
}

// claimSlotQuery books the first matching free slot. Rows locked by a
// concurrent claim are skipped, so the loser moves on to the next free
// duplicate at the same date and time, or gets no row back when there is none.
const claimSlotQuery = `
	UPDATE availability_slots
	SET is_booked = TRUE
	WHERE id = (
		SELECT id FROM availability_slots
		WHERE interviewer_id = $1 AND slot_date = $2 AND slot_time = $3 AND is_booked = FALSE
		ORDER BY position
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	) AND is_booked = FALSE
	RETURNING id
`

const insertMeetingQuery = `
	INSERT INTO meetings (interviewer_id, interviewee_id, slot_id, scheduled_at, room_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id
`

func (r *meetingRepository) ClaimSlot(ctx context.Context, date, clock string, m *domain.Meeting) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var slotID string
	err = tx.QueryRowContext(ctx, claimSlotQuery, m.InterviewerID, date, clock).Scan(&slotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return domain.ErrSlotUnavailable
		}
		return fmt.Errorf("claim slot: %w", err)
	}

	var meetingID string
	err = tx.QueryRowContext(ctx, insertMeetingQuery,
		m.InterviewerID, m.IntervieweeID, slotID, m.ScheduledAt, m.RoomID, m.CreatedAt,
	).Scan(&meetingID)
	if err != nil {
		return fmt.Errorf("insert meeting: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	m.ID = meetingID
	m.SlotID = slotID
	return nil
}

func (r *meetingRepository) ListByParticipant(ctx context.Context, userID string) ([]*domain.MeetingWithParticipants, error) {
	query := `
		SELECT m.id, m.interviewer_id, m.interviewee_id, m.slot_id, m.scheduled_at, m.room_id,
		       m.ai_summary, m.ai_suggestions, m.created_at,
		       ir.name, ir.company, ir.position,
		       ie.name
		FROM meetings m
		JOIN users ir ON ir.id = m.interviewer_id
		JOIN users ie ON ie.id = m.interviewee_id
		WHERE m.interviewer_id = $1 OR m.interviewee_id = $1
		ORDER BY m.scheduled_at, m.created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		if isMalformedID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	defer rows.Close()

	var out []*domain.MeetingWithParticipants
	for rows.Next() {
		m := &domain.Meeting{}
		interviewer := &domain.PublicProfile{Role: domain.RoleInterviewer}
		interviewee := &domain.PublicProfile{Role: domain.RoleInterviewee}
		var summary sql.NullString
		var suggestions pq.StringArray
		err := rows.Scan(&m.ID, &m.InterviewerID, &m.IntervieweeID, &m.SlotID, &m.ScheduledAt, &m.RoomID,
			&summary, &suggestions, &m.CreatedAt,
			&interviewer.Name, &interviewer.Company, &interviewer.Position,
			&interviewee.Name,
		)
		if err != nil {
			return nil, err
		}
		if summary.Valid || len(suggestions) > 0 {
			m.AIAnalysis = &domain.AIAnalysis{Summary: summary.String, Suggestions: []string(suggestions)}
		}
		interviewer.ID = m.InterviewerID
		interviewee.ID = m.IntervieweeID
		out = append(out, &domain.MeetingWithParticipants{
			Meeting:     m,
			Interviewer: interviewer,
			Interviewee: interviewee,
		})
	}
	return out, rows.Err()
}
