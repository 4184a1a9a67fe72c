package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"eventconcierge/internal/domain"
)

type attendeeRepository struct {
	DB *sql.DB
}

func NewAttendeeRepository(db *sql.DB) domain.AttendeeRepository {
	return &attendeeRepository{
		DB: db,
	}
}

func (r *attendeeRepository) Create(ctx context.Context, a *domain.Attendee) error {
	query := `
		INSERT INTO attendees (event_id, phone, name, checked_in, created_at, updated_at)
		VALUES ($1, $2, $3, false, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, a.EventID, a.Phone, a.Name, a.CreatedAt, a.UpdatedAt).
		Scan(&a.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrConflict
		}
		return err
	}
	a.CheckedIn = false
	return nil
}

// GetByEventAndPhone returns the first match in creation order plus the total
// match count. More than one row per (event, phone) is legacy bad data the
// caller is expected to warn about.
func (r *attendeeRepository) GetByEventAndPhone(ctx context.Context, eventID, phone string) (*domain.Attendee, int, error) {
	query := `
		SELECT id, event_id, phone, name, checked_in, checked_in_by, checked_in_time, created_at, updated_at
		FROM attendees
		WHERE event_id = $1 AND phone = $2
		ORDER BY created_at, id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, phone)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var first *domain.Attendee
	count := 0
	for rows.Next() {
		a := &domain.Attendee{}
		var byNull sql.NullString
		var atNull sql.NullTime
		if err := rows.Scan(&a.ID, &a.EventID, &a.Phone, &a.Name, &a.CheckedIn, &byNull, &atNull, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		if byNull.Valid {
			a.CheckedInBy = &byNull.String
		}
		if atNull.Valid {
			a.CheckedInTime = &atNull.Time
		}
		if first == nil {
			first = a
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if first == nil {
		return nil, 0, domain.ErrNotFound
	}
	return first, count, nil
}

// CheckIn is the conditional atomic update: the mutation applies only if
// checked_in is still false at write time, so concurrent check-ins for the
// same attendee cannot both win.
func (r *attendeeRepository) CheckIn(ctx context.Context, eventID, phone, conciergeID string, at time.Time) (bool, error) {
	query := `
		UPDATE attendees
		SET checked_in = true, checked_in_by = $1, checked_in_time = $2, updated_at = $2
		WHERE event_id = $3 AND phone = $4 AND checked_in = false
	`
	result, err := r.DB.ExecContext(ctx, query, conciergeID, at, eventID, phone)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (r *attendeeRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	query := `
		SELECT id, event_id, phone, name, checked_in, checked_in_by, checked_in_time, created_at, updated_at
		FROM attendees
		WHERE event_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	attendees := make([]*domain.Attendee, 0)
	for rows.Next() {
		a := &domain.Attendee{}
		var byNull sql.NullString
		var atNull sql.NullTime
		if err := rows.Scan(&a.ID, &a.EventID, &a.Phone, &a.Name, &a.CheckedIn, &byNull, &atNull, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		if byNull.Valid {
			a.CheckedInBy = &byNull.String
		}
		if atNull.Valid {
			a.CheckedInTime = &atNull.Time
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}
