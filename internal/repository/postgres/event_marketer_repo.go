package postgres

import (
	"context"
	"database/sql"

	"eventconcierge/internal/domain"
)

type eventMarketerRepository struct {
	DB *sql.DB
}

func NewEventMarketerRepository(db *sql.DB) domain.EventMarketerRepository {
	return &eventMarketerRepository{
		DB: db,
	}
}

// Add is a conditional insert: the membership check and the append are one
// atomic statement, so concurrent joins cannot create duplicates.
func (r *eventMarketerRepository) Add(ctx context.Context, eventID, userID string) (bool, error) {
	query := `
		INSERT INTO event_marketers (event_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id, user_id) DO NOTHING
	`
	result, err := r.DB.ExecContext(ctx, query, eventID, userID)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (r *eventMarketerRepository) Remove(ctx context.Context, eventID, userID string) (bool, error) {
	query := `DELETE FROM event_marketers WHERE event_id = $1 AND user_id = $2`
	result, err := r.DB.ExecContext(ctx, query, eventID, userID)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (r *eventMarketerRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.EventMarketer, error) {
	query := `
		SELECT m.event_id, m.user_id, u.name, u.last_name, u.email
		FROM event_marketers m
		JOIN users u ON u.id = m.user_id
		WHERE m.event_id = $1
		ORDER BY m.user_id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	marketers := make([]*domain.EventMarketer, 0)
	for rows.Next() {
		m := &domain.EventMarketer{}
		var name, lastName sql.NullString
		if err := rows.Scan(&m.EventID, &m.UserID, &name, &lastName, &m.Email); err != nil {
			return nil, err
		}
		m.Name = name.String
		m.LastName = lastName.String
		marketers = append(marketers, m)
	}
	return marketers, rows.Err()
}

func (r *eventMarketerRepository) RemoveAllForEvent(ctx context.Context, eventID string) error {
	query := `DELETE FROM event_marketers WHERE event_id = $1`
	_, err := r.DB.ExecContext(ctx, query, eventID)
	return err
}

// ListMissingUserSide returns event-side memberships whose user-side
// back-reference row is absent.
func (r *eventMarketerRepository) ListMissingUserSide(ctx context.Context) ([]domain.ParticipationLink, error) {
	query := `
		SELECT m.event_id, m.user_id
		FROM event_marketers m
		LEFT JOIN user_event_participation p
			ON p.event_id = m.event_id AND p.user_id = m.user_id
		WHERE p.user_id IS NULL
		ORDER BY m.event_id, m.user_id
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	links := make([]domain.ParticipationLink, 0)
	for rows.Next() {
		var l domain.ParticipationLink
		if err := rows.Scan(&l.EventID, &l.UserID); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}
