package postgres

import (
	"context"
	"database/sql"

	"eventconcierge/internal/domain"
)

type userParticipationRepository struct {
	DB *sql.DB
}

func NewUserParticipationRepository(db *sql.DB) domain.UserParticipationRepository {
	return &userParticipationRepository{
		DB: db,
	}
}

func (r *userParticipationRepository) Add(ctx context.Context, userID, eventID string) error {
	query := `
		INSERT INTO user_event_participation (user_id, event_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, event_id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query, userID, eventID)
	return err
}

func (r *userParticipationRepository) Remove(ctx context.Context, userID, eventID string) error {
	query := `DELETE FROM user_event_participation WHERE user_id = $1 AND event_id = $2`
	_, err := r.DB.ExecContext(ctx, query, userID, eventID)
	return err
}

func (r *userParticipationRepository) ListEventIDsByUser(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT event_id
		FROM user_event_participation
		WHERE user_id = $1
		ORDER BY event_id
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *userParticipationRepository) RemoveAllForEvent(ctx context.Context, eventID string) error {
	query := `DELETE FROM user_event_participation WHERE event_id = $1`
	_, err := r.DB.ExecContext(ctx, query, eventID)
	return err
}

// ListOrphaned returns user-side back-references with no matching event-side
// membership.
func (r *userParticipationRepository) ListOrphaned(ctx context.Context) ([]domain.ParticipationLink, error) {
	query := `
		SELECT p.event_id, p.user_id
		FROM user_event_participation p
		LEFT JOIN event_marketers m
			ON m.event_id = p.event_id AND m.user_id = p.user_id
		WHERE m.user_id IS NULL
		ORDER BY p.event_id, p.user_id
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
