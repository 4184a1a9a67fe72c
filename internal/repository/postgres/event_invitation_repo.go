package postgres

import (
	"context"
	"database/sql"

	"eventconcierge/internal/domain"
)

type eventInvitationRepository struct {
	DB *sql.DB
}

func NewEventInvitationRepository(db *sql.DB) domain.EventInvitationRepository {
	return &eventInvitationRepository{
		DB: db,
	}
}

func (r *eventInvitationRepository) Create(ctx context.Context, inv *domain.EventInvitation) error {
	query := `
		INSERT INTO event_invitations (event_id, email, sent_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, inv.EventID, inv.Email, inv.SentAt).
		Scan(&inv.ID)
}

func (r *eventInvitationRepository) ListByEventID(ctx context.Context, eventID, search string, params domain.PaginationParams) ([]*domain.EventInvitation, int, error) {
	pattern := "%" + search + "%"

	countQuery := `
		SELECT COUNT(*)
		FROM event_invitations
		WHERE event_id = $1 AND email ILIKE $2
	`
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, eventID, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, event_id, email, sent_at
		FROM event_invitations
		WHERE event_id = $1 AND email ILIKE $2
		ORDER BY sent_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, pattern, params.Limit(), params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	invs := make([]*domain.EventInvitation, 0)
	for rows.Next() {
		inv := &domain.EventInvitation{}
		if err := rows.Scan(&inv.ID, &inv.EventID, &inv.Email, &inv.SentAt); err != nil {
			return nil, 0, err
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return invs, total, nil
}

func (r *eventInvitationRepository) RemoveAllForEvent(ctx context.Context, eventID string) error {
	query := `DELETE FROM event_invitations WHERE event_id = $1`
	_, err := r.DB.ExecContext(ctx, query, eventID)
	return err
}
