package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"eventconcierge/internal/domain"
)

type conciergeRequestRepository struct {
	DB *sql.DB
}

func NewConciergeRequestRepository(db *sql.DB) domain.ConciergeRequestRepository {
	return &conciergeRequestRepository{
		DB: db,
	}
}

// CreatePending relies on the partial unique index on (event_id, user_id)
// WHERE status = 'pending': the uniqueness check and the append are a single
// atomic statement, so concurrent requests cannot both create a pending row.
func (r *conciergeRequestRepository) CreatePending(ctx context.Context, req *domain.ConciergeRequest) error {
	query := `
		INSERT INTO concierge_requests (event_id, user_id, status, requested_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, req.EventID, req.UserID, domain.ConciergeStatusPending, req.RequestedAt).
		Scan(&req.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrConflict
		}
		return err
	}
	req.Status = domain.ConciergeStatusPending
	return nil
}

// Review updates only a still-pending row; a zero-row update is disambiguated
// into ErrNotFound (no such request) vs ErrConflict (already terminal).
func (r *conciergeRequestRepository) Review(ctx context.Context, eventID, requestID string, status domain.ConciergeRequestStatus, reviewedAt time.Time) (*domain.ConciergeRequest, error) {
	query := `
		UPDATE concierge_requests
		SET status = $1, reviewed_at = $2
		WHERE id = $3 AND event_id = $4 AND status = $5
		RETURNING id, event_id, user_id, status, requested_at, reviewed_at
	`
	req := &domain.ConciergeRequest{}
	var reviewedNull sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, status, reviewedAt, requestID, eventID, domain.ConciergeStatusPending).
		Scan(&req.ID, &req.EventID, &req.UserID, &req.Status, &req.RequestedAt, &reviewedNull)
	if err == nil {
		if reviewedNull.Valid {
			req.ReviewedAt = &reviewedNull.Time
		}
		return req, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var current domain.ConciergeRequestStatus
	check := `SELECT status FROM concierge_requests WHERE id = $1 AND event_id = $2`
	err = r.DB.QueryRowContext(ctx, check, requestID, eventID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return nil, domain.ErrConflict
}

// CancelPending removes the earliest pending request for (event, user). The
// subselect pins the first match in request order should duplicates ever
// exist in older data.
func (r *conciergeRequestRepository) CancelPending(ctx context.Context, eventID, userID string) error {
	query := `
		DELETE FROM concierge_requests
		WHERE id = (
			SELECT id FROM concierge_requests
			WHERE event_id = $1 AND user_id = $2 AND status = $3
			ORDER BY requested_at, id
			LIMIT 1
		)
	`
	result, err := r.DB.ExecContext(ctx, query, eventID, userID, domain.ConciergeStatusPending)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *conciergeRequestRepository) ListByStatus(ctx context.Context, status domain.ConciergeRequestStatus) ([]*domain.ConciergeAssignment, error) {
	query := `
		SELECT c.id, c.event_id, c.user_id, c.status, c.requested_at, c.reviewed_at,
		       e.name, u.name, u.last_name, u.email
		FROM concierge_requests c
		JOIN events e ON e.id = c.event_id
		JOIN users u ON u.id = c.user_id
		WHERE c.status = $1
		ORDER BY c.requested_at, c.id
	`
	rows, err := r.DB.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	assignments := make([]*domain.ConciergeAssignment, 0)
	for rows.Next() {
		req := &domain.ConciergeRequest{}
		a := &domain.ConciergeAssignment{Request: req}
		var reviewedNull sql.NullTime
		var userName, userLastName sql.NullString
		if err := rows.Scan(
			&req.ID, &req.EventID, &req.UserID, &req.Status, &req.RequestedAt, &reviewedNull,
			&a.EventName, &userName, &userLastName, &a.UserEmail,
		); err != nil {
			return nil, err
		}
		if reviewedNull.Valid {
			req.ReviewedAt = &reviewedNull.Time
		}
		a.UserName = userName.String
		a.UserLastName = userLastName.String
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *conciergeRequestRepository) LatestByEventAndUser(ctx context.Context, eventID, userID string) (*domain.ConciergeRequest, error) {
	query := `
		SELECT id, event_id, user_id, status, requested_at, reviewed_at
		FROM concierge_requests
		WHERE event_id = $1 AND user_id = $2
		ORDER BY requested_at DESC, id DESC
		LIMIT 1
	`
	req := &domain.ConciergeRequest{}
	var reviewedNull sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).
		Scan(&req.ID, &req.EventID, &req.UserID, &req.Status, &req.RequestedAt, &reviewedNull)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if reviewedNull.Valid {
		req.ReviewedAt = &reviewedNull.Time
	}
	return req, nil
}

func (r *conciergeRequestRepository) HasApproved(ctx context.Context, eventID, userID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM concierge_requests
			WHERE event_id = $1 AND user_id = $2 AND status = $3
		)
	`
	var approved bool
	err := r.DB.QueryRowContext(ctx, query, eventID, userID, domain.ConciergeStatusApproved).Scan(&approved)
	if err != nil {
		return false, err
	}
	return approved, nil
}

func (r *conciergeRequestRepository) RemoveAllForEvent(ctx context.Context, eventID string) error {
	query := `DELETE FROM concierge_requests WHERE event_id = $1`
	_, err := r.DB.ExecContext(ctx, query, eventID)
	return err
}
