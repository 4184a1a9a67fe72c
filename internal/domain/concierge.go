package domain

import (
	"context"
	"time"
)

// ConciergeRequestStatus is the state of a concierge assignment request.
type ConciergeRequestStatus string

const (
	ConciergeStatusPending  ConciergeRequestStatus = "pending"
	ConciergeStatusApproved ConciergeRequestStatus = "approved"
	ConciergeStatusRejected ConciergeRequestStatus = "rejected"
	// ConciergeStatusNone is returned by MyStatus when the user holds no
	// request for the event. It is never stored.
	ConciergeStatusNone ConciergeRequestStatus = "none"
)

// Terminal reports whether the status admits no further transitions.
func (s ConciergeRequestStatus) Terminal() bool {
	return s == ConciergeStatusApproved || s == ConciergeStatusRejected
}

// ConciergeRequest is a concierge's assignment request for an event.
// At most one pending request may exist per (event, user); prior terminal
// requests do not block a new one.
// swagger:model ConciergeRequest
type ConciergeRequest struct {
	ID          string                 `json:"id"`
	EventID     string                 `json:"event_id"`
	UserID      string                 `json:"user_id"`
	Status      ConciergeRequestStatus `json:"status"`
	RequestedAt time.Time              `json:"requested_at"`
	ReviewedAt  *time.Time             `json:"reviewed_at,omitempty"`
}

// NewConciergeRequest returns a pending request. ID is set by the repository on create.
func NewConciergeRequest(eventID, userID string, requestedAt time.Time) *ConciergeRequest {
	return &ConciergeRequest{
		EventID:     eventID,
		UserID:      userID,
		Status:      ConciergeStatusPending,
		RequestedAt: requestedAt,
	}
}

// ConciergeAssignment is the (event, request, user) projection row for the
// admin listings.
// swagger:model ConciergeAssignment
type ConciergeAssignment struct {
	Request      *ConciergeRequest `json:"request"`
	EventName    string            `json:"event_name"`
	UserName     string            `json:"user_name"`
	UserLastName string            `json:"user_last_name"`
	UserEmail    string            `json:"user_email"`
}

// ConciergeRequestRepository stores concierge requests. Mutations are
// conditional atomic statements so the pending-uniqueness and
// terminal-state invariants are enforced at the storage boundary.
type ConciergeRequestRepository interface {
	// CreatePending appends a pending request. Returns ErrConflict when a
	// pending request already exists for the (event, user) pair.
	CreatePending(ctx context.Context, req *ConciergeRequest) error
	// Review transitions a pending request to the given terminal status and
	// returns the updated request. ErrNotFound when the (event, request)
	// pair does not exist; ErrConflict when the request is no longer pending.
	Review(ctx context.Context, eventID, requestID string, status ConciergeRequestStatus, reviewedAt time.Time) (*ConciergeRequest, error)
	// CancelPending removes the earliest pending request for (event, user).
	// ErrNotFound when none exists.
	CancelPending(ctx context.Context, eventID, userID string) error
	ListByStatus(ctx context.Context, status ConciergeRequestStatus) ([]*ConciergeAssignment, error)
	// LatestByEventAndUser returns the most recently created request for
	// (event, user), or ErrNotFound.
	LatestByEventAndUser(ctx context.Context, eventID, userID string) (*ConciergeRequest, error)
	HasApproved(ctx context.Context, eventID, userID string) (bool, error)
	RemoveAllForEvent(ctx context.Context, eventID string) error
}

// ConciergeService runs the concierge assignment workflow.
type ConciergeService interface {
	Request(ctx context.Context, eventID, userID string) (*ConciergeRequest, error)
	Review(ctx context.Context, eventID, requestID string, approve bool, reviewerID string) (*ConciergeRequest, error)
	// Cancel removes the caller's own pending request. callerID must equal
	// userID or the call fails with ErrForbidden.
	Cancel(ctx context.Context, eventID, userID, callerID string) error
	ListPending(ctx context.Context) ([]*ConciergeAssignment, error)
	ListApproved(ctx context.Context) ([]*ConciergeAssignment, error)
	MyStatus(ctx context.Context, eventID, userID string) (ConciergeRequestStatus, error)
}
