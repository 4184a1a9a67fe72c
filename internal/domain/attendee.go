package domain

import (
	"context"
	"time"
)

// Attendee is one registration record per (event, phone). Check-in flips
// CheckedIn from false to true exactly once; the engine never reverses it.
// swagger:model Attendee
type Attendee struct {
	ID            string     `json:"id"`
	EventID       string     `json:"event_id"`
	Phone         string     `json:"phone"`
	Name          string     `json:"name"`
	CheckedIn     bool       `json:"checked_in"`
	CheckedInBy   *string    `json:"checked_in_by,omitempty"`
	CheckedInTime *time.Time `json:"checked_in_time,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewAttendee returns a not-checked-in attendee. ID is set by the repository on create.
func NewAttendee(eventID, phone, name string, createdAt, updatedAt time.Time) *Attendee {
	return &Attendee{
		EventID:   eventID,
		Phone:     phone,
		Name:      name,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// AttendeeRepository stores attendee check-in records keyed by (event, phone).
type AttendeeRepository interface {
	// Create inserts a new attendee. ErrConflict when the (event, phone)
	// pair is already registered.
	Create(ctx context.Context, attendee *Attendee) error
	// GetByEventAndPhone returns the first matching record in creation order
	// together with the total number of matches, or ErrNotFound. A match
	// count above one indicates a data-quality problem in older rows.
	GetByEventAndPhone(ctx context.Context, eventID, phone string) (*Attendee, int, error)
	// CheckIn marks the attendee checked in, conditioned on checked_in still
	// being false at write time. Returns false without error when the guard
	// did not hold.
	CheckIn(ctx context.Context, eventID, phone, conciergeID string, at time.Time) (bool, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Attendee, error)
}

// AttendeeService defines attendee registration and the check-in workflow.
type AttendeeService interface {
	RegisterAttendee(ctx context.Context, eventID, phone, name string) (*Attendee, error)
	// CheckIn authorizes the concierge against the event's approved set and
	// performs the idempotency-guarded check-in mutation.
	CheckIn(ctx context.Context, eventID, phone, conciergeID string) (*Attendee, error)
	ListEventAttendees(ctx context.Context, eventID, callerID string) ([]*Attendee, error)
}
