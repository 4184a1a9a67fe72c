package domain

import (
	"context"
	"time"
)

// Event represents a registrable event. The marketer set and concierge
// requests attached to an event live in their own repositories but are owned
// by the event: deleting an event removes them as well.
// swagger:model Event
type Event struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	OwnerID   string     `json:"owner_id"`
	Date      *time.Time `json:"date,omitempty"`
	Capacity  *int       `json:"capacity,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(name, ownerID string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListByOwnerID(ctx context.Context, ownerID string) ([]*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines event lifecycle operations plus the invitation flow.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEventByID(ctx context.Context, eventID string) (*Event, error)
	ListEventsByOwner(ctx context.Context, ownerID string) ([]*Event, error)
	// DeleteEvent removes the event together with its marketer links,
	// user-side back-references, concierge requests, and invitations, so no
	// dangling back-reference survives the event.
	DeleteEvent(ctx context.Context, eventID, ownerID string) error
	SendEventInvitations(ctx context.Context, eventID, ownerID string, emails []string) (sent int, failed []string, err error)
	ListEventInvitations(ctx context.Context, eventID, callerID string, search string, params PaginationParams) ([]*EventInvitation, int, error)
}
