package domain

import (
	"context"
	"time"
)

// EventInvitation represents an email invited to join an event as marketer.
// swagger:model EventInvitation
type EventInvitation struct {
	ID      string    `json:"id"`
	EventID string    `json:"event_id"`
	Email   string    `json:"email"`
	SentAt  time.Time `json:"sent_at"`
}

// EventInvitationRepository defines storage operations for event invitations.
type EventInvitationRepository interface {
	Create(ctx context.Context, inv *EventInvitation) error
	// ListByEventID returns one page of invitations matching the optional
	// email search, plus the total match count.
	ListByEventID(ctx context.Context, eventID, search string, params PaginationParams) ([]*EventInvitation, int, error)
	RemoveAllForEvent(ctx context.Context, eventID string) error
}
