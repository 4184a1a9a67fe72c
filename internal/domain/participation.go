package domain

import "context"

// EventMarketer represents a user participating in an event as a marketer,
// joined with the user's profile fields for listing.
// swagger:model EventMarketer
type EventMarketer struct {
	EventID  string `json:"event_id"`
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Email    string `json:"email"`
}

// EventView is the refreshed event view returned by Join and Leave: the event
// plus its current marketer set.
// swagger:model EventView
type EventView struct {
	Event     *Event           `json:"event"`
	Marketers []*EventMarketer `json:"marketers"`
}

// ParticipationLink identifies one (event, user) back-reference pair.
type ParticipationLink struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
}

// EventMarketerRepository stores the event-side half of marketer
// participation: the marketer set owned by the event aggregate.
type EventMarketerRepository interface {
	// Add inserts the membership if absent. Returns false without error when
	// the user is already a marketer of the event.
	Add(ctx context.Context, eventID, userID string) (added bool, err error)
	// Remove deletes the membership. Returns false without error when the
	// user is not a marketer of the event.
	Remove(ctx context.Context, eventID, userID string) (removed bool, err error)
	ListByEventID(ctx context.Context, eventID string) ([]*EventMarketer, error)
	RemoveAllForEvent(ctx context.Context, eventID string) error
	// ListMissingUserSide returns memberships whose user-side back-reference
	// is absent. Used by the reconciler.
	ListMissingUserSide(ctx context.Context) ([]ParticipationLink, error)
}

// UserParticipationRepository stores the user-side half: the set of events a
// user participates in as marketer, owned by the user aggregate.
type UserParticipationRepository interface {
	// Add inserts the back-reference if absent; adding an existing pair is a no-op.
	Add(ctx context.Context, userID, eventID string) error
	// Remove deletes the back-reference; removing an absent pair is a no-op.
	Remove(ctx context.Context, userID, eventID string) error
	ListEventIDsByUser(ctx context.Context, userID string) ([]string, error)
	RemoveAllForEvent(ctx context.Context, eventID string) error
	// ListOrphaned returns back-references with no matching event-side
	// membership. Used by the reconciler.
	ListOrphaned(ctx context.Context) ([]ParticipationLink, error)
}

// ParticipationService coordinates marketer membership across the event and
// user aggregates.
type ParticipationService interface {
	Join(ctx context.Context, eventID, userID string) (*EventView, error)
	Leave(ctx context.Context, eventID, userID string) (*EventView, error)
	ListEventMarketers(ctx context.Context, eventID string) ([]*EventMarketer, error)
	ListUserEvents(ctx context.Context, userID string) ([]string, error)
}

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	AddedUserSide   int `json:"added_user_side"`
	RemovedOrphaned int `json:"removed_orphaned"`
}

// ParticipationReconciler repairs divergence between the event-side marketer
// set and the user-side back-references.
type ParticipationReconciler interface {
	Reconcile(ctx context.Context) (*ReconcileReport, error)
}
