package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventconcierge/internal/domain"
)

type attendeeService struct {
	eventRepo      domain.EventRepository
	attendeeRepo   domain.AttendeeRepository
	requestRepo    domain.ConciergeRequestRepository
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewAttendeeService creates the attendee registration and check-in service.
// The logger carries the data-quality warning for duplicate (event, phone)
// rows; it is not used on the happy path.
func NewAttendeeService(
	eventRepo domain.EventRepository,
	attendeeRepo domain.AttendeeRepository,
	requestRepo domain.ConciergeRequestRepository,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AttendeeService {
	return &attendeeService{
		eventRepo:      eventRepo,
		attendeeRepo:   attendeeRepo,
		requestRepo:    requestRepo,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *attendeeService) RegisterAttendee(ctx context.Context, eventID, phone, name string) (*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	now := time.Now()
	attendee := domain.NewAttendee(eventID, phone, name, now, now)
	if err := s.attendeeRepo.Create(ctx, attendee); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("create attendee: %w", err)
	}
	return attendee, nil
}

// CheckIn authorizes the concierge against the event's approved set, then
// applies the check-in as a conditional atomic update so a concurrent
// check-in for the same attendee cannot also win.
func (s *attendeeService) CheckIn(ctx context.Context, eventID, phone, conciergeID string) (*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	approved, err := s.requestRepo.HasApproved(ctx, eventID, conciergeID)
	if err != nil {
		return nil, fmt.Errorf("check approved concierge: %w", err)
	}
	if !approved {
		return nil, domain.ErrForbidden
	}

	attendee, matches, err := s.attendeeRepo.GetByEventAndPhone(ctx, eventID, phone)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get attendee: %w", err)
	}
	if matches > 1 {
		s.logger.WarnContext(ctx, "multiple attendee records for one registration key",
			"event_id", eventID, "phone", phone, "matches", matches)
	}
	if attendee.CheckedIn {
		return nil, domain.ErrConflict
	}

	now := time.Now()
	applied, err := s.attendeeRepo.CheckIn(ctx, eventID, phone, conciergeID, now)
	if err != nil {
		return nil, fmt.Errorf("check in attendee: %w", err)
	}
	if !applied {
		// Lost the race against a concurrent check-in; the first writer's
		// checked_in_by/checked_in_time stand.
		return nil, domain.ErrConflict
	}

	attendee.CheckedIn = true
	attendee.CheckedInBy = &conciergeID
	attendee.CheckedInTime = &now
	attendee.UpdatedAt = now
	return attendee, nil
}

func (s *attendeeService) ListEventAttendees(ctx context.Context, eventID, callerID string) ([]*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	// The event owner and approved concierges may read the attendee list.
	if event.OwnerID != callerID {
		approved, err := s.requestRepo.HasApproved(ctx, eventID, callerID)
		if err != nil {
			return nil, fmt.Errorf("check approved concierge: %w", err)
		}
		if !approved {
			return nil, domain.ErrForbidden
		}
	}

	attendees, err := s.attendeeRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	if attendees == nil {
		attendees = []*domain.Attendee{}
	}
	return attendees, nil
}
