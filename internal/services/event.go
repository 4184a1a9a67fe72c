package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventconcierge/internal/domain"
)

type eventService struct {
	eventRepo         domain.EventRepository
	marketerRepo      domain.EventMarketerRepository
	participationRepo domain.UserParticipationRepository
	requestRepo       domain.ConciergeRequestRepository
	invitationRepo    domain.EventInvitationRepository
	userRepo          domain.UserRepository
	emailService      domain.EmailService
	contextTimeout    time.Duration
}

func NewEventService(
	eventRepo domain.EventRepository,
	marketerRepo domain.EventMarketerRepository,
	participationRepo domain.UserParticipationRepository,
	requestRepo domain.ConciergeRequestRepository,
	invitationRepo domain.EventInvitationRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:         eventRepo,
		marketerRepo:      marketerRepo,
		participationRepo: participationRepo,
		requestRepo:       requestRepo,
		invitationRepo:    invitationRepo,
		userRepo:          userRepo,
		emailService:      emailService,
		contextTimeout:    timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.OwnerID == "" {
		return fmt.Errorf("event owner is required")
	}
	if strings.TrimSpace(event.Name) == "" {
		return domain.ErrInvalidInput
	}

	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()

	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEventsByOwner(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.ListByOwnerID(ctx, ownerID)
}

// DeleteEvent removes the event together with everything it owns: marketer
// links, user-side back-references, concierge requests, and invitations.
// Back-references go first so a failure mid-way cannot leave a user pointing
// at a deleted event.
func (s *eventService) DeleteEvent(ctx context.Context, eventID string, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != ownerID {
		return domain.ErrForbidden
	}

	if err := s.participationRepo.RemoveAllForEvent(ctx, eventID); err != nil {
		return fmt.Errorf("remove user participations: %w", err)
	}
	if err := s.marketerRepo.RemoveAllForEvent(ctx, eventID); err != nil {
		return fmt.Errorf("remove event marketers: %w", err)
	}
	if err := s.requestRepo.RemoveAllForEvent(ctx, eventID); err != nil {
		return fmt.Errorf("remove concierge requests: %w", err)
	}
	if err := s.invitationRepo.RemoveAllForEvent(ctx, eventID); err != nil {
		return fmt.Errorf("remove invitations: %w", err)
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) SendEventInvitations(ctx context.Context, eventID, ownerID string, emails []string) (sent int, failed []string, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil, domain.ErrNotFound
		}
		return 0, nil, fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != ownerID {
		return 0, nil, domain.ErrForbidden
	}

	ownerName := "Event owner"
	if owner, err := s.userRepo.GetByID(ctx, ownerID); err == nil && owner != nil {
		if name := strings.TrimSpace(owner.Name + " " + owner.LastName); name != "" {
			ownerName = name
		} else if owner.Email != "" {
			ownerName = owner.Email
		}
	}

	for _, email := range emails {
		email = strings.TrimSpace(strings.ToLower(email))
		if email == "" {
			continue
		}
		inv := &domain.EventInvitation{
			EventID: eventID,
			Email:   email,
			SentAt:  time.Now(),
		}
		if err := s.invitationRepo.Create(ctx, inv); err != nil {
			failed = append(failed, email)
			continue
		}
		data := &domain.EventInvitationEmailData{
			Email:     email,
			OwnerName: ownerName,
			EventName: event.Name,
		}
		if err := s.emailService.SendEventInvitation(ctx, data); err != nil {
			failed = append(failed, email)
			continue
		}
		sent++
	}
	return sent, failed, nil
}

func (s *eventService) ListEventInvitations(ctx context.Context, eventID, callerID string, search string, params domain.PaginationParams) ([]*domain.EventInvitation, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != callerID {
		return nil, 0, domain.ErrForbidden
	}
	invs, total, err := s.invitationRepo.ListByEventID(ctx, eventID, search, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list event invitations: %w", err)
	}
	if invs == nil {
		invs = []*domain.EventInvitation{}
	}
	return invs, total, nil
}
