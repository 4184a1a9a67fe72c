package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventconcierge/internal/domain"
)

// participationRetries bounds how often the lagging side of the dual write is
// retried before the divergence is reported as ErrPartialFailure.
const participationRetries = 3

type participationService struct {
	eventRepo         domain.EventRepository
	marketerRepo      domain.EventMarketerRepository
	participationRepo domain.UserParticipationRepository
	roleRepo          domain.RoleRepository
	contextTimeout    time.Duration
}

// NewParticipationService creates the coordinator that keeps the event-side
// marketer set and the user-side event set consistent.
func NewParticipationService(
	eventRepo domain.EventRepository,
	marketerRepo domain.EventMarketerRepository,
	participationRepo domain.UserParticipationRepository,
	roleRepo domain.RoleRepository,
	timeout time.Duration,
) domain.ParticipationService {
	return &participationService{
		eventRepo:         eventRepo,
		marketerRepo:      marketerRepo,
		participationRepo: participationRepo,
		roleRepo:          roleRepo,
		contextTimeout:    timeout,
	}
}

func (s *participationService) Join(ctx context.Context, eventID, userID string) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	isMarketer, err := s.hasRole(ctx, userID, domain.RoleMarketer)
	if err != nil {
		return nil, fmt.Errorf("list user roles: %w", err)
	}
	if !isMarketer {
		return nil, domain.ErrForbidden
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	// Event side first. Re-joining is an idempotent success, but the user
	// side is still converged below in case an earlier join was interrupted.
	if _, err := s.marketerRepo.Add(ctx, eventID, userID); err != nil {
		return nil, fmt.Errorf("add event marketer: %w", err)
	}

	if err := s.retryUserSide(ctx, func() error {
		return s.participationRepo.Add(ctx, userID, eventID)
	}); err != nil {
		return nil, fmt.Errorf("%w: user side of join %s/%s not applied: %v",
			domain.ErrPartialFailure, eventID, userID, err)
	}

	return s.eventView(ctx, event)
}

func (s *participationService) Leave(ctx context.Context, eventID, userID string) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	// Leaving a non-member event is an idempotent success.
	if _, err := s.marketerRepo.Remove(ctx, eventID, userID); err != nil {
		return nil, fmt.Errorf("remove event marketer: %w", err)
	}

	if err := s.retryUserSide(ctx, func() error {
		return s.participationRepo.Remove(ctx, userID, eventID)
	}); err != nil {
		return nil, fmt.Errorf("%w: user side of leave %s/%s not applied: %v",
			domain.ErrPartialFailure, eventID, userID, err)
	}

	return s.eventView(ctx, event)
}

// retryUserSide applies the user-side half of the dual write, retrying to
// convergence. The caller wraps a remaining error in ErrPartialFailure so the
// divergence is never reported as success; the reconciler repairs it later.
func (s *participationService) retryUserSide(ctx context.Context, write func() error) error {
	var err error
	for attempt := 0; attempt < participationRetries; attempt++ {
		if err = write(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}

func (s *participationService) ListEventMarketers(ctx context.Context, eventID string) ([]*domain.EventMarketer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	marketers, err := s.marketerRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event marketers: %w", err)
	}
	if marketers == nil {
		marketers = []*domain.EventMarketer{}
	}
	return marketers, nil
}

func (s *participationService) ListUserEvents(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ids, err := s.participationRepo.ListEventIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user events: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (s *participationService) hasRole(ctx context.Context, userID, code string) (bool, error) {
	roles, err := s.roleRepo.ListByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *participationService) eventView(ctx context.Context, event *domain.Event) (*domain.EventView, error) {
	marketers, err := s.marketerRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list event marketers: %w", err)
	}
	if marketers == nil {
		marketers = []*domain.EventMarketer{}
	}
	return &domain.EventView{Event: event, Marketers: marketers}, nil
}
