package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventconcierge/internal/domain"
)

type conciergeService struct {
	eventRepo      domain.EventRepository
	requestRepo    domain.ConciergeRequestRepository
	contextTimeout time.Duration
}

// NewConciergeService creates the concierge assignment workflow service.
func NewConciergeService(
	eventRepo domain.EventRepository,
	requestRepo domain.ConciergeRequestRepository,
	timeout time.Duration,
) domain.ConciergeService {
	return &conciergeService{
		eventRepo:      eventRepo,
		requestRepo:    requestRepo,
		contextTimeout: timeout,
	}
}

func (s *conciergeService) Request(ctx context.Context, eventID, userID string) (*domain.ConciergeRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	req := domain.NewConciergeRequest(eventID, userID, time.Now())
	if err := s.requestRepo.CreatePending(ctx, req); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("create concierge request: %w", err)
	}
	return req, nil
}

func (s *conciergeService) Review(ctx context.Context, eventID, requestID string, approve bool, reviewerID string) (*domain.ConciergeRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	status := domain.ConciergeStatusRejected
	if approve {
		status = domain.ConciergeStatusApproved
	}

	// A second review of a terminal request is an explicit conflict, never a
	// silent success: re-review could mask the prior decision.
	req, err := s.requestRepo.Review(ctx, eventID, requestID, status, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("review concierge request: %w", err)
	}
	return req, nil
}

func (s *conciergeService) Cancel(ctx context.Context, eventID, userID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if callerID != userID {
		return domain.ErrForbidden
	}
	if err := s.requestRepo.CancelPending(ctx, eventID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("cancel concierge request: %w", err)
	}
	return nil
}

func (s *conciergeService) ListPending(ctx context.Context) ([]*domain.ConciergeAssignment, error) {
	return s.listByStatus(ctx, domain.ConciergeStatusPending)
}

func (s *conciergeService) ListApproved(ctx context.Context) ([]*domain.ConciergeAssignment, error) {
	return s.listByStatus(ctx, domain.ConciergeStatusApproved)
}

func (s *conciergeService) listByStatus(ctx context.Context, status domain.ConciergeRequestStatus) ([]*domain.ConciergeAssignment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	assignments, err := s.requestRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list %s concierge requests: %w", status, err)
	}
	if assignments == nil {
		assignments = []*domain.ConciergeAssignment{}
	}
	return assignments, nil
}

func (s *conciergeService) MyStatus(ctx context.Context, eventID, userID string) (domain.ConciergeRequestStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	req, err := s.requestRepo.LatestByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ConciergeStatusNone, nil
		}
		return "", fmt.Errorf("get latest concierge request: %w", err)
	}
	return req.Status, nil
}
