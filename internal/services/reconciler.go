package services

import (
	"context"
	"fmt"
	"time"

	"eventconcierge/internal/domain"
)

type participationReconciler struct {
	marketerRepo      domain.EventMarketerRepository
	participationRepo domain.UserParticipationRepository
	contextTimeout    time.Duration
}

// NewParticipationReconciler returns the repair pass for the bidirectional
// marketer invariant. The event side is authoritative: memberships missing
// their user-side back-reference get one added, and user-side rows with no
// matching membership are removed.
func NewParticipationReconciler(
	marketerRepo domain.EventMarketerRepository,
	participationRepo domain.UserParticipationRepository,
	timeout time.Duration,
) domain.ParticipationReconciler {
	return &participationReconciler{
		marketerRepo:      marketerRepo,
		participationRepo: participationRepo,
		contextTimeout:    timeout,
	}
}

func (r *participationReconciler) Reconcile(ctx context.Context) (*domain.ReconcileReport, error) {
	ctx, cancel := context.WithTimeout(ctx, r.contextTimeout)
	defer cancel()

	report := &domain.ReconcileReport{}

	missing, err := r.marketerRepo.ListMissingUserSide(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan missing user side: %w", err)
	}
	for _, link := range missing {
		if err := r.participationRepo.Add(ctx, link.UserID, link.EventID); err != nil {
			return report, fmt.Errorf("repair user side %s/%s: %w", link.EventID, link.UserID, err)
		}
		report.AddedUserSide++
	}

	orphaned, err := r.participationRepo.ListOrphaned(ctx)
	if err != nil {
		return report, fmt.Errorf("scan orphaned user side: %w", err)
	}
	for _, link := range orphaned {
		if err := r.participationRepo.Remove(ctx, link.UserID, link.EventID); err != nil {
			return report, fmt.Errorf("remove orphaned %s/%s: %w", link.EventID, link.UserID, err)
		}
		report.RemovedOrphaned++
	}

	return report, nil
}
