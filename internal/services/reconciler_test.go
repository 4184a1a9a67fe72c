package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventconcierge/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipationReconciler_Reconcile(t *testing.T) {
	ctx := context.Background()
	timeout := 5 * time.Second

	t.Run("adds missing user side", func(t *testing.T) {
		mr := newFakeMarketerRepo()
		pr := newFakeParticipationRepo()
		mr.missing = []domain.ParticipationLink{
			{EventID: "ev-1", UserID: "user-1"},
			{EventID: "ev-2", UserID: "user-1"},
		}

		rec := NewParticipationReconciler(mr, pr, timeout)
		report, err := rec.Reconcile(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, report.AddedUserSide)
		assert.Equal(t, 0, report.RemovedOrphaned)
		assert.True(t, pr.has("user-1", "ev-1"))
		assert.True(t, pr.has("user-1", "ev-2"))
	})

	t.Run("removes orphaned back-references", func(t *testing.T) {
		mr := newFakeMarketerRepo()
		pr := newFakeParticipationRepo()
		_ = pr.Add(ctx, "user-1", "ev-gone")
		pr.orphaned = []domain.ParticipationLink{{EventID: "ev-gone", UserID: "user-1"}}

		rec := NewParticipationReconciler(mr, pr, timeout)
		report, err := rec.Reconcile(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, report.AddedUserSide)
		assert.Equal(t, 1, report.RemovedOrphaned)
		assert.False(t, pr.has("user-1", "ev-gone"))
	})

	t.Run("clean state is a no-op", func(t *testing.T) {
		rec := NewParticipationReconciler(newFakeMarketerRepo(), newFakeParticipationRepo(), timeout)
		report, err := rec.Reconcile(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, report.AddedUserSide)
		assert.Equal(t, 0, report.RemovedOrphaned)
	})

	t.Run("repair failure returns partial report", func(t *testing.T) {
		mr := newFakeMarketerRepo()
		pr := newFakeParticipationRepo()
		mr.missing = []domain.ParticipationLink{{EventID: "ev-1", UserID: "user-1"}}
		pr.addErr = errors.New("store down")

		rec := NewParticipationReconciler(mr, pr, timeout)
		report, err := rec.Reconcile(ctx)
		require.Error(t, err)
		require.NotNil(t, report)
		assert.Equal(t, 0, report.AddedUserSide)
	})
}
