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

type eventFixture struct {
	eventRepo         *fakeEventRepo
	marketerRepo      *fakeMarketerRepo
	participationRepo *fakeParticipationRepo
	requestRepo       *fakeConciergeRepo
	invitationRepo    *fakeInvitationRepo
	userRepo          *fakeUserRepo
	email             *fakeEmailService
	svc               domain.EventService
}

func newEventFixture() *eventFixture {
	f := &eventFixture{
		eventRepo:         newFakeEventRepo(),
		marketerRepo:      newFakeMarketerRepo(),
		participationRepo: newFakeParticipationRepo(),
		requestRepo:       newFakeConciergeRepo(),
		invitationRepo:    newFakeInvitationRepo(),
		userRepo:          newFakeUserRepo(),
		email:             &fakeEmailService{},
	}
	f.svc = NewEventService(f.eventRepo, f.marketerRepo, f.participationRepo, f.requestRepo, f.invitationRepo, f.userRepo, f.email, 5*time.Second)
	return f
}

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		event   *domain.Event
		wantErr bool
		isInput bool
	}{
		{
			name:  "success",
			event: &domain.Event{Name: "Launch Party", OwnerID: "owner-1"},
		},
		{
			name:    "missing owner",
			event:   &domain.Event{Name: "Launch Party"},
			wantErr: true,
		},
		{
			name:    "blank name",
			event:   &domain.Event{Name: "   ", OwnerID: "owner-1"},
			wantErr: true,
			isInput: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEventFixture()
			err := f.svc.CreateEvent(ctx, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				if tt.isInput {
					require.True(t, errors.Is(err, domain.ErrInvalidInput))
				}
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, tt.event.ID)
			assert.False(t, tt.event.CreatedAt.IsZero())
			got, err := f.eventRepo.GetByID(ctx, tt.event.ID)
			require.NoError(t, err)
			assert.Equal(t, "owner-1", got.OwnerID)
		})
	}
}

func TestEventService_GetEventByID(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture()
	f.eventRepo.addEvent("ev-1", "Launch Party", "owner-1")

	event, err := f.svc.GetEventByID(ctx, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, "Launch Party", event.Name)

	_, err = f.svc.GetEventByID(ctx, "ev-missing")
	require.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestEventService_DeleteEvent(t *testing.T) {
	ctx := context.Background()

	seeded := func(t *testing.T) *eventFixture {
		t.Helper()
		f := newEventFixture()
		f.eventRepo.addEvent("ev-1", "Launch Party", "owner-1")
		_, err := f.marketerRepo.Add(ctx, "ev-1", "user-1")
		require.NoError(t, err)
		require.NoError(t, f.participationRepo.Add(ctx, "user-1", "ev-1"))
		require.NoError(t, f.requestRepo.CreatePending(ctx, domain.NewConciergeRequest("ev-1", "user-2", time.Now())))
		require.NoError(t, f.invitationRepo.Create(ctx, &domain.EventInvitation{EventID: "ev-1", Email: "a@example.com", SentAt: time.Now()}))
		return f
	}

	t.Run("owner delete cascades to owned records", func(t *testing.T) {
		f := seeded(t)
		require.NoError(t, f.svc.DeleteEvent(ctx, "ev-1", "owner-1"))

		_, err := f.eventRepo.GetByID(ctx, "ev-1")
		require.True(t, errors.Is(err, domain.ErrNotFound))
		assert.False(t, f.marketerRepo.has("ev-1", "user-1"))
		assert.False(t, f.participationRepo.has("user-1", "ev-1"))
		assert.Equal(t, 0, f.requestRepo.countForEvent("ev-1"))
		assert.Len(t, f.invitationRepo.invitations, 0)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		f := seeded(t)
		err := f.svc.DeleteEvent(ctx, "ev-1", "user-1")
		require.True(t, errors.Is(err, domain.ErrForbidden))
		_, err = f.eventRepo.GetByID(ctx, "ev-1")
		require.NoError(t, err)
	})

	t.Run("event not found", func(t *testing.T) {
		f := newEventFixture()
		err := f.svc.DeleteEvent(ctx, "ev-missing", "owner-1")
		require.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestEventService_SendEventInvitations(t *testing.T) {
	ctx := context.Background()

	t.Run("success records invitations and sends email", func(t *testing.T) {
		f := newEventFixture()
		f.eventRepo.addEvent("ev-1", "Launch Party", "owner-1")
		f.userRepo.addUser("owner-1", "owner@example.com", "Olga", "Ruiz")

		sent, failed, err := f.svc.SendEventInvitations(ctx, "ev-1", "owner-1", []string{"a@example.com", "B@Example.com", ""})
		require.NoError(t, err)
		assert.Equal(t, 2, sent)
		assert.Len(t, failed, 0)
		require.Len(t, f.email.sentInvitations, 2)
		assert.Equal(t, "Olga Ruiz", f.email.sentInvitations[0].OwnerName)
		assert.Equal(t, "Launch Party", f.email.sentInvitations[0].EventName)
		// addresses normalized to lower case
		assert.Equal(t, "b@example.com", f.email.sentInvitations[1].Email)
	})

	t.Run("already invited email lands in failed", func(t *testing.T) {
		f := newEventFixture()
		f.eventRepo.addEvent("ev-1", "Launch Party", "owner-1")
		require.NoError(t, f.invitationRepo.Create(ctx, &domain.EventInvitation{EventID: "ev-1", Email: "a@example.com", SentAt: time.Now()}))

		sent, failed, err := f.svc.SendEventInvitations(ctx, "ev-1", "owner-1", []string{"a@example.com", "c@example.com"})
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Equal(t, []string{"a@example.com"}, failed)
	})

	t.Run("mailer failure lands in failed", func(t *testing.T) {
		f := newEventFixture()
		f.eventRepo.addEvent("ev-1", "Launch Party", "owner-1")
		f.email.invitationErr = errors.New("ses down")

		sent, failed, err := f.svc.SendEventInvitations(ctx, "ev-1", "owner-1", []string{"a@example.com"})
		require.NoError(t, err)
		assert.Equal(t, 0, sent)
		assert.Equal(t, []string{"a@example.com"}, failed)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		f := newEventFixture()
		f.eventRepo.addEvent("ev-1", "Launch Party", "owner-1")

		_, _, err := f.svc.SendEventInvitations(ctx, "ev-1", "user-2", []string{"a@example.com"})
		require.True(t, errors.Is(err, domain.ErrForbidden))
	})
}

func TestEventService_ListEventInvitations(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture()
	f.eventRepo.addEvent("ev-1", "Launch Party", "owner-1")
	for _, email := range []string{"ana@example.com", "bea@example.com", "carla@other.org"} {
		require.NoError(t, f.invitationRepo.Create(ctx, &domain.EventInvitation{EventID: "ev-1", Email: email, SentAt: time.Now()}))
	}

	t.Run("lists with pagination", func(t *testing.T) {
		invs, total, err := f.svc.ListEventInvitations(ctx, "ev-1", "owner-1", "", domain.PaginationParams{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, invs, 2)
	})

	t.Run("filters by email search", func(t *testing.T) {
		invs, total, err := f.svc.ListEventInvitations(ctx, "ev-1", "owner-1", "example.com", domain.PaginationParams{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, invs, 2)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		_, _, err := f.svc.ListEventInvitations(ctx, "ev-1", "user-2", "", domain.PaginationParams{Page: 1, PageSize: 10})
		require.True(t, errors.Is(err, domain.ErrForbidden))
	})
}
