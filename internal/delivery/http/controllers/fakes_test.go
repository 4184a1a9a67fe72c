package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"eventconcierge/internal/delivery/http/helpers"
	"eventconcierge/internal/domain"

	"github.com/stretchr/testify/require"
)

// Canonical UUIDs for path segments; handlers reject anything that does not
// look like a UUID before the service is reached.
const (
	testEventID   = "7f9c24e8-3b12-4a6b-9d6f-0a1b2c3d4e5f"
	testRequestID = "a2f5d3c1-8e47-49b0-b2de-91c01e5aef10"
)

func controllerTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func decodeEnvelope(t *testing.T, body []byte) helpers.APIResponse {
	t.Helper()
	var env helpers.APIResponse
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func envelopeData(t *testing.T, env helpers.APIResponse, out any) {
	t.Helper()
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

type fakeAuthService struct {
	signUpUser *domain.User
	signUpErr  error
	loginToken string
	loginUser  *domain.User
	loginErr   error

	lastSignUpEmail string
	lastSignUpRole  string
	lastLoginEmail  string
}

func (f *fakeAuthService) SignUp(ctx context.Context, email, password, name, lastName, role string) (*domain.User, error) {
	f.lastSignUpEmail = email
	f.lastSignUpRole = role
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return f.signUpUser, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	f.lastLoginEmail = email
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return f.loginToken, f.loginUser, nil
}

type fakeUserService struct {
	user      *domain.User
	getErr    error
	updateErr error

	lastUpdateName     string
	lastUpdateLastName string
}

func (f *fakeUserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.user, nil
}

func (f *fakeUserService) Update(ctx context.Context, id, name, lastName string) (*domain.User, error) {
	f.lastUpdateName = name
	f.lastUpdateLastName = lastName
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.user, nil
}

type fakeParticipationService struct {
	view          *domain.EventView
	joinErr       error
	leaveErr      error
	marketers     []*domain.EventMarketer
	marketersErr  error
	eventIDs      []string
	userEventsErr error

	joinCalls  int
	leaveCalls int
}

func (f *fakeParticipationService) Join(ctx context.Context, eventID, userID string) (*domain.EventView, error) {
	f.joinCalls++
	if f.joinErr != nil {
		return nil, f.joinErr
	}
	return f.view, nil
}

func (f *fakeParticipationService) Leave(ctx context.Context, eventID, userID string) (*domain.EventView, error) {
	f.leaveCalls++
	if f.leaveErr != nil {
		return nil, f.leaveErr
	}
	return f.view, nil
}

func (f *fakeParticipationService) ListEventMarketers(ctx context.Context, eventID string) ([]*domain.EventMarketer, error) {
	if f.marketersErr != nil {
		return nil, f.marketersErr
	}
	return f.marketers, nil
}

func (f *fakeParticipationService) ListUserEvents(ctx context.Context, userID string) ([]string, error) {
	if f.userEventsErr != nil {
		return nil, f.userEventsErr
	}
	return f.eventIDs, nil
}

type fakeReconciler struct {
	report *domain.ReconcileReport
	err    error
	calls  int
}

func (f *fakeReconciler) Reconcile(ctx context.Context) (*domain.ReconcileReport, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

type fakeEventService struct {
	event       *domain.Event
	events      []*domain.Event
	createErr   error
	getErr      error
	listErr     error
	deleteErr   error
	sent        int
	failed      []string
	inviteErr   error
	invitations []*domain.EventInvitation
	total       int
	listInvErr  error

	lastCreated      *domain.Event
	lastInviteEmails []string
	lastSearch       string
	lastParams       domain.PaginationParams
	deleteCalls      int
}

func (f *fakeEventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	f.lastCreated = event
	return f.createErr
}

func (f *fakeEventService) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.event, nil
}

func (f *fakeEventService) ListEventsByOwner(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, eventID, ownerID string) error {
	f.deleteCalls++
	return f.deleteErr
}

func (f *fakeEventService) SendEventInvitations(ctx context.Context, eventID, ownerID string, emails []string) (int, []string, error) {
	f.lastInviteEmails = emails
	if f.inviteErr != nil {
		return 0, nil, f.inviteErr
	}
	return f.sent, f.failed, nil
}

func (f *fakeEventService) ListEventInvitations(ctx context.Context, eventID, callerID string, search string, params domain.PaginationParams) ([]*domain.EventInvitation, int, error) {
	f.lastSearch = search
	f.lastParams = params
	if f.listInvErr != nil {
		return nil, 0, f.listInvErr
	}
	return f.invitations, f.total, nil
}

type fakeConciergeService struct {
	request    *domain.ConciergeRequest
	requestErr error
	reviewed   *domain.ConciergeRequest
	reviewErr  error
	cancelErr  error
	pending    []*domain.ConciergeAssignment
	approved   []*domain.ConciergeAssignment
	listErr    error
	status     domain.ConciergeRequestStatus
	statusErr  error

	lastReviewApprove bool
	lastCancelUserID  string
	lastCancelCaller  string
}

func (f *fakeConciergeService) Request(ctx context.Context, eventID, userID string) (*domain.ConciergeRequest, error) {
	if f.requestErr != nil {
		return nil, f.requestErr
	}
	return f.request, nil
}

func (f *fakeConciergeService) Review(ctx context.Context, eventID, requestID string, approve bool, reviewerID string) (*domain.ConciergeRequest, error) {
	f.lastReviewApprove = approve
	if f.reviewErr != nil {
		return nil, f.reviewErr
	}
	return f.reviewed, nil
}

func (f *fakeConciergeService) Cancel(ctx context.Context, eventID, userID, callerID string) error {
	f.lastCancelUserID = userID
	f.lastCancelCaller = callerID
	return f.cancelErr
}

func (f *fakeConciergeService) ListPending(ctx context.Context) ([]*domain.ConciergeAssignment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.pending, nil
}

func (f *fakeConciergeService) ListApproved(ctx context.Context) ([]*domain.ConciergeAssignment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.approved, nil
}

func (f *fakeConciergeService) MyStatus(ctx context.Context, eventID, userID string) (domain.ConciergeRequestStatus, error) {
	if f.statusErr != nil {
		return "", f.statusErr
	}
	return f.status, nil
}

type fakeAttendeeService struct {
	attendee    *domain.Attendee
	registerErr error
	checkInErr  error
	attendees   []*domain.Attendee
	listErr     error

	lastRegisterPhone   string
	lastRegisterName    string
	lastCheckInPhone    string
	lastCheckInConcierge string
}

func (f *fakeAttendeeService) RegisterAttendee(ctx context.Context, eventID, phone, name string) (*domain.Attendee, error) {
	f.lastRegisterPhone = phone
	f.lastRegisterName = name
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.attendee, nil
}

func (f *fakeAttendeeService) CheckIn(ctx context.Context, eventID, phone, conciergeID string) (*domain.Attendee, error) {
	f.lastCheckInPhone = phone
	f.lastCheckInConcierge = conciergeID
	if f.checkInErr != nil {
		return nil, f.checkInErr
	}
	return f.attendee, nil
}

func (f *fakeAttendeeService) ListEventAttendees(ctx context.Context, eventID, callerID string) ([]*domain.Attendee, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.attendees, nil
}
