package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"eventconcierge/internal/domain"
)

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID      map[string]*domain.Event
	nextID    int
	createErr error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	out := []*domain.Event{}
	for _, e := range f.byID {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEventRepo) addEvent(id, name, ownerID string) {
	f.byID[id] = &domain.Event{ID: id, Name: name, OwnerID: ownerID}
}

// fakeMarketerRepo is an in-memory EventMarketerRepository for tests.
type fakeMarketerRepo struct {
	members   map[string]map[string]bool // eventID -> userID -> true
	missing   []domain.ParticipationLink // returned by ListMissingUserSide
	addErr    error
	removeErr error
}

func newFakeMarketerRepo() *fakeMarketerRepo {
	return &fakeMarketerRepo{members: make(map[string]map[string]bool)}
}

func (f *fakeMarketerRepo) Add(ctx context.Context, eventID, userID string) (bool, error) {
	if f.addErr != nil {
		return false, f.addErr
	}
	if f.members[eventID] == nil {
		f.members[eventID] = make(map[string]bool)
	}
	if f.members[eventID][userID] {
		return false, nil
	}
	f.members[eventID][userID] = true
	return true, nil
}

func (f *fakeMarketerRepo) Remove(ctx context.Context, eventID, userID string) (bool, error) {
	if f.removeErr != nil {
		return false, f.removeErr
	}
	if !f.members[eventID][userID] {
		return false, nil
	}
	delete(f.members[eventID], userID)
	return true, nil
}

func (f *fakeMarketerRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.EventMarketer, error) {
	out := []*domain.EventMarketer{}
	for uid := range f.members[eventID] {
		out = append(out, &domain.EventMarketer{EventID: eventID, UserID: uid})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (f *fakeMarketerRepo) RemoveAllForEvent(ctx context.Context, eventID string) error {
	delete(f.members, eventID)
	return nil
}

func (f *fakeMarketerRepo) ListMissingUserSide(ctx context.Context) ([]domain.ParticipationLink, error) {
	return f.missing, nil
}

func (f *fakeMarketerRepo) has(eventID, userID string) bool {
	return f.members[eventID][userID]
}

// fakeParticipationRepo is an in-memory UserParticipationRepository. Add can
// be made to fail a fixed number of times before succeeding, to exercise the
// dual-write retry path.
type fakeParticipationRepo struct {
	links       map[string]map[string]bool // userID -> eventID -> true
	orphaned    []domain.ParticipationLink
	addFailures int // fail this many Add calls, then succeed
	addCalls    int
	addErr      error // permanent Add failure when set
	removeErr   error
}

func newFakeParticipationRepo() *fakeParticipationRepo {
	return &fakeParticipationRepo{links: make(map[string]map[string]bool)}
}

func (f *fakeParticipationRepo) Add(ctx context.Context, userID, eventID string) error {
	f.addCalls++
	if f.addErr != nil {
		return f.addErr
	}
	if f.addFailures > 0 {
		f.addFailures--
		return fmt.Errorf("transient write failure")
	}
	if f.links[userID] == nil {
		f.links[userID] = make(map[string]bool)
	}
	f.links[userID][eventID] = true
	return nil
}

func (f *fakeParticipationRepo) Remove(ctx context.Context, userID, eventID string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.links[userID], eventID)
	return nil
}

func (f *fakeParticipationRepo) ListEventIDsByUser(ctx context.Context, userID string) ([]string, error) {
	out := []string{}
	for ev := range f.links[userID] {
		out = append(out, ev)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeParticipationRepo) RemoveAllForEvent(ctx context.Context, eventID string) error {
	for uid := range f.links {
		delete(f.links[uid], eventID)
	}
	return nil
}

func (f *fakeParticipationRepo) ListOrphaned(ctx context.Context) ([]domain.ParticipationLink, error) {
	return f.orphaned, nil
}

func (f *fakeParticipationRepo) has(userID, eventID string) bool {
	return f.links[userID][eventID]
}

// fakeRoleRepo is an in-memory RoleRepository for tests.
type fakeRoleRepo struct {
	byCode      map[string]*domain.Role
	rolesByUser map[string][]*domain.Role
	listErr     error
}

func newFakeRoleRepo() *fakeRoleRepo {
	byCode := make(map[string]*domain.Role)
	for i, code := range []string{domain.RoleMarketer, domain.RoleConcierge, domain.RoleAdmin, domain.RoleAttendee} {
		byCode[code] = &domain.Role{ID: fmt.Sprintf("role-%d", i+1), Code: code}
	}
	return &fakeRoleRepo{byCode: byCode, rolesByUser: make(map[string][]*domain.Role)}
}

func (f *fakeRoleRepo) GetByCode(ctx context.Context, code string) (*domain.Role, error) {
	if r, ok := f.byCode[code]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRoleRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Role, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rolesByUser[userID], nil
}

func (f *fakeRoleRepo) grant(userID, code string) {
	f.rolesByUser[userID] = append(f.rolesByUser[userID], f.byCode[code])
}

// fakeConciergeRepo is an in-memory ConciergeRequestRepository enforcing the
// same invariants the postgres repo enforces with conditional statements.
type fakeConciergeRepo struct {
	reqs           []*domain.ConciergeRequest
	nextID         int
	hasApprovedErr error
}

func newFakeConciergeRepo() *fakeConciergeRepo {
	return &fakeConciergeRepo{nextID: 1}
}

func (f *fakeConciergeRepo) CreatePending(ctx context.Context, req *domain.ConciergeRequest) error {
	for _, r := range f.reqs {
		if r.EventID == req.EventID && r.UserID == req.UserID && r.Status == domain.ConciergeStatusPending {
			return domain.ErrConflict
		}
	}
	req.ID = fmt.Sprintf("req-%d", f.nextID)
	f.nextID++
	cp := *req
	f.reqs = append(f.reqs, &cp)
	return nil
}

func (f *fakeConciergeRepo) Review(ctx context.Context, eventID, requestID string, status domain.ConciergeRequestStatus, reviewedAt time.Time) (*domain.ConciergeRequest, error) {
	for _, r := range f.reqs {
		if r.ID == requestID && r.EventID == eventID {
			if r.Status != domain.ConciergeStatusPending {
				return nil, domain.ErrConflict
			}
			r.Status = status
			at := reviewedAt
			r.ReviewedAt = &at
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeConciergeRepo) CancelPending(ctx context.Context, eventID, userID string) error {
	for i, r := range f.reqs {
		if r.EventID == eventID && r.UserID == userID && r.Status == domain.ConciergeStatusPending {
			f.reqs = append(f.reqs[:i], f.reqs[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeConciergeRepo) ListByStatus(ctx context.Context, status domain.ConciergeRequestStatus) ([]*domain.ConciergeAssignment, error) {
	out := []*domain.ConciergeAssignment{}
	for _, r := range f.reqs {
		if r.Status == status {
			cp := *r
			out = append(out, &domain.ConciergeAssignment{Request: &cp})
		}
	}
	return out, nil
}

func (f *fakeConciergeRepo) LatestByEventAndUser(ctx context.Context, eventID, userID string) (*domain.ConciergeRequest, error) {
	var latest *domain.ConciergeRequest
	for _, r := range f.reqs {
		if r.EventID == eventID && r.UserID == userID {
			latest = r
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeConciergeRepo) HasApproved(ctx context.Context, eventID, userID string) (bool, error) {
	if f.hasApprovedErr != nil {
		return false, f.hasApprovedErr
	}
	for _, r := range f.reqs {
		if r.EventID == eventID && r.UserID == userID && r.Status == domain.ConciergeStatusApproved {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeConciergeRepo) RemoveAllForEvent(ctx context.Context, eventID string) error {
	kept := f.reqs[:0]
	for _, r := range f.reqs {
		if r.EventID != eventID {
			kept = append(kept, r)
		}
	}
	f.reqs = kept
	return nil
}

func (f *fakeConciergeRepo) countForEvent(eventID string) int {
	n := 0
	for _, r := range f.reqs {
		if r.EventID == eventID {
			n++
		}
	}
	return n
}

// fakeAttendeeRepo is an in-memory AttendeeRepository for tests.
type fakeAttendeeRepo struct {
	attendees  []*domain.Attendee
	nextID     int
	checkInErr error
	// denyCheckIn simulates losing the conditional-update race: the guard
	// read saw checked_in=false but the write reports no row updated.
	denyCheckIn bool
}

func newFakeAttendeeRepo() *fakeAttendeeRepo {
	return &fakeAttendeeRepo{nextID: 1}
}

func (f *fakeAttendeeRepo) Create(ctx context.Context, a *domain.Attendee) error {
	for _, existing := range f.attendees {
		if existing.EventID == a.EventID && existing.Phone == a.Phone {
			return domain.ErrConflict
		}
	}
	a.ID = fmt.Sprintf("att-%d", f.nextID)
	f.nextID++
	f.attendees = append(f.attendees, a)
	return nil
}

func (f *fakeAttendeeRepo) GetByEventAndPhone(ctx context.Context, eventID, phone string) (*domain.Attendee, int, error) {
	var first *domain.Attendee
	count := 0
	for _, a := range f.attendees {
		if a.EventID == eventID && a.Phone == phone {
			if first == nil {
				first = a
			}
			count++
		}
	}
	if first == nil {
		return nil, 0, domain.ErrNotFound
	}
	cp := *first
	return &cp, count, nil
}

func (f *fakeAttendeeRepo) CheckIn(ctx context.Context, eventID, phone, conciergeID string, at time.Time) (bool, error) {
	if f.checkInErr != nil {
		return false, f.checkInErr
	}
	if f.denyCheckIn {
		return false, nil
	}
	for _, a := range f.attendees {
		if a.EventID == eventID && a.Phone == phone && !a.CheckedIn {
			a.CheckedIn = true
			a.CheckedInBy = &conciergeID
			t := at
			a.CheckedInTime = &t
			a.UpdatedAt = at
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAttendeeRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	out := []*domain.Attendee{}
	for _, a := range f.attendees {
		if a.EventID == eventID {
			out = append(out, a)
		}
	}
	return out, nil
}

// seed inserts a raw record bypassing the uniqueness check, for the
// duplicate-registration data-quality cases.
func (f *fakeAttendeeRepo) seed(a *domain.Attendee) {
	a.ID = fmt.Sprintf("att-%d", f.nextID)
	f.nextID++
	f.attendees = append(f.attendees, a)
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byID          map[string]*domain.User
	nextID        int
	assignedRoles map[string][]string // userID -> roleIDs
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User), nextID: 1, assignedRoles: make(map[string][]string)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrDuplicateEmail
		}
	}
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := f.byID[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) AssignRole(ctx context.Context, userID, roleID string) error {
	f.assignedRoles[userID] = append(f.assignedRoles[userID], roleID)
	return nil
}

func (f *fakeUserRepo) addUser(id, email, name, lastName string) {
	f.byID[id] = &domain.User{ID: id, Email: email, Name: name, LastName: lastName}
}

// fakeInvitationRepo is an in-memory EventInvitationRepository for tests.
type fakeInvitationRepo struct {
	invitations []*domain.EventInvitation
	nextID      int
	createErr   error
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{nextID: 1}
}

func (f *fakeInvitationRepo) Create(ctx context.Context, inv *domain.EventInvitation) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.invitations {
		if existing.EventID == inv.EventID && strings.EqualFold(existing.Email, inv.Email) {
			return domain.ErrConflict
		}
	}
	inv.ID = fmt.Sprintf("inv-%d", f.nextID)
	f.nextID++
	f.invitations = append(f.invitations, inv)
	return nil
}

func (f *fakeInvitationRepo) ListByEventID(ctx context.Context, eventID, search string, params domain.PaginationParams) ([]*domain.EventInvitation, int, error) {
	out := []*domain.EventInvitation{}
	for _, inv := range f.invitations {
		if inv.EventID != eventID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(inv.Email), strings.ToLower(search)) {
			continue
		}
		out = append(out, inv)
	}
	total := len(out)
	offset := params.Offset()
	if offset > total {
		offset = total
	}
	end := offset + params.Limit()
	if end > total {
		end = total
	}
	return out[offset:end], total, nil
}

func (f *fakeInvitationRepo) RemoveAllForEvent(ctx context.Context, eventID string) error {
	kept := f.invitations[:0]
	for _, inv := range f.invitations {
		if inv.EventID != eventID {
			kept = append(kept, inv)
		}
	}
	f.invitations = kept
	return nil
}

// fakeEmailService records sends; configurable per-method errors.
type fakeEmailService struct {
	welcomeErr      error
	invitationErr   error
	sentWelcome     []*domain.WelcomeMessageEmailData
	sentInvitations []*domain.EventInvitationEmailData
}

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	if f.welcomeErr != nil {
		return f.welcomeErr
	}
	f.sentWelcome = append(f.sentWelcome, data)
	return nil
}

func (f *fakeEmailService) SendEventInvitation(ctx context.Context, data *domain.EventInvitationEmailData) error {
	if f.invitationErr != nil {
		return f.invitationErr
	}
	f.sentInvitations = append(f.sentInvitations, data)
	return nil
}

// fakeHasher is a deterministic PasswordHasher for tests.
type fakeHasher struct {
	saltErr error
	hashErr error
}

func (f *fakeHasher) GenerateSalt() (string, error) {
	if f.saltErr != nil {
		return "", f.saltErr
	}
	return "salt", nil
}

func (f *fakeHasher) Hash(salt, password string) (string, error) {
	if f.hashErr != nil {
		return "", f.hashErr
	}
	return salt + ":" + password, nil
}

func (f *fakeHasher) Compare(hash, salt, password string) error {
	if hash != salt+":"+password {
		return fmt.Errorf("password mismatch")
	}
	return nil
}

// fakeTokenIssuer returns a predictable token for tests.
type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(userID, email string, roles []string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + userID, nil
}

// capturingHandler is a slog.Handler that records emitted records.
type capturingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *capturingHandler) Enabled(ctx context.Context, level slog.Level) bool { return true }

func (h *capturingHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *capturingHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *capturingHandler) WithGroup(name string) slog.Handler       { return h }

func (h *capturingHandler) messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.records))
	for _, r := range h.records {
		out = append(out, r.Message)
	}
	return out
}

func testLogger() (*slog.Logger, *capturingHandler) {
	h := &capturingHandler{}
	return slog.New(h), h
}
