package http

import (
	"log/slog"
	"net/http"

	"eventconcierge/internal/delivery/http/controllers"
	"eventconcierge/internal/delivery/http/middleware"
	"eventconcierge/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers bundles the handler set the router wires up.
type Controllers struct {
	Auth          *controllers.AuthController
	User          *controllers.UserController
	Event         *controllers.EventController
	Participation *controllers.ParticipationController
	Concierge     *controllers.ConciergeController
	Attendee      *controllers.AttendeeController
}

// NewRouter initializes the HTTP router with all application routes.
// Every route except signup, login, and swagger requires a Bearer token;
// role-gated routes additionally require the named role.
func NewRouter(c Controllers, verifier domain.TokenVerifier, roleRepo domain.RoleRepository, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	authed := middleware.RequireAuth(verifier, logger)
	asMarketer := middleware.RequireRole(roleRepo, domain.RoleMarketer, logger)
	asConcierge := middleware.RequireRole(roleRepo, domain.RoleConcierge, logger)
	asAdmin := middleware.RequireRole(roleRepo, domain.RoleAdmin, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)

	// Users
	mux.HandleFunc("GET /users/me", authed(c.User.GetMe))
	mux.HandleFunc("PATCH /users/me", authed(c.User.UpdateMe))
	mux.HandleFunc("GET /users/me/events", authed(c.User.ListMyEvents))

	// Events
	mux.HandleFunc("POST /events", authed(c.Event.CreateEvent))
	mux.HandleFunc("GET /events", authed(c.Event.ListMyEvents))
	mux.HandleFunc("GET /events/{eventID}", authed(c.Event.GetEventByID))
	mux.HandleFunc("DELETE /events/{eventID}", authed(c.Event.DeleteEvent))

	// Marketer participation
	mux.HandleFunc("POST /events/{eventID}/marketers", authed(asMarketer(c.Participation.Join)))
	mux.HandleFunc("DELETE /events/{eventID}/marketers", authed(asMarketer(c.Participation.Leave)))
	mux.HandleFunc("GET /events/{eventID}/marketers", authed(c.Participation.ListMarketers))
	mux.HandleFunc("POST /admin/participation/reconcile", authed(asAdmin(c.Participation.Reconcile)))

	// Concierge assignment
	mux.HandleFunc("POST /events/{eventID}/concierge-requests", authed(asConcierge(c.Concierge.Request)))
	mux.HandleFunc("DELETE /events/{eventID}/concierge-requests", authed(asConcierge(c.Concierge.Cancel)))
	mux.HandleFunc("GET /events/{eventID}/concierge-requests/me", authed(asConcierge(c.Concierge.MyStatus)))
	mux.HandleFunc("POST /events/{eventID}/concierge-requests/{requestID}/review", authed(asAdmin(c.Concierge.Review)))
	mux.HandleFunc("GET /concierge-requests", authed(asAdmin(c.Concierge.ListByStatus)))

	// Attendees
	mux.HandleFunc("POST /events/{eventID}/attendees", authed(asMarketer(c.Attendee.Register)))
	mux.HandleFunc("GET /events/{eventID}/attendees", authed(c.Attendee.List))
	mux.HandleFunc("POST /events/{eventID}/check-ins", authed(asConcierge(c.Attendee.CheckIn)))

	// Invitations
	mux.HandleFunc("POST /events/{eventID}/invitations", authed(c.Event.SendInvitations))
	mux.HandleFunc("GET /events/{eventID}/invitations", authed(c.Event.ListInvitations))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
