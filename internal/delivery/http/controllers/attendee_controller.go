package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"eventconcierge/internal/delivery/http/helpers"
	"eventconcierge/internal/delivery/http/middleware"
	"eventconcierge/internal/domain"
)

// phoneRegexp matches an E.164-style phone number: optional +, 7 to 15 digits.
var phoneRegexp = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// RegisterAttendeeRequest is the request body for POST /events/{eventID}/attendees.
type RegisterAttendeeRequest struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

// Validate implements Validator.
func (ra RegisterAttendeeRequest) Validate() []string {
	var errs []string
	phone := strings.TrimSpace(ra.Phone)
	if phone == "" {
		errs = append(errs, "phone is required")
	} else if !phoneRegexp.MatchString(phone) {
		errs = append(errs, "invalid phone format")
	}
	if strings.TrimSpace(ra.Name) == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

// CheckInRequest is the request body for POST /events/{eventID}/check-ins.
type CheckInRequest struct {
	Phone string `json:"phone"`
}

// Validate implements Validator.
func (ci CheckInRequest) Validate() []string {
	var errs []string
	phone := strings.TrimSpace(ci.Phone)
	if phone == "" {
		errs = append(errs, "phone is required")
	} else if !phoneRegexp.MatchString(phone) {
		errs = append(errs, "invalid phone format")
	}
	return errs
}

type AttendeeController struct {
	Logger  *slog.Logger
	Service domain.AttendeeService
}

func NewAttendeeController(logger *slog.Logger, svc domain.AttendeeService) *AttendeeController {
	return &AttendeeController{
		Logger:  logger,
		Service: svc,
	}
}

// Register godoc
// @Summary Register an attendee
// @Description Registers an attendee for the event, keyed by phone number. A phone can register only once per event.
// @Tags attendees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body RegisterAttendeeRequest true "Attendee data"
// @Success 201 {object} helpers.APIResponse "data contains the attendee"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (phone already registered)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendees [post]
func (c *AttendeeController) Register(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	var req RegisterAttendeeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	attendee, err := c.Service.RegisterAttendee(r.Context(), eventID, strings.TrimSpace(req.Phone), strings.TrimSpace(req.Name))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrConflict) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "phone already registered for this event")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, attendee)
}

// CheckIn godoc
// @Summary Check in an attendee
// @Description Marks the attendee checked in, recording the acting concierge and the time. Only a concierge with an approved assignment for the event may check in. A second check-in for the same attendee fails with a conflict and leaves the first record untouched.
// @Tags attendees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body CheckInRequest true "Attendee phone"
// @Success 200 {object} helpers.APIResponse "data contains the checked-in attendee"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (no approved assignment)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (attendee not registered)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already checked in)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/check-ins [post]
func (c *AttendeeController) CheckIn(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	var req CheckInRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	conciergeID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	attendee, err := c.Service.CheckIn(r.Context(), eventID, strings.TrimSpace(req.Phone), conciergeID)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "approved concierge assignment required")
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "attendee not registered for this event")
			return
		}
		if errors.Is(err, domain.ErrConflict) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "attendee already checked in")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, attendee)
}

// List godoc
// @Summary List an event's attendees
// @Description Returns the event's attendees with check-in state. Only the event owner or a concierge with an approved assignment may list.
// @Tags attendees
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the attendees"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendees [get]
func (c *AttendeeController) List(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	callerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	attendees, err := c.Service.ListEventAttendees(r.Context(), eventID, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, attendees)
}
