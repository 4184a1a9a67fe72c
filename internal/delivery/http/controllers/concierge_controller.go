package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventconcierge/internal/delivery/http/helpers"
	"eventconcierge/internal/delivery/http/middleware"
	"eventconcierge/internal/domain"
)

// ReviewRequest is the request body for POST /events/{eventID}/concierge-requests/{requestID}/review.
type ReviewRequest struct {
	Approve *bool `json:"approve"`
}

// Validate implements Validator.
func (rr ReviewRequest) Validate() []string {
	var errs []string
	if rr.Approve == nil {
		errs = append(errs, "approve is required")
	}
	return errs
}

// MyStatusResponse is the data payload for GET /events/{eventID}/concierge-requests/me.
type MyStatusResponse struct {
	Status domain.ConciergeRequestStatus `json:"status"`
}

type ConciergeController struct {
	Logger  *slog.Logger
	Service domain.ConciergeService
}

func NewConciergeController(logger *slog.Logger, svc domain.ConciergeService) *ConciergeController {
	return &ConciergeController{
		Logger:  logger,
		Service: svc,
	}
}

// Request godoc
// @Summary Request a concierge assignment
// @Description Creates a pending concierge request from the authenticated concierge for the event. At most one pending request may exist per (event, user); a prior approved or rejected request does not block a new one.
// @Tags concierge
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} helpers.APIResponse "data contains the pending request"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (pending request already exists)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/concierge-requests [post]
func (c *ConciergeController) Request(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	req, err := c.Service.Request(r.Context(), eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrConflict) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "a pending request already exists for this event")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, req)
}

// Cancel godoc
// @Summary Cancel my pending concierge request
// @Description Removes the authenticated concierge's own pending request for the event. Approved and rejected requests cannot be cancelled.
// @Tags concierge
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains status cancelled"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no pending request)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/concierge-requests [delete]
func (c *ConciergeController) Cancel(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Cancel(r.Context(), eventID, userID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "no pending request for this event")
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
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// MyStatus godoc
// @Summary Get my concierge request status for an event
// @Description Returns the status of the authenticated concierge's most recent request for the event: pending, approved, rejected, or none.
// @Tags concierge
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/concierge-requests/me [get]
func (c *ConciergeController) MyStatus(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	status, err := c.Service.MyStatus(r.Context(), eventID, userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, MyStatusResponse{Status: status})
}

// Review godoc
// @Summary Review a concierge request
// @Description Approves or rejects a pending concierge request. The decision is final: reviewing an already-reviewed request fails with a conflict.
// @Tags concierge
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param requestID path string true "Request ID (UUID)"
// @Param body body ReviewRequest true "Decision"
// @Success 200 {object} helpers.APIResponse "data contains the reviewed request"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (admin role required)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already reviewed)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/concierge-requests/{requestID}/review [post]
func (c *ConciergeController) Review(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	requestID := r.PathValue("requestID")
	if requestID == "" || !uuidRegex.MatchString(requestID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid requestID")
		return
	}
	var req ReviewRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reviewerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reviewed, err := c.Service.Review(r.Context(), eventID, requestID, *req.Approve, reviewerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "request not found")
			return
		}
		if errors.Is(err, domain.ErrConflict) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "request already reviewed")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reviewed)
}

// ListByStatus godoc
// @Summary List concierge requests by status
// @Description Returns all pending or approved concierge requests across events, joined with event and user details. Admin only.
// @Tags concierge
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending (default) or approved"
// @Success 200 {object} helpers.APIResponse "data contains the assignments"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (admin role required)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /concierge-requests [get]
func (c *ConciergeController) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	var (
		assignments []*domain.ConciergeAssignment
		err         error
	)
	switch status {
	case "", string(domain.ConciergeStatusPending):
		assignments, err = c.Service.ListPending(r.Context())
	case string(domain.ConciergeStatusApproved):
		assignments, err = c.Service.ListApproved(r.Context())
	default:
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "status must be pending or approved")
		return
	}
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, assignments)
}
