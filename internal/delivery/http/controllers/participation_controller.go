package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventconcierge/internal/delivery/http/helpers"
	"eventconcierge/internal/delivery/http/middleware"
	"eventconcierge/internal/domain"
)

type ParticipationController struct {
	Logger     *slog.Logger
	Service    domain.ParticipationService
	Reconciler domain.ParticipationReconciler
}

func NewParticipationController(logger *slog.Logger, svc domain.ParticipationService, reconciler domain.ParticipationReconciler) *ParticipationController {
	return &ParticipationController{
		Logger:     logger,
		Service:    svc,
		Reconciler: reconciler,
	}
}

// Join godoc
// @Summary Join an event as marketer
// @Description Adds the authenticated marketer to the event's marketer set and records the membership on the user side. Re-joining is an idempotent success. Returns the refreshed event view.
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the event and its marketers"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not a marketer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error (includes partial write, repaired by reconciliation)"
// @Router /events/{eventID}/marketers [post]
func (c *ParticipationController) Join(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	view, err := c.Service.Join(r.Context(), eventID, userID)
	if err != nil {
		c.writeParticipationError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// Leave godoc
// @Summary Leave an event as marketer
// @Description Removes the authenticated user from the event's marketer set and the user-side membership. Leaving a non-member event is an idempotent success. Returns the refreshed event view.
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the event and its marketers"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error (includes partial write, repaired by reconciliation)"
// @Router /events/{eventID}/marketers [delete]
func (c *ParticipationController) Leave(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	view, err := c.Service.Leave(r.Context(), eventID, userID)
	if err != nil {
		c.writeParticipationError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// ListMarketers godoc
// @Summary List an event's marketers
// @Description Returns the event's current marketer set with user profile fields.
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the marketers"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/marketers [get]
func (c *ParticipationController) ListMarketers(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	marketers, err := c.Service.ListEventMarketers(r.Context(), eventID)
	if err != nil {
		c.writeParticipationError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, marketers)
}

// Reconcile godoc
// @Summary Run a participation reconciliation pass
// @Description Repairs divergence between the event-side marketer sets and the user-side back-references. The event side is authoritative. Admin only; the same pass also runs periodically in the background.
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the repair counts"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (admin role required)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/participation/reconcile [post]
func (c *ParticipationController) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := c.Reconciler.Reconcile(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "reconciliation failed", "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}

func (c *ParticipationController) writeParticipationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "marketer role required")
	case errors.Is(err, domain.ErrPartialFailure):
		// The event-side write landed; reconciliation converges the user side.
		c.Logger.ErrorContext(r.Context(), "participation dual write incomplete", "path", r.URL.Path, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "membership partially applied; it will be repaired automatically")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
