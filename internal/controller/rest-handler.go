package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wealthed/portal/internal/backend"
	"github.com/wealthed/portal/internal/service/rating"
	"github.com/wealthed/portal/internal/service/webinar"
	"github.com/wealthed/portal/pkg/rest"
)

type submitRatingRequest struct {
	Link        string `json:"link" validate:"required"`
	Comment     string `json:"comment" validate:"max=2000"`
	MemberCode  string `json:"member_code"`
	MemberEmail string `json:"member_email" validate:"omitempty,email"`
}

func (c *controller) submitRating(w http.ResponseWriter, r *http.Request) {
	var req submitRatingRequest

	if err := rest.ReadJSON(r, &req); err != nil {
		c.logger.DebugContext(r.Context(), "failed to read json", "error", err)
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		c.logger.DebugContext(r.Context(), "validation failed", "errors", validationErrors)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	payload, err := c.ratingService.Submit(r.Context(), &rating.SubmitParams{
		Link:        req.Link,
		Comment:     req.Comment,
		MemberCode:  req.MemberCode,
		MemberEmail: req.MemberEmail,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	if c.metrics != nil {
		c.metrics.IncRatingsSubmitted()
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": payload})
}

type webinarAccessRequest struct {
	Email       string `json:"email" validate:"omitempty,email"`
	MemberToken string `json:"member_token"`
}

func (c *controller) requestWebinarAccess(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.Atoi(chi.URLParam(r, "event-id"))
	if err != nil {
		c.logger.DebugContext(r.Context(), "invalid event id", "error", err)
		rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "event not found"})
		return
	}

	var req webinarAccessRequest

	if err := rest.ReadJSON(r, &req); err != nil {
		c.logger.DebugContext(r.Context(), "failed to read json", "error", err)
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		c.logger.DebugContext(r.Context(), "validation failed", "errors", validationErrors)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	if req.Email == "" && req.MemberToken == "" {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "email or member_token is required"})
		return
	}

	accessResponse, err := c.webinarService.RequestAccess(r.Context(), &webinar.RequestAccessParams{
		EventID:     eventID,
		Email:       req.Email,
		MemberToken: req.MemberToken,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": accessResponse})
}

func (c *controller) endWebinarSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session-id")
	if sessionID == "" {
		rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "session not found"})
		return
	}

	c.connRepo.RemoveBySessionID(sessionID)

	if err := c.webinarService.EndSession(r.Context(), sessionID); err != nil {
		c.logger.WarnContext(r.Context(), "failed to end session", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps a backend rejection to a 400 carrying the backend's
// own message so the member sees it verbatim; anything else is a 500.
func (c *controller) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var backendErr *backend.Error
	if errors.As(err, &backendErr) {
		c.logger.DebugContext(r.Context(), "backend rejected request", "error", backendErr)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{
			"error":      backendErr.Text,
			"alert_type": backendErr.AlertType,
		})
		return
	}

	c.logger.ErrorContext(r.Context(), "request failed", "error", err)
	rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal error"})
}
