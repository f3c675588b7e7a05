package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fortifiedfantasy/fein-server/internal/api/middleware"
	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"github.com/fortifiedfantasy/fein-server/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ContactHandler struct {
	contacts *service.ContactService
}

func NewContactHandler(contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

type contactRequestRequest struct {
	TargetID          string `json:"target_id"`
	ChannelType       string `json:"channel_type"`
	Note              string `json:"note"`
	RelationshipType  string `json:"relationship_type"`
	RelationshipLabel string `json:"relationship_label"`
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req contactRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}

	var viewerID *string
	if id, ok := middleware.GetMemberID(r.Context()); ok {
		viewerID = &id
	}

	created, decision, err := h.contacts.Create(r.Context(), viewerID, service.ContactInput{
		TargetID:          req.TargetID,
		Channel:           domain.ChannelType(req.ChannelType),
		Note:              req.Note,
		RelationshipType:  req.RelationshipType,
		RelationshipLabel: req.RelationshipLabel,
	})
	if err != nil {
		serverError(w, "ContactHandler.Create", err)
		return
	}
	if !decision.Allowed {
		code := "contact_not_allowed"
		if decision.Reason == domain.ReasonNotAuthenticated {
			code = "not_authenticated"
		}
		if decision.Reason == domain.ReasonInvalidChannelType {
			code = "invalid_channel_type"
		}
		extra := map[string]interface{}{"reason": decision.Reason}
		if decision.GuardianBlocked {
			extra["guardianBlocked"] = true
		}
		writeError(w, decision.HTTPStatus, code, extra)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":         true,
		"request_id": created.ID,
		"status":     created.Status,
		"created_at": created.CreatedAt,
	})
}

type contactDecisionRequest struct {
	Decision          string `json:"decision"`
	RelationshipType  string `json:"relationship_type"`
	RelationshipLabel string `json:"relationship_label"`
}

func (h *ContactHandler) Decide(w http.ResponseWriter, r *http.Request) {
	memberID, ok := middleware.GetMemberID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not_authenticated", nil)
		return
	}

	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_id", nil)
		return
	}

	var req contactDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}

	updated, err := h.contacts.Decide(r.Context(), requestID, memberID, service.DecideInput{
		Decision:          domain.ContactDecisionVerb(req.Decision),
		RelationshipType:  req.RelationshipType,
		RelationshipLabel: req.RelationshipLabel,
	})
	switch {
	case errors.Is(err, domain.ErrRequestNotFound):
		writeError(w, http.StatusNotFound, "request_not_found", nil)
		return
	case errors.Is(err, domain.ErrNotRequestTarget):
		writeError(w, http.StatusForbidden, "access_denied", nil)
		return
	case errors.Is(err, domain.ErrInvalidDecision):
		writeError(w, http.StatusBadRequest, "invalid_decision", nil)
		return
	case err != nil:
		serverError(w, "ContactHandler.Decide", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":         true,
		"request_id": updated.ID,
		"status":     updated.Status,
		"decided_at": updated.DecidedAt,
	})
}
