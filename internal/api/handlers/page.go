package handlers

import (
	"net/http"

	"github.com/fortifiedfantasy/fein-server/internal/api/middleware"
	"github.com/fortifiedfantasy/fein-server/internal/service"
	"github.com/go-chi/chi/v5"
)

type PageHandler struct {
	bouncer *service.BouncerService
}

func NewPageHandler(bouncer *service.BouncerService) *PageHandler {
	return &PageHandler{bouncer: bouncer}
}

// Access answers the page-access question for /u/{memberID}.
func (h *PageHandler) Access(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "memberID")

	var viewerID *string
	if id, ok := middleware.GetMemberID(r.Context()); ok {
		viewerID = &id
	}

	decision, err := h.bouncer.PageAccess(r.Context(), viewerID, targetID)
	if err != nil {
		serverError(w, "PageHandler.Access", err)
		return
	}

	if !decision.Allowed {
		writeError(w, decision.HTTPStatus, "access_denied", map[string]interface{}{
			"reason": decision.Reason,
		})
		return
	}

	payload := map[string]interface{}{
		"ok":                decision.Allowed,
		"allowed":           decision.Allowed,
		"accessLevel":       decision.AccessLevel,
		"isOwner":           decision.IsOwner,
		"isStranger":        decision.IsStranger,
		"canRequestContact": decision.CanRequestContact,
	}
	if decision.Reason != "" {
		payload["reason"] = decision.Reason
	}
	if decision.GuardianBlockReason != "" {
		payload["guardianBlockReason"] = decision.GuardianBlockReason
	}
	writeJSON(w, decision.HTTPStatus, payload)
}
