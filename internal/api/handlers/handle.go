package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fortifiedfantasy/fein-server/internal/api/middleware"
	"github.com/fortifiedfantasy/fein-server/internal/config"
	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"github.com/fortifiedfantasy/fein-server/internal/service"
)

type HandleHandler struct {
	members  *service.MemberService
	login    *service.LoginService
	sessions *service.SessionService
	cfg      *config.Config
}

func NewHandleHandler(members *service.MemberService, login *service.LoginService, sessions *service.SessionService, cfg *config.Config) *HandleHandler {
	return &HandleHandler{members: members, login: login, sessions: sessions, cfg: cfg}
}

func (h *HandleHandler) Exists(w http.ResponseWriter, r *http.Request) {
	handle := r.URL.Query().Get("u")
	available, err := h.members.HandleAvailable(r.Context(), handle)
	if errors.Is(err, domain.ErrInvalidIdentifier) {
		writeError(w, http.StatusUnprocessableEntity, "invalid_identifier", nil)
		return
	}
	if err != nil {
		serverError(w, "HandleHandler.Exists", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":        true,
		"handle":    handle,
		"available": available,
		"taken":     !available,
	})
}

type handleLoginRequest struct {
	Handle string `json:"handle"`
}

func (h *HandleHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req handleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}

	var sessionMember *string
	if id, ok := middleware.GetMemberID(r.Context()); ok {
		sessionMember = &id
	}

	outcome, err := h.login.HandleLogin(r.Context(), req.Handle, sessionMember)
	if errors.Is(err, domain.ErrInvalidIdentifier) {
		writeError(w, http.StatusUnprocessableEntity, "invalid_identifier", nil)
		return
	}
	if err != nil {
		serverError(w, "HandleHandler.Login", err)
		return
	}

	if outcome.NeedVerification {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":               true,
			"needVerification": true,
			"methods":          outcome.Methods,
			"phrase":           map[string]interface{}{"options": outcome.PhraseOptions},
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"next": outcome.Next,
	})
}

type recoveryVerifyRequest struct {
	Handle string `json:"handle"`
	Choice string `json:"choice"`
}

func (h *HandleHandler) RecoveryVerify(w http.ResponseWriter, r *http.Request) {
	var req recoveryVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}

	member, err := h.login.RecoveryVerify(r.Context(), req.Handle, req.Choice)
	switch {
	case errors.Is(err, domain.ErrWrongChoice):
		writeError(w, http.StatusForbidden, "wrong_choice", nil)
		return
	case errors.Is(err, domain.ErrMemberNotFound), errors.Is(err, domain.ErrInvalidIdentifier):
		writeError(w, http.StatusNotFound, "member_not_found", nil)
		return
	case err != nil:
		serverError(w, "HandleHandler.RecoveryVerify", err)
		return
	}

	session, err := h.sessions.Ensure(r.Context(), member.MemberID,
		middleware.ClientIP(r, h.cfg.TrustProxy), r.UserAgent())
	if err != nil {
		serverError(w, "HandleHandler.RecoveryVerify", err)
		return
	}
	h.sessions.WriteCookies(w, member.MemberID, session.ID)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"next": service.LandingURL(),
	})
}
