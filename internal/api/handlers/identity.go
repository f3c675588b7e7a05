package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fortifiedfantasy/fein-server/internal/api/middleware"
	"github.com/fortifiedfantasy/fein-server/internal/config"
	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"github.com/fortifiedfantasy/fein-server/internal/service"
)

type IdentityHandler struct {
	identity *service.IdentityService
	sessions *service.SessionService
	cfg      *config.Config
}

func NewIdentityHandler(identity *service.IdentityService, sessions *service.SessionService, cfg *config.Config) *IdentityHandler {
	return &IdentityHandler{identity: identity, sessions: sessions, cfg: cfg}
}

type requestCodeRequest struct {
	Identifier string `json:"identifier"`
}

func (h *IdentityHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req requestCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}

	ip := middleware.ClientIP(r, h.cfg.TrustProxy)
	issued, err := h.identity.RequestCode(r.Context(), req.Identifier, ip)
	switch {
	case errors.Is(err, domain.ErrInvalidIdentifier):
		writeError(w, http.StatusUnprocessableEntity, "invalid_identifier", nil)
		return
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate_limited", nil)
		return
	case err != nil:
		serverError(w, "IdentityHandler.RequestCode", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":           true,
		"sent":         issued.Sent,
		"member_id":    issued.MemberID,
		"signup_url":   issued.SignupURL,
		"challenge_id": issued.ChallengeID,
		"ms":           time.Since(started).Milliseconds(),
	})
}

type verifyCodeRequest struct {
	Identifier  string `json:"identifier"`
	ChallengeID string `json:"challenge_id"`
	Code        string `json:"code"`
}

func (h *IdentityHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}

	var challenge service.Challenge
	switch {
	case req.ChallengeID != "":
		challenge = service.ByToken{Token: req.ChallengeID}
	case req.Identifier != "":
		challenge = service.ByIdentifier{Raw: req.Identifier}
	default:
		writeError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}

	result, err := h.identity.VerifyCode(r.Context(), challenge, req.Code)
	switch {
	case errors.Is(err, domain.ErrInvalidIdentifier):
		writeError(w, http.StatusUnprocessableEntity, "invalid_identifier", nil)
		return
	case errors.Is(err, domain.ErrInvalidOrExpired):
		writeError(w, http.StatusBadRequest, "invalid_or_expired", nil)
		return
	case err != nil:
		serverError(w, "IdentityHandler.VerifyCode", err)
		return
	}

	session, err := h.sessions.Ensure(r.Context(), result.MemberID,
		middleware.ClientIP(r, h.cfg.TrustProxy), r.UserAgent())
	if err != nil {
		serverError(w, "IdentityHandler.VerifyCode", err)
		return
	}
	h.sessions.WriteCookies(w, result.MemberID, session.ID)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":        true,
		"member_id": result.MemberID,
		"kind":      result.Kind,
		"value":     result.Value,
	})
}
