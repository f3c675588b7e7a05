package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fortifiedfantasy/fein-server/internal/api/middleware"
	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"github.com/fortifiedfantasy/fein-server/internal/espn"
	"github.com/fortifiedfantasy/fein-server/internal/service"
)

type ESPNHandler struct {
	resolver *service.CredentialService
	client   *espn.Client
}

func NewESPNHandler(resolver *service.CredentialService, client *espn.Client) *ESPNHandler {
	return &ESPNHandler{resolver: resolver, client: client}
}

type linkRequest struct {
	SWID     string `json:"swid"`
	S2       string `json:"espn_s2"`
	LeagueID string `json:"league_id"`
	TeamID   *int   `json:"team_id"`
	Season   *int   `json:"season"`
}

// Link stores the caller's ESPN cookie pair under their member row so the
// resolver can serve it back for league reads.
func (h *ESPNHandler) Link(w http.ResponseWriter, r *http.Request) {
	memberID, ok := middleware.GetMemberID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not_authenticated", nil)
		return
	}

	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	err := h.resolver.Link(r.Context(), service.LinkInput{
		MemberID: memberID,
		SWID:     req.SWID,
		S2:       req.S2,
		LeagueID: req.LeagueID,
		TeamID:   req.TeamID,
		Season:   req.Season,
	})
	if errors.Is(err, domain.ErrInvalidCredential) {
		writeError(w, http.StatusBadRequest, "invalid_credential", nil)
		return
	}
	if err != nil {
		serverError(w, "ESPNHandler.Link", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "linked": true})
}

// League proxies an authenticated league read, trying resolver candidates in
// order. The winning candidate's source and staleness are surfaced as
// response headers so the UI can hint a re-link when only stale creds work.
func (h *ESPNHandler) League(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	leagueID := q.Get("league_id")
	if leagueID == "" {
		writeError(w, http.StatusBadRequest, "missing_league_id", nil)
		return
	}

	rc := service.ResolveContext{LeagueID: leagueID}
	if s := q.Get("season"); s != "" {
		if season, err := strconv.Atoi(s); err == nil {
			rc.Season = &season
		}
	}
	if t := q.Get("team_id"); t != "" {
		if teamID, err := strconv.Atoi(t); err == nil {
			rc.TeamID = &teamID
		}
	}
	// The claimed member is honored only when the session middleware has
	// already authenticated it. Never from query or body.
	if id, ok := middleware.GetMemberID(r.Context()); ok {
		rc.MemberID = &id
	}

	candidates, err := h.resolver.Resolve(r.Context(), rc)
	if errors.Is(err, domain.ErrNoCandidates) {
		writeError(w, http.StatusUnauthorized, "unauthorized", map[string]interface{}{
			"message": "no linked ESPN credentials for this league",
		})
		return
	}
	if err != nil {
		serverError(w, "ESPNHandler.League", err)
		return
	}

	season := time.Now().Year()
	if rc.Season != nil {
		season = *rc.Season
	}
	path := fmt.Sprintf("/apis/v3/games/ffl/seasons/%d/segments/0/leagues/%s", season, url.PathEscape(leagueID))
	if view := q.Get("view"); view != "" {
		path += "?view=" + url.QueryEscape(view)
	}

	result, err := h.client.FetchWithCandidates(r.Context(), path, candidates)
	switch {
	case errors.Is(err, espn.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", map[string]interface{}{
			"message": "ESPN rejected every linked credential; please re-link",
		})
		return
	case errors.Is(err, espn.ErrUpstream):
		writeError(w, http.StatusBadGateway, "upstream_5xx", nil)
		return
	case err != nil:
		writeError(w, http.StatusBadGateway, "upstream_error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-FF-Cred-Source", string(result.Candidate.Source))
	w.Header().Set("X-FF-Cred-Stale", strconv.FormatBool(result.Candidate.Stale))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Body)
}
