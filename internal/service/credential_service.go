package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"github.com/fortifiedfantasy/fein-server/internal/repository"
	"gorm.io/gorm"
)

// espnPlatforms are the binding-table platform tags that count as ESPN.
var espnPlatforms = []string{"018", "espn"}

// ResolveContext is the request context credentials are resolved for.
// MemberID must only be set from an authenticated session, never from
// client-supplied fields.
type ResolveContext struct {
	LeagueID string
	TeamID   *int
	Season   *int
	MemberID *string
}

// CredentialService stores linked (SWID, espn_s2) pairs and produces the
// ordered candidate list the proxy tries.
type CredentialService struct {
	creds repository.CredentialRepository
	quick repository.QuickhitterRepository
}

func NewCredentialService(creds repository.CredentialRepository, quick repository.QuickhitterRepository) *CredentialService {
	return &CredentialService{creds: creds, quick: quick}
}

// LinkInput carries an authenticated member's ESPN cookie pair plus an
// optional league context to bind. MemberID comes from the session, never
// from the request body.
type LinkInput struct {
	MemberID string
	SWID     string
	S2       string
	LeagueID string
	TeamID   *int
	Season   *int
}

// Link upserts the credential pair under the member, points the member's
// quick snap at it, and binds the league context when one is given.
func (s *CredentialService) Link(ctx context.Context, in LinkInput) error {
	swid, ok := domain.NormalizeSWID(in.SWID)
	if !ok {
		return domain.ErrInvalidCredential
	}
	s2 := strings.TrimSpace(in.S2)
	if s2 == "" {
		return domain.ErrInvalidCredential
	}

	now := time.Now()
	memberID := in.MemberID
	cred := &domain.ESPNCredential{
		SWID:      swid,
		EspnS2:    s2,
		SWIDHash:  fingerprint(swid),
		S2Hash:    fingerprint(s2),
		MemberID:  &memberID,
		FirstSeen: now,
		LastSeen:  now,
		Ref:       "link",
	}
	if err := s.creds.UpsertCredential(ctx, cred); err != nil {
		return err
	}

	snap := strings.ToLower(strings.Trim(swid, "{}"))
	if _, err := s.quick.GetByID(ctx, memberID); errors.Is(err, gorm.ErrRecordNotFound) {
		qh := &domain.Quickhitter{MemberID: memberID, QuickSnap: &snap, CreatedAt: now, UpdatedAt: now}
		if err := s.quick.Upsert(ctx, qh); err != nil {
			return err
		}
	} else if err != nil {
		return err
	} else if err := s.quick.SetQuickSnap(ctx, memberID, snap); err != nil {
		return err
	}

	if in.LeagueID == "" {
		return nil
	}
	season := now.Year()
	if in.Season != nil {
		season = *in.Season
	}
	teamID := 0
	if in.TeamID != nil {
		teamID = *in.TeamID
	}
	return s.creds.UpsertBinding(ctx, &domain.LeagueBinding{
		Platform:  "espn",
		Season:    season,
		LeagueID:  in.LeagueID,
		TeamID:    teamID,
		MemberID:  memberID,
		UpdatedAt: now,
	})
}

// fingerprint is a non-reversible index key for a credential secret.
func fingerprint(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Resolve collects the member set for the context, then builds candidates
// from quick-snap joins first and per-member freshest rows as fallback.
// Every returned candidate has a strictly GUID-shaped braced-uppercase SWID
// and a non-empty s2.
func (s *CredentialService) Resolve(ctx context.Context, rc ResolveContext) ([]domain.Candidate, error) {
	memberIDs, err := s.memberSet(ctx, rc)
	if err != nil {
		return nil, err
	}
	if len(memberIDs) == 0 {
		return nil, domain.ErrNoCandidates
	}

	rows, err := s.creds.QuickSnapCreds(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	source := domain.SourceQuickSnap

	if len(rows) == 0 {
		rows, err = s.creds.FreshestByMembers(ctx, memberIDs)
		if err != nil {
			return nil, err
		}
		source = domain.SourceMemberLink
	}

	now := time.Now()
	candidates := make([]domain.Candidate, 0, len(rows))
	for _, row := range rows {
		c, ok := emitCandidate(row, source, now)
		if !ok {
			continue
		}
		candidates = append(candidates, c)
	}
	if len(candidates) == 0 {
		return nil, domain.ErrNoCandidates
	}
	return candidates, nil
}

func (s *CredentialService) memberSet(ctx context.Context, rc ResolveContext) ([]string, error) {
	var (
		ids []string
		err error
	)
	switch {
	case rc.Season != nil && rc.TeamID != nil:
		ids, err = s.creds.MembersForTeam(ctx, espnPlatforms, *rc.Season, rc.LeagueID, *rc.TeamID)
	case rc.Season != nil:
		ids, err = s.creds.MembersForLeagueSeason(ctx, espnPlatforms, *rc.Season, rc.LeagueID)
	default:
		ids, err = s.creds.MembersForLeague(ctx, espnPlatforms, rc.LeagueID)
	}
	if err != nil {
		return nil, err
	}

	if rc.MemberID != nil && *rc.MemberID != "" {
		found := false
		for _, id := range ids {
			if id == *rc.MemberID {
				found = true
				break
			}
		}
		if !found {
			ids = append(ids, *rc.MemberID)
		}
	}
	return ids, nil
}

// emitCandidate normalizes and staleness-annotates one credential row.
// Rows failing the strict SWID shape or carrying an empty s2 are dropped.
func emitCandidate(row *domain.ESPNCredential, source domain.CredentialSource, now time.Time) (domain.Candidate, bool) {
	swid, ok := domain.NormalizeSWID(row.SWID)
	if !ok {
		return domain.Candidate{}, false
	}
	s2 := strings.TrimSpace(row.EspnS2)
	if s2 == "" {
		return domain.Candidate{}, false
	}

	c := domain.Candidate{
		SWID:   swid,
		S2:     s2,
		Source: source,
		Stale:  true,
	}
	if row.MemberID != nil {
		c.MemberID = *row.MemberID
	}
	if !row.LastSeen.IsZero() {
		seen := row.LastSeen
		c.LastSeen = &seen
		c.Stale = now.Sub(seen) > domain.StaleAfter
	}
	return c, true
}
