package domain

import (
	"regexp"
	"strings"
	"time"
)

var swidPattern = regexp.MustCompile(`^[0-9A-F]{8}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{12}$`)

// NormalizeSWID canonicalizes an ESPN SWID to the braced uppercase GUID form
// "{XXXXXXXX-XXXX-XXXX-XXXX-XXXXXXXXXXXX}". Braces and case variants are
// tolerated on input.
func NormalizeSWID(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "{}")
	s = strings.ToUpper(s)
	if !swidPattern.MatchString(s) {
		return "", false
	}
	return "{" + s + "}", true
}

// ESPNCredential is one (SWID, espn_s2) pair known to the system. SWID is
// the canonical key; last_seen only moves forward.
type ESPNCredential struct {
	SWID      string    `json:"swid" gorm:"primaryKey;size:64"`
	EspnS2    string    `json:"-" gorm:"not null"`
	SWIDHash  string    `json:"swid_hash" gorm:"size:64"`
	S2Hash    string    `json:"s2_hash" gorm:"size:64"`
	MemberID  *string   `json:"member_id" gorm:"size:8;index"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen" gorm:"index"`
	Ref       string    `json:"ref" gorm:"size:64"`
}

// LeagueBinding links a platform league/team context to a member. A team
// maps to at most one member per season.
type LeagueBinding struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Platform  string    `json:"platform" gorm:"size:8;not null;uniqueIndex:idx_binding_team"`
	Season    int       `json:"season" gorm:"not null;uniqueIndex:idx_binding_team"`
	LeagueID  string    `json:"league_id" gorm:"size:32;not null;uniqueIndex:idx_binding_team;index:idx_binding_league"`
	TeamID    int       `json:"team_id" gorm:"uniqueIndex:idx_binding_team"`
	MemberID  string    `json:"member_id" gorm:"size:8;not null;index"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CredentialSource string

const (
	SourceQuickSnap  CredentialSource = "quick_snap"
	SourceMemberLink CredentialSource = "member_link"
)

// StaleAfter is how long a credential may go unseen before candidates built
// from it are flagged stale.
const StaleAfter = 72 * time.Hour

// Candidate is one credential pair for the proxy to try, in order.
type Candidate struct {
	SWID     string           `json:"swid"`
	S2       string           `json:"-"`
	Source   CredentialSource `json:"source"`
	Stale    bool             `json:"stale"`
	MemberID string           `json:"member_id,omitempty"`
	LastSeen *time.Time       `json:"last_seen,omitempty"`
}
