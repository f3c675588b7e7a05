package testutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemberBuilder creates test members with a builder pattern
type MemberBuilder struct {
	memberID   string
	username   *string
	email      *string
	phone      *string
	colorHex   string
	trustLevel domain.TrustLevel
	gender     *string
	dob        *time.Time
	isMinor    bool
}

// NewMemberBuilder creates a new MemberBuilder with default values
func NewMemberBuilder() *MemberBuilder {
	return &MemberBuilder{
		memberID:   randomMemberID(),
		colorHex:   "#1F6FEB",
		trustLevel: domain.TrustStandard,
	}
}

func (b *MemberBuilder) WithID(id string) *MemberBuilder {
	b.memberID = id
	return b
}

func (b *MemberBuilder) WithUsername(username string) *MemberBuilder {
	b.username = &username
	return b
}

func (b *MemberBuilder) WithEmail(email string) *MemberBuilder {
	b.email = &email
	return b
}

func (b *MemberBuilder) WithPhone(phone string) *MemberBuilder {
	b.phone = &phone
	return b
}

func (b *MemberBuilder) WithTrustLevel(level domain.TrustLevel) *MemberBuilder {
	b.trustLevel = level
	return b
}

func (b *MemberBuilder) WithGender(gender string) *MemberBuilder {
	b.gender = &gender
	return b
}

func (b *MemberBuilder) WithAge(years int) *MemberBuilder {
	dob := time.Now().AddDate(-years, 0, -1)
	b.dob = &dob
	return b
}

func (b *MemberBuilder) AsMinor() *MemberBuilder {
	b.isMinor = true
	return b
}

// Build creates the member in the database
func (b *MemberBuilder) Build(t *testing.T, db *gorm.DB) *domain.Member {
	t.Helper()

	now := time.Now()
	member := &domain.Member{
		MemberID:       b.memberID,
		Username:       b.username,
		ColorHex:       &b.colorHex,
		Email:          b.email,
		PhoneE164:      b.phone,
		InteractedCode: randomMemberID(),
		TrustLevel:     b.trustLevel,
		Gender:         b.gender,
		DateOfBirth:    b.dob,
		IsMinor:        b.isMinor,
		FirstSeenAt:    now,
		LastSeenAt:     now,
		UpdatedAt:      now,
	}

	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create member: %v", err)
	}

	return member
}

// QuickhitterBuilder creates provisional profiles
type QuickhitterBuilder struct {
	memberID      string
	handle        *string
	colorHex      *string
	email         *string
	phone         *string
	emailVerified bool
	phoneVerified bool
	quickSnap     *string
}

func NewQuickhitterBuilder(memberID string) *QuickhitterBuilder {
	return &QuickhitterBuilder{memberID: memberID}
}

func (b *QuickhitterBuilder) WithHandle(handle string) *QuickhitterBuilder {
	b.handle = &handle
	return b
}

func (b *QuickhitterBuilder) WithColor(hex string) *QuickhitterBuilder {
	b.colorHex = &hex
	return b
}

func (b *QuickhitterBuilder) WithEmail(email string, verified bool) *QuickhitterBuilder {
	b.email = &email
	b.emailVerified = verified
	return b
}

func (b *QuickhitterBuilder) WithPhone(phone string, verified bool) *QuickhitterBuilder {
	b.phone = &phone
	b.phoneVerified = verified
	return b
}

func (b *QuickhitterBuilder) WithQuickSnap(swid string) *QuickhitterBuilder {
	b.quickSnap = &swid
	return b
}

func (b *QuickhitterBuilder) Build(t *testing.T, db *gorm.DB) *domain.Quickhitter {
	t.Helper()

	now := time.Now()
	qh := &domain.Quickhitter{
		MemberID:        b.memberID,
		Handle:          b.handle,
		ColorHex:        b.colorHex,
		Email:           b.email,
		PhoneE164:       b.phone,
		EmailIsVerified: b.emailVerified,
		PhoneIsVerified: b.phoneVerified,
		QuickSnap:       b.quickSnap,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := db.Create(qh).Error; err != nil {
		t.Fatalf("failed to create quickhitter: %v", err)
	}

	return qh
}

// CredentialBuilder creates ESPN credential rows
type CredentialBuilder struct {
	swid     string
	s2       string
	memberID *string
	lastSeen time.Time
}

func NewCredentialBuilder(swid string) *CredentialBuilder {
	return &CredentialBuilder{
		swid:     swid,
		s2:       "s2-" + uuid.New().String(),
		lastSeen: time.Now(),
	}
}

func (b *CredentialBuilder) WithS2(s2 string) *CredentialBuilder {
	b.s2 = s2
	return b
}

func (b *CredentialBuilder) WithMember(memberID string) *CredentialBuilder {
	b.memberID = &memberID
	return b
}

func (b *CredentialBuilder) WithLastSeen(at time.Time) *CredentialBuilder {
	b.lastSeen = at
	return b
}

func (b *CredentialBuilder) Build(t *testing.T, db *gorm.DB) *domain.ESPNCredential {
	t.Helper()

	cred := &domain.ESPNCredential{
		SWID:      b.swid,
		EspnS2:    b.s2,
		SWIDHash:  hashString(b.swid),
		S2Hash:    hashString(b.s2),
		MemberID:  b.memberID,
		FirstSeen: b.lastSeen,
		LastSeen:  b.lastSeen,
		Ref:       "test",
	}

	if err := db.Create(cred).Error; err != nil {
		t.Fatalf("failed to create credential: %v", err)
	}

	return cred
}

// CreateBinding links a league/team context to a member
func CreateBinding(t *testing.T, db *gorm.DB, platform string, season int, leagueID string, teamID int, memberID string) *domain.LeagueBinding {
	t.Helper()

	binding := &domain.LeagueBinding{
		Platform:  platform,
		Season:    season,
		LeagueID:  leagueID,
		TeamID:    teamID,
		MemberID:  memberID,
		UpdatedAt: time.Now(),
	}
	if err := db.Create(binding).Error; err != nil {
		t.Fatalf("failed to create league binding: %v", err)
	}
	return binding
}

// CreateGuardianControl installs per-minor restrictions
func CreateGuardianControl(t *testing.T, db *gorm.DB, gc *domain.GuardianControl) {
	t.Helper()

	gc.UpdatedAt = time.Now()
	if err := db.Create(gc).Error; err != nil {
		t.Fatalf("failed to create guardian control: %v", err)
	}
}

// TestSWID builds a valid braced-uppercase GUID from a distinguishing byte
func TestSWID(fill string) string {
	c := strings.ToUpper(fill)
	if len(c) != 1 {
		c = "A"
	}
	block := strings.Repeat(c, 8)
	return fmt.Sprintf("{%s-%s-%s-%s-%s}", block, block[:4], block[:4], block[:4], strings.Repeat(c, 12))
}

func randomMemberID() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return id[:8]
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
