package repository

import (
	"context"
	"time"

	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"github.com/google/uuid"
)

type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	GetByID(ctx context.Context, memberID string) (*domain.Member, error)
	GetByIdentifier(ctx context.Context, kind domain.IdentifierKind, value string) (*domain.Member, error)
	Update(ctx context.Context, member *domain.Member) error
	// UpsertMerge writes the member without null-overwriting columns that
	// already hold a value; verification timestamps keep the earliest stamp.
	UpsertMerge(ctx context.Context, member *domain.Member) error
	TouchLastSeen(ctx context.Context, memberID string) error
	MarkVerified(ctx context.Context, memberID string, kind domain.IdentifierKind, at time.Time) error
}

type QuickhitterRepository interface {
	GetByID(ctx context.Context, memberID string) (*domain.Quickhitter, error)
	GetByIdentifier(ctx context.Context, kind domain.IdentifierKind, value string) (*domain.Quickhitter, error)
	Upsert(ctx context.Context, qh *domain.Quickhitter) error
	SetQuickSnap(ctx context.Context, memberID, swid string) error
}

type IdentityCodeRepository interface {
	// Issue retires every active row for the code's (kind, value, channel)
	// tuple and inserts the fresh code in one transaction, so the new row is
	// the only live code even under concurrent issuance.
	Issue(ctx context.Context, code *domain.IdentityCode) error
	// FindNewestLive returns the newest active, unexpired, unconsumed row.
	// Phone values match on digits to tolerate formatting drift.
	FindNewestLive(ctx context.Context, kind domain.IdentifierKind, value string, now time.Time) (*domain.IdentityCode, error)
	// Consume marks the row consumed iff it is still live; reports whether
	// this caller won. Exactly one concurrent verify can succeed.
	Consume(ctx context.Context, id uint, now time.Time) (bool, error)
	IncrementAttempts(ctx context.Context, id uint, cap int) error
	LogAttempt(ctx context.Context, attempt *domain.IdentityAttempt) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByFingerprint(ctx context.Context, memberID, ipHash, userAgent string) (*domain.Session, error)
	GetPair(ctx context.Context, memberID string, sessionID uuid.UUID) (*domain.Session, error)
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
}

type CredentialRepository interface {
	// MembersForTeam resolves bound members for a fully specified
	// (season, league, team) context across the accepted platforms.
	MembersForTeam(ctx context.Context, platforms []string, season int, leagueID string, teamID int) ([]string, error)
	MembersForLeagueSeason(ctx context.Context, platforms []string, season int, leagueID string) ([]string, error)
	MembersForLeague(ctx context.Context, platforms []string, leagueID string) ([]string, error)
	// QuickSnapCreds joins quickhitter quick_snap tokens to credential rows,
	// case-insensitively with braces stripped, newest last_seen first.
	QuickSnapCreds(ctx context.Context, memberIDs []string) ([]*domain.ESPNCredential, error)
	// FreshestByMembers picks the newest credential row per member.
	FreshestByMembers(ctx context.Context, memberIDs []string) ([]*domain.ESPNCredential, error)
	UpsertCredential(ctx context.Context, cred *domain.ESPNCredential) error
	UpsertBinding(ctx context.Context, binding *domain.LeagueBinding) error
}

type RecoveryTokenRepository interface {
	GetByMemberID(ctx context.Context, memberID string) (*domain.RecoveryToken, error)
	// Create fails with a duplicate-key error when the unordered adjective
	// pair + noun is already taken.
	Create(ctx context.Context, token *domain.RecoveryToken) error
}

type RelationshipRepository interface {
	ActiveExists(ctx context.Context, a, b string) (bool, error)
}

type BlockRepository interface {
	ExistsBetween(ctx context.Context, a, b string) (bool, error)
	Create(ctx context.Context, block *domain.Block) error
}

type GuardianRepository interface {
	Get(ctx context.Context, memberID string) (*domain.GuardianControl, error)
	Upsert(ctx context.Context, gc *domain.GuardianControl) error
}

type ContactRequestRepository interface {
	Create(ctx context.Context, req *domain.ContactRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ContactRequest, error)
	// AcceptedRelationshipExists reports an accepted relationship-channel
	// request between the pair, in either direction.
	AcceptedRelationshipExists(ctx context.Context, a, b string) (bool, error)
	Update(ctx context.Context, req *domain.ContactRequest) error
	// AcceptRelationship applies the request flip and the relationship upsert
	// in one transaction; partial application is disallowed.
	AcceptRelationship(ctx context.Context, req *domain.ContactRequest, rel *domain.Relationship) error
}

type Repositories struct {
	Member       MemberRepository
	Quickhitter  QuickhitterRepository
	IdentityCode IdentityCodeRepository
	Session      SessionRepository
	Credential   CredentialRepository
	Recovery     RecoveryTokenRepository
	Relationship RelationshipRepository
	Block        BlockRepository
	Guardian     GuardianRepository
	Contact      ContactRequestRepository
}
