package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	mrand "math/rand"
	"strings"
	"time"

	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"github.com/fortifiedfantasy/fein-server/internal/repository"
	"gorm.io/gorm"
)

const (
	memberIDAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	memberIDLength    = 8
	memberIDRetries   = 5
	recoveryRetries   = 25
	recoveryOptionLen = 8
)

// MemberService is the registry for canonical members and their provisional
// quickhitter rows.
type MemberService struct {
	members  repository.MemberRepository
	quick    repository.QuickhitterRepository
	recovery repository.RecoveryTokenRepository
	banks    domain.WordBanks
}

func NewMemberService(members repository.MemberRepository, quick repository.QuickhitterRepository, recovery repository.RecoveryTokenRepository, banks domain.WordBanks) *MemberService {
	return &MemberService{members: members, quick: quick, recovery: recovery, banks: banks}
}

func (s *MemberService) GetByID(ctx context.Context, memberID string) (*domain.Member, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMemberNotFound
	}
	return member, err
}

func (s *MemberService) FindByIdentifier(ctx context.Context, kind domain.IdentifierKind, value string) (*domain.Member, error) {
	member, err := s.members.GetByIdentifier(ctx, kind, value)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMemberNotFound
	}
	return member, err
}

// FindOrCreate resolves an identifier to a member: direct hit, quickhitter
// promotion, or a fresh skeleton, in that order. Idempotent on member_id for
// a given identifier.
func (s *MemberService) FindOrCreate(ctx context.Context, ident domain.Identifier) (*domain.Member, error) {
	member, err := s.members.GetByIdentifier(ctx, ident.Kind, ident.Value)
	if err == nil {
		return s.backfill(ctx, member)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	qh, err := s.quick.GetByIdentifier(ctx, ident.Kind, ident.Value)
	if err == nil && promotable(qh) {
		return s.Promote(ctx, qh)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return s.createSkeleton(ctx, ident)
}

// backfill repairs legacy rows missing an interacted code or color, then
// touches last_seen.
func (s *MemberService) backfill(ctx context.Context, member *domain.Member) (*domain.Member, error) {
	dirty := false
	if member.InteractedCode == "" {
		code, err := randomID(memberIDLength)
		if err != nil {
			return nil, err
		}
		member.InteractedCode = code
		dirty = true
	}
	if member.ColorHex == nil {
		color := s.pickColor()
		member.ColorHex = &color
		dirty = true
	}
	if dirty {
		if err := s.members.Update(ctx, member); err != nil {
			return nil, err
		}
	}
	if err := s.members.TouchLastSeen(ctx, member.MemberID); err != nil {
		return nil, err
	}
	return member, nil
}

// promotable requires a valid handle, a valid color, and at least one
// verified contact channel.
func promotable(qh *domain.Quickhitter) bool {
	if qh.Handle == nil || qh.ColorHex == nil {
		return false
	}
	if _, ok := domain.NormalizeHandle(*qh.Handle); !ok {
		return false
	}
	if !domain.ValidColorHex(strings.ToUpper(*qh.ColorHex)) {
		return false
	}
	return qh.Verified()
}

// Promote copies a quickhitter into the member table. Existing member values
// are never null-overwritten; verification flags OR-merge. Applying it twice
// yields the same row.
func (s *MemberService) Promote(ctx context.Context, qh *domain.Quickhitter) (*domain.Member, error) {
	now := time.Now()
	member := &domain.Member{
		MemberID:    qh.MemberID,
		Username:    qh.Handle,
		Email:       qh.Email,
		PhoneE164:   qh.PhoneE164,
		FirstSeenAt: now,
		LastSeenAt:  now,
		UpdatedAt:   now,
	}
	if qh.ColorHex != nil {
		hex := strings.ToUpper(*qh.ColorHex)
		member.ColorHex = &hex
	}
	if qh.EmailIsVerified {
		member.EmailVerifiedAt = &now
	}
	if qh.PhoneIsVerified {
		member.PhoneVerifiedAt = &now
	}

	code, err := randomID(memberIDLength)
	if err != nil {
		return nil, err
	}
	member.InteractedCode = code

	if err := s.members.UpsertMerge(ctx, member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrHandleTaken
		}
		return nil, err
	}
	return s.members.GetByID(ctx, qh.MemberID)
}

func (s *MemberService) createSkeleton(ctx context.Context, ident domain.Identifier) (*domain.Member, error) {
	now := time.Now()
	color := s.pickColor()
	interacted, err := randomID(memberIDLength)
	if err != nil {
		return nil, err
	}

	member := &domain.Member{
		ColorHex:       &color,
		InteractedCode: interacted,
		TrustLevel:     domain.TrustStandard,
		FirstSeenAt:    now,
		LastSeenAt:     now,
		UpdatedAt:      now,
	}
	switch ident.Kind {
	case domain.KindEmail:
		v := ident.Value
		member.Email = &v
	case domain.KindPhone:
		v := ident.Value
		member.PhoneE164 = &v
	}

	for i := 0; i < memberIDRetries; i++ {
		id, err := randomID(memberIDLength)
		if err != nil {
			return nil, err
		}
		member.MemberID = id
		err = s.members.Create(ctx, member)
		if err == nil {
			return member, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// An identifier collision means someone else just created this
		// member; hand their row back.
		if existing, lookupErr := s.members.GetByIdentifier(ctx, ident.Kind, ident.Value); lookupErr == nil {
			return existing, nil
		}
	}
	return nil, domain.ErrIDExhausted
}

// HandleAvailable reports case-insensitive availability across members.
func (s *MemberService) HandleAvailable(ctx context.Context, handle string) (bool, error) {
	normalized, ok := domain.NormalizeHandle(handle)
	if !ok {
		return false, domain.ErrInvalidIdentifier
	}
	_, err := s.members.GetByIdentifier(ctx, domain.KindHandle, normalized)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// AssignColor picks a palette color for members that have none.
func (s *MemberService) AssignColor(ctx context.Context, memberID string) error {
	member, err := s.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if member.ColorHex != nil {
		return nil
	}
	color := s.pickColor()
	member.ColorHex = &color
	return s.members.Update(ctx, member)
}

func (s *MemberService) pickColor() string {
	return domain.MemberPalette[mrand.Intn(len(domain.MemberPalette))]
}

// EnsureRecoveryToken returns the member's phrase triple, sampling a fresh
// one when none exists. The unordered adjective pair + noun uniqueness index
// arbitrates collisions.
func (s *MemberService) EnsureRecoveryToken(ctx context.Context, memberID string) (*domain.RecoveryToken, error) {
	token, err := s.recovery.GetByMemberID(ctx, memberID)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	for i := 0; i < recoveryRetries; i++ {
		adj1 := s.banks.PositiveAdjectives[mrand.Intn(len(s.banks.PositiveAdjectives))]
		adj2 := s.banks.FootballAdjectives[mrand.Intn(len(s.banks.FootballAdjectives))]
		noun := s.banks.FootballNouns[mrand.Intn(len(s.banks.FootballNouns))]

		token = &domain.RecoveryToken{
			MemberID:  memberID,
			Adj1:      adj1,
			Adj2:      adj2,
			Noun:      noun,
			PairKey:   domain.RecoveryPairKey(adj1, adj2, noun),
			CreatedAt: time.Now(),
		}
		err = s.recovery.Create(ctx, token)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// Another member may have raced us onto the same member_id row.
		if existing, getErr := s.recovery.GetByMemberID(ctx, memberID); getErr == nil {
			return existing, nil
		}
	}
	return nil, fmt.Errorf("recovery token sampling exhausted after %d tries", recoveryRetries)
}

// RecoveryOptions builds the passphrase multiple-choice set: the real phrase
// plus decoys shuffled together, assembled from the same word banks.
func (s *MemberService) RecoveryOptions(token *domain.RecoveryToken) []string {
	seen := map[string]struct{}{token.Phrase(): {}}
	options := []string{token.Phrase()}

	for len(options) < recoveryOptionLen {
		adj1 := s.banks.PositiveAdjectives[mrand.Intn(len(s.banks.PositiveAdjectives))]
		adj2 := s.banks.FootballAdjectives[mrand.Intn(len(s.banks.FootballAdjectives))]
		noun := s.banks.FootballNouns[mrand.Intn(len(s.banks.FootballNouns))]
		phrase := fmt.Sprintf("%s-%s-%s", adj1, adj2, noun)
		if _, dup := seen[phrase]; dup {
			continue
		}
		seen[phrase] = struct{}{}
		options = append(options, phrase)
	}

	mrand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}

// randomID samples length chars from [A-Z0-9] with crypto randomness.
func randomID(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	max := big.NewInt(int64(len(memberIDAlphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(memberIDAlphabet[n.Int64()])
	}
	return b.String(), nil
}
