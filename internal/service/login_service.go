package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fortifiedfantasy/fein-server/internal/domain"
)

// LoginOutcome is the handle-login envelope: either a next URL (signup
// redirect or already-authenticated landing) or a verification challenge.
type LoginOutcome struct {
	Next             string
	NeedVerification bool
	Methods          []string
	PhraseOptions    []string
	MemberID         string
}

// LoginService drives handle-based login and recovery-phrase verification.
type LoginService struct {
	registry *MemberService
}

func NewLoginService(registry *MemberService) *LoginService {
	return &LoginService{registry: registry}
}

// LandingURL is where a logged-in member goes.
func LandingURL() string {
	return fmt.Sprintf("/fein?season=%d", time.Now().Year())
}

// HandleLogin resolves a handle. An unknown handle redirects to signup; a
// viewer already holding a session for the member passes straight through;
// anyone else gets the verification menu with phrase options.
func (s *LoginService) HandleLogin(ctx context.Context, handle string, sessionMemberID *string) (*LoginOutcome, error) {
	normalized, ok := domain.NormalizeHandle(handle)
	if !ok {
		return nil, domain.ErrInvalidIdentifier
	}

	member, err := s.registry.FindByIdentifier(ctx, domain.KindHandle, normalized)
	if err == domain.ErrMemberNotFound {
		return &LoginOutcome{Next: "/signup?handle=" + normalized}, nil
	}
	if err != nil {
		return nil, err
	}

	if sessionMemberID != nil && *sessionMemberID == member.MemberID {
		return &LoginOutcome{Next: LandingURL(), MemberID: member.MemberID}, nil
	}

	token, err := s.registry.EnsureRecoveryToken(ctx, member.MemberID)
	if err != nil {
		return nil, err
	}

	return &LoginOutcome{
		NeedVerification: true,
		Methods:          []string{"code", "phrase", "team"},
		PhraseOptions:    s.registry.RecoveryOptions(token),
		MemberID:         member.MemberID,
	}, nil
}

// RecoveryVerify checks a chosen phrase against the member's real one.
func (s *LoginService) RecoveryVerify(ctx context.Context, handle, choice string) (*domain.Member, error) {
	normalized, ok := domain.NormalizeHandle(handle)
	if !ok {
		return nil, domain.ErrInvalidIdentifier
	}
	member, err := s.registry.FindByIdentifier(ctx, domain.KindHandle, normalized)
	if err != nil {
		return nil, err
	}
	token, err := s.registry.EnsureRecoveryToken(ctx, member.MemberID)
	if err != nil {
		return nil, err
	}
	if choice != token.Phrase() {
		return nil, domain.ErrWrongChoice
	}
	return member, nil
}
