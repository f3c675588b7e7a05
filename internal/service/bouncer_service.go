package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"github.com/fortifiedfantasy/fein-server/internal/repository"
	"gorm.io/gorm"
)

// BouncerService makes the per-request access decisions: may viewer V see
// target T's page, and may V request contact with T.
type BouncerService struct {
	members  repository.MemberRepository
	blocks   repository.BlockRepository
	guardian repository.GuardianRepository
	rels     repository.RelationshipRepository
	contacts repository.ContactRequestRepository
}

func NewBouncerService(members repository.MemberRepository, blocks repository.BlockRepository, guardian repository.GuardianRepository, rels repository.RelationshipRepository, contacts repository.ContactRequestRepository) *BouncerService {
	return &BouncerService{members: members, blocks: blocks, guardian: guardian, rels: rels, contacts: contacts}
}

// PageAccess runs the ordered rule chain; the first applicable rule wins.
// Target-side refusals answer 404 rather than 403 to avoid enumeration.
func (s *BouncerService) PageAccess(ctx context.Context, viewerID *string, targetID string) (*domain.PageDecision, error) {
	if targetID == "" {
		return refusePage(http.StatusNotFound, domain.ReasonNoTarget), nil
	}

	target, err := s.members.GetByID(ctx, targetID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return refusePage(http.StatusNotFound, domain.ReasonTargetNotFound), nil
	}
	if err != nil {
		return nil, err
	}
	if target.TrustLevel == domain.TrustBanned {
		return refusePage(http.StatusNotFound, domain.ReasonTargetBanned), nil
	}

	var viewer *domain.Member
	if viewerID != nil && *viewerID != "" {
		v, err := s.members.GetByID(ctx, *viewerID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		viewer = v
	}

	if viewer != nil {
		if viewer.TrustLevel == domain.TrustBanned {
			return refusePage(http.StatusForbidden, domain.ReasonViewerBanned), nil
		}
		blocked, err := s.blocks.ExistsBetween(ctx, viewer.MemberID, target.MemberID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return refusePage(http.StatusNotFound, domain.ReasonBlocked), nil
		}
	}

	if viewer == nil {
		return &domain.PageDecision{
			Allowed:     true,
			HTTPStatus:  http.StatusOK,
			AccessLevel: domain.AccessLimited,
			Reason:      domain.ReasonAnonymousViewer,
		}, nil
	}

	if viewer.MemberID == target.MemberID {
		// Self-relationship is synthesized; no row needed.
		return &domain.PageDecision{
			Allowed:     true,
			HTTPStatus:  http.StatusOK,
			AccessLevel: domain.AccessFull,
			IsOwner:     true,
		}, nil
	}

	stranger, err := s.isStranger(ctx, viewer.MemberID, target.MemberID)
	if err != nil {
		return nil, err
	}

	if target.IsMinor {
		gc, err := s.guardian.Get(ctx, target.MemberID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if gc != nil {
			if reason := guardianRefusal(gc, viewer, stranger); reason != "" {
				return &domain.PageDecision{
					Allowed:             true,
					HTTPStatus:          http.StatusOK,
					AccessLevel:         domain.AccessLimited,
					Reason:              reason,
					IsStranger:          stranger,
					GuardianBlockReason: reason,
				}, nil
			}
		}
	}

	return &domain.PageDecision{
		Allowed:           true,
		HTTPStatus:        http.StatusOK,
		AccessLevel:       domain.AccessFull,
		IsStranger:        stranger,
		CanRequestContact: true,
	}, nil
}

// ContactAccess layers the channel rules over the page decision.
func (s *BouncerService) ContactAccess(ctx context.Context, viewerID *string, targetID string, channel domain.ChannelType) (*domain.ContactDecision, error) {
	if viewerID == nil || *viewerID == "" {
		return &domain.ContactDecision{
			HTTPStatus: http.StatusUnauthorized,
			Reason:     domain.ReasonNotAuthenticated,
		}, nil
	}

	page, err := s.PageAccess(ctx, viewerID, targetID)
	if err != nil {
		return nil, err
	}
	if !page.Allowed {
		return &domain.ContactDecision{
			HTTPStatus:      page.HTTPStatus,
			Reason:          page.Reason,
			GuardianBlocked: page.GuardianBlockReason != "",
		}, nil
	}
	if !page.CanRequestContact {
		return &domain.ContactDecision{
			HTTPStatus:      http.StatusForbidden,
			Reason:          page.Reason,
			GuardianBlocked: page.GuardianBlockReason != "",
		}, nil
	}
	if !domain.ValidChannelType(channel) {
		return &domain.ContactDecision{
			HTTPStatus: http.StatusBadRequest,
			Reason:     domain.ReasonInvalidChannelType,
		}, nil
	}

	return &domain.ContactDecision{Allowed: true, HTTPStatus: http.StatusOK}, nil
}

// isStranger is true when no active edge links the pair, counting both the
// relationship table and accepted relationship-channel requests.
func (s *BouncerService) isStranger(ctx context.Context, viewerID, targetID string) (bool, error) {
	active, err := s.rels.ActiveExists(ctx, viewerID, targetID)
	if err != nil {
		return false, err
	}
	if active {
		return false, nil
	}
	accepted, err := s.contacts.AcceptedRelationshipExists(ctx, viewerID, targetID)
	if err != nil {
		return false, err
	}
	return !accepted, nil
}

// guardianRefusal applies the per-minor controls to a non-owner viewer.
// Returns the limitation reason, or "" when the viewer passes.
func guardianRefusal(gc *domain.GuardianControl, viewer *domain.Member, stranger bool) string {
	if !stranger {
		return ""
	}

	male := viewer.Gender != nil && strings.EqualFold(*viewer.Gender, "male")
	cutoff := gc.AdultAgeCutoff
	if cutoff <= 0 {
		cutoff = 22
	}

	adult := false
	if age, known := viewer.Age(time.Now()); known {
		adult = age >= cutoff
	} else {
		// Unknown DOB: a viewer not flagged as a minor counts as an adult.
		adult = !viewer.IsMinor
	}

	blockedMale := (gc.BlockAdultMenOverAge && male && adult) || (gc.BlockMaleGender && male)
	if blockedMale {
		return domain.ReasonGuardianBlockAdultMale
	}
	if !gc.AllowRequestsFromStrangers {
		return domain.ReasonGuardianBlocksStrangers
	}
	return ""
}

func refusePage(status int, reason string) *domain.PageDecision {
	return &domain.PageDecision{
		Allowed:     false,
		HTTPStatus:  status,
		AccessLevel: domain.AccessNone,
		Reason:      reason,
	}
}
