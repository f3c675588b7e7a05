package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"github.com/fortifiedfantasy/fein-server/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ContactService creates contact requests behind the Bouncer and applies
// target decisions to them.
type ContactService struct {
	contacts repository.ContactRequestRepository
	blocks   repository.BlockRepository
	bouncer  *BouncerService
}

func NewContactService(contacts repository.ContactRequestRepository, blocks repository.BlockRepository, bouncer *BouncerService) *ContactService {
	return &ContactService{contacts: contacts, blocks: blocks, bouncer: bouncer}
}

type ContactInput struct {
	TargetID          string
	Channel           domain.ChannelType
	Note              string
	RelationshipType  string
	RelationshipLabel string
}

// requestBody is the rendered message stored on the row. On relationship
// accept it is rewritten with both sides filled in.
type requestBody struct {
	Note string       `json:"note,omitempty"`
	From *sideDetails `json:"from,omitempty"`
	To   *sideDetails `json:"to,omitempty"`
}

type sideDetails struct {
	Type  string `json:"type,omitempty"`
	Label string `json:"label,omitempty"`
}

// Create runs the contact decision and, when allowed, persists the pending
// request with the requester-side relationship preset.
func (s *ContactService) Create(ctx context.Context, viewerID *string, in ContactInput) (*domain.ContactRequest, *domain.ContactDecision, error) {
	decision, err := s.bouncer.ContactAccess(ctx, viewerID, in.TargetID, in.Channel)
	if err != nil {
		return nil, nil, err
	}
	if !decision.Allowed {
		return nil, decision, nil
	}

	body, err := json.Marshal(requestBody{
		Note: in.Note,
		From: &sideDetails{Type: in.RelationshipType, Label: in.RelationshipLabel},
	})
	if err != nil {
		return nil, nil, err
	}

	req := &domain.ContactRequest{
		ID:                uuid.New(),
		FromMemberID:      *viewerID,
		ToMemberID:        in.TargetID,
		ChannelType:       in.Channel,
		Note:              in.Note,
		RelationshipType:  in.RelationshipType,
		RelationshipLabel: in.RelationshipLabel,
		Status:            domain.RequestPending,
		Body:              datatypes.JSON(body),
		CreatedAt:         time.Now(),
	}
	if err := s.contacts.Create(ctx, req); err != nil {
		return nil, nil, err
	}
	return req, decision, nil
}

type DecideInput struct {
	Decision          domain.ContactDecisionVerb
	RelationshipType  string
	RelationshipLabel string
}

// Decide applies the target's decision. Accepting a relationship request
// upserts the pair row and flips the request in one transaction; re-accept
// is idempotent.
func (s *ContactService) Decide(ctx context.Context, requestID uuid.UUID, deciderID string, in DecideInput) (*domain.ContactRequest, error) {
	req, err := s.contacts.GetByID(ctx, requestID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	if req.ToMemberID != deciderID {
		return nil, domain.ErrNotRequestTarget
	}

	now := time.Now()
	switch in.Decision {
	case domain.DecisionAccept:
		return s.accept(ctx, req, in, now)
	case domain.DecisionReject, domain.DecisionIgnore:
		if req.Status == domain.RequestPending {
			req.Status = domain.RequestIgnored
			req.DecidedAt = &now
			if err := s.contacts.Update(ctx, req); err != nil {
				return nil, err
			}
		}
		return req, nil
	case domain.DecisionBlock:
		if req.Status == domain.RequestPending {
			req.Status = domain.RequestBlocked
			req.DecidedAt = &now
			if err := s.contacts.Update(ctx, req); err != nil {
				return nil, err
			}
		}
		if err := s.blocks.Create(ctx, &domain.Block{
			BlockerID: deciderID,
			BlockedID: req.FromMemberID,
			CreatedAt: now,
		}); err != nil {
			return nil, err
		}
		return req, nil
	default:
		return nil, domain.ErrInvalidDecision
	}
}

func (s *ContactService) accept(ctx context.Context, req *domain.ContactRequest, in DecideInput, now time.Time) (*domain.ContactRequest, error) {
	if req.Status == domain.RequestAccepted {
		return req, nil
	}

	req.Status = domain.RequestAccepted
	req.DecidedAt = &now
	req.AcceptorType = in.RelationshipType
	req.AcceptorLabel = in.RelationshipLabel

	body, err := json.Marshal(requestBody{
		Note: req.Note,
		From: &sideDetails{Type: req.RelationshipType, Label: req.RelationshipLabel},
		To:   &sideDetails{Type: in.RelationshipType, Label: in.RelationshipLabel},
	})
	if err != nil {
		return nil, err
	}
	req.Body = datatypes.JSON(body)

	if req.ChannelType != domain.ChannelRelationship {
		if err := s.contacts.Update(ctx, req); err != nil {
			return nil, err
		}
		return req, nil
	}

	rel := relationshipFromRequest(req, now)
	if err := s.contacts.AcceptRelationship(ctx, req, rel); err != nil {
		return nil, err
	}
	return req, nil
}

// relationshipFromRequest maps the request's asymmetric sides onto the
// unordered-pair row: the requester's preset lands on their side, the
// acceptor's on theirs.
func relationshipFromRequest(req *domain.ContactRequest, now time.Time) *domain.Relationship {
	a, b := domain.PairKey(req.FromMemberID, req.ToMemberID)
	rel := &domain.Relationship{
		ID:        uuid.New(),
		MemberA:   a,
		MemberB:   b,
		Status:    "active",
		IsMutual:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if a == req.FromMemberID {
		rel.TypeA, rel.LabelA = req.RelationshipType, req.RelationshipLabel
		rel.TypeB, rel.LabelB = req.AcceptorType, req.AcceptorLabel
	} else {
		rel.TypeA, rel.LabelA = req.AcceptorType, req.AcceptorLabel
		rel.TypeB, rel.LabelB = req.RelationshipType, req.RelationshipLabel
	}
	return rel
}
