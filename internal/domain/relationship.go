package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChannelType string

const (
	ChannelPhoneCall    ChannelType = "phone_call"
	ChannelPhoneText    ChannelType = "phone_text"
	ChannelEmailContact ChannelType = "email"
	ChannelRelationship ChannelType = "relationship"
)

// ValidChannelType reports whether c is one of the requestable channels.
func ValidChannelType(c ChannelType) bool {
	switch c {
	case ChannelPhoneCall, ChannelPhoneText, ChannelEmailContact, ChannelRelationship:
		return true
	}
	return false
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestIgnored  RequestStatus = "ignored"
	RequestBlocked  RequestStatus = "blocked"
)

type ContactDecisionVerb string

const (
	DecisionAccept ContactDecisionVerb = "accept"
	DecisionReject ContactDecisionVerb = "reject"
	DecisionIgnore ContactDecisionVerb = "ignore"
	DecisionBlock  ContactDecisionVerb = "block"
)

// Relationship is a single row per unordered member pair. MemberA sorts
// before MemberB; each side carries its own (type, label).
type Relationship struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MemberA   string    `json:"member_a" gorm:"size:8;not null;uniqueIndex:idx_relationship_pair"`
	MemberB   string    `json:"member_b" gorm:"size:8;not null;uniqueIndex:idx_relationship_pair"`
	TypeA     string    `json:"type_a" gorm:"size:32"`
	LabelA    string    `json:"label_a" gorm:"size:64"`
	TypeB     string    `json:"type_b" gorm:"size:32"`
	LabelB    string    `json:"label_b" gorm:"size:64"`
	Status    string    `json:"status" gorm:"size:16;default:active"`
	IsMutual  bool      `json:"is_mutual"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PairKey orders two member IDs so an unordered pair always maps to the same
// (MemberA, MemberB) columns.
func PairKey(x, y string) (string, string) {
	if x <= y {
		return x, y
	}
	return y, x
}

// Block is a symmetric-effect block row; either direction hides both pages.
type Block struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	BlockerID string    `json:"blocker_id" gorm:"size:8;not null;uniqueIndex:idx_block_pair"`
	BlockedID string    `json:"blocked_id" gorm:"size:8;not null;uniqueIndex:idx_block_pair"`
	CreatedAt time.Time `json:"created_at"`
}

// GuardianControl holds per-minor viewing and contact restrictions.
type GuardianControl struct {
	MemberID                   string    `json:"member_id" gorm:"primaryKey;size:8"`
	AdultAgeCutoff             int       `json:"adult_age_cutoff" gorm:"default:22"`
	BlockMaleGender            bool      `json:"block_male_gender"`
	BlockAdultMenOverAge       bool      `json:"block_adult_men_over_age"`
	AllowRequestsFromStrangers bool      `json:"allow_requests_from_strangers"`
	UpdatedAt                  time.Time `json:"updated_at"`
}

// ContactRequest is a pending or decided request from one member to another.
// Body carries the rendered request message; on relationship accept it is
// rewritten to include both sides' type and label.
type ContactRequest struct {
	ID                uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FromMemberID      string         `json:"from_member_id" gorm:"size:8;not null;index"`
	ToMemberID        string         `json:"to_member_id" gorm:"size:8;not null;index"`
	ChannelType       ChannelType    `json:"channel_type" gorm:"size:16;not null"`
	Note              string         `json:"note"`
	RelationshipType  string         `json:"relationship_type" gorm:"size:32"`
	RelationshipLabel string         `json:"relationship_label" gorm:"size:64"`
	AcceptorType      string         `json:"acceptor_type" gorm:"size:32"`
	AcceptorLabel     string         `json:"acceptor_label" gorm:"size:64"`
	Status            RequestStatus  `json:"status" gorm:"size:16;default:pending;index"`
	Body              datatypes.JSON `json:"body"`
	CreatedAt         time.Time      `json:"created_at"`
	DecidedAt         *time.Time     `json:"decided_at"`
}
