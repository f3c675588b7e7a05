package domain

import "time"

type CodeChannel string

const (
	ChannelEmail CodeChannel = "email"
	ChannelSMS   CodeChannel = "sms"
)

// ChannelFor maps an identifier kind to its delivery channel.
func ChannelFor(kind IdentifierKind) CodeChannel {
	if kind == KindPhone {
		return ChannelSMS
	}
	return ChannelEmail
}

// IdentityCode is one issued one-time code. At most one row per
// (kind, value, channel) is active at a time; older rows are deactivated on
// new issuance and a consumed row is never resurrected.
type IdentityCode struct {
	ID         uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	Kind       IdentifierKind `json:"identifier_kind" gorm:"size:8;not null;index:idx_code_ident"`
	Value      string         `json:"identifier_value" gorm:"not null;index:idx_code_ident"`
	Channel    CodeChannel    `json:"channel" gorm:"size:8;not null;index:idx_code_ident"`
	Code       string         `json:"-" gorm:"size:6;not null"`
	MemberID   *string        `json:"member_id" gorm:"size:8"`
	Attempts   int            `json:"attempts"`
	CreatedAt  time.Time      `json:"created_at"`
	ExpiresAt  time.Time      `json:"expires_at" gorm:"not null"`
	ConsumedAt *time.Time     `json:"consumed_at"`
	IsActive   bool           `json:"is_active" gorm:"index"`
}

// Live reports whether the row can still be verified against.
func (c *IdentityCode) Live(now time.Time) bool {
	return c.IsActive && c.ConsumedAt == nil && now.Before(c.ExpiresAt)
}

// IdentityAttempt logs each issuance attempt for audit.
type IdentityAttempt struct {
	ID        uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	Kind      IdentifierKind `json:"kind" gorm:"size:8"`
	Value     string         `json:"value"`
	IPHash    string         `json:"ip_hash" gorm:"size:64"`
	CreatedAt time.Time      `json:"created_at"`
}
