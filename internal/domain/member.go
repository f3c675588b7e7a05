package domain

import (
	"time"

	"gorm.io/gorm"
)

type TrustLevel string

const (
	TrustStandard TrustLevel = "standard"
	TrustBanned   TrustLevel = "banned"
)

// Member is the canonical user row. MemberID is an 8-char uppercase
// alphanumeric and never changes once allocated.
type Member struct {
	MemberID         string         `json:"member_id" gorm:"primaryKey;size:8"`
	Username         *string        `json:"username"`
	ColorHex         *string        `json:"color_hex" gorm:"size:7"`
	Email            *string        `json:"email" gorm:"uniqueIndex"`
	PhoneE164        *string        `json:"phone_e164" gorm:"uniqueIndex"`
	EmailVerifiedAt  *time.Time     `json:"email_verified_at"`
	PhoneVerifiedAt  *time.Time     `json:"phone_verified_at"`
	InteractedCode   string         `json:"-" gorm:"size:8;not null"`
	TrustLevel       TrustLevel     `json:"trust_level" gorm:"size:16;default:standard"`
	Gender           *string        `json:"gender" gorm:"size:16"`
	DateOfBirth      *time.Time     `json:"date_of_birth"`
	IsMinor          bool           `json:"is_minor"`
	LoginCode        *string        `json:"-" gorm:"size:6"`
	LoginCodeExpires *time.Time     `json:"-"`
	FirstSeenAt      time.Time      `json:"first_seen_at"`
	LastSeenAt       time.Time      `json:"last_seen_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

// Quickhitter is the provisional profile staged before (or alongside) a full
// Member row. QuickSnap bridges the member to the SWID currently in use.
type Quickhitter struct {
	MemberID        string    `json:"member_id" gorm:"primaryKey;size:8"`
	Handle          *string   `json:"handle"`
	ColorHex        *string   `json:"color_hex" gorm:"size:7"`
	Email           *string   `json:"email"`
	PhoneE164       *string   `json:"phone_e164"`
	EmailIsVerified bool      `json:"email_is_verified"`
	PhoneIsVerified bool      `json:"phone_is_verified"`
	ImageKey        *string   `json:"image_key"`
	QuickSnap       *string   `json:"quick_snap" gorm:"size:64;index"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Verified reports whether at least one contact channel is verified.
func (q *Quickhitter) Verified() bool {
	return q.EmailIsVerified || q.PhoneIsVerified
}

// Age in whole years at the given instant; false when DOB is unknown.
func (m *Member) Age(now time.Time) (int, bool) {
	if m.DateOfBirth == nil {
		return 0, false
	}
	dob := *m.DateOfBirth
	years := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		years--
	}
	return years, true
}
