package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is durable client state, fingerprinted so that repeat logins from
// the same browser reuse the same row.
type Session struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MemberID   string    `json:"member_id" gorm:"size:8;not null;uniqueIndex:idx_session_fingerprint"`
	IPHash     string    `json:"-" gorm:"size:64;not null;uniqueIndex:idx_session_fingerprint"`
	UserAgent  string    `json:"-" gorm:"size:1024;not null;uniqueIndex:idx_session_fingerprint"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}
