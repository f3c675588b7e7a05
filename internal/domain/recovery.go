package domain

import (
	"fmt"
	"sort"
	"time"
)

// RecoveryToken is the adjective-adjective-noun passphrase bound to a member.
// PairKey enforces that the unordered adjective pair plus noun is globally
// unique regardless of adjective order.
type RecoveryToken struct {
	MemberID  string    `json:"member_id" gorm:"primaryKey;size:8"`
	Adj1      string    `json:"adj1" gorm:"size:32;not null"`
	Adj2      string    `json:"adj2" gorm:"size:32;not null"`
	Noun      string    `json:"noun" gorm:"size:32;not null"`
	PairKey   string    `json:"-" gorm:"size:128;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

// Phrase renders the display form.
func (r *RecoveryToken) Phrase() string {
	return fmt.Sprintf("%s-%s-%s", r.Adj1, r.Adj2, r.Noun)
}

// RecoveryPairKey builds the uniqueness key for an unordered adjective pair
// plus noun.
func RecoveryPairKey(adj1, adj2, noun string) string {
	pair := []string{adj1, adj2}
	sort.Strings(pair)
	return pair[0] + "|" + pair[1] + "|" + noun
}
