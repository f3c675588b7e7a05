package postgres

import (
	"context"
	"time"

	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type memberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *memberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *memberRepository) GetByID(ctx context.Context, memberID string) (*domain.Member, error) {
	var member domain.Member
	err := r.db.WithContext(ctx).First(&member, "member_id = ?", memberID).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) GetByIdentifier(ctx context.Context, kind domain.IdentifierKind, value string) (*domain.Member, error) {
	var member domain.Member
	q := r.db.WithContext(ctx)
	switch kind {
	case domain.KindEmail:
		q = q.Where("LOWER(email) = LOWER(?)", value)
	case domain.KindPhone:
		q = q.Where("phone_e164 = ?", value)
	case domain.KindHandle:
		q = q.Where("LOWER(username) = LOWER(?)", value)
	default:
		return nil, domain.ErrInvalidIdentifier
	}
	if err := q.First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) Update(ctx context.Context, member *domain.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

// UpsertMerge inserts the member or, on conflict, merges it into the existing
// row. Incoming NULL never clobbers a stored value and verification stamps
// keep the earliest timestamp, mirroring COALESCE(EXCLUDED.x, t.x) semantics.
func (r *memberRepository) UpsertMerge(ctx context.Context, member *domain.Member) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "member_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"username":          gorm.Expr("COALESCE(EXCLUDED.username, members.username)"),
			"color_hex":         gorm.Expr("COALESCE(EXCLUDED.color_hex, members.color_hex)"),
			"email":             gorm.Expr("COALESCE(EXCLUDED.email, members.email)"),
			"phone_e164":        gorm.Expr("COALESCE(EXCLUDED.phone_e164, members.phone_e164)"),
			"email_verified_at": gorm.Expr("COALESCE(members.email_verified_at, EXCLUDED.email_verified_at)"),
			"phone_verified_at": gorm.Expr("COALESCE(members.phone_verified_at, EXCLUDED.phone_verified_at)"),
			"last_seen_at":      gorm.Expr("GREATEST(members.last_seen_at, EXCLUDED.last_seen_at)"),
			"updated_at":        gorm.Expr("EXCLUDED.updated_at"),
		}),
	}).Create(member).Error
}

func (r *memberRepository) TouchLastSeen(ctx context.Context, memberID string) error {
	return r.db.WithContext(ctx).Model(&domain.Member{}).
		Where("member_id = ?", memberID).
		Update("last_seen_at", time.Now()).Error
}

func (r *memberRepository) MarkVerified(ctx context.Context, memberID string, kind domain.IdentifierKind, at time.Time) error {
	column := "email_verified_at"
	if kind == domain.KindPhone {
		column = "phone_verified_at"
	}
	return r.db.WithContext(ctx).Model(&domain.Member{}).
		Where("member_id = ?", memberID).
		Update(column, gorm.Expr("COALESCE("+column+", ?)", at)).Error
}
