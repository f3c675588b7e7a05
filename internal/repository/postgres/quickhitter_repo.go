package postgres

import (
	"context"
	"time"

	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type quickhitterRepository struct {
	db *gorm.DB
}

func NewQuickhitterRepository(db *gorm.DB) *quickhitterRepository {
	return &quickhitterRepository{db: db}
}

func (r *quickhitterRepository) GetByID(ctx context.Context, memberID string) (*domain.Quickhitter, error) {
	var qh domain.Quickhitter
	err := r.db.WithContext(ctx).First(&qh, "member_id = ?", memberID).Error
	if err != nil {
		return nil, err
	}
	return &qh, nil
}

func (r *quickhitterRepository) GetByIdentifier(ctx context.Context, kind domain.IdentifierKind, value string) (*domain.Quickhitter, error) {
	var qh domain.Quickhitter
	q := r.db.WithContext(ctx)
	switch kind {
	case domain.KindEmail:
		q = q.Where("LOWER(email) = LOWER(?)", value)
	case domain.KindPhone:
		q = q.Where("phone_e164 = ?", value)
	case domain.KindHandle:
		q = q.Where("LOWER(handle) = LOWER(?)", value)
	default:
		return nil, domain.ErrInvalidIdentifier
	}
	if err := q.Order("updated_at DESC").First(&qh).Error; err != nil {
		return nil, err
	}
	return &qh, nil
}

func (r *quickhitterRepository) Upsert(ctx context.Context, qh *domain.Quickhitter) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "member_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"handle":            gorm.Expr("COALESCE(EXCLUDED.handle, quickhitters.handle)"),
			"color_hex":         gorm.Expr("COALESCE(EXCLUDED.color_hex, quickhitters.color_hex)"),
			"email":             gorm.Expr("COALESCE(EXCLUDED.email, quickhitters.email)"),
			"phone_e164":        gorm.Expr("COALESCE(EXCLUDED.phone_e164, quickhitters.phone_e164)"),
			"image_key":         gorm.Expr("COALESCE(EXCLUDED.image_key, quickhitters.image_key)"),
			"quick_snap":        gorm.Expr("COALESCE(EXCLUDED.quick_snap, quickhitters.quick_snap)"),
			"email_is_verified": gorm.Expr("quickhitters.email_is_verified OR EXCLUDED.email_is_verified"),
			"phone_is_verified": gorm.Expr("quickhitters.phone_is_verified OR EXCLUDED.phone_is_verified"),
			"updated_at":        gorm.Expr("EXCLUDED.updated_at"),
		}),
	}).Create(qh).Error
}

func (r *quickhitterRepository) SetQuickSnap(ctx context.Context, memberID, swid string) error {
	return r.db.WithContext(ctx).Model(&domain.Quickhitter{}).
		Where("member_id = ?", memberID).
		Updates(map[string]interface{}{"quick_snap": swid, "updated_at": time.Now()}).Error
}
