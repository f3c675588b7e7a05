package postgres

import (
	"context"
	"time"

	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"gorm.io/gorm"
)

type identityCodeRepository struct {
	db *gorm.DB
}

func NewIdentityCodeRepository(db *gorm.DB) *identityCodeRepository {
	return &identityCodeRepository{db: db}
}

func (r *identityCodeRepository) Issue(ctx context.Context, code *domain.IdentityCode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.IdentityCode{}).
			Where("kind = ? AND value = ? AND channel = ? AND is_active", code.Kind, code.Value, code.Channel).
			Update("is_active", false).Error
		if err != nil {
			return err
		}
		return tx.Create(code).Error
	})
}

func (r *identityCodeRepository) FindNewestLive(ctx context.Context, kind domain.IdentifierKind, value string, now time.Time) (*domain.IdentityCode, error) {
	q := r.db.WithContext(ctx).
		Where("kind = ? AND is_active AND consumed_at IS NULL AND expires_at > ?", kind, now)

	if kind == domain.KindPhone {
		q = q.Where("regexp_replace(value, '[^0-9]', '', 'g') IN ?", phoneDigitVariants(value))
	} else {
		q = q.Where("value = ?", value)
	}

	var code domain.IdentityCode
	if err := q.Order("created_at DESC").First(&code).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

// phoneDigitVariants tolerates a NANP country code mismatch between the
// stored value and the submitted identifier.
func phoneDigitVariants(value string) []string {
	digits := domain.PhoneDigits(value)
	variants := []string{digits}
	if len(digits) == 10 {
		variants = append(variants, "1"+digits)
	}
	if len(digits) == 11 && digits[0] == '1' {
		variants = append(variants, digits[1:])
	}
	return variants
}

func (r *identityCodeRepository) Consume(ctx context.Context, id uint, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.IdentityCode{}).
		Where("id = ? AND is_active AND consumed_at IS NULL AND expires_at > ?", id, now).
		Updates(map[string]interface{}{"consumed_at": now, "is_active": false})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *identityCodeRepository) IncrementAttempts(ctx context.Context, id uint, cap int) error {
	return r.db.WithContext(ctx).Model(&domain.IdentityCode{}).
		Where("id = ?", id).
		Update("attempts", gorm.Expr("LEAST(attempts + 1, ?)", cap)).Error
}

func (r *identityCodeRepository) LogAttempt(ctx context.Context, attempt *domain.IdentityAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}
