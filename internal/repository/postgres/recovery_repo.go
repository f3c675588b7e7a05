package postgres

import (
	"context"

	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"gorm.io/gorm"
)

type recoveryTokenRepository struct {
	db *gorm.DB
}

func NewRecoveryTokenRepository(db *gorm.DB) *recoveryTokenRepository {
	return &recoveryTokenRepository{db: db}
}

func (r *recoveryTokenRepository) GetByMemberID(ctx context.Context, memberID string) (*domain.RecoveryToken, error) {
	var token domain.RecoveryToken
	err := r.db.WithContext(ctx).First(&token, "member_id = ?", memberID).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *recoveryTokenRepository) Create(ctx context.Context, token *domain.RecoveryToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}
