package postgres

import (
	"context"

	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type contactRequestRepository struct {
	db *gorm.DB
}

func NewContactRequestRepository(db *gorm.DB) *contactRequestRepository {
	return &contactRequestRepository{db: db}
}

func (r *contactRequestRepository) Create(ctx context.Context, req *domain.ContactRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *contactRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContactRequest, error) {
	var req domain.ContactRequest
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *contactRequestRepository) AcceptedRelationshipExists(ctx context.Context, a, b string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ContactRequest{}).
		Where("channel_type = ? AND status = ?", domain.ChannelRelationship, domain.RequestAccepted).
		Where("(from_member_id = ? AND to_member_id = ?) OR (from_member_id = ? AND to_member_id = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}

func (r *contactRequestRepository) Update(ctx context.Context, req *domain.ContactRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

// AcceptRelationship flips the request and upserts the relationship row in a
// single transaction; a failure in either rolls back both.
func (r *contactRequestRepository) AcceptRelationship(ctx context.Context, req *domain.ContactRequest, rel *domain.Relationship) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(req).Error; err != nil {
			return err
		}
		return upsertRelationship(tx, rel)
	})
}
