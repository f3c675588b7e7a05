package postgres

import (
	"context"

	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type relationshipRepository struct {
	db *gorm.DB
}

func NewRelationshipRepository(db *gorm.DB) *relationshipRepository {
	return &relationshipRepository{db: db}
}

// upsertRelationship writes the unordered-pair row; the contact repository
// runs it inside the accept transaction.
func upsertRelationship(db *gorm.DB, rel *domain.Relationship) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "member_a"}, {Name: "member_b"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"type_a":     gorm.Expr("EXCLUDED.type_a"),
			"label_a":    gorm.Expr("EXCLUDED.label_a"),
			"type_b":     gorm.Expr("EXCLUDED.type_b"),
			"label_b":    gorm.Expr("EXCLUDED.label_b"),
			"status":     gorm.Expr("EXCLUDED.status"),
			"is_mutual":  gorm.Expr("EXCLUDED.is_mutual"),
			"updated_at": gorm.Expr("EXCLUDED.updated_at"),
		}),
	}).Create(rel).Error
}

func (r *relationshipRepository) ActiveExists(ctx context.Context, a, b string) (bool, error) {
	ma, mb := domain.PairKey(a, b)
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Relationship{}).
		Where("member_a = ? AND member_b = ? AND status = ?", ma, mb, "active").
		Count(&count).Error
	return count > 0, err
}

type blockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) *blockRepository {
	return &blockRepository{db: db}
}

func (r *blockRepository) ExistsBetween(ctx context.Context, a, b string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}

func (r *blockRepository) Create(ctx context.Context, block *domain.Block) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(block).Error
}

type guardianRepository struct {
	db *gorm.DB
}

func NewGuardianRepository(db *gorm.DB) *guardianRepository {
	return &guardianRepository{db: db}
}

func (r *guardianRepository) Get(ctx context.Context, memberID string) (*domain.GuardianControl, error) {
	var gc domain.GuardianControl
	err := r.db.WithContext(ctx).First(&gc, "member_id = ?", memberID).Error
	if err != nil {
		return nil, err
	}
	return &gc, nil
}

func (r *guardianRepository) Upsert(ctx context.Context, gc *domain.GuardianControl) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "member_id"}},
		UpdateAll: true,
	}).Create(gc).Error
}
