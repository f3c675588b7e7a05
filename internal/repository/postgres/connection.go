package postgres

import (
	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"github.com/fortifiedfantasy/fein-server/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the core tables.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.Member{},
		&domain.Quickhitter{},
		&domain.IdentityCode{},
		&domain.IdentityAttempt{},
		&domain.Session{},
		&domain.ESPNCredential{},
		&domain.LeagueBinding{},
		&domain.RecoveryToken{},
		&domain.Relationship{},
		&domain.Block{},
		&domain.GuardianControl{},
		&domain.ContactRequest{},
	)
	if err != nil {
		return err
	}

	// Handle uniqueness is case-insensitive, which AutoMigrate tags cannot
	// express. "Ada" and "ada" must collide.
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_members_username_lower ON members (LOWER(username))`,
	).Error
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		Member:       NewMemberRepository(db),
		Quickhitter:  NewQuickhitterRepository(db),
		IdentityCode: NewIdentityCodeRepository(db),
		Session:      NewSessionRepository(db),
		Credential:   NewCredentialRepository(db),
		Recovery:     NewRecoveryTokenRepository(db),
		Relationship: NewRelationshipRepository(db),
		Block:        NewBlockRepository(db),
		Guardian:     NewGuardianRepository(db),
		Contact:      NewContactRequestRepository(db),
	}
}
