package postgres

import (
	"context"
	"sort"

	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type credentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) *credentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) MembersForTeam(ctx context.Context, platforms []string, season int, leagueID string, teamID int) ([]string, error) {
	return r.memberIDs(ctx, r.db.WithContext(ctx).Model(&domain.LeagueBinding{}).
		Where("platform IN ? AND season = ? AND league_id = ? AND team_id = ?", platforms, season, leagueID, teamID).
		Order("updated_at DESC"))
}

func (r *credentialRepository) MembersForLeagueSeason(ctx context.Context, platforms []string, season int, leagueID string) ([]string, error) {
	return r.memberIDs(ctx, r.db.WithContext(ctx).Model(&domain.LeagueBinding{}).
		Where("platform IN ? AND season = ? AND league_id = ?", platforms, season, leagueID).
		Order("updated_at DESC"))
}

func (r *credentialRepository) MembersForLeague(ctx context.Context, platforms []string, leagueID string) ([]string, error) {
	return r.memberIDs(ctx, r.db.WithContext(ctx).Model(&domain.LeagueBinding{}).
		Where("platform IN ? AND league_id = ?", platforms, leagueID).
		Order("updated_at DESC"))
}

func (r *credentialRepository) memberIDs(_ context.Context, q *gorm.DB) ([]string, error) {
	var ids []string
	if err := q.Pluck("member_id", &ids).Error; err != nil {
		return nil, err
	}
	// De-dupe preserving the freshest-first order.
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func (r *credentialRepository) QuickSnapCreds(ctx context.Context, memberIDs []string) ([]*domain.ESPNCredential, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}
	var creds []*domain.ESPNCredential
	err := r.db.WithContext(ctx).Raw(`
		SELECT ec.*
		FROM espn_credentials ec
		JOIN quickhitters q
		  ON UPPER(TRIM(BOTH '{}' FROM q.quick_snap)) = UPPER(TRIM(BOTH '{}' FROM ec.swid))
		WHERE q.member_id IN ? AND q.quick_snap IS NOT NULL
		ORDER BY ec.last_seen DESC`, memberIDs).Scan(&creds).Error
	if err != nil {
		return nil, err
	}
	return creds, nil
}

func (r *credentialRepository) FreshestByMembers(ctx context.Context, memberIDs []string) ([]*domain.ESPNCredential, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}
	var creds []*domain.ESPNCredential
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT ON (member_id) *
		FROM espn_credentials
		WHERE member_id IN ?
		ORDER BY member_id, last_seen DESC`, memberIDs).Scan(&creds).Error
	if err != nil {
		return nil, err
	}
	sort.Slice(creds, func(i, j int) bool {
		return creds[i].LastSeen.After(creds[j].LastSeen)
	})
	return creds, nil
}

func (r *credentialRepository) UpsertCredential(ctx context.Context, cred *domain.ESPNCredential) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "swid"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"espn_s2":   gorm.Expr("EXCLUDED.espn_s2"),
			"s2_hash":   gorm.Expr("EXCLUDED.s2_hash"),
			"member_id": gorm.Expr("COALESCE(EXCLUDED.member_id, espn_credentials.member_id)"),
			"ref":       gorm.Expr("EXCLUDED.ref"),
			// last_seen is monotonically non-decreasing.
			"last_seen": gorm.Expr("GREATEST(espn_credentials.last_seen, EXCLUDED.last_seen)"),
		}),
	}).Create(cred).Error
}

func (r *credentialRepository) UpsertBinding(ctx context.Context, binding *domain.LeagueBinding) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "platform"}, {Name: "season"}, {Name: "league_id"}, {Name: "team_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"member_id":  gorm.Expr("EXCLUDED.member_id"),
			"updated_at": gorm.Expr("EXCLUDED.updated_at"),
		}),
	}).Create(binding).Error
}
