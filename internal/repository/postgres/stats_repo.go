package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"claimsight/internal/domain"
	"claimsight/internal/port"
)

type statsRepo struct {
	db *sqlx.DB
}

// NewStatsRepo creates a new PostgreSQL-backed StatsRepository.
func NewStatsRepo(db *sqlx.DB) port.StatsRepository {
	return &statsRepo{db: db}
}

func (r *statsRepo) GetStats(ctx context.Context) (*domain.Stats, error) {
	query := `SELECT
		(SELECT COUNT(*) FROM edi_files) AS total_files,
		(SELECT COUNT(*) FROM claims) AS total_claims,
		(SELECT COUNT(*) FROM remittances) AS total_remittances,
		(SELECT COUNT(*) FROM remittances r WHERE NOT EXISTS (
			SELECT 1 FROM episode_remittances er WHERE er.remittance_id = r.id
		)) AS unlinked_remittances,
		(SELECT COUNT(*) FROM claim_episodes WHERE status = 'PENDING') AS pending_episodes,
		(SELECT COUNT(*) FROM claim_episodes WHERE status = 'LINKED') AS linked_episodes,
		(SELECT COUNT(*) FROM claim_episodes WHERE status = 'COMPLETE') AS complete_episodes,
		(SELECT COUNT(*) FROM denial_patterns) AS denial_patterns`

	var stats domain.Stats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("statsRepo.GetStats: %w", err)
	}
	return &stats, nil
}
