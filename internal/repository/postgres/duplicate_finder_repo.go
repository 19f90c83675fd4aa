package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"claimsight/internal/domain"
	"claimsight/internal/port"
)

type duplicateFinderRepo struct {
	db *sqlx.DB
}

// NewDuplicateFinderRepo creates a new PostgreSQL-backed DuplicateFinder.
func NewDuplicateFinderRepo(db *sqlx.DB) port.DuplicateFinder {
	return &duplicateFinderRepo{db: db}
}

func (r *duplicateFinderRepo) ListDuplicateControlNumbers(ctx context.Context, limit int) ([]domain.DuplicateControlNumber, error) {
	query := `SELECT control_number, COUNT(*) AS claim_count
		FROM claims
		WHERE control_number <> ''
		GROUP BY control_number
		HAVING COUNT(*) > 1
		ORDER BY claim_count DESC, control_number ASC
		LIMIT $1`

	var dupes []domain.DuplicateControlNumber
	if err := r.db.SelectContext(ctx, &dupes, query, limit); err != nil {
		return nil, fmt.Errorf("duplicateFinderRepo.ListDuplicateControlNumbers: %w", err)
	}
	return dupes, nil
}
