package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"claimsight/internal/domain"
	"claimsight/internal/port"
)

type patternRepo struct {
	db *sqlx.DB
}

// NewPatternRepo creates a new PostgreSQL-backed PatternRepository.
func NewPatternRepo(db *sqlx.DB) port.PatternRepository {
	return &patternRepo{db: db}
}

// Upsert inserts the pattern or refreshes the existing row for the same
// (payer_id, reason_code, condition_key). first_seen_at keeps the least of
// the stored and incoming values, so re-detection never loses history.
func (r *patternRepo) Upsert(ctx context.Context, pattern *domain.DenialPattern) (bool, error) {
	now := time.Now().UTC()
	pattern.CreatedAt = now
	pattern.UpdatedAt = now

	query := `INSERT INTO denial_patterns (
		id, payer_id, pattern_type, description, reason_code, condition_key,
		conditions, occurrence_count, episodes_total, frequency, confidence_score,
		first_seen_at, last_seen_at, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10, $11,
		$12, $13, $14, $14
	)
	ON CONFLICT (payer_id, reason_code, condition_key) DO UPDATE SET
		pattern_type = EXCLUDED.pattern_type,
		description = EXCLUDED.description,
		conditions = EXCLUDED.conditions,
		occurrence_count = EXCLUDED.occurrence_count,
		episodes_total = EXCLUDED.episodes_total,
		frequency = EXCLUDED.frequency,
		confidence_score = EXCLUDED.confidence_score,
		first_seen_at = LEAST(denial_patterns.first_seen_at, EXCLUDED.first_seen_at),
		last_seen_at = EXCLUDED.last_seen_at,
		updated_at = EXCLUDED.updated_at
	RETURNING (created_at = updated_at) AS created, id, first_seen_at`

	row := r.db.QueryRowxContext(ctx, query,
		pattern.ID, pattern.PayerID, pattern.PatternType, pattern.Description,
		pattern.ReasonCode, pattern.ConditionKey, pattern.Conditions,
		pattern.OccurrenceCount, pattern.EpisodesTotal, pattern.Frequency,
		pattern.ConfidenceScore, pattern.FirstSeenAt, pattern.LastSeenAt, now)

	var created bool
	if err := row.Scan(&created, &pattern.ID, &pattern.FirstSeenAt); err != nil {
		return false, fmt.Errorf("patternRepo.Upsert: %w", err)
	}
	return created, nil
}

func (r *patternRepo) ListByPayer(ctx context.Context, payerID string) ([]domain.DenialPattern, error) {
	var patterns []domain.DenialPattern
	err := r.db.SelectContext(ctx, &patterns,
		`SELECT * FROM denial_patterns WHERE payer_id = $1
		 ORDER BY confidence_score DESC, reason_code ASC`, payerID)
	if err != nil {
		return nil, fmt.Errorf("patternRepo.ListByPayer: %w", err)
	}
	return patterns, nil
}

func (r *patternRepo) List(ctx context.Context, offset, limit int) ([]domain.DenialPattern, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM denial_patterns"); err != nil {
		return nil, 0, fmt.Errorf("patternRepo.List count: %w", err)
	}

	var patterns []domain.DenialPattern
	err := r.db.SelectContext(ctx, &patterns,
		`SELECT * FROM denial_patterns
		 ORDER BY confidence_score DESC, payer_id ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("patternRepo.List: %w", err)
	}
	return patterns, total, nil
}
