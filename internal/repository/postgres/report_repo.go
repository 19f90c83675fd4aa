package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"claimsight/internal/domain"
	"claimsight/internal/port"
)

type reportRepo struct {
	db *sqlx.DB
}

// NewReportRepo creates a new PostgreSQL-backed ReportRepository.
func NewReportRepo(db *sqlx.DB) port.ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) PayerOverview(ctx context.Context, since time.Time) ([]domain.PayerOverviewRow, error) {
	query := `SELECT
			e.payer_id AS payer_id,
			COUNT(*) AS episode_count,
			COUNT(*) FILTER (WHERE e.status IN ('LINKED', 'COMPLETE')) AS linked_count,
			COUNT(*) FILTER (WHERE e.status = 'COMPLETE') AS complete_count,
			COALESCE(SUM(e.denial_count), 0) AS denial_count,
			COALESCE(SUM(e.charge_amount), 0) AS total_billed,
			COALESCE(SUM(e.payment_amount), 0) AS total_paid
		FROM claim_episodes e
		WHERE e.payer_id <> '' AND e.created_at >= $1
		GROUP BY e.payer_id
		ORDER BY episode_count DESC`

	var rows []domain.PayerOverviewRow
	if err := r.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, fmt.Errorf("reportRepo.PayerOverview: %w", err)
	}
	return rows, nil
}

func (r *reportRepo) DenialSummary(ctx context.Context, since time.Time) ([]domain.DenialSummaryRow, error) {
	query := `SELECT
			r.payer_id AS payer_id,
			ra.reason_code AS reason_code,
			COALESCE(cc.description, '') AS description,
			COUNT(*) AS occurrences,
			COALESCE(SUM(ra.amount), 0) AS total_amount
		FROM remittance_adjustments ra
		JOIN remittances r ON r.id = ra.remittance_id
		LEFT JOIN carc_codes cc ON cc.code = ra.reason_code
		WHERE r.has_denial = TRUE
		  AND ra.reason_code <> ''
		  AND r.created_at >= $1
		GROUP BY r.payer_id, ra.reason_code, cc.description
		ORDER BY occurrences DESC, ra.reason_code ASC`

	var rows []domain.DenialSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, fmt.Errorf("reportRepo.DenialSummary: %w", err)
	}
	return rows, nil
}
