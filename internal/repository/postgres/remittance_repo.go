package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"claimsight/internal/domain"
	"claimsight/internal/port"
)

type remittanceRepo struct {
	db *sqlx.DB
}

// NewRemittanceRepo creates a new PostgreSQL-backed RemittanceRepository.
func NewRemittanceRepo(db *sqlx.DB) port.RemittanceRepository {
	return &remittanceRepo{db: db}
}

func (r *remittanceRepo) Create(ctx context.Context, remit *domain.Remittance) error {
	now := time.Now().UTC()
	remit.CreatedAt = now
	remit.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("remittanceRepo.Create begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO remittances (
		id, file_id, control_number, claim_control_number, payer_id, payer_name,
		check_number, payment_amount, charge_amount, payment_rate,
		payment_date, payment_method, status_code, is_final, has_denial,
		denial_reason_codes, is_incomplete, warnings, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10,
		$11, $12, $13, $14, $15,
		$16, $17, $18, $19, $20
	)
	ON CONFLICT (control_number, claim_control_number) DO NOTHING`

	res, err := tx.ExecContext(ctx, query,
		remit.ID, remit.FileID, remit.ControlNumber, remit.ClaimControlNumber, remit.PayerID, remit.PayerName,
		remit.CheckNumber, remit.PaymentAmount, remit.ChargeAmount, remit.PaymentRate,
		remit.PaymentDate, remit.PaymentMethod, remit.StatusCode, remit.IsFinal, remit.HasDenial,
		remit.DenialReasonCodes, remit.IsIncomplete, remit.Warnings, remit.CreatedAt, remit.UpdatedAt)
	if err != nil {
		return fmt.Errorf("remittanceRepo.Create: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		// Same document ingested again. Point the caller at the stored row
		// so the linker sees one remittance identity, and keep its
		// adjustments as written.
		err = tx.GetContext(ctx, &remit.ID,
			"SELECT id FROM remittances WHERE control_number = $1 AND claim_control_number = $2",
			remit.ControlNumber, remit.ClaimControlNumber)
		if err != nil {
			return fmt.Errorf("remittanceRepo.Create existing lookup: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("remittanceRepo.Create commit: %w", err)
		}
		return nil
	}

	adjQuery := `INSERT INTO remittance_adjustments (
		id, remittance_id, position, group_code, reason_code, amount, quantity, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for i := range remit.Adjustments {
		adj := &remit.Adjustments[i]
		adj.RemittanceID = remit.ID
		adj.CreatedAt = now
		_, err = tx.ExecContext(ctx, adjQuery,
			adj.ID, adj.RemittanceID, adj.Position, adj.GroupCode, adj.ReasonCode,
			adj.Amount, adj.Quantity, adj.CreatedAt)
		if err != nil {
			return fmt.Errorf("remittanceRepo.Create adjustment %d: %w", adj.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("remittanceRepo.Create commit: %w", err)
	}
	return nil
}

func (r *remittanceRepo) GetByID(ctx context.Context, remitID uuid.UUID) (*domain.Remittance, error) {
	var remit domain.Remittance
	err := r.db.GetContext(ctx, &remit, "SELECT * FROM remittances WHERE id = $1", remitID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRemittanceNotFound
		}
		return nil, fmt.Errorf("remittanceRepo.GetByID: %w", err)
	}
	err = r.db.SelectContext(ctx, &remit.Adjustments,
		"SELECT * FROM remittance_adjustments WHERE remittance_id = $1 ORDER BY position ASC", remitID)
	if err != nil {
		return nil, fmt.Errorf("remittanceRepo.GetByID adjustments: %w", err)
	}
	return &remit, nil
}

func (r *remittanceRepo) List(ctx context.Context, offset, limit int) ([]domain.Remittance, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM remittances"); err != nil {
		return nil, 0, fmt.Errorf("remittanceRepo.List count: %w", err)
	}

	var remits []domain.Remittance
	err := r.db.SelectContext(ctx, &remits,
		"SELECT * FROM remittances ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("remittanceRepo.List: %w", err)
	}
	return remits, total, nil
}

// ListUnlinked returns remittances that no episode has absorbed yet, oldest
// first, so relink retries process out-of-order arrivals in order.
func (r *remittanceRepo) ListUnlinked(ctx context.Context, limit int) ([]domain.Remittance, error) {
	query := `SELECT r.* FROM remittances r
		WHERE NOT EXISTS (
			SELECT 1 FROM episode_remittances er WHERE er.remittance_id = r.id
		)
		ORDER BY r.created_at ASC
		LIMIT $1`

	var remits []domain.Remittance
	if err := r.db.SelectContext(ctx, &remits, query, limit); err != nil {
		return nil, fmt.Errorf("remittanceRepo.ListUnlinked: %w", err)
	}
	for i := range remits {
		err := r.db.SelectContext(ctx, &remits[i].Adjustments,
			"SELECT * FROM remittance_adjustments WHERE remittance_id = $1 ORDER BY position ASC",
			remits[i].ID)
		if err != nil {
			return nil, fmt.Errorf("remittanceRepo.ListUnlinked adjustments: %w", err)
		}
	}
	return remits, nil
}
