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

type claimRepo struct {
	db *sqlx.DB
}

// NewClaimRepo creates a new PostgreSQL-backed ClaimRepository.
func NewClaimRepo(db *sqlx.DB) port.ClaimRepository {
	return &claimRepo{db: db}
}

// Create stores the claim and its lines in one transaction; a claim is never
// persisted without its line set.
func (r *claimRepo) Create(ctx context.Context, claim *domain.Claim) error {
	now := time.Now().UTC()
	claim.CreatedAt = now
	claim.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("claimRepo.Create begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO claims (
		id, file_id, control_number, patient_control_number, payer_id,
		total_charge_amount, facility_code, frequency_code, assignment_code,
		statement_date, admission_date, discharge_date, service_date,
		principal_diagnosis, diagnosis_codes,
		attending_provider, operating_provider, referring_provider,
		is_incomplete, warnings, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9,
		$10, $11, $12, $13,
		$14, $15,
		$16, $17, $18,
		$19, $20, $21, $22
	)`

	_, err = tx.ExecContext(ctx, query,
		claim.ID, claim.FileID, claim.ControlNumber, claim.PatientControlNumber, claim.PayerID,
		claim.TotalChargeAmount, claim.FacilityCode, claim.FrequencyCode, claim.AssignmentCode,
		claim.StatementDate, claim.AdmissionDate, claim.DischargeDate, claim.ServiceDate,
		claim.PrincipalDiagnosis, claim.DiagnosisCodes,
		claim.AttendingProvider, claim.OperatingProvider, claim.ReferringProvider,
		claim.IsIncomplete, claim.Warnings, claim.CreatedAt, claim.UpdatedAt)
	if err != nil {
		return fmt.Errorf("claimRepo.Create: %w", err)
	}

	lineQuery := `INSERT INTO claim_lines (
		id, claim_id, line_number, revenue_code, procedure_code, modifier,
		charge_amount, unit_count, unit_type, service_date, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	for i := range claim.Lines {
		line := &claim.Lines[i]
		line.ClaimID = claim.ID
		line.CreatedAt = now
		_, err = tx.ExecContext(ctx, lineQuery,
			line.ID, line.ClaimID, line.LineNumber, line.RevenueCode, line.ProcedureCode,
			line.Modifier, line.ChargeAmount, line.UnitCount, line.UnitType,
			line.ServiceDate, line.CreatedAt)
		if err != nil {
			return fmt.Errorf("claimRepo.Create line %d: %w", line.LineNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("claimRepo.Create commit: %w", err)
	}
	return nil
}

func (r *claimRepo) GetByID(ctx context.Context, claimID uuid.UUID) (*domain.Claim, error) {
	var claim domain.Claim
	err := r.db.GetContext(ctx, &claim, "SELECT * FROM claims WHERE id = $1", claimID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClaimNotFound
		}
		return nil, fmt.Errorf("claimRepo.GetByID: %w", err)
	}
	if err := r.loadLines(ctx, &claim); err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *claimRepo) FindByControlNumber(ctx context.Context, controlNumber string) ([]domain.Claim, error) {
	var claims []domain.Claim
	err := r.db.SelectContext(ctx, &claims,
		"SELECT * FROM claims WHERE control_number = $1 ORDER BY created_at ASC", controlNumber)
	if err != nil {
		return nil, fmt.Errorf("claimRepo.FindByControlNumber: %w", err)
	}
	return claims, nil
}

func (r *claimRepo) List(ctx context.Context, offset, limit int) ([]domain.Claim, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM claims"); err != nil {
		return nil, 0, fmt.Errorf("claimRepo.List count: %w", err)
	}

	var claims []domain.Claim
	err := r.db.SelectContext(ctx, &claims,
		"SELECT * FROM claims ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("claimRepo.List: %w", err)
	}
	return claims, total, nil
}

func (r *claimRepo) loadLines(ctx context.Context, claim *domain.Claim) error {
	err := r.db.SelectContext(ctx, &claim.Lines,
		"SELECT * FROM claim_lines WHERE claim_id = $1 ORDER BY line_number ASC", claim.ID)
	if err != nil {
		return fmt.Errorf("claimRepo.loadLines: %w", err)
	}
	return nil
}
