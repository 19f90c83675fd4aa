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

type ediFileRepo struct {
	db *sqlx.DB
}

// NewEDIFileRepo creates a new PostgreSQL-backed EDIFileRepository.
func NewEDIFileRepo(db *sqlx.DB) port.EDIFileRepository {
	return &ediFileRepo{db: db}
}

func (r *ediFileRepo) Create(ctx context.Context, file *domain.EDIFile) error {
	now := time.Now().UTC()
	file.CreatedAt = now
	file.UpdatedAt = now

	query := `INSERT INTO edi_files (
		id, file_name, original_name, transaction_set, file_size,
		s3_bucket, s3_key, status, ingest_attempts, ingest_error,
		claim_count, remittance_count, warning_count, error_count,
		ingested_at, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9, $10,
		$11, $12, $13, $14,
		$15, $16, $17
	)`

	_, err := r.db.ExecContext(ctx, query,
		file.ID, file.FileName, file.OriginalName, file.TransactionSet, file.FileSize,
		file.S3Bucket, file.S3Key, file.Status, file.IngestAttempts, file.IngestError,
		file.ClaimCount, file.RemittanceCount, file.WarningCount, file.ErrorCount,
		file.IngestedAt, file.CreatedAt, file.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ediFileRepo.Create: %w", err)
	}
	return nil
}

func (r *ediFileRepo) GetByID(ctx context.Context, fileID uuid.UUID) (*domain.EDIFile, error) {
	var file domain.EDIFile
	err := r.db.GetContext(ctx, &file, "SELECT * FROM edi_files WHERE id = $1", fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFileNotFound
		}
		return nil, fmt.Errorf("ediFileRepo.GetByID: %w", err)
	}
	return &file, nil
}

func (r *ediFileRepo) List(ctx context.Context, offset, limit int) ([]domain.EDIFile, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM edi_files"); err != nil {
		return nil, 0, fmt.Errorf("ediFileRepo.List count: %w", err)
	}

	var files []domain.EDIFile
	err := r.db.SelectContext(ctx, &files,
		"SELECT * FROM edi_files ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ediFileRepo.List: %w", err)
	}
	return files, total, nil
}

// ClaimQueued moves up to limit queued files into status ingesting and
// returns them. SKIP LOCKED keeps concurrent workers from picking the same
// rows.
func (r *ediFileRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.EDIFile, error) {
	query := `UPDATE edi_files SET status = $1, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM edi_files WHERE status = $2
			ORDER BY created_at ASC
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`

	var files []domain.EDIFile
	err := r.db.SelectContext(ctx, &files, query,
		domain.FileStatusIngesting, domain.FileStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("ediFileRepo.ClaimQueued: %w", err)
	}
	return files, nil
}

func (r *ediFileRepo) MarkIngested(ctx context.Context, file *domain.EDIFile) error {
	now := time.Now().UTC()
	query := `UPDATE edi_files SET
		status = $2, transaction_set = $3,
		claim_count = $4, remittance_count = $5, warning_count = $6, error_count = $7,
		ingest_error = '', ingested_at = $8, updated_at = $8
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		file.ID, domain.FileStatusIngested, file.TransactionSet,
		file.ClaimCount, file.RemittanceCount, file.WarningCount, file.ErrorCount, now)
	if err != nil {
		return fmt.Errorf("ediFileRepo.MarkIngested: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}

func (r *ediFileRepo) MarkFailed(ctx context.Context, fileID uuid.UUID, ingestErr string, requeue bool) error {
	status := domain.FileStatusFailed
	if requeue {
		status = domain.FileStatusQueued
	}
	query := `UPDATE edi_files SET
		status = $2, ingest_error = $3, ingest_attempts = ingest_attempts + 1,
		updated_at = NOW()
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, fileID, status, ingestErr); err != nil {
		return fmt.Errorf("ediFileRepo.MarkFailed: %w", err)
	}
	return nil
}
