package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"claimsight/internal/domain"
	"claimsight/internal/port"
)

type carcRepo struct {
	db *sqlx.DB
}

// NewCARCRepo creates a new PostgreSQL-backed CARCRepository.
func NewCARCRepo(db *sqlx.DB) port.CARCRepository {
	return &carcRepo{db: db}
}

func (r *carcRepo) UpsertBatch(ctx context.Context, codes []domain.CARCCode) error {
	if len(codes) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("carcRepo.UpsertBatch begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO carc_codes (code, description, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET description = EXCLUDED.description`

	now := time.Now().UTC()
	for _, c := range codes {
		if _, err := tx.ExecContext(ctx, query, c.Code, c.Description, now); err != nil {
			return fmt.Errorf("carcRepo.UpsertBatch code %s: %w", c.Code, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("carcRepo.UpsertBatch commit: %w", err)
	}
	return nil
}

func (r *carcRepo) GetDescription(ctx context.Context, code string) (string, error) {
	var description string
	err := r.db.GetContext(ctx, &description,
		"SELECT description FROM carc_codes WHERE code = $1", code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("carcRepo.GetDescription: %w", err)
	}
	return description, nil
}

func (r *carcRepo) List(ctx context.Context) ([]domain.CARCCode, error) {
	var codes []domain.CARCCode
	err := r.db.SelectContext(ctx, &codes, "SELECT * FROM carc_codes ORDER BY code ASC")
	if err != nil {
		return nil, fmt.Errorf("carcRepo.List: %w", err)
	}
	return codes, nil
}
