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

type episodeRepo struct {
	db *sqlx.DB
}

// NewEpisodeRepo creates a new PostgreSQL-backed EpisodeRepository.
func NewEpisodeRepo(db *sqlx.DB) port.EpisodeRepository {
	return &episodeRepo{db: db}
}

// GetOrCreate returns the episode for a claim, creating it in PENDING when
// none exists. The unique index on claim_id makes concurrent creates
// converge on one row.
func (r *episodeRepo) GetOrCreate(ctx context.Context, claim *domain.Claim) (*domain.ClaimEpisode, error) {
	now := time.Now().UTC()
	query := `INSERT INTO claim_episodes (
		id, claim_id, control_number, payer_id, status, charge_amount, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	ON CONFLICT (claim_id) DO UPDATE SET updated_at = claim_episodes.updated_at
	RETURNING *`

	var episode domain.ClaimEpisode
	err := r.db.GetContext(ctx, &episode, query,
		uuid.New(), claim.ID, claim.ControlNumber, claim.PayerID,
		domain.EpisodePending, claim.TotalChargeAmount, now)
	if err != nil {
		return nil, fmt.Errorf("episodeRepo.GetOrCreate: %w", err)
	}
	return &episode, nil
}

func (r *episodeRepo) GetByID(ctx context.Context, episodeID uuid.UUID) (*domain.ClaimEpisode, error) {
	var episode domain.ClaimEpisode
	err := r.db.GetContext(ctx, &episode, "SELECT * FROM claim_episodes WHERE id = $1", episodeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEpisodeNotFound
		}
		return nil, fmt.Errorf("episodeRepo.GetByID: %w", err)
	}
	return &episode, nil
}

func (r *episodeRepo) GetByClaimID(ctx context.Context, claimID uuid.UUID) (*domain.ClaimEpisode, error) {
	var episode domain.ClaimEpisode
	err := r.db.GetContext(ctx, &episode, "SELECT * FROM claim_episodes WHERE claim_id = $1", claimID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEpisodeNotFound
		}
		return nil, fmt.Errorf("episodeRepo.GetByClaimID: %w", err)
	}
	return &episode, nil
}

func (r *episodeRepo) Save(ctx context.Context, episode *domain.ClaimEpisode) error {
	episode.UpdatedAt = time.Now().UTC()
	query := `UPDATE claim_episodes SET
		status = $2, payment_amount = $3, adjustment_amount = $4, charge_amount = $5,
		denial_count = $6, adjustment_count = $7, remittance_count = $8,
		linked_at = $9, completed_at = $10, updated_at = $11
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		episode.ID, episode.Status, episode.PaymentAmount, episode.AdjustmentAmount,
		episode.ChargeAmount, episode.DenialCount, episode.AdjustmentCount,
		episode.RemittanceCount, episode.LinkedAt, episode.CompletedAt, episode.UpdatedAt)
	if err != nil {
		return fmt.Errorf("episodeRepo.Save: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrEpisodeNotFound
	}
	return nil
}

func (r *episodeRepo) List(ctx context.Context, status domain.EpisodeStatus, offset, limit int) ([]domain.ClaimEpisode, int, error) {
	where := ""
	args := []interface{}{}
	if status != "" {
		where = "WHERE status = $1"
		args = append(args, status)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM claim_episodes "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("episodeRepo.List count: %w", err)
	}

	listQuery := fmt.Sprintf("SELECT * FROM claim_episodes %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var episodes []domain.ClaimEpisode
	if err := r.db.SelectContext(ctx, &episodes, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("episodeRepo.List: %w", err)
	}
	return episodes, total, nil
}

func (r *episodeRepo) ListForPayer(ctx context.Context, payerID string, since time.Time) ([]domain.ClaimEpisode, error) {
	var episodes []domain.ClaimEpisode
	err := r.db.SelectContext(ctx, &episodes,
		`SELECT * FROM claim_episodes
		 WHERE payer_id = $1 AND linked_at IS NOT NULL AND linked_at >= $2
		 ORDER BY linked_at ASC`, payerID, since)
	if err != nil {
		return nil, fmt.Errorf("episodeRepo.ListForPayer: %w", err)
	}
	return episodes, nil
}

// HasRemittance matches on the remittance control number rather than the row
// ID so that re-ingesting the same 835 document, which mints a fresh row ID,
// is still recognized as already linked.
func (r *episodeRepo) HasRemittance(ctx context.Context, episodeID uuid.UUID, controlNumber string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (
			SELECT 1 FROM episode_remittances er
			JOIN remittances rm ON rm.id = er.remittance_id
			WHERE er.episode_id = $1 AND rm.control_number = $2
		)`,
		episodeID, controlNumber)
	if err != nil {
		return false, fmt.Errorf("episodeRepo.HasRemittance: %w", err)
	}
	return exists, nil
}

func (r *episodeRepo) AddRemittance(ctx context.Context, episodeID, remittanceID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO episode_remittances (episode_id, remittance_id, linked_at)
		 VALUES ($1, $2, NOW())`, episodeID, remittanceID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrRemittanceAlreadyLinked
		}
		return fmt.Errorf("episodeRepo.AddRemittance: %w", err)
	}
	return nil
}

// ListDenialOccurrences joins the episode link table with remittance
// adjustments and claim attributes into flat detector input rows. The window
// cutoff applies to the episode's first-link timestamp, the same predicate
// ListForPayer uses, so every episode contributing occurrences is also in
// the denominator.
func (r *episodeRepo) ListDenialOccurrences(ctx context.Context, payerID string, since time.Time) ([]domain.DenialOccurrence, error) {
	query := `SELECT
			e.id AS episode_id,
			e.payer_id AS payer_id,
			ra.reason_code AS reason_code,
			ra.group_code AS group_code,
			COALESCE(c.facility_code, '') AS facility_code,
			COALESCE(cl.procedure_code, '') AS procedure_code,
			ra.amount AS amount,
			er.linked_at AS seen_at
		FROM claim_episodes e
		JOIN episode_remittances er ON er.episode_id = e.id
		JOIN remittances r ON r.id = er.remittance_id
		JOIN remittance_adjustments ra ON ra.remittance_id = r.id
		JOIN claims c ON c.id = e.claim_id
		LEFT JOIN LATERAL (
			SELECT procedure_code FROM claim_lines
			WHERE claim_id = c.id ORDER BY line_number ASC LIMIT 1
		) cl ON TRUE
		WHERE e.payer_id = $1
		  AND r.has_denial = TRUE
		  AND ra.reason_code <> ''
		  AND e.linked_at IS NOT NULL
		  AND e.linked_at >= $2
		ORDER BY er.linked_at ASC`

	var occurrences []domain.DenialOccurrence
	if err := r.db.SelectContext(ctx, &occurrences, query, payerID, since); err != nil {
		return nil, fmt.Errorf("episodeRepo.ListDenialOccurrences: %w", err)
	}
	return occurrences, nil
}

func (r *episodeRepo) ListActivePayers(ctx context.Context, since time.Time) ([]string, error) {
	var payers []string
	err := r.db.SelectContext(ctx, &payers,
		`SELECT DISTINCT payer_id FROM claim_episodes
		 WHERE payer_id <> '' AND linked_at IS NOT NULL AND linked_at >= $1
		 ORDER BY payer_id ASC`, since)
	if err != nil {
		return nil, fmt.Errorf("episodeRepo.ListActivePayers: %w", err)
	}
	return payers, nil
}
