package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"claimsight/internal/domain"
)

// EDIFileRepository defines the contract for EDI file metadata persistence.
type EDIFileRepository interface {
	Create(ctx context.Context, file *domain.EDIFile) error
	GetByID(ctx context.Context, fileID uuid.UUID) (*domain.EDIFile, error)
	List(ctx context.Context, offset, limit int) ([]domain.EDIFile, int, error)
	// ClaimQueued atomically claims up to limit queued files for ingestion,
	// moving them to status ingesting so concurrent workers never double-pick.
	ClaimQueued(ctx context.Context, limit int) ([]domain.EDIFile, error)
	MarkIngested(ctx context.Context, file *domain.EDIFile) error
	MarkFailed(ctx context.Context, fileID uuid.UUID, ingestErr string, requeue bool) error
}

// ClaimRepository defines the contract for claim persistence. Create stores
// the claim together with its lines.
type ClaimRepository interface {
	Create(ctx context.Context, claim *domain.Claim) error
	GetByID(ctx context.Context, claimID uuid.UUID) (*domain.Claim, error)
	// FindByControlNumber returns every stored claim with the given control
	// number. Control-number uniqueness is expected but not guaranteed by
	// upstream senders, so the result is a list.
	FindByControlNumber(ctx context.Context, controlNumber string) ([]domain.Claim, error)
	List(ctx context.Context, offset, limit int) ([]domain.Claim, int, error)
}

// RemittanceRepository defines the contract for remittance persistence.
// Create stores the remittance together with its adjustments.
type RemittanceRepository interface {
	Create(ctx context.Context, remit *domain.Remittance) error
	GetByID(ctx context.Context, remitID uuid.UUID) (*domain.Remittance, error)
	List(ctx context.Context, offset, limit int) ([]domain.Remittance, int, error)
	// ListUnlinked returns remittances not yet attached to any episode, for
	// relink retries after out-of-order arrival.
	ListUnlinked(ctx context.Context, limit int) ([]domain.Remittance, error)
}

// EpisodeRepository defines the contract for claim episode persistence.
type EpisodeRepository interface {
	GetOrCreate(ctx context.Context, claim *domain.Claim) (*domain.ClaimEpisode, error)
	GetByID(ctx context.Context, episodeID uuid.UUID) (*domain.ClaimEpisode, error)
	GetByClaimID(ctx context.Context, claimID uuid.UUID) (*domain.ClaimEpisode, error)
	Save(ctx context.Context, episode *domain.ClaimEpisode) error
	List(ctx context.Context, status domain.EpisodeStatus, offset, limit int) ([]domain.ClaimEpisode, int, error)
	ListForPayer(ctx context.Context, payerID string, since time.Time) ([]domain.ClaimEpisode, error)
	// HasRemittance reports whether a remittance with the given control
	// number already contributed to the episode's aggregates; the linker's
	// idempotence check. The control number is the stable identity here, a
	// re-ingested document produces a fresh row ID for the same remittance.
	HasRemittance(ctx context.Context, episodeID uuid.UUID, controlNumber string) (bool, error)
	AddRemittance(ctx context.Context, episodeID, remittanceID uuid.UUID) error
	// ListDenialOccurrences joins episode, remittance adjustments, and claim
	// fields into detector input for one payer's trailing window.
	ListDenialOccurrences(ctx context.Context, payerID string, since time.Time) ([]domain.DenialOccurrence, error)
	// ListActivePayers returns payers with linked activity since the cutoff.
	ListActivePayers(ctx context.Context, since time.Time) ([]string, error)
}

// PatternRepository defines the contract for denial pattern persistence.
type PatternRepository interface {
	// Upsert inserts or updates the pattern identified by
	// (payer_id, reason_code, condition_key), preserving first_seen_at on
	// update. It reports whether a new row was created.
	Upsert(ctx context.Context, pattern *domain.DenialPattern) (created bool, err error)
	ListByPayer(ctx context.Context, payerID string) ([]domain.DenialPattern, error)
	List(ctx context.Context, offset, limit int) ([]domain.DenialPattern, int, error)
}
