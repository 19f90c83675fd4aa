package port

import (
	"context"
	"time"

	"claimsight/internal/domain"
)

// CARCRepository defines the contract for the claim adjustment reason code
// reference table.
type CARCRepository interface {
	UpsertBatch(ctx context.Context, codes []domain.CARCCode) error
	GetDescription(ctx context.Context, code string) (string, error)
	List(ctx context.Context) ([]domain.CARCCode, error)
}

// DuplicateFinder surfaces control numbers claimed by more than one stored
// claim, the ambiguous-match case the linker resolves per-claim.
type DuplicateFinder interface {
	ListDuplicateControlNumbers(ctx context.Context, limit int) ([]domain.DuplicateControlNumber, error)
}

// ReportRepository provides aggregate reporting queries.
type ReportRepository interface {
	PayerOverview(ctx context.Context, since time.Time) ([]domain.PayerOverviewRow, error)
	DenialSummary(ctx context.Context, since time.Time) ([]domain.DenialSummaryRow, error)
}

// StatsRepository provides ingest-wide aggregate counters.
type StatsRepository interface {
	GetStats(ctx context.Context) (*domain.Stats, error)
}
