package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"claimsight/internal/domain"
	"claimsight/internal/edi"
	"claimsight/internal/port"
	"claimsight/internal/transform"
)

// IngestService parses an archived EDI document and persists its claims and
// remittances, linking remittances into episodes as they land.
type IngestService interface {
	// IngestFile runs the full pipeline for one queued file. Record-level
	// failures are counted on the summary, not returned; only an untokenizable
	// document or an infrastructure failure fails the file.
	IngestFile(ctx context.Context, file *domain.EDIFile) (*domain.IngestSummary, error)
}

type ingestService struct {
	storage    port.ObjectStorage
	fileRepo   port.EDIFileRepository
	claimRepo  port.ClaimRepository
	remitRepo  port.RemittanceRepository
	linker     LinkService
	maxRetries int
}

// NewIngestService creates a new IngestService implementation.
func NewIngestService(
	storage port.ObjectStorage,
	fileRepo port.EDIFileRepository,
	claimRepo port.ClaimRepository,
	remitRepo port.RemittanceRepository,
	linker LinkService,
	maxRetries int,
) IngestService {
	return &ingestService{
		storage:    storage,
		fileRepo:   fileRepo,
		claimRepo:  claimRepo,
		remitRepo:  remitRepo,
		linker:     linker,
		maxRetries: maxRetries,
	}
}

func (s *ingestService) IngestFile(ctx context.Context, file *domain.EDIFile) (*domain.IngestSummary, error) {
	started := time.Now()

	data, err := s.storage.Download(ctx, file.S3Bucket, file.S3Key)
	if err != nil {
		return nil, s.fail(ctx, file, fmt.Errorf("download %s/%s: %w", file.S3Bucket, file.S3Key, err))
	}

	result, err := edi.Parse(string(data), file.OriginalName)
	if err != nil {
		return nil, s.fail(ctx, file, fmt.Errorf("parse %s: %w", file.OriginalName, err))
	}

	summary := &domain.IngestSummary{FileID: file.ID}

	for i := range result.Claims {
		if err := s.storeClaim(ctx, file, &result.Claims[i]); err != nil {
			summary.Errors++
			log.Printf("ingestService.IngestFile: file %s claim %s: %v",
				file.ID, result.Claims[i].ControlNumber, err)
			continue
		}
		summary.ClaimsParsed++
	}

	for i := range result.Remittances {
		linked, err := s.storeRemittance(ctx, file, &result.Remittances[i])
		if err != nil {
			summary.Errors++
			log.Printf("ingestService.IngestFile: file %s remittance %s: %v",
				file.ID, result.Remittances[i].ControlNumber, err)
			continue
		}
		summary.RemittancesParsed++
		if linked > 0 {
			summary.EpisodesLinked += linked
		} else {
			summary.Unlinked++
		}
	}

	summary.Warnings = result.WarningCount()
	summary.TransactionSet = string(transactionSet(summary))

	file.TransactionSet = domain.TransactionSet(summary.TransactionSet)
	file.ClaimCount = summary.ClaimsParsed
	file.RemittanceCount = summary.RemittancesParsed
	file.WarningCount = summary.Warnings
	file.ErrorCount = summary.Errors
	if err := s.fileRepo.MarkIngested(ctx, file); err != nil {
		return nil, fmt.Errorf("ingestService.IngestFile mark ingested: %w", err)
	}

	log.Printf("ingestService.IngestFile: file %s ingested in %s (claims=%d remittances=%d linked=%d warnings=%d errors=%d)",
		file.ID, time.Since(started).Round(time.Millisecond),
		summary.ClaimsParsed, summary.RemittancesParsed, summary.EpisodesLinked,
		summary.Warnings, summary.Errors)
	return summary, nil
}

func (s *ingestService) storeClaim(ctx context.Context, file *domain.EDIFile, parsed *edi.ParsedClaim) error {
	claim, err := transform.Claim(parsed, file.ID)
	if err != nil {
		return err
	}
	if err := s.claimRepo.Create(ctx, claim); err != nil {
		return err
	}
	if _, err := s.linker.EnsureEpisode(ctx, claim); err != nil {
		return err
	}
	return nil
}

// storeRemittance persists one claim payment and attempts the link. Batch
// context is already folded into the parsed record, so no batch is passed.
func (s *ingestService) storeRemittance(ctx context.Context, file *domain.EDIFile, parsed *edi.ParsedRemittance) (int, error) {
	remit, err := transform.Remittance(parsed, nil, file.ID)
	if err != nil {
		return 0, err
	}
	if err := s.remitRepo.Create(ctx, remit); err != nil {
		return 0, err
	}
	linked, err := s.linker.AutoLinkByControlNumber(ctx, remit)
	if err != nil {
		// stored but unlinked; the relink pass will retry
		log.Printf("ingestService.storeRemittance: remittance %s stored, link failed: %v", remit.ID, err)
		return 0, nil
	}
	return linked, nil
}

// fail records the failure and requeues the file while retries remain. Parse
// fatals never succeed on retry, so they fail terminally.
func (s *ingestService) fail(ctx context.Context, file *domain.EDIFile, cause error) error {
	requeue := !edi.IsFatal(cause) && file.IngestAttempts+1 < s.maxRetries
	if err := s.fileRepo.MarkFailed(ctx, file.ID, cause.Error(), requeue); err != nil {
		log.Printf("ingestService.fail: file %s: %v", file.ID, err)
	}
	return fmt.Errorf("ingestService.IngestFile: %w", cause)
}

func transactionSet(summary *domain.IngestSummary) domain.TransactionSet {
	switch {
	case summary.ClaimsParsed > 0 && summary.RemittancesParsed > 0:
		return domain.TransactionSetMixed
	case summary.ClaimsParsed > 0:
		return domain.TransactionSet837
	case summary.RemittancesParsed > 0:
		return domain.TransactionSet835
	default:
		return domain.TransactionSetUnknown
	}
}
