package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"claimsight/internal/csvexport"
	"claimsight/internal/domain"
	"claimsight/internal/port"
	"claimsight/internal/report"
)

// exportPageSize bounds memory while streaming episode exports.
const exportPageSize = 500

// ReportService provides reconciliation reporting and exports.
type ReportService interface {
	PayerOverview(ctx context.Context, since time.Time) ([]domain.PayerOverviewRow, error)
	DenialSummary(ctx context.Context, since time.Time) ([]domain.DenialSummaryRow, error)
	// ExportEpisodesCSV streams every episode (optionally filtered by status)
	// to w as CSV with a UTF-8 BOM.
	ExportEpisodesCSV(ctx context.Context, w io.Writer, status domain.EpisodeStatus) error
	// ExportPatternsXLSX writes every persisted denial pattern to w as an
	// Excel workbook.
	ExportPatternsXLSX(ctx context.Context, w io.Writer) error
	DuplicateControlNumbers(ctx context.Context, limit int) ([]domain.DuplicateControlNumber, error)
}

type reportService struct {
	reportRepo  port.ReportRepository
	episodeRepo port.EpisodeRepository
	patternRepo port.PatternRepository
	duplicates  port.DuplicateFinder
}

// NewReportService creates a new ReportService implementation.
func NewReportService(
	reportRepo port.ReportRepository,
	episodeRepo port.EpisodeRepository,
	patternRepo port.PatternRepository,
	duplicates port.DuplicateFinder,
) ReportService {
	return &reportService{
		reportRepo:  reportRepo,
		episodeRepo: episodeRepo,
		patternRepo: patternRepo,
		duplicates:  duplicates,
	}
}

func (s *reportService) PayerOverview(ctx context.Context, since time.Time) ([]domain.PayerOverviewRow, error) {
	return s.reportRepo.PayerOverview(ctx, since)
}

func (s *reportService) DenialSummary(ctx context.Context, since time.Time) ([]domain.DenialSummaryRow, error) {
	return s.reportRepo.DenialSummary(ctx, since)
}

func (s *reportService) ExportEpisodesCSV(ctx context.Context, w io.Writer, status domain.EpisodeStatus) error {
	if _, err := w.Write(csvexport.BOM); err != nil {
		return fmt.Errorf("reportService.ExportEpisodesCSV: %w", err)
	}

	cw := csvexport.NewWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return fmt.Errorf("reportService.ExportEpisodesCSV: %w", err)
	}

	for offset := 0; ; offset += exportPageSize {
		episodes, _, err := s.episodeRepo.List(ctx, status, offset, exportPageSize)
		if err != nil {
			return fmt.Errorf("reportService.ExportEpisodesCSV: %w", err)
		}
		if len(episodes) == 0 {
			break
		}
		if err := cw.WriteEpisodes(episodes); err != nil {
			return fmt.Errorf("reportService.ExportEpisodesCSV: %w", err)
		}
		if len(episodes) < exportPageSize {
			break
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("reportService.ExportEpisodesCSV: %w", err)
	}
	return nil
}

func (s *reportService) ExportPatternsXLSX(ctx context.Context, w io.Writer) error {
	var all []domain.DenialPattern
	for offset := 0; ; offset += exportPageSize {
		patterns, _, err := s.patternRepo.List(ctx, offset, exportPageSize)
		if err != nil {
			return fmt.Errorf("reportService.ExportPatternsXLSX: %w", err)
		}
		all = append(all, patterns...)
		if len(patterns) < exportPageSize {
			break
		}
	}
	return report.WritePatternsXLSX(w, all)
}

func (s *reportService) DuplicateControlNumbers(ctx context.Context, limit int) ([]domain.DuplicateControlNumber, error) {
	return s.duplicates.ListDuplicateControlNumbers(ctx, limit)
}
