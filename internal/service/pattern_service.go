package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"claimsight/internal/config"
	"claimsight/internal/detector"
	"claimsight/internal/domain"
	"claimsight/internal/port"
)

// DetectionSummary reports one detection pass.
type DetectionSummary struct {
	PayersScanned  int `json:"payers_scanned"`
	EpisodesScored int `json:"episodes_scored"`
	Patterns       int `json:"patterns"`
	NewPatterns    int `json:"new_patterns"`
	AlertsSent     int `json:"alerts_sent"`
}

// PatternService runs denial pattern detection over linked episode history
// and serves the persisted patterns.
type PatternService interface {
	// DetectForPayer mines one payer's trailing window. daysBack <= 0 uses the
	// configured default window.
	DetectForPayer(ctx context.Context, payerID string, daysBack int) (*DetectionSummary, error)
	// DetectAll runs detection for every payer with linked activity in the
	// window. Per-payer failures are logged and skipped.
	DetectAll(ctx context.Context, daysBack int) (*DetectionSummary, error)
	ListByPayer(ctx context.Context, payerID string) ([]domain.DenialPattern, error)
	List(ctx context.Context, offset, limit int) ([]domain.DenialPattern, int, error)
}

type patternService struct {
	episodeRepo port.EpisodeRepository
	patternRepo port.PatternRepository
	carcRepo    port.CARCRepository
	alerts      port.AlertSender
	cfg         config.DetectorConfig
}

// NewPatternService creates a new PatternService implementation.
func NewPatternService(
	episodeRepo port.EpisodeRepository,
	patternRepo port.PatternRepository,
	carcRepo port.CARCRepository,
	alerts port.AlertSender,
	cfg config.DetectorConfig,
) PatternService {
	return &patternService{
		episodeRepo: episodeRepo,
		patternRepo: patternRepo,
		carcRepo:    carcRepo,
		alerts:      alerts,
		cfg:         cfg,
	}
}

func (s *patternService) DetectForPayer(ctx context.Context, payerID string, daysBack int) (*DetectionSummary, error) {
	since := s.windowStart(daysBack)

	episodes, err := s.episodeRepo.ListForPayer(ctx, payerID, since)
	if err != nil {
		return nil, fmt.Errorf("patternService.DetectForPayer episodes: %w", err)
	}
	summary := &DetectionSummary{PayersScanned: 1, EpisodesScored: len(episodes)}
	if len(episodes) == 0 {
		return summary, nil
	}

	rows, err := s.episodeRepo.ListDenialOccurrences(ctx, payerID, since)
	if err != nil {
		return nil, fmt.Errorf("patternService.DetectForPayer occurrences: %w", err)
	}

	occurrences := make([]detector.Occurrence, 0, len(rows))
	for _, row := range rows {
		occurrences = append(occurrences, detector.Occurrence{
			EpisodeID:     row.EpisodeID,
			ReasonCode:    row.ReasonCode,
			FacilityCode:  row.FacilityCode,
			ProcedureCode: row.ProcedureCode,
			Amount:        row.Amount,
			SeenAt:        row.SeenAt,
		})
	}

	candidates := detector.Detect(occurrences, len(episodes), detector.Config{
		MinFrequency: s.cfg.MinFrequency,
		SaturationK:  s.cfg.SaturationK,
	}, s.describer(ctx))

	for i := range candidates {
		pattern := patternFromCandidate(payerID, &candidates[i])
		created, err := s.patternRepo.Upsert(ctx, pattern)
		if err != nil {
			log.Printf("patternService.DetectForPayer: upsert %s/%s/%s: %v",
				payerID, pattern.ReasonCode, pattern.ConditionKey, err)
			continue
		}
		summary.Patterns++
		if !created {
			continue
		}
		summary.NewPatterns++
		if pattern.ConfidenceScore >= s.cfg.AlertConfidence {
			if err := s.alerts.SendPatternAlert(ctx, pattern); err != nil {
				log.Printf("patternService.DetectForPayer: alert for pattern %s: %v", pattern.ID, err)
				continue
			}
			summary.AlertsSent++
		}
	}

	log.Printf("patternService.DetectForPayer: payer %s scored %d episodes, %d patterns (%d new, %d alerts)",
		payerID, summary.EpisodesScored, summary.Patterns, summary.NewPatterns, summary.AlertsSent)
	return summary, nil
}

func (s *patternService) DetectAll(ctx context.Context, daysBack int) (*DetectionSummary, error) {
	since := s.windowStart(daysBack)

	payers, err := s.episodeRepo.ListActivePayers(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("patternService.DetectAll payers: %w", err)
	}

	total := &DetectionSummary{}
	for _, payerID := range payers {
		summary, err := s.DetectForPayer(ctx, payerID, daysBack)
		if err != nil {
			log.Printf("patternService.DetectAll: payer %s: %v", payerID, err)
			continue
		}
		total.PayersScanned++
		total.EpisodesScored += summary.EpisodesScored
		total.Patterns += summary.Patterns
		total.NewPatterns += summary.NewPatterns
		total.AlertsSent += summary.AlertsSent
	}
	return total, nil
}

func (s *patternService) ListByPayer(ctx context.Context, payerID string) ([]domain.DenialPattern, error) {
	return s.patternRepo.ListByPayer(ctx, payerID)
}

func (s *patternService) List(ctx context.Context, offset, limit int) ([]domain.DenialPattern, int, error) {
	return s.patternRepo.List(ctx, offset, limit)
}

func (s *patternService) windowStart(daysBack int) time.Time {
	if daysBack <= 0 {
		daysBack = s.cfg.DefaultDaysBack
	}
	return time.Now().UTC().AddDate(0, 0, -daysBack)
}

// describer resolves reason codes against the CARC reference table, caching
// per detection pass. A missing code describes as the bare code.
func (s *patternService) describer(ctx context.Context) detector.Describer {
	cache := map[string]string{}
	return func(code string) string {
		if desc, ok := cache[code]; ok {
			return desc
		}
		desc, err := s.carcRepo.GetDescription(ctx, code)
		if err != nil {
			desc = ""
		}
		cache[code] = desc
		return desc
	}
}

func patternFromCandidate(payerID string, c *detector.Candidate) *domain.DenialPattern {
	return &domain.DenialPattern{
		ID:              uuid.New(),
		PayerID:         payerID,
		PatternType:     c.PatternType,
		Description:     c.Description,
		ReasonCode:      c.ReasonCode,
		ConditionKey:    c.ConditionKey,
		Conditions:      c.Conditions,
		OccurrenceCount: c.OccurrenceCount,
		EpisodesTotal:   c.EpisodesTotal,
		Frequency:       c.Frequency,
		ConfidenceScore: c.ConfidenceScore,
		FirstSeenAt:     c.FirstSeenAt,
		LastSeenAt:      c.LastSeenAt,
	}
}
