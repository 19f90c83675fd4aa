package noop

import (
	"context"
	"log"

	"claimsight/internal/domain"
	"claimsight/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op AlertSender that logs pattern alerts to stdout.
func NewNoopSender() port.AlertSender {
	return &noopSender{}
}

func (s *noopSender) SendPatternAlert(_ context.Context, pattern *domain.DenialPattern) error {
	log.Printf("[NOOP ALERT] payer %s: %s (occurrences=%d/%d confidence=%.2f)",
		pattern.PayerID, pattern.Description,
		pattern.OccurrenceCount, pattern.EpisodesTotal, pattern.ConfidenceScore)
	return nil
}
