// Command detect runs denial pattern detection across every payer with
// recent linked activity. Intended for cron or ad-hoc operator use.
// Usage: go run ./cmd/detect [-days-back N] [-payer ID]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"claimsight/internal/config"
	"claimsight/internal/email/noop"
	"claimsight/internal/repository/postgres"
	"claimsight/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	daysBack := flag.Int("days-back", 0, "trailing window in days (0 uses the configured default)")
	payerID := flag.String("payer", "", "restrict detection to one payer")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	episodeRepo := postgres.NewEpisodeRepo(db)
	patternRepo := postgres.NewPatternRepo(db)
	carcRepo := postgres.NewCARCRepo(db)

	// Batch runs log alerts instead of emailing; the server's detection path
	// owns operator notification.
	patternSvc := service.NewPatternService(episodeRepo, patternRepo, carcRepo, noop.NewNoopSender(), cfg.Detector)

	ctx := context.Background()

	var summary *service.DetectionSummary
	if *payerID != "" {
		summary, err = patternSvc.DetectForPayer(ctx, *payerID, *daysBack)
	} else {
		summary, err = patternSvc.DetectAll(ctx, *daysBack)
	}
	if err != nil {
		return fmt.Errorf("detection: %w", err)
	}

	log.Printf("detection complete: %d payers, %d episodes, %d patterns (%d new)",
		summary.PayersScanned, summary.EpisodesScored, summary.Patterns, summary.NewPatterns)
	return nil
}
