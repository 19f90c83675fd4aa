package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"claimsight/internal/config"
	"claimsight/internal/email/noop"
	"claimsight/internal/email/ses"
	"claimsight/internal/handler"
	"claimsight/internal/port"
	"claimsight/internal/repository/postgres"
	"claimsight/internal/router"
	"claimsight/internal/service"
	s3storage "claimsight/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	fileRepo := postgres.NewEDIFileRepo(db)
	claimRepo := postgres.NewClaimRepo(db)
	remitRepo := postgres.NewRemittanceRepo(db)
	episodeRepo := postgres.NewEpisodeRepo(db)
	patternRepo := postgres.NewPatternRepo(db)
	carcRepo := postgres.NewCARCRepo(db)
	reportRepo := postgres.NewReportRepo(db)
	statsRepo := postgres.NewStatsRepo(db)
	duplicateRepo := postgres.NewDuplicateFinderRepo(db)

	// Initialize the document archive
	docArchive, err := s3storage.NewArchive(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize document archive: %w", err)
	}

	// Initialize alert delivery
	var alerts port.AlertSender
	if cfg.Email.Provider == "ses" {
		alerts, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.ToAddress)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	} else {
		alerts = noop.NewNoopSender()
	}

	// Initialize services
	linkSvc := service.NewLinkService(claimRepo, episodeRepo, remitRepo, cfg.Linker)
	ingestSvc := service.NewIngestService(docArchive, fileRepo, claimRepo, remitRepo, linkSvc, cfg.Queue.MaxRetries)
	fileSvc := service.NewFileService(fileRepo, docArchive, &cfg.S3)
	claimSvc := service.NewClaimService(claimRepo)
	remitSvc := service.NewRemittanceService(remitRepo)
	episodeSvc := service.NewEpisodeService(episodeRepo)
	patternSvc := service.NewPatternService(episodeRepo, patternRepo, carcRepo, alerts, cfg.Detector)
	reportSvc := service.NewReportService(reportRepo, episodeRepo, patternRepo, duplicateRepo)
	statsSvc := service.NewStatsService(statsRepo)

	// Initialize handlers
	fileH := handler.NewFileHandler(fileSvc)
	claimH := handler.NewClaimHandler(claimSvc)
	remitH := handler.NewRemittanceHandler(remitSvc)
	episodeH := handler.NewEpisodeHandler(episodeSvc, linkSvc)
	patternH := handler.NewPatternHandler(patternSvc)
	reportH := handler.NewReportHandler(reportSvc)
	statsH := handler.NewStatsHandler(statsSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(fileH, claimH, remitH, episodeH, patternH, reportH, statsH, healthH, cfg.CORS.AllowedOrigins)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Ingest queue worker drains in-flight files on shutdown.
	worker := service.NewIngestQueueWorker(fileRepo, ingestSvc, service.IngestQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		Concurrency:  cfg.Queue.Concurrency,
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		stop()
		<-workerDone
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	<-workerDone

	return nil
}
