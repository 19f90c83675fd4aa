package service

import (
	"context"
	"log"
	"sync"
	"time"

	"claimsight/internal/port"
)

// IngestQueueConfig holds settings for the ingest queue worker.
type IngestQueueConfig struct {
	PollInterval time.Duration
	Concurrency  int
}

// IngestQueueWorker polls for queued EDI files and dispatches them for
// ingestion.
type IngestQueueWorker struct {
	fileRepo port.EDIFileRepository
	ingest   IngestService
	cfg      IngestQueueConfig
	wg       sync.WaitGroup
}

// NewIngestQueueWorker creates a new IngestQueueWorker.
func NewIngestQueueWorker(fileRepo port.EDIFileRepository, ingest IngestService, cfg IngestQueueConfig) *IngestQueueWorker {
	return &IngestQueueWorker{
		fileRepo: fileRepo,
		ingest:   ingest,
		cfg:      cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight ingests have finished.
func (w *IngestQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("ingestQueueWorker: started (poll=%s, concurrency=%d)",
		w.cfg.PollInterval, w.cfg.Concurrency)

	for {
		select {
		case <-ctx.Done():
			log.Printf("ingestQueueWorker: shutting down, waiting for in-flight ingests...")
			w.wg.Wait()
			log.Printf("ingestQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			files, err := w.fileRepo.ClaimQueued(ctx, available)
			if err != nil {
				if ctx.Err() != nil {
					// Context canceled during poll — exit gracefully
					continue
				}
				log.Printf("ingestQueueWorker: ClaimQueued error: %v", err)
				continue
			}

			for i := range files {
				file := files[i] // copy for goroutine

				sem <- struct{}{} // acquire
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }() // release

					// Use a fresh context independent of the poll context
					// so in-flight ingests complete even during shutdown.
					ingestCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
					defer cancel()

					log.Printf("ingestQueueWorker: dispatching file %s (attempt %d)", file.ID, file.IngestAttempts+1)
					if _, err := w.ingest.IngestFile(ingestCtx, &file); err != nil {
						log.Printf("ingestQueueWorker: file %s: %v", file.ID, err)
					}
				}()
			}
		}
	}
}
