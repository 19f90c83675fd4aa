package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"claimsight/internal/domain"
	"claimsight/internal/service"
	"claimsight/mocks"
)

func TestIngestQueueWorker_PollsAndDispatches(t *testing.T) {
	fileRepo := new(mocks.MockEDIFileRepo)
	ingest := new(mocks.MockIngestService)

	file := domain.EDIFile{
		ID:       uuid.New(),
		S3Bucket: "claimsight-files",
		S3Key:    "edi/2026/a1b2.edi",
		Status:   domain.FileStatusIngesting,
	}

	// First poll returns one file, subsequent polls return empty
	fileRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.EDIFile{file}, nil).Once()
	fileRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.EDIFile{}, nil).Maybe()

	ingest.On("IngestFile", mock.Anything, mock.AnythingOfType("*domain.EDIFile")).
		Return(&domain.IngestSummary{FileID: file.ID}, nil).Maybe()

	cfg := service.IngestQueueConfig{
		PollInterval: 50 * time.Millisecond,
		Concurrency:  2,
	}
	worker := service.NewIngestQueueWorker(fileRepo, ingest, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	// Wait for at least one poll cycle
	time.Sleep(200 * time.Millisecond)
	cancel()
	<-done

	fileRepo.AssertCalled(t, "ClaimQueued", mock.Anything, mock.AnythingOfType("int"))
	ingest.AssertCalled(t, "IngestFile", mock.Anything, mock.AnythingOfType("*domain.EDIFile"))
}

func TestIngestQueueWorker_RespectsConcurrencyCap(t *testing.T) {
	fileRepo := new(mocks.MockEDIFileRepo)
	ingest := new(mocks.MockIngestService)

	// Return empty to verify the limit parameter
	fileRepo.On("ClaimQueued", mock.Anything, 2).
		Return([]domain.EDIFile{}, nil).Maybe()

	cfg := service.IngestQueueConfig{
		PollInterval: 50 * time.Millisecond,
		Concurrency:  2,
	}
	worker := service.NewIngestQueueWorker(fileRepo, ingest, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	time.Sleep(150 * time.Millisecond)
	cancel()
	<-done

	// with no in-flight ingests, every poll asks for the full concurrency
	for _, call := range fileRepo.Calls {
		if call.Method == "ClaimQueued" {
			assert.Equal(t, 2, call.Arguments.Int(1))
		}
	}
}

func TestIngestQueueWorker_DrainsInFlightOnShutdown(t *testing.T) {
	fileRepo := new(mocks.MockEDIFileRepo)
	ingest := new(mocks.MockIngestService)

	file := domain.EDIFile{ID: uuid.New(), Status: domain.FileStatusIngesting}
	started := make(chan struct{})
	finished := make(chan struct{})

	fileRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.EDIFile{file}, nil).Once()
	fileRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.EDIFile{}, nil).Maybe()

	ingest.On("IngestFile", mock.Anything, mock.AnythingOfType("*domain.EDIFile")).
		Run(func(args mock.Arguments) {
			close(started)
			time.Sleep(100 * time.Millisecond)
			close(finished)
		}).
		Return(&domain.IngestSummary{FileID: file.ID}, nil).Once()

	cfg := service.IngestQueueConfig{
		PollInterval: 20 * time.Millisecond,
		Concurrency:  1,
	}
	worker := service.NewIngestQueueWorker(fileRepo, ingest, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	<-started
	cancel()
	<-done

	// Start must not return while the dispatched ingest is still running
	select {
	case <-finished:
	default:
		t.Fatal("worker shut down before in-flight ingest completed")
	}
}

func TestIngestQueueWorker_PollErrorKeepsRunning(t *testing.T) {
	fileRepo := new(mocks.MockEDIFileRepo)
	ingest := new(mocks.MockIngestService)

	fileRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return(nil, assert.AnError).Once()
	fileRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.EDIFile{}, nil).Maybe()

	cfg := service.IngestQueueConfig{
		PollInterval: 30 * time.Millisecond,
		Concurrency:  1,
	}
	worker := service.NewIngestQueueWorker(fileRepo, ingest, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	time.Sleep(120 * time.Millisecond)
	cancel()
	<-done

	// the failed poll did not stop later polls
	assert.GreaterOrEqual(t, len(fileRepo.Calls), 2)
	ingest.AssertNotCalled(t, "IngestFile", mock.Anything, mock.Anything)
}
