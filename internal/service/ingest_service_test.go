package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"claimsight/internal/domain"
	"claimsight/internal/service"
	"claimsight/mocks"
)

const testISAHeader = "ISA*00*          *00*          *ZZ*SENDER         *ZZ*RECEIVER       *260301*1200*^*00501*000000001*0*P*:"

func ediDoc(segments ...string) []byte {
	all := append([]string{testISAHeader}, segments...)
	all = append(all, "IEA*1*000000001")
	return []byte(strings.Join(all, "~\n") + "~\n")
}

func queuedFile() *domain.EDIFile {
	return &domain.EDIFile{
		ID:           uuid.New(),
		FileName:     "a1b2.edi",
		OriginalName: "batch.edi",
		S3Bucket:     "claimsight-files",
		S3Key:        "edi/2026/a1b2.edi",
		Status:       domain.FileStatusIngesting,
	}
}

func TestIngestService_IngestMixedFile(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	fileRepo := new(mocks.MockEDIFileRepo)
	claimRepo := new(mocks.MockClaimRepo)
	remitRepo := new(mocks.MockRemittanceRepo)
	linker := new(mocks.MockLinkService)

	file := queuedFile()
	doc := ediDoc(
		"ST*837*0001",
		"HL*1**20*1",
		"CLM*CLAIM001*800",
		"SV1*HC:99213*800*UN*1",
		"SE*5*0001",
		"ST*835*0002",
		"BPR*I*650*C*ACH*CCP*01*999999992**01*888888888*DA*123456*01*111111111*DA*20260215",
		"TRN*1*CHK1001*1999999999",
		"N1*PR*ACME HEALTH*XV*PAYER01",
		"CLP*CLAIM001*1*800*650***ICN123",
		"SE*6*0002",
	)

	storage.On("Download", mock.Anything, file.S3Bucket, file.S3Key).Return(doc, nil).Once()
	claimRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Claim) bool {
		return c.ControlNumber == "CLAIM001" && c.FileID == file.ID
	})).Return(nil).Once()
	linker.On("EnsureEpisode", mock.Anything, mock.AnythingOfType("*domain.Claim")).
		Return(&domain.ClaimEpisode{ID: uuid.New(), Status: domain.EpisodePending}, nil).Once()
	remitRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.Remittance) bool {
		return r.ControlNumber == "ICN123" && r.PayerID == "PAYER01"
	})).Return(nil).Once()
	linker.On("AutoLinkByControlNumber", mock.Anything, mock.AnythingOfType("*domain.Remittance")).Return(1, nil).Once()
	fileRepo.On("MarkIngested", mock.Anything, file).Return(nil).Once()

	svc := service.NewIngestService(storage, fileRepo, claimRepo, remitRepo, linker, 3)
	summary, err := svc.IngestFile(context.Background(), file)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ClaimsParsed)
	assert.Equal(t, 1, summary.RemittancesParsed)
	assert.Equal(t, 1, summary.EpisodesLinked)
	assert.Equal(t, 0, summary.Unlinked)
	assert.Equal(t, 0, summary.Errors)
	assert.Equal(t, string(domain.TransactionSetMixed), summary.TransactionSet)

	assert.Equal(t, domain.TransactionSetMixed, file.TransactionSet)
	assert.Equal(t, 1, file.ClaimCount)
	assert.Equal(t, 1, file.RemittanceCount)
	storage.AssertExpectations(t)
	fileRepo.AssertExpectations(t)
}

func TestIngestService_RecordFailureDoesNotFailFile(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	fileRepo := new(mocks.MockEDIFileRepo)
	claimRepo := new(mocks.MockClaimRepo)
	remitRepo := new(mocks.MockRemittanceRepo)
	linker := new(mocks.MockLinkService)

	file := queuedFile()
	// first CLM has no control number and cannot be stored
	doc := ediDoc(
		"ST*837*0001",
		"HL*1**20*1",
		"CLM**100",
		"CLM*CLAIM002*200",
		"SV1*HC:99213*200*UN*1",
		"SE*6*0001",
	)

	storage.On("Download", mock.Anything, file.S3Bucket, file.S3Key).Return(doc, nil).Once()
	claimRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Claim) bool {
		return c.ControlNumber == "CLAIM002"
	})).Return(nil).Once()
	linker.On("EnsureEpisode", mock.Anything, mock.AnythingOfType("*domain.Claim")).
		Return(&domain.ClaimEpisode{ID: uuid.New()}, nil).Once()
	fileRepo.On("MarkIngested", mock.Anything, file).Return(nil).Once()

	svc := service.NewIngestService(storage, fileRepo, claimRepo, remitRepo, linker, 3)
	summary, err := svc.IngestFile(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ClaimsParsed)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, string(domain.TransactionSet837), summary.TransactionSet)
	fileRepo.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestService_LinkFailureLeavesRemittanceUnlinked(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	fileRepo := new(mocks.MockEDIFileRepo)
	claimRepo := new(mocks.MockClaimRepo)
	remitRepo := new(mocks.MockRemittanceRepo)
	linker := new(mocks.MockLinkService)

	file := queuedFile()
	doc := ediDoc(
		"ST*835*0001",
		"BPR*I*650*C*ACH*CCP*01*999999992**01*888888888*DA*123456*01*111111111*DA*20260215",
		"TRN*1*CHK1001*1999999999",
		"CLP*CLAIM001*1*800*650***ICN123",
		"SE*5*0001",
	)

	storage.On("Download", mock.Anything, file.S3Bucket, file.S3Key).Return(doc, nil).Once()
	remitRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Remittance")).Return(nil).Once()
	linker.On("AutoLinkByControlNumber", mock.Anything, mock.AnythingOfType("*domain.Remittance")).
		Return(0, assert.AnError).Once()
	fileRepo.On("MarkIngested", mock.Anything, file).Return(nil).Once()

	svc := service.NewIngestService(storage, fileRepo, claimRepo, remitRepo, linker, 3)
	summary, err := svc.IngestFile(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.RemittancesParsed)
	assert.Equal(t, 0, summary.EpisodesLinked)
	assert.Equal(t, 1, summary.Unlinked)
	assert.Equal(t, 0, summary.Errors)
}

func TestIngestService_FatalParseFailsTerminally(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	fileRepo := new(mocks.MockEDIFileRepo)
	claimRepo := new(mocks.MockClaimRepo)
	remitRepo := new(mocks.MockRemittanceRepo)
	linker := new(mocks.MockLinkService)

	file := queuedFile()
	storage.On("Download", mock.Anything, file.S3Bucket, file.S3Key).Return([]byte("this is not an interchange"), nil).Once()
	// fatal parse errors never requeue, regardless of remaining attempts
	fileRepo.On("MarkFailed", mock.Anything, file.ID, mock.AnythingOfType("string"), false).Return(nil).Once()

	svc := service.NewIngestService(storage, fileRepo, claimRepo, remitRepo, linker, 3)
	summary, err := svc.IngestFile(context.Background(), file)
	require.Error(t, err)
	assert.Nil(t, summary)
	fileRepo.AssertExpectations(t)
}

func TestIngestService_DownloadFailureRequeues(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	fileRepo := new(mocks.MockEDIFileRepo)
	claimRepo := new(mocks.MockClaimRepo)
	remitRepo := new(mocks.MockRemittanceRepo)
	linker := new(mocks.MockLinkService)

	file := queuedFile()
	storage.On("Download", mock.Anything, file.S3Bucket, file.S3Key).Return(nil, assert.AnError).Once()
	fileRepo.On("MarkFailed", mock.Anything, file.ID, mock.AnythingOfType("string"), true).Return(nil).Once()

	svc := service.NewIngestService(storage, fileRepo, claimRepo, remitRepo, linker, 3)
	_, err := svc.IngestFile(context.Background(), file)
	require.Error(t, err)
	fileRepo.AssertExpectations(t)
}

func TestIngestService_DownloadFailureExhaustsRetries(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	fileRepo := new(mocks.MockEDIFileRepo)
	claimRepo := new(mocks.MockClaimRepo)
	remitRepo := new(mocks.MockRemittanceRepo)
	linker := new(mocks.MockLinkService)

	file := queuedFile()
	file.IngestAttempts = 2
	storage.On("Download", mock.Anything, file.S3Bucket, file.S3Key).Return(nil, assert.AnError).Once()
	fileRepo.On("MarkFailed", mock.Anything, file.ID, mock.AnythingOfType("string"), false).Return(nil).Once()

	svc := service.NewIngestService(storage, fileRepo, claimRepo, remitRepo, linker, 3)
	_, err := svc.IngestFile(context.Background(), file)
	require.Error(t, err)
	fileRepo.AssertExpectations(t)
}
