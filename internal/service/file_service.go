package service

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"claimsight/internal/config"
	"claimsight/internal/domain"
	"claimsight/internal/port"
)

// Extensions accepted for raw EDI uploads. X12 interchanges arrive under a
// handful of conventional suffixes; all of them are plain text.
var allowedExtensions = map[string]bool{
	"edi": true,
	"x12": true,
	"837": true,
	"835": true,
	"txt": true,
	"dat": true,
}

// FileUploadInput is the DTO for EDI file upload requests.
type FileUploadInput struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// FileService defines the EDI file intake contract. Uploads land in the
// object archive with a queued row; the ingest worker picks them up from
// there.
type FileService interface {
	Upload(ctx context.Context, input FileUploadInput) (*domain.EDIFile, error)
	GetByID(ctx context.Context, fileID uuid.UUID) (*domain.EDIFile, error)
	List(ctx context.Context, offset, limit int) ([]domain.EDIFile, int, error)
	GetDownloadURL(ctx context.Context, fileID uuid.UUID) (string, error)
}

type fileService struct {
	fileRepo port.EDIFileRepository
	storage  port.ObjectStorage
	cfg      *config.S3Config
}

// NewFileService creates a new FileService implementation.
func NewFileService(
	fileRepo port.EDIFileRepository,
	storage port.ObjectStorage,
	cfg *config.S3Config,
) FileService {
	return &fileService{
		fileRepo: fileRepo,
		storage:  storage,
		cfg:      cfg,
	}
}

func (s *fileService) Upload(ctx context.Context, input FileUploadInput) (*domain.EDIFile, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	if !allowedExtensions[ext] {
		return nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	fileID := uuid.New()
	s3Key := fmt.Sprintf("edi/%s/%s", fileID, input.Header.Filename)

	file := &domain.EDIFile{
		ID:             fileID,
		FileName:       fileID.String() + "." + ext,
		OriginalName:   input.Header.Filename,
		TransactionSet: domain.TransactionSetUnknown,
		FileSize:       input.Header.Size,
		S3Bucket:       s.cfg.Bucket,
		S3Key:          s3Key,
		Status:         domain.FileStatusQueued,
	}

	log.Printf("fileService.Upload: archiving %s (%d bytes) as %s",
		input.Header.Filename, input.Header.Size, s3Key)

	// Archive first: a row without its object would dead-letter the worker.
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         s3Key,
		Body:        input.File,
		ContentType: "text/plain",
		Size:        input.Header.Size,
	})
	if err != nil {
		log.Printf("fileService.Upload: archive failed for %s: %v", input.Header.Filename, err)
		return nil, domain.ErrUploadFailed
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		log.Printf("fileService.Upload: failed to create file record: %v", err)
		return nil, fmt.Errorf("creating file record: %w", err)
	}

	return file, nil
}

func (s *fileService) GetByID(ctx context.Context, fileID uuid.UUID) (*domain.EDIFile, error) {
	return s.fileRepo.GetByID(ctx, fileID)
}

func (s *fileService) List(ctx context.Context, offset, limit int) ([]domain.EDIFile, int, error) {
	return s.fileRepo.List(ctx, offset, limit)
}

func (s *fileService) GetDownloadURL(ctx context.Context, fileID uuid.UUID) (string, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, file.S3Bucket, file.S3Key, s.cfg.PresignExpiry)
}
