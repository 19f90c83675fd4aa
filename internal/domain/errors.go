package domain

import "errors"

var (
	ErrNotFound                = errors.New("resource not found")
	ErrFileNotFound            = errors.New("edi file not found")
	ErrClaimNotFound           = errors.New("claim not found")
	ErrRemittanceNotFound      = errors.New("remittance not found")
	ErrEpisodeNotFound         = errors.New("episode not found")
	ErrMissingControlNumber    = errors.New("record is missing its control number")
	ErrUnsupportedFileType     = errors.New("unsupported file type")
	ErrFileTooLarge            = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed            = errors.New("file upload to storage failed")
	ErrRemittanceAlreadyLinked = errors.New("remittance already linked to episode")
)
