package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"claimsight/internal/domain"
)

// MockEDIFileRepo is a mock implementation of port.EDIFileRepository.
type MockEDIFileRepo struct {
	mock.Mock
}

func (m *MockEDIFileRepo) Create(ctx context.Context, file *domain.EDIFile) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

func (m *MockEDIFileRepo) GetByID(ctx context.Context, fileID uuid.UUID) (*domain.EDIFile, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EDIFile), args.Error(1)
}

func (m *MockEDIFileRepo) List(ctx context.Context, offset, limit int) ([]domain.EDIFile, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.EDIFile), args.Int(1), args.Error(2)
}

func (m *MockEDIFileRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.EDIFile, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EDIFile), args.Error(1)
}

func (m *MockEDIFileRepo) MarkIngested(ctx context.Context, file *domain.EDIFile) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

func (m *MockEDIFileRepo) MarkFailed(ctx context.Context, fileID uuid.UUID, ingestErr string, requeue bool) error {
	args := m.Called(ctx, fileID, ingestErr, requeue)
	return args.Error(0)
}
