package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"claimsight/internal/domain"
)

// MockRemittanceRepo is a mock implementation of port.RemittanceRepository.
type MockRemittanceRepo struct {
	mock.Mock
}

func (m *MockRemittanceRepo) Create(ctx context.Context, remit *domain.Remittance) error {
	args := m.Called(ctx, remit)
	return args.Error(0)
}

func (m *MockRemittanceRepo) GetByID(ctx context.Context, remitID uuid.UUID) (*domain.Remittance, error) {
	args := m.Called(ctx, remitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Remittance), args.Error(1)
}

func (m *MockRemittanceRepo) List(ctx context.Context, offset, limit int) ([]domain.Remittance, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Remittance), args.Int(1), args.Error(2)
}

func (m *MockRemittanceRepo) ListUnlinked(ctx context.Context, limit int) ([]domain.Remittance, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Remittance), args.Error(1)
}
