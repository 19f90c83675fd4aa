package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"claimsight/internal/domain"
)

// MockCARCRepo is a mock implementation of port.CARCRepository.
type MockCARCRepo struct {
	mock.Mock
}

func (m *MockCARCRepo) UpsertBatch(ctx context.Context, codes []domain.CARCCode) error {
	args := m.Called(ctx, codes)
	return args.Error(0)
}

func (m *MockCARCRepo) GetDescription(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *MockCARCRepo) List(ctx context.Context) ([]domain.CARCCode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CARCCode), args.Error(1)
}
