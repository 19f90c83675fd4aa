package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"claimsight/internal/domain"
)

// MockPatternRepo is a mock implementation of port.PatternRepository.
type MockPatternRepo struct {
	mock.Mock
}

func (m *MockPatternRepo) Upsert(ctx context.Context, pattern *domain.DenialPattern) (bool, error) {
	args := m.Called(ctx, pattern)
	return args.Bool(0), args.Error(1)
}

func (m *MockPatternRepo) ListByPayer(ctx context.Context, payerID string) ([]domain.DenialPattern, error) {
	args := m.Called(ctx, payerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DenialPattern), args.Error(1)
}

func (m *MockPatternRepo) List(ctx context.Context, offset, limit int) ([]domain.DenialPattern, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.DenialPattern), args.Int(1), args.Error(2)
}
