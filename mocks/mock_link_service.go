package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"claimsight/internal/domain"
	"claimsight/internal/service"
)

// MockLinkService is a mock implementation of service.LinkService.
type MockLinkService struct {
	mock.Mock
}

func (m *MockLinkService) EnsureEpisode(ctx context.Context, claim *domain.Claim) (*domain.ClaimEpisode, error) {
	args := m.Called(ctx, claim)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClaimEpisode), args.Error(1)
}

func (m *MockLinkService) AutoLinkByControlNumber(ctx context.Context, remit *domain.Remittance) (int, error) {
	args := m.Called(ctx, remit)
	return args.Int(0), args.Error(1)
}

func (m *MockLinkService) RelinkUnlinked(ctx context.Context, limit int) (*service.RelinkSummary, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RelinkSummary), args.Error(1)
}
