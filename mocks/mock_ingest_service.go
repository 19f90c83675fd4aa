package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"claimsight/internal/domain"
)

// MockIngestService is a mock implementation of service.IngestService.
type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) IngestFile(ctx context.Context, file *domain.EDIFile) (*domain.IngestSummary, error) {
	args := m.Called(ctx, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IngestSummary), args.Error(1)
}
