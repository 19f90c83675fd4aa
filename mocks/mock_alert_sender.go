package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"claimsight/internal/domain"
)

// MockAlertSender is a mock implementation of port.AlertSender.
type MockAlertSender struct {
	mock.Mock
}

func (m *MockAlertSender) SendPatternAlert(ctx context.Context, pattern *domain.DenialPattern) error {
	args := m.Called(ctx, pattern)
	return args.Error(0)
}
