package service

import (
	"context"

	"github.com/google/uuid"

	"claimsight/internal/domain"
	"claimsight/internal/port"
)

// RemittanceService provides read access to stored remittances.
type RemittanceService interface {
	GetByID(ctx context.Context, remitID uuid.UUID) (*domain.Remittance, error)
	List(ctx context.Context, offset, limit int) ([]domain.Remittance, int, error)
}

type remittanceService struct {
	remitRepo port.RemittanceRepository
}

// NewRemittanceService creates a new RemittanceService implementation.
func NewRemittanceService(remitRepo port.RemittanceRepository) RemittanceService {
	return &remittanceService{remitRepo: remitRepo}
}

func (s *remittanceService) GetByID(ctx context.Context, remitID uuid.UUID) (*domain.Remittance, error) {
	return s.remitRepo.GetByID(ctx, remitID)
}

func (s *remittanceService) List(ctx context.Context, offset, limit int) ([]domain.Remittance, int, error) {
	return s.remitRepo.List(ctx, offset, limit)
}
