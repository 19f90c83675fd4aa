package service

import (
	"context"

	"github.com/google/uuid"

	"claimsight/internal/domain"
	"claimsight/internal/port"
)

// ClaimService provides read access to stored claims.
type ClaimService interface {
	GetByID(ctx context.Context, claimID uuid.UUID) (*domain.Claim, error)
	FindByControlNumber(ctx context.Context, controlNumber string) ([]domain.Claim, error)
	List(ctx context.Context, offset, limit int) ([]domain.Claim, int, error)
}

type claimService struct {
	claimRepo port.ClaimRepository
}

// NewClaimService creates a new ClaimService implementation.
func NewClaimService(claimRepo port.ClaimRepository) ClaimService {
	return &claimService{claimRepo: claimRepo}
}

func (s *claimService) GetByID(ctx context.Context, claimID uuid.UUID) (*domain.Claim, error) {
	return s.claimRepo.GetByID(ctx, claimID)
}

func (s *claimService) FindByControlNumber(ctx context.Context, controlNumber string) ([]domain.Claim, error) {
	return s.claimRepo.FindByControlNumber(ctx, controlNumber)
}

func (s *claimService) List(ctx context.Context, offset, limit int) ([]domain.Claim, int, error) {
	return s.claimRepo.List(ctx, offset, limit)
}
