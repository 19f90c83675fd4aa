package service

import (
	"context"

	"github.com/google/uuid"

	"claimsight/internal/domain"
	"claimsight/internal/port"
)

// EpisodeService provides read access to claim episodes.
type EpisodeService interface {
	GetByID(ctx context.Context, episodeID uuid.UUID) (*domain.ClaimEpisode, error)
	GetByClaimID(ctx context.Context, claimID uuid.UUID) (*domain.ClaimEpisode, error)
	// List filters by status when it is non-empty.
	List(ctx context.Context, status domain.EpisodeStatus, offset, limit int) ([]domain.ClaimEpisode, int, error)
}

type episodeService struct {
	episodeRepo port.EpisodeRepository
}

// NewEpisodeService creates a new EpisodeService implementation.
func NewEpisodeService(episodeRepo port.EpisodeRepository) EpisodeService {
	return &episodeService{episodeRepo: episodeRepo}
}

func (s *episodeService) GetByID(ctx context.Context, episodeID uuid.UUID) (*domain.ClaimEpisode, error) {
	return s.episodeRepo.GetByID(ctx, episodeID)
}

func (s *episodeService) GetByClaimID(ctx context.Context, claimID uuid.UUID) (*domain.ClaimEpisode, error) {
	return s.episodeRepo.GetByClaimID(ctx, claimID)
}

func (s *episodeService) List(ctx context.Context, status domain.EpisodeStatus, offset, limit int) ([]domain.ClaimEpisode, int, error) {
	return s.episodeRepo.List(ctx, status, offset, limit)
}
