package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"claimsight/internal/domain"
)

// MockEpisodeRepo is a mock implementation of port.EpisodeRepository.
type MockEpisodeRepo struct {
	mock.Mock
}

func (m *MockEpisodeRepo) GetOrCreate(ctx context.Context, claim *domain.Claim) (*domain.ClaimEpisode, error) {
	args := m.Called(ctx, claim)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClaimEpisode), args.Error(1)
}

func (m *MockEpisodeRepo) GetByID(ctx context.Context, episodeID uuid.UUID) (*domain.ClaimEpisode, error) {
	args := m.Called(ctx, episodeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClaimEpisode), args.Error(1)
}

func (m *MockEpisodeRepo) GetByClaimID(ctx context.Context, claimID uuid.UUID) (*domain.ClaimEpisode, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClaimEpisode), args.Error(1)
}

func (m *MockEpisodeRepo) Save(ctx context.Context, episode *domain.ClaimEpisode) error {
	args := m.Called(ctx, episode)
	return args.Error(0)
}

func (m *MockEpisodeRepo) List(ctx context.Context, status domain.EpisodeStatus, offset, limit int) ([]domain.ClaimEpisode, int, error) {
	args := m.Called(ctx, status, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ClaimEpisode), args.Int(1), args.Error(2)
}

func (m *MockEpisodeRepo) ListForPayer(ctx context.Context, payerID string, since time.Time) ([]domain.ClaimEpisode, error) {
	args := m.Called(ctx, payerID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ClaimEpisode), args.Error(1)
}

func (m *MockEpisodeRepo) HasRemittance(ctx context.Context, episodeID uuid.UUID, controlNumber string) (bool, error) {
	args := m.Called(ctx, episodeID, controlNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockEpisodeRepo) AddRemittance(ctx context.Context, episodeID, remittanceID uuid.UUID) error {
	args := m.Called(ctx, episodeID, remittanceID)
	return args.Error(0)
}

func (m *MockEpisodeRepo) ListDenialOccurrences(ctx context.Context, payerID string, since time.Time) ([]domain.DenialOccurrence, error) {
	args := m.Called(ctx, payerID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DenialOccurrence), args.Error(1)
}

func (m *MockEpisodeRepo) ListActivePayers(ctx context.Context, since time.Time) ([]string, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
