package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"claimsight/internal/config"
	"claimsight/internal/domain"
	"claimsight/internal/service"
	"claimsight/mocks"
)

func detectorConfig() config.DetectorConfig {
	return config.DetectorConfig{
		MinFrequency:    0.05,
		SaturationK:     5,
		DefaultDaysBack: 90,
		AlertConfidence: 0.5,
	}
}

func linkedEpisodes(n int) []domain.ClaimEpisode {
	episodes := make([]domain.ClaimEpisode, n)
	for i := range episodes {
		episodes[i] = domain.ClaimEpisode{ID: uuid.New(), Status: domain.EpisodeLinked}
	}
	return episodes
}

func denialRows(reason string, episodes, perEpisode int) []domain.DenialOccurrence {
	now := time.Now().UTC()
	var rows []domain.DenialOccurrence
	for i := 0; i < episodes; i++ {
		id := uuid.New()
		for j := 0; j < perEpisode; j++ {
			rows = append(rows, domain.DenialOccurrence{
				EpisodeID:  id,
				ReasonCode: reason,
				SeenAt:     now.Add(-time.Duration(i) * time.Hour),
			})
		}
	}
	return rows
}

func TestPatternService_DetectForPayer_AlertsOnConfidentNewPattern(t *testing.T) {
	episodeRepo := new(mocks.MockEpisodeRepo)
	patternRepo := new(mocks.MockPatternRepo)
	carcRepo := new(mocks.MockCARCRepo)
	alerts := new(mocks.MockAlertSender)

	// reason 45 on 8 of 10 episodes clears the alert floor; reason 97 on one
	// episode is emitted but far below it
	rows := append(denialRows("45", 8, 1), denialRows("97", 1, 1)...)

	episodeRepo.On("ListForPayer", mock.Anything, "PAYER01", mock.AnythingOfType("time.Time")).
		Return(linkedEpisodes(10), nil).Once()
	episodeRepo.On("ListDenialOccurrences", mock.Anything, "PAYER01", mock.AnythingOfType("time.Time")).
		Return(rows, nil).Once()
	carcRepo.On("GetDescription", mock.Anything, "45").Return("Charge exceeds fee schedule", nil).Once()
	carcRepo.On("GetDescription", mock.Anything, "97").Return("", nil).Once()
	patternRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.DenialPattern")).Return(true, nil).Twice()
	alerts.On("SendPatternAlert", mock.Anything, mock.MatchedBy(func(p *domain.DenialPattern) bool {
		return p.ReasonCode == "45" && p.PayerID == "PAYER01"
	})).Return(nil).Once()

	svc := service.NewPatternService(episodeRepo, patternRepo, carcRepo, alerts, detectorConfig())
	summary, err := svc.DetectForPayer(context.Background(), "PAYER01", 30)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.PayersScanned)
	assert.Equal(t, 10, summary.EpisodesScored)
	assert.Equal(t, 2, summary.Patterns)
	assert.Equal(t, 2, summary.NewPatterns)
	assert.Equal(t, 1, summary.AlertsSent)
	alerts.AssertExpectations(t)
}

func TestPatternService_DetectForPayer_UpdatedPatternStaysQuiet(t *testing.T) {
	episodeRepo := new(mocks.MockEpisodeRepo)
	patternRepo := new(mocks.MockPatternRepo)
	carcRepo := new(mocks.MockCARCRepo)
	alerts := new(mocks.MockAlertSender)

	episodeRepo.On("ListForPayer", mock.Anything, "PAYER01", mock.AnythingOfType("time.Time")).
		Return(linkedEpisodes(10), nil).Once()
	episodeRepo.On("ListDenialOccurrences", mock.Anything, "PAYER01", mock.AnythingOfType("time.Time")).
		Return(denialRows("45", 8, 1), nil).Once()
	carcRepo.On("GetDescription", mock.Anything, "45").Return("", nil).Once()
	// pattern already known: refreshed, not created
	patternRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.DenialPattern")).Return(false, nil).Once()

	svc := service.NewPatternService(episodeRepo, patternRepo, carcRepo, alerts, detectorConfig())
	summary, err := svc.DetectForPayer(context.Background(), "PAYER01", 30)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Patterns)
	assert.Equal(t, 0, summary.NewPatterns)
	assert.Equal(t, 0, summary.AlertsSent)
	alerts.AssertNotCalled(t, "SendPatternAlert", mock.Anything, mock.Anything)
}

func TestPatternService_DetectForPayer_NoEpisodes(t *testing.T) {
	episodeRepo := new(mocks.MockEpisodeRepo)
	patternRepo := new(mocks.MockPatternRepo)
	carcRepo := new(mocks.MockCARCRepo)
	alerts := new(mocks.MockAlertSender)

	episodeRepo.On("ListForPayer", mock.Anything, "PAYER01", mock.AnythingOfType("time.Time")).
		Return([]domain.ClaimEpisode{}, nil).Once()

	svc := service.NewPatternService(episodeRepo, patternRepo, carcRepo, alerts, detectorConfig())
	summary, err := svc.DetectForPayer(context.Background(), "PAYER01", 30)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.EpisodesScored)
	assert.Equal(t, 0, summary.Patterns)
	episodeRepo.AssertNotCalled(t, "ListDenialOccurrences", mock.Anything, mock.Anything, mock.Anything)
}

func TestPatternService_DetectForPayer_DefaultWindow(t *testing.T) {
	episodeRepo := new(mocks.MockEpisodeRepo)
	patternRepo := new(mocks.MockPatternRepo)
	carcRepo := new(mocks.MockCARCRepo)
	alerts := new(mocks.MockAlertSender)

	expected := time.Now().UTC().AddDate(0, 0, -90)
	episodeRepo.On("ListForPayer", mock.Anything, "PAYER01", mock.MatchedBy(func(since time.Time) bool {
		return since.Sub(expected).Abs() < time.Minute
	})).Return([]domain.ClaimEpisode{}, nil).Once()

	svc := service.NewPatternService(episodeRepo, patternRepo, carcRepo, alerts, detectorConfig())
	_, err := svc.DetectForPayer(context.Background(), "PAYER01", 0)
	require.NoError(t, err)
	episodeRepo.AssertExpectations(t)
}

func TestPatternService_DetectAll_SkipsFailingPayer(t *testing.T) {
	episodeRepo := new(mocks.MockEpisodeRepo)
	patternRepo := new(mocks.MockPatternRepo)
	carcRepo := new(mocks.MockCARCRepo)
	alerts := new(mocks.MockAlertSender)

	episodeRepo.On("ListActivePayers", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]string{"BROKEN", "PAYER02"}, nil).Once()
	episodeRepo.On("ListForPayer", mock.Anything, "BROKEN", mock.AnythingOfType("time.Time")).
		Return(nil, assert.AnError).Once()
	episodeRepo.On("ListForPayer", mock.Anything, "PAYER02", mock.AnythingOfType("time.Time")).
		Return(linkedEpisodes(3), nil).Once()
	episodeRepo.On("ListDenialOccurrences", mock.Anything, "PAYER02", mock.AnythingOfType("time.Time")).
		Return([]domain.DenialOccurrence{}, nil).Once()

	svc := service.NewPatternService(episodeRepo, patternRepo, carcRepo, alerts, detectorConfig())
	summary, err := svc.DetectAll(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.PayersScanned)
	assert.Equal(t, 3, summary.EpisodesScored)
	assert.Equal(t, 0, summary.Patterns)
}

func TestPatternService_DetectForPayer_UpsertFailureContinues(t *testing.T) {
	episodeRepo := new(mocks.MockEpisodeRepo)
	patternRepo := new(mocks.MockPatternRepo)
	carcRepo := new(mocks.MockCARCRepo)
	alerts := new(mocks.MockAlertSender)

	rows := append(denialRows("45", 8, 1), denialRows("97", 2, 1)...)
	episodeRepo.On("ListForPayer", mock.Anything, "PAYER01", mock.AnythingOfType("time.Time")).
		Return(linkedEpisodes(10), nil).Once()
	episodeRepo.On("ListDenialOccurrences", mock.Anything, "PAYER01", mock.AnythingOfType("time.Time")).
		Return(rows, nil).Once()
	carcRepo.On("GetDescription", mock.Anything, mock.AnythingOfType("string")).Return("", nil).Maybe()
	// candidates arrive confidence-descending, so 45 fails first and 97 still
	// gets persisted
	patternRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(p *domain.DenialPattern) bool {
		return p.ReasonCode == "45"
	})).Return(false, assert.AnError).Once()
	patternRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(p *domain.DenialPattern) bool {
		return p.ReasonCode == "97"
	})).Return(true, nil).Once()

	svc := service.NewPatternService(episodeRepo, patternRepo, carcRepo, alerts, detectorConfig())
	summary, err := svc.DetectForPayer(context.Background(), "PAYER01", 30)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Patterns)
	assert.Equal(t, 1, summary.NewPatterns)
	assert.Equal(t, 0, summary.AlertsSent)
}
