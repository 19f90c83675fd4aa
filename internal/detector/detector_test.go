package detector_test

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimsight/internal/detector"
	"claimsight/internal/domain"
)

func occ(episodeID uuid.UUID, reason string, seenAt time.Time) detector.Occurrence {
	return detector.Occurrence{EpisodeID: episodeID, ReasonCode: reason, SeenAt: seenAt}
}

func findCandidate(t *testing.T, candidates []detector.Candidate, pt domain.PatternType, reason, conditionKey string) detector.Candidate {
	t.Helper()
	for _, c := range candidates {
		if c.PatternType == pt && c.ReasonCode == reason && c.ConditionKey == conditionKey {
			return c
		}
	}
	t.Fatalf("no candidate %s/%s/%q", pt, reason, conditionKey)
	return detector.Candidate{}
}

func TestDetect_CountsDistinctEpisodes(t *testing.T) {
	episode := uuid.New()
	now := time.Now()

	// the same episode denied twice for the same reason is one occurrence
	candidates := detector.Detect([]detector.Occurrence{
		occ(episode, "45", now),
		occ(episode, "45", now.Add(time.Hour)),
	}, 10, detector.Config{MinFrequency: 0.05, SaturationK: 5}, nil)

	require.Len(t, candidates, 1)
	c := candidates[0]
	assert.Equal(t, 1, c.OccurrenceCount)
	assert.Equal(t, 10, c.EpisodesTotal)
	assert.InDelta(t, 0.1, c.Frequency, 0.0001)
	assert.LessOrEqual(t, c.Frequency, 1.0)
}

func TestDetect_FrequencyFloor(t *testing.T) {
	now := time.Now()
	occurrences := []detector.Occurrence{
		occ(uuid.New(), "45", now),
		occ(uuid.New(), "45", now),
		occ(uuid.New(), "97", now),
	}

	candidates := detector.Detect(occurrences, 100, detector.Config{MinFrequency: 0.02, SaturationK: 5}, nil)
	require.Len(t, candidates, 1)
	assert.Equal(t, "45", candidates[0].ReasonCode)
	assert.InDelta(t, 0.02, candidates[0].Frequency, 0.0001)
}

func TestDetect_FrequencyNeverExceedsOne(t *testing.T) {
	now := time.Now()
	// more distinct denied episodes than the reported total, as happens when
	// the occurrence feed and the episode count disagree about the window
	occurrences := []detector.Occurrence{
		occ(uuid.New(), "45", now),
		occ(uuid.New(), "45", now),
		occ(uuid.New(), "45", now),
	}

	candidates := detector.Detect(occurrences, 1, detector.Config{MinFrequency: 0.05, SaturationK: 5}, nil)
	require.Len(t, candidates, 1)
	assert.Equal(t, 1.0, candidates[0].Frequency)
	assert.LessOrEqual(t, candidates[0].ConfidenceScore, 1.0)
}

func TestDetect_ConditionGroups(t *testing.T) {
	now := time.Now()
	occurrences := []detector.Occurrence{
		{EpisodeID: uuid.New(), ReasonCode: "45", FacilityCode: "11", ProcedureCode: "99213", SeenAt: now},
		{EpisodeID: uuid.New(), ReasonCode: "45", FacilityCode: "11", ProcedureCode: "99214", SeenAt: now.Add(time.Hour)},
		{EpisodeID: uuid.New(), ReasonCode: "45", FacilityCode: "21", SeenAt: now.Add(2 * time.Hour)},
	}

	candidates := detector.Detect(occurrences, 10, detector.Config{MinFrequency: 0.05, SaturationK: 5}, nil)

	base := findCandidate(t, candidates, domain.PatternReasonCode, "45", "")
	assert.Equal(t, 3, base.OccurrenceCount)
	assert.Equal(t, "{}", string(base.Conditions))
	assert.Equal(t, now, base.FirstSeenAt)
	assert.Equal(t, now.Add(2*time.Hour), base.LastSeenAt)

	office := findCandidate(t, candidates, domain.PatternFacility, "45", "facility=11")
	assert.Equal(t, 2, office.OccurrenceCount)
	assert.JSONEq(t, `{"facility_code":"11"}`, string(office.Conditions))

	proc := findCandidate(t, candidates, domain.PatternProcedureCode, "45", "proc_prefix=992")
	assert.Equal(t, 2, proc.OccurrenceCount)
	assert.JSONEq(t, `{"procedure_code_prefix":"992"}`, string(proc.Conditions))
}

func TestDetect_SortsByConfidence(t *testing.T) {
	now := time.Now()
	var occurrences []detector.Occurrence
	for i := 0; i < 8; i++ {
		occurrences = append(occurrences, occ(uuid.New(), "45", now))
	}
	occurrences = append(occurrences, occ(uuid.New(), "97", now))

	candidates := detector.Detect(occurrences, 20, detector.Config{MinFrequency: 0.01, SaturationK: 5}, nil)
	require.Len(t, candidates, 2)
	assert.Equal(t, "45", candidates[0].ReasonCode)
	assert.Equal(t, "97", candidates[1].ReasonCode)
	assert.Greater(t, candidates[0].ConfidenceScore, candidates[1].ConfidenceScore)
}

func TestDetect_EmptyInputs(t *testing.T) {
	assert.Nil(t, detector.Detect(nil, 10, detector.DefaultConfig(), nil))
	assert.Nil(t, detector.Detect([]detector.Occurrence{occ(uuid.New(), "45", time.Now())}, 0, detector.DefaultConfig(), nil))
	// blank reason codes are dropped
	assert.Nil(t, detector.Detect([]detector.Occurrence{occ(uuid.New(), "", time.Now())}, 10, detector.DefaultConfig(), nil))
}

func TestDetect_Describer(t *testing.T) {
	describe := func(code string) string {
		if code == "45" {
			return "Charge exceeds fee schedule"
		}
		return ""
	}
	occurrences := []detector.Occurrence{
		occ(uuid.New(), "45", time.Now()),
		occ(uuid.New(), "97", time.Now()),
	}

	candidates := detector.Detect(occurrences, 10, detector.Config{MinFrequency: 0.05, SaturationK: 5}, describe)
	described := findCandidate(t, candidates, domain.PatternReasonCode, "45", "")
	assert.Equal(t, "Recurring denials for Charge exceeds fee schedule (45)", described.Description)
	// unknown codes fall back to the bare code
	bare := findCandidate(t, candidates, domain.PatternReasonCode, "97", "")
	assert.Equal(t, "Recurring denials for 97", bare.Description)
}

func TestConfidence_MonotoneAndSaturating(t *testing.T) {
	prev := 0.0
	for n := 1; n <= 50; n++ {
		score := detector.Confidence(n, 0.5, 5)
		assert.Greater(t, score, prev)
		assert.Less(t, score, 0.5)
		prev = score
	}
	// saturates toward the frequency itself
	assert.InDelta(t, 0.5, detector.Confidence(1000, 0.5, 5), 0.001)
	assert.InDelta(t, 0.5*(1-math.Exp(-1)), detector.Confidence(5, 0.5, 5), 1e-9)

	assert.Equal(t, 0.0, detector.Confidence(0, 0.5, 5))
	assert.Equal(t, 0.0, detector.Confidence(5, 0, 5))
}
