// Package detector mines linked episode history for recurring denial
// conditions. It is pure computation; the service layer feeds it history and
// persists what it emits.
package detector

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"claimsight/internal/domain"
)

// Config tunes pattern emission. Payer behavior varies, so both knobs are
// policy, not constants.
type Config struct {
	// MinFrequency is the emission floor: groups below it are noise.
	MinFrequency float64
	// SaturationK controls how fast confidence saturates with occurrence
	// count. Higher values demand more evidence.
	SaturationK float64
}

// DefaultConfig mirrors the configured defaults.
func DefaultConfig() Config {
	return Config{MinFrequency: 0.05, SaturationK: 5}
}

// Occurrence is one denial observation on a linked episode.
type Occurrence struct {
	EpisodeID     uuid.UUID
	ReasonCode    string
	FacilityCode  string
	ProcedureCode string
	Amount        float64
	SeenAt        time.Time
}

// Candidate is a denial pattern the detector proposes for persistence.
type Candidate struct {
	PatternType     domain.PatternType
	ReasonCode      string
	ConditionKey    string
	Conditions      json.RawMessage
	Description     string
	OccurrenceCount int
	EpisodesTotal   int
	Frequency       float64
	ConfidenceScore float64
	FirstSeenAt     time.Time
	LastSeenAt      time.Time
}

// Describer resolves a reason code to human-readable text. A nil describer
// falls back to the bare code.
type Describer func(reasonCode string) string

// Detect groups denial occurrences by reason code, and additionally by
// facility and procedure prefix where those conditions are present, then
// scores each group. Occurrence counts are distinct episodes, which keeps
// frequency within [0, 1] even though adjustment multiplicity is preserved
// upstream.
func Detect(occurrences []Occurrence, totalEpisodes int, cfg Config, describe Describer) []Candidate {
	if totalEpisodes <= 0 || len(occurrences) == 0 {
		return nil
	}
	if cfg.SaturationK <= 0 {
		cfg.SaturationK = DefaultConfig().SaturationK
	}

	groups := map[string]*group{}
	for _, occ := range occurrences {
		if occ.ReasonCode == "" {
			continue
		}
		add(groups, domain.PatternReasonCode, occ.ReasonCode, "", nil, occ)
		if occ.FacilityCode != "" {
			add(groups, domain.PatternFacility, occ.ReasonCode,
				"facility="+occ.FacilityCode,
				map[string]string{"facility_code": occ.FacilityCode}, occ)
		}
		if prefix := procedurePrefix(occ.ProcedureCode); prefix != "" {
			add(groups, domain.PatternProcedureCode, occ.ReasonCode,
				"proc_prefix="+prefix,
				map[string]string{"procedure_code_prefix": prefix}, occ)
		}
	}

	var out []Candidate
	for _, g := range groups {
		count := len(g.episodes)
		freq := float64(count) / float64(totalEpisodes)
		// an inconsistent upstream count must not push frequency past 1
		if freq > 1 {
			freq = 1
		}
		if freq < cfg.MinFrequency {
			continue
		}
		out = append(out, Candidate{
			PatternType:     g.patternType,
			ReasonCode:      g.reasonCode,
			ConditionKey:    g.conditionKey,
			Conditions:      g.conditionsJSON(),
			Description:     describeGroup(g, describe),
			OccurrenceCount: count,
			EpisodesTotal:   totalEpisodes,
			Frequency:       freq,
			ConfidenceScore: Confidence(count, freq, cfg.SaturationK),
			FirstSeenAt:     g.firstSeen,
			LastSeenAt:      g.lastSeen,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ConfidenceScore != out[j].ConfidenceScore {
			return out[i].ConfidenceScore > out[j].ConfidenceScore
		}
		if out[i].ReasonCode != out[j].ReasonCode {
			return out[i].ReasonCode < out[j].ReasonCode
		}
		return out[i].ConditionKey < out[j].ConditionKey
	})
	return out
}

// Confidence down-weights groups with few occurrences: frequency multiplied
// by a factor that rises monotonically with count and saturates at 1, so a
// rare coincidence never outranks a well-evidenced pattern.
func Confidence(occurrences int, frequency, k float64) float64 {
	if occurrences <= 0 || frequency <= 0 {
		return 0
	}
	return frequency * (1 - math.Exp(-float64(occurrences)/k))
}

type group struct {
	patternType  domain.PatternType
	reasonCode   string
	conditionKey string
	conditions   map[string]string
	episodes     map[uuid.UUID]struct{}
	firstSeen    time.Time
	lastSeen     time.Time
}

func add(groups map[string]*group, pt domain.PatternType, reason, conditionKey string, conditions map[string]string, occ Occurrence) {
	key := string(pt) + "|" + reason + "|" + conditionKey
	g, ok := groups[key]
	if !ok {
		g = &group{
			patternType:  pt,
			reasonCode:   reason,
			conditionKey: conditionKey,
			conditions:   conditions,
			episodes:     map[uuid.UUID]struct{}{},
			firstSeen:    occ.SeenAt,
			lastSeen:     occ.SeenAt,
		}
		groups[key] = g
	}
	g.episodes[occ.EpisodeID] = struct{}{}
	if occ.SeenAt.Before(g.firstSeen) {
		g.firstSeen = occ.SeenAt
	}
	if occ.SeenAt.After(g.lastSeen) {
		g.lastSeen = occ.SeenAt
	}
}

func (g *group) conditionsJSON() json.RawMessage {
	if len(g.conditions) == 0 {
		return json.RawMessage("{}")
	}
	data, err := json.Marshal(g.conditions)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}

func describeGroup(g *group, describe Describer) string {
	text := g.reasonCode
	if describe != nil {
		if d := describe(g.reasonCode); d != "" {
			text = fmt.Sprintf("%s (%s)", d, g.reasonCode)
		}
	}
	switch g.patternType {
	case domain.PatternFacility:
		return fmt.Sprintf("Denials for %s at facility type %s", text, g.conditions["facility_code"])
	case domain.PatternProcedureCode:
		return fmt.Sprintf("Denials for %s on procedures %s*", text, g.conditions["procedure_code_prefix"])
	default:
		return fmt.Sprintf("Recurring denials for %s", text)
	}
}

// procedurePrefix buckets procedure codes into coarse ranges by their
// leading three characters.
func procedurePrefix(code string) string {
	if len(code) < 3 {
		return ""
	}
	return code[:3]
}
