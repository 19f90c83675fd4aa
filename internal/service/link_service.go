package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"claimsight/internal/config"
	"claimsight/internal/domain"
	"claimsight/internal/port"
)

// LinkService reconciles remittances against stored claims, advancing each
// claim's episode through PENDING -> LINKED -> COMPLETE.
type LinkService interface {
	// EnsureEpisode creates the PENDING episode for a freshly stored claim.
	EnsureEpisode(ctx context.Context, claim *domain.Claim) (*domain.ClaimEpisode, error)
	// AutoLinkByControlNumber matches the remittance against stored claims by
	// exact control number and folds it into each matching claim's episode.
	// It returns the number of episodes the remittance was linked to; zero
	// means the claim has not arrived yet, which is expected and tolerated.
	AutoLinkByControlNumber(ctx context.Context, remit *domain.Remittance) (int, error)
	// RelinkUnlinked retries linking for remittances that arrived before
	// their claims.
	RelinkUnlinked(ctx context.Context, limit int) (*RelinkSummary, error)
}

// RelinkSummary reports a relink pass.
type RelinkSummary struct {
	Considered    int `json:"considered"`
	Linked        int `json:"linked"`
	StillUnlinked int `json:"still_unlinked"`
	Errors        int `json:"errors"`
}

type linkService struct {
	claimRepo   port.ClaimRepository
	episodeRepo port.EpisodeRepository
	remitRepo   port.RemittanceRepository
	policy      config.LinkerConfig

	// locks serializes linking per control number so concurrent remittances
	// for the same claim cannot race the read-modify-write; different
	// control numbers proceed in parallel.
	locks sync.Map // control number -> *sync.Mutex
}

// NewLinkService creates a new LinkService implementation.
func NewLinkService(
	claimRepo port.ClaimRepository,
	episodeRepo port.EpisodeRepository,
	remitRepo port.RemittanceRepository,
	policy config.LinkerConfig,
) LinkService {
	return &linkService{
		claimRepo:   claimRepo,
		episodeRepo: episodeRepo,
		remitRepo:   remitRepo,
		policy:      policy,
	}
}

func (s *linkService) lockControlNumber(controlNumber string) func() {
	v, _ := s.locks.LoadOrStore(controlNumber, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *linkService) EnsureEpisode(ctx context.Context, claim *domain.Claim) (*domain.ClaimEpisode, error) {
	episode, err := s.episodeRepo.GetOrCreate(ctx, claim)
	if err != nil {
		return nil, fmt.Errorf("linkService.EnsureEpisode: %w", err)
	}
	return episode, nil
}

func (s *linkService) AutoLinkByControlNumber(ctx context.Context, remit *domain.Remittance) (int, error) {
	if remit.ClaimControlNumber == "" {
		log.Printf("linkService.AutoLinkByControlNumber: remittance %s has no claim control number, stored unlinked", remit.ID)
		return 0, nil
	}

	claims, err := s.claimRepo.FindByControlNumber(ctx, remit.ClaimControlNumber)
	if err != nil {
		return 0, fmt.Errorf("linkService.AutoLinkByControlNumber find claims: %w", err)
	}
	if len(claims) == 0 {
		log.Printf("linkService.AutoLinkByControlNumber: no claim for control number %s yet, remittance %s stored unlinked",
			remit.ClaimControlNumber, remit.ID)
		return 0, nil
	}
	if len(claims) > 1 {
		// Duplicate submissions share a control number; each claim keeps its
		// own episode rather than silently picking one.
		log.Printf("linkService.AutoLinkByControlNumber: control number %s matches %d claims, linking to each",
			remit.ClaimControlNumber, len(claims))
	}

	unlock := s.lockControlNumber(remit.ClaimControlNumber)
	defer unlock()

	linked := 0
	for i := range claims {
		if err := s.linkPair(ctx, &claims[i], remit); err != nil {
			// one bad pair never aborts the rest
			log.Printf("linkService.AutoLinkByControlNumber: claim %s / remittance %s: %v",
				claims[i].ID, remit.ID, err)
			continue
		}
		linked++
	}
	return linked, nil
}

// linkPair folds one remittance into one claim's episode inside a single
// read-modify-write. The remittance control number is the idempotence
// marker: a remittance already attached to the episode is skipped before
// any aggregate changes, even when re-ingestion gave it a fresh row ID.
func (s *linkService) linkPair(ctx context.Context, claim *domain.Claim, remit *domain.Remittance) error {
	episode, err := s.episodeRepo.GetOrCreate(ctx, claim)
	if err != nil {
		return err
	}

	seen, err := s.episodeRepo.HasRemittance(ctx, episode.ID, remit.ControlNumber)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	if err := s.episodeRepo.AddRemittance(ctx, episode.ID, remit.ID); err != nil {
		if errors.Is(err, domain.ErrRemittanceAlreadyLinked) {
			return nil
		}
		return err
	}

	merge(episode, remit, s.policy, time.Now().UTC())

	if err := s.episodeRepo.Save(ctx, episode); err != nil {
		return err
	}
	return nil
}

// merge applies one remittance's contribution to an episode's aggregates.
// Amounts accumulate, they never overwrite; the status only moves forward.
func merge(episode *domain.ClaimEpisode, remit *domain.Remittance, policy config.LinkerConfig, now time.Time) {
	episode.PaymentAmount += remit.PaymentAmount
	episode.RemittanceCount++
	episode.AdjustmentCount += len(remit.Adjustments)
	for _, adj := range remit.Adjustments {
		episode.AdjustmentAmount += adj.Amount
	}
	if remit.HasDenial {
		episode.DenialCount++
	}

	if episode.Status == domain.EpisodePending {
		episode.Status = domain.EpisodeLinked
	}
	if episode.LinkedAt == nil {
		episode.LinkedAt = &now
	}

	if episode.Status == domain.EpisodeLinked && isComplete(episode, remit, policy) {
		episode.Status = domain.EpisodeComplete
		episode.CompletedAt = &now
	}
}

// isComplete applies the completion policy: an explicit final claim status,
// or payments plus adjustments reconciling the billed amount within the
// configured tolerance.
func isComplete(episode *domain.ClaimEpisode, remit *domain.Remittance, policy config.LinkerConfig) bool {
	if policy.CompleteOnFinalIndicator && remit.IsFinal {
		return true
	}
	if episode.ChargeAmount <= 0 {
		return false
	}
	reconciled := episode.PaymentAmount + episode.AdjustmentAmount
	return reconciled >= episode.ChargeAmount*(1-policy.ReconciliationTolerance)
}

func (s *linkService) RelinkUnlinked(ctx context.Context, limit int) (*RelinkSummary, error) {
	remits, err := s.remitRepo.ListUnlinked(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("linkService.RelinkUnlinked: %w", err)
	}

	summary := &RelinkSummary{Considered: len(remits)}
	for i := range remits {
		linked, err := s.AutoLinkByControlNumber(ctx, &remits[i])
		if err != nil {
			summary.Errors++
			log.Printf("linkService.RelinkUnlinked: remittance %s: %v", remits[i].ID, err)
			continue
		}
		if linked > 0 {
			summary.Linked++
		} else {
			summary.StillUnlinked++
		}
	}
	return summary, nil
}
