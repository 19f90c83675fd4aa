package port

import (
	"context"

	"claimsight/internal/domain"
)

// AlertSender notifies operators when the detector surfaces a new
// high-confidence denial pattern.
type AlertSender interface {
	SendPatternAlert(ctx context.Context, pattern *domain.DenialPattern) error
}
