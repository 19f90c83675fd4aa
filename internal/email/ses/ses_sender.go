package ses

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"claimsight/internal/domain"
	"claimsight/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	toAddress   string
}

// NewSESSender creates a new SES-backed AlertSender that delivers denial
// pattern alerts to the configured operator address.
func NewSESSender(region, fromAddress, fromName, toAddress string) (port.AlertSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		toAddress:   toAddress,
	}, nil
}

func (s *sesSender) SendPatternAlert(ctx context.Context, pattern *domain.DenialPattern) error {
	subject := fmt.Sprintf("New denial pattern for payer %s: %s", pattern.PayerID, pattern.ReasonCode)
	htmlBody := buildPatternAlertHTML(pattern)
	textBody := buildPatternAlertText(pattern)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{s.toAddress},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildPatternAlertText(p *domain.DenialPattern) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A new denial pattern was detected.\n\n")
	fmt.Fprintf(&b, "Payer:       %s\n", p.PayerID)
	fmt.Fprintf(&b, "Pattern:     %s\n", p.Description)
	fmt.Fprintf(&b, "Reason code: %s\n", p.ReasonCode)
	if p.ConditionKey != "" {
		fmt.Fprintf(&b, "Condition:   %s\n", p.ConditionKey)
	}
	fmt.Fprintf(&b, "Occurrences: %d of %d episodes (%.1f%%)\n", p.OccurrenceCount, p.EpisodesTotal, p.Frequency*100)
	fmt.Fprintf(&b, "Confidence:  %.2f\n", p.ConfidenceScore)
	fmt.Fprintf(&b, "\nClaimsight")
	return b.String()
}

func buildPatternAlertHTML(p *domain.DenialPattern) string {
	condition := p.ConditionKey
	if condition == "" {
		condition = "—"
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">New denial pattern detected</h2>
  <p>%s</p>
  <table style="border-collapse: collapse; width: 100%%;">
    <tr><td style="padding: 6px; color: #666;">Payer</td><td style="padding: 6px;">%s</td></tr>
    <tr><td style="padding: 6px; color: #666;">Reason code</td><td style="padding: 6px;">%s</td></tr>
    <tr><td style="padding: 6px; color: #666;">Condition</td><td style="padding: 6px;">%s</td></tr>
    <tr><td style="padding: 6px; color: #666;">Occurrences</td><td style="padding: 6px;">%d of %d episodes (%.1f%%)</td></tr>
    <tr><td style="padding: 6px; color: #666;">Confidence</td><td style="padding: 6px;">%.2f</td></tr>
  </table>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Claimsight - Claims Reconciliation</p>
</body>
</html>`, p.Description, p.PayerID, p.ReasonCode, condition,
		p.OccurrenceCount, p.EpisodesTotal, p.Frequency*100, p.ConfidenceScore)
}
