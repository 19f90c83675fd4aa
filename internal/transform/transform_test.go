package transform_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimsight/internal/domain"
	"claimsight/internal/edi"
	"claimsight/internal/transform"
)

func TestClaim_HeaderTotalWins(t *testing.T) {
	fileID := uuid.New()
	parsed := &edi.ParsedClaim{
		ControlNumber:     "CLAIM001",
		PayerID:           "PAYER01",
		TotalChargeAmount: 800,
		HasHeaderTotal:    true,
		Lines: []edi.ParsedClaimLine{
			{LineNumber: 1, ProcedureCode: "99213", ChargeAmount: 500},
			{LineNumber: 2, ProcedureCode: "99214", ChargeAmount: 250},
		},
	}

	claim, err := transform.Claim(parsed, fileID)
	require.NoError(t, err)
	assert.Equal(t, fileID, claim.FileID)
	assert.Equal(t, "CLAIM001", claim.ControlNumber)
	// header total is authoritative even when lines sum differently
	assert.Equal(t, 800.0, claim.TotalChargeAmount)
	assert.False(t, claim.IsIncomplete)

	require.Len(t, claim.Lines, 2)
	assert.Equal(t, claim.ID, claim.Lines[0].ClaimID)
	assert.Equal(t, "99213", claim.Lines[0].ProcedureCode)
}

func TestClaim_DerivesTotalFromLines(t *testing.T) {
	parsed := &edi.ParsedClaim{
		ControlNumber:  "CLAIM002",
		HasHeaderTotal: false,
		IsIncomplete:   true,
		Lines: []edi.ParsedClaimLine{
			{LineNumber: 1, ChargeAmount: 500},
			{LineNumber: 2, ChargeAmount: 300},
		},
	}

	claim, err := transform.Claim(parsed, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 800.0, claim.TotalChargeAmount)
	assert.True(t, claim.IsIncomplete)
}

func TestClaim_NoLinesMarksIncomplete(t *testing.T) {
	claim, err := transform.Claim(&edi.ParsedClaim{ControlNumber: "CLAIM003"}, uuid.New())
	require.NoError(t, err)
	assert.True(t, claim.IsIncomplete)
	assert.Empty(t, claim.Lines)
}

func TestClaim_MissingControlNumber(t *testing.T) {
	claim, err := transform.Claim(&edi.ParsedClaim{}, uuid.New())
	require.Error(t, err)
	assert.Nil(t, claim)
	assert.ErrorIs(t, err, domain.ErrMissingControlNumber)
}

func TestClaim_MarshalsWarnings(t *testing.T) {
	parsed := &edi.ParsedClaim{
		ControlNumber: "CLAIM004",
		Warnings: []edi.Warning{
			{Severity: edi.SeverityWarning, SegmentType: "CLM", IssueType: edi.IssueMissingField, Message: "CLM02 total charge amount is missing, will derive from service lines"},
		},
	}
	claim, err := transform.Claim(parsed, uuid.New())
	require.NoError(t, err)
	assert.Contains(t, string(claim.Warnings), "missing_field")

	empty, err := transform.Claim(&edi.ParsedClaim{ControlNumber: "CLAIM005"}, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty.Warnings))
}

func TestRemittance_BatchBackfill(t *testing.T) {
	paymentDate := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	parsed := &edi.ParsedRemittance{
		ControlNumber:      "ICN123",
		ClaimControlNumber: "CLAIM001",
		ChargeAmount:       800,
		PaymentAmount:      650,
		StatusCode:         "1",
		IsFinal:            true,
	}
	batch := &edi.PaymentBatch{
		PayerID:       "PAYER01",
		PayerName:     "ACME HEALTH",
		CheckNumber:   "CHK1001",
		PaymentDate:   &paymentDate,
		PaymentMethod: "ACH",
	}

	remit, err := transform.Remittance(parsed, batch, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "PAYER01", remit.PayerID)
	assert.Equal(t, "ACME HEALTH", remit.PayerName)
	assert.Equal(t, "CHK1001", remit.CheckNumber)
	assert.Equal(t, "ACH", remit.PaymentMethod)
	require.NotNil(t, remit.PaymentDate)
	assert.Equal(t, paymentDate, *remit.PaymentDate)
	assert.InDelta(t, 0.8125, remit.PaymentRate, 0.0001)
	assert.False(t, remit.HasDenial)
}

func TestRemittance_BatchDoesNotOverride(t *testing.T) {
	parsed := &edi.ParsedRemittance{
		ControlNumber:      "ICN124",
		ClaimControlNumber: "CLAIM002",
		PayerID:            "PAYER02",
		CheckNumber:        "CHK9",
	}
	batch := &edi.PaymentBatch{PayerID: "PAYER01", CheckNumber: "CHK1001"}

	remit, err := transform.Remittance(parsed, batch, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "PAYER02", remit.PayerID)
	assert.Equal(t, "CHK9", remit.CheckNumber)
}

func TestRemittance_MissingControlNumber(t *testing.T) {
	remit, err := transform.Remittance(&edi.ParsedRemittance{ClaimControlNumber: "CLAIM001"}, nil, uuid.New())
	require.Error(t, err)
	assert.Nil(t, remit)
	assert.ErrorIs(t, err, domain.ErrMissingControlNumber)
}

func TestRemittance_ZeroChargePaymentRate(t *testing.T) {
	remit, err := transform.Remittance(&edi.ParsedRemittance{
		ControlNumber: "ICN125",
		ChargeAmount:  0,
		PaymentAmount: 100,
	}, nil, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0.0, remit.PaymentRate)
}

func TestRemittance_AdjustmentPositions(t *testing.T) {
	remit, err := transform.Remittance(&edi.ParsedRemittance{
		ControlNumber: "ICN126",
		ChargeAmount:  800,
		PaymentAmount: 650,
		Adjustments: []edi.ParsedAdjustment{
			{GroupCode: "CO", ReasonCode: "45", Amount: 100},
			{GroupCode: "CO", ReasonCode: "253", Amount: 50},
		},
	}, nil, uuid.New())
	require.NoError(t, err)
	require.Len(t, remit.Adjustments, 2)
	assert.Equal(t, 1, remit.Adjustments[0].Position)
	assert.Equal(t, 2, remit.Adjustments[1].Position)
	assert.Equal(t, remit.ID, remit.Adjustments[0].RemittanceID)
}

func TestRemittance_DenialHeuristic(t *testing.T) {
	cases := []struct {
		name   string
		parsed edi.ParsedRemittance
		want   bool
	}{
		{
			name: "denied status code",
			parsed: edi.ParsedRemittance{
				ControlNumber: "R1", StatusCode: "4", ChargeAmount: 300,
			},
			want: true,
		},
		{
			name: "contractual adjustment with zero payment",
			parsed: edi.ParsedRemittance{
				ControlNumber: "R2", StatusCode: "1", ChargeAmount: 300, PaymentAmount: 0,
				Adjustments: []edi.ParsedAdjustment{{GroupCode: "CO", ReasonCode: "97", Amount: 300}},
			},
			want: true,
		},
		{
			name: "patient responsibility with zero payment",
			parsed: edi.ParsedRemittance{
				ControlNumber: "R3", StatusCode: "2", ChargeAmount: 150, PaymentAmount: 0,
				Adjustments: []edi.ParsedAdjustment{{GroupCode: "PR", ReasonCode: "1", Amount: 150}},
			},
			want: true,
		},
		{
			name: "fully reconciled partial payment",
			parsed: edi.ParsedRemittance{
				ControlNumber: "R4", StatusCode: "1", ChargeAmount: 1000, PaymentAmount: 800,
				Adjustments: []edi.ParsedAdjustment{{GroupCode: "CO", ReasonCode: "45", Amount: 200}},
			},
			want: false,
		},
		{
			name: "unreconciled shortfall with reason code",
			parsed: edi.ParsedRemittance{
				ControlNumber: "R5", StatusCode: "1", ChargeAmount: 1000, PaymentAmount: 800,
				Adjustments: []edi.ParsedAdjustment{{GroupCode: "CO", ReasonCode: "45", Amount: 50}},
			},
			want: true,
		},
		{
			name: "paid in full",
			parsed: edi.ParsedRemittance{
				ControlNumber: "R6", StatusCode: "1", ChargeAmount: 500, PaymentAmount: 500,
			},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			remit, err := transform.Remittance(&tc.parsed, nil, uuid.New())
			require.NoError(t, err)
			assert.Equal(t, tc.want, remit.HasDenial)
		})
	}
}
