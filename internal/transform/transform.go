// Package transform derives canonical claim and remittance entities from raw
// parser output. Missing optional fields default; the only structured error
// is a record without its identity field.
package transform

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"

	"claimsight/internal/domain"
	"claimsight/internal/edi"
)

// amountEpsilon absorbs float drift when comparing money sums.
const amountEpsilon = 0.005

// Claim derives a canonical claim from parser output. When the 837 header
// carried no total, the total is the sum of line charges.
func Claim(parsed *edi.ParsedClaim, fileID uuid.UUID) (*domain.Claim, error) {
	if parsed.ControlNumber == "" {
		return nil, fmt.Errorf("transform.Claim: %w", domain.ErrMissingControlNumber)
	}

	claim := &domain.Claim{
		ID:                   uuid.New(),
		FileID:               fileID,
		ControlNumber:        parsed.ControlNumber,
		PatientControlNumber: parsed.PatientControlNumber,
		PayerID:              parsed.PayerID,
		TotalChargeAmount:    parsed.TotalChargeAmount,
		FacilityCode:         parsed.FacilityCode,
		FrequencyCode:        parsed.FrequencyCode,
		AssignmentCode:       parsed.AssignmentCode,
		StatementDate:        parsed.StatementDate,
		AdmissionDate:        parsed.AdmissionDate,
		DischargeDate:        parsed.DischargeDate,
		ServiceDate:          parsed.ServiceDate,
		PrincipalDiagnosis:   parsed.PrincipalDiagnosis,
		DiagnosisCodes:       parsed.DiagnosisCodes,
		AttendingProvider:    parsed.AttendingProvider,
		OperatingProvider:    parsed.OperatingProvider,
		ReferringProvider:    parsed.ReferringProvider,
		IsIncomplete:         parsed.IsIncomplete || len(parsed.Lines) == 0,
		Warnings:             marshalWarnings(parsed.Warnings),
	}

	var lineTotal float64
	for _, pl := range parsed.Lines {
		claim.Lines = append(claim.Lines, domain.ClaimLine{
			ID:            uuid.New(),
			ClaimID:       claim.ID,
			LineNumber:    pl.LineNumber,
			RevenueCode:   pl.RevenueCode,
			ProcedureCode: pl.ProcedureCode,
			Modifier:      pl.Modifier,
			ChargeAmount:  pl.ChargeAmount,
			UnitCount:     pl.UnitCount,
			UnitType:      pl.UnitType,
			ServiceDate:   pl.ServiceDate,
		})
		lineTotal += pl.ChargeAmount
	}

	if !parsed.HasHeaderTotal {
		claim.TotalChargeAmount = lineTotal
	}

	return claim, nil
}

// Remittance derives a canonical remittance from parser output plus its 835
// payment batch context. The batch backfills payer identity, check number,
// and payment date when the claim-payment loop did not carry them.
func Remittance(parsed *edi.ParsedRemittance, batch *edi.PaymentBatch, fileID uuid.UUID) (*domain.Remittance, error) {
	if parsed.ControlNumber == "" {
		return nil, fmt.Errorf("transform.Remittance: %w", domain.ErrMissingControlNumber)
	}

	remit := &domain.Remittance{
		ID:                 uuid.New(),
		FileID:             fileID,
		ControlNumber:      parsed.ControlNumber,
		ClaimControlNumber: parsed.ClaimControlNumber,
		PayerID:            parsed.PayerID,
		PayerName:          parsed.PayerName,
		CheckNumber:        parsed.CheckNumber,
		PaymentAmount:      parsed.PaymentAmount,
		ChargeAmount:       parsed.ChargeAmount,
		PaymentDate:        parsed.PaymentDate,
		PaymentMethod:      parsed.PaymentMethod,
		StatusCode:         parsed.StatusCode,
		IsFinal:            parsed.IsFinal,
		DenialReasonCodes:  parsed.DenialReasonCodes,
		IsIncomplete:       parsed.IsIncomplete,
		Warnings:           marshalWarnings(parsed.Warnings),
	}

	if batch != nil {
		if remit.PayerID == "" {
			remit.PayerID = batch.PayerID
		}
		if remit.PayerName == "" {
			remit.PayerName = batch.PayerName
		}
		if remit.CheckNumber == "" {
			remit.CheckNumber = batch.CheckNumber
		}
		if remit.PaymentDate == nil {
			remit.PaymentDate = batch.PaymentDate
		}
		if remit.PaymentMethod == "" {
			remit.PaymentMethod = batch.PaymentMethod
		}
	}

	var adjustmentTotal float64
	for i, pa := range parsed.Adjustments {
		remit.Adjustments = append(remit.Adjustments, domain.RemittanceAdjustment{
			ID:           uuid.New(),
			RemittanceID: remit.ID,
			Position:     i + 1,
			GroupCode:    pa.GroupCode,
			ReasonCode:   pa.ReasonCode,
			Amount:       pa.Amount,
			Quantity:     pa.Quantity,
		})
		adjustmentTotal += pa.Amount
	}

	remit.PaymentRate = paymentRate(remit.PaymentAmount, remit.ChargeAmount)
	remit.HasDenial = hasDenial(parsed, adjustmentTotal)

	return remit, nil
}

// paymentRate never divides by zero: a zero or negative charge yields 0.
func paymentRate(payment, charge float64) float64 {
	if charge <= 0 {
		return 0
	}
	return payment / charge
}

// hasDenial applies the denial heuristic: a denied status code, a contractual
// or patient-responsibility adjustment with no resulting payment, or a reason
// code left unreconciled after payments and adjustments are netted against
// the billed amount.
func hasDenial(parsed *edi.ParsedRemittance, adjustmentTotal float64) bool {
	if parsed.StatusCode == domain.ClaimStatusDenied {
		return true
	}

	hasReason := false
	for _, adj := range parsed.Adjustments {
		if adj.ReasonCode != "" {
			hasReason = true
		}
		denialGroup := adj.GroupCode == domain.AdjustmentGroupContractual ||
			adj.GroupCode == domain.AdjustmentGroupPatientResp
		if denialGroup && parsed.PaymentAmount == 0 && adj.Amount > 0 {
			return true
		}
	}

	if hasReason {
		shortfall := parsed.ChargeAmount - parsed.PaymentAmount - adjustmentTotal
		if shortfall > amountEpsilon && !math.IsNaN(shortfall) {
			return true
		}
	}
	return false
}

func marshalWarnings(warnings []edi.Warning) json.RawMessage {
	if len(warnings) == 0 {
		return json.RawMessage("[]")
	}
	data, err := json.Marshal(warnings)
	if err != nil {
		return json.RawMessage("[]")
	}
	return data
}
