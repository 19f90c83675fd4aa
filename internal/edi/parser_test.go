package edi_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimsight/internal/edi"
)

const isaHeader = "ISA*00*          *00*          *ZZ*SENDER         *ZZ*RECEIVER       *260301*1200*^*00501*000000001*0*P*:"

// doc joins segments with the standard terminator and wraps them in an
// ISA/IEA envelope.
func doc(segments ...string) string {
	all := append([]string{isaHeader}, segments...)
	all = append(all, "IEA*1*000000001")
	return strings.Join(all, "~\n") + "~\n"
}

func TestParse_837ClaimWithServiceLines(t *testing.T) {
	result, err := edi.Parse(doc(
		"GS*HC*SENDER*RECEIVER*20260301*1200*1*X*005010X223A2",
		"ST*837*0001",
		"BHT*0019*00*REF1*20260301*1200*CH",
		"HL*1**20*1",
		"HL*2*1*22*0",
		"NM1*PR*2*ACME HEALTH*****PI*PAYER01",
		"CLM*CLAIM001*800***11:A:1**A",
		"DTP*434*RD8*20260201-20260205",
		"HI*ABK:J189*ABF:E119",
		"NM1*71*1*SMITH*JOHN****XX*1234567890",
		"LX*1",
		"SV1*HC:99213*500*UN*1",
		"DTP*472*D8*20260202",
		"LX*2",
		"SV1*HC:99214:25*300*UN*1",
		"SE*15*0001",
		"GE*1*1",
	), "claims.837")
	require.NoError(t, err)
	require.Len(t, result.Claims, 1)
	assert.Empty(t, result.Remittances)

	claim := result.Claims[0]
	assert.Equal(t, "CLAIM001", claim.ControlNumber)
	assert.Equal(t, "PAYER01", claim.PayerID)
	assert.Equal(t, 800.0, claim.TotalChargeAmount)
	assert.True(t, claim.HasHeaderTotal)
	assert.Equal(t, "11", claim.FacilityCode)
	assert.Equal(t, "1", claim.FrequencyCode)
	assert.Equal(t, "J189", claim.PrincipalDiagnosis)
	assert.Equal(t, []string{"J189", "E119"}, claim.DiagnosisCodes)
	assert.Equal(t, "1234567890", claim.AttendingProvider)
	assert.False(t, claim.IsIncomplete)

	require.NotNil(t, claim.StatementDate)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), *claim.StatementDate)
	require.NotNil(t, claim.DischargeDate)
	assert.Equal(t, time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC), *claim.DischargeDate)

	require.Len(t, claim.Lines, 2)
	assert.Equal(t, 1, claim.Lines[0].LineNumber)
	assert.Equal(t, "99213", claim.Lines[0].ProcedureCode)
	assert.Equal(t, 500.0, claim.Lines[0].ChargeAmount)
	require.NotNil(t, claim.Lines[0].ServiceDate)
	assert.Equal(t, time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), *claim.Lines[0].ServiceDate)
	assert.Equal(t, 2, claim.Lines[1].LineNumber)
	assert.Equal(t, "99214", claim.Lines[1].ProcedureCode)
	assert.Equal(t, "25", claim.Lines[1].Modifier)
	assert.Equal(t, 300.0, claim.Lines[1].ChargeAmount)
}

func TestParse_837MissingHeaderTotalContinues(t *testing.T) {
	result, err := edi.Parse(doc(
		"ST*837*0001",
		"HL*1**20*1",
		"CLM*NOTOTAL",
		"SV1*HC:99213*500*UN*1",
		"SV1*HC:99214*300*UN*1",
		"CLM*CLAIM002*1200***21:A:1",
		"SV2*0450*HC:99285*1200*UN*1",
		"SE*8*0001",
	), "claims.837")
	require.NoError(t, err)
	require.Len(t, result.Claims, 2)

	first := result.Claims[0]
	assert.Equal(t, "NOTOTAL", first.ControlNumber)
	assert.True(t, first.IsIncomplete)
	assert.False(t, first.HasHeaderTotal)
	assert.Equal(t, 0.0, first.TotalChargeAmount)
	require.Len(t, first.Lines, 2)
	assert.Equal(t, 500.0, first.Lines[0].ChargeAmount)
	assert.Equal(t, 300.0, first.Lines[1].ChargeAmount)

	var missingTotal bool
	for _, w := range first.Warnings {
		if w.IssueType == edi.IssueMissingField && w.SegmentType == "CLM" {
			missingTotal = true
		}
	}
	assert.True(t, missingTotal, "expected a missing_field warning for CLM02")

	second := result.Claims[1]
	assert.Equal(t, "CLAIM002", second.ControlNumber)
	assert.False(t, second.IsIncomplete)
	assert.True(t, second.HasHeaderTotal)
	require.Len(t, second.Lines, 1)
	assert.Equal(t, "0450", second.Lines[0].RevenueCode)
	assert.Equal(t, "99285", second.Lines[0].ProcedureCode)
}

func TestParse_835PaymentBatchAndAdjustments(t *testing.T) {
	result, err := edi.Parse(doc(
		"ST*835*0002",
		"BPR*I*1500*C*ACH*CCP*01*999999992**01*888888888*DA*123456*01*111111111*DA*20260215",
		"TRN*1*CHK1001*1999999999",
		"N1*PR*ACME HEALTH*XV*PAYER01",
		"CLP*CLAIM001*1*800*650*50*12*ICN123*11*1",
		"CAS*CO*45*100*1*253*50",
		"CLP*CLAIM002*4*300*0",
		"CAS*PR*1*300",
		"CLP*CLAIM003*22*100*-100",
		"SE*10*0002",
	), "remits.835")
	require.NoError(t, err)
	assert.Empty(t, result.Claims)
	require.Len(t, result.Remittances, 3)
	require.Len(t, result.Batches, 1)

	batch := result.Batches[0]
	assert.Equal(t, 1500.0, batch.TotalPaymentAmount)
	assert.Equal(t, "ACH", batch.PaymentMethod)
	assert.Equal(t, "CHK1001", batch.CheckNumber)
	assert.Equal(t, "PAYER01", batch.PayerID)
	assert.Equal(t, "ACME HEALTH", batch.PayerName)
	require.NotNil(t, batch.PaymentDate)
	assert.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), *batch.PaymentDate)

	paid := result.Remittances[0]
	assert.Equal(t, "ICN123", paid.ControlNumber)
	assert.Equal(t, "CLAIM001", paid.ClaimControlNumber)
	assert.Equal(t, "PAYER01", paid.PayerID)
	assert.Equal(t, "CHK1001", paid.CheckNumber)
	assert.Equal(t, 800.0, paid.ChargeAmount)
	assert.Equal(t, 650.0, paid.PaymentAmount)
	assert.Equal(t, "1", paid.StatusCode)
	assert.True(t, paid.IsFinal)
	require.Len(t, paid.Adjustments, 2)
	assert.Equal(t, edi.ParsedAdjustment{GroupCode: "CO", ReasonCode: "45", Amount: 100, Quantity: 1}, paid.Adjustments[0])
	assert.Equal(t, edi.ParsedAdjustment{GroupCode: "CO", ReasonCode: "253", Amount: 50}, paid.Adjustments[1])
	assert.Equal(t, []string{"45", "253"}, paid.DenialReasonCodes)

	denied := result.Remittances[1]
	assert.Equal(t, "CLAIM002", denied.ClaimControlNumber)
	assert.Equal(t, "4", denied.StatusCode)
	assert.True(t, denied.IsFinal)
	assert.Equal(t, []string{"1"}, denied.DenialReasonCodes)
	// CLP07 absent: identity is derived from the check number and position.
	assert.Equal(t, "CHK1001-2", denied.ControlNumber)

	interim := result.Remittances[2]
	assert.Equal(t, "22", interim.StatusCode)
	assert.False(t, interim.IsFinal)
	assert.Equal(t, "CHK1001-3", interim.ControlNumber)
}

func TestParse_MixedInterchange(t *testing.T) {
	result, err := edi.Parse(doc(
		"ST*837*0001",
		"HL*1**20*1",
		"CLM*CLAIM001*800",
		"SE*4*0001",
		"ST*835*0002",
		"BPR*I*650*C*CHK*CCP*01*999999992**01*888888888*DA*123456*01*111111111*DA*20260215",
		"TRN*1*CHK2001*1999999999",
		"N1*PR*ACME HEALTH*XV*PAYER01",
		"CLP*CLAIM001*1*800*650***ICN900",
		"SE*6*0002",
	), "mixed.edi")
	require.NoError(t, err)
	require.Len(t, result.Claims, 1)
	require.Len(t, result.Remittances, 1)
	require.Len(t, result.Batches, 1)
	assert.Equal(t, "CLAIM001", result.Claims[0].ControlNumber)
	assert.Equal(t, "CLAIM001", result.Remittances[0].ClaimControlNumber)
	assert.Equal(t, "CHK", result.Batches[0].PaymentMethod)
}

func TestParse_NonStandardDelimiters(t *testing.T) {
	raw := "ISA|00|          |00|          |ZZ|SENDER         |ZZ|RECEIVER       |260301|1200|^|00501|000000001|0|P|>!" +
		"ST|835|0001!" +
		"BPR|I|250|C|ACH|CCP|01|999999992||01|888888888|DA|123456|01|111111111|DA|20260215!" +
		"TRN|1|CHK3001|1999999999!" +
		"CLP|CLAIM009|1|250|250|||ICN777!" +
		"CAS|CO|45|0!" +
		"SE|6|0001!" +
		"IEA|1|000000001!"

	result, err := edi.Parse(raw, "pipes.835")
	require.NoError(t, err)
	require.Len(t, result.Remittances, 1)
	remit := result.Remittances[0]
	assert.Equal(t, "ICN777", remit.ControlNumber)
	assert.Equal(t, 250.0, remit.PaymentAmount)
	require.Len(t, remit.Adjustments, 1)
	assert.Equal(t, "45", remit.Adjustments[0].ReasonCode)
}

func TestParse_UnsupportedTransactionSkipped(t *testing.T) {
	result, err := edi.Parse(doc(
		"ST*270*0001",
		"CLM*SHOULDNOTPARSE*100",
		"SE*3*0001",
		"ST*837*0002",
		"HL*1**20*1",
		"CLM*CLAIM001*100",
		"SE*4*0002",
	), "eligibility.edi")
	require.NoError(t, err)
	require.Len(t, result.Claims, 1)
	assert.Equal(t, "CLAIM001", result.Claims[0].ControlNumber)

	var unsupported bool
	for _, w := range result.Warnings {
		if w.IssueType == edi.IssueUnsupportedTransaction {
			unsupported = true
		}
	}
	assert.True(t, unsupported)
}

func TestParse_UnknownSegmentIsInfoWarning(t *testing.T) {
	result, err := edi.Parse(doc(
		"ZZZ*NOT*A*SEGMENT",
		"ST*837*0001",
		"HL*1**20*1",
		"CLM*CLAIM001*100",
		"SE*4*0001",
	), "weird.837")
	require.NoError(t, err)
	require.Len(t, result.Claims, 1)

	require.NotEmpty(t, result.Warnings)
	assert.Equal(t, edi.SeverityInfo, result.Warnings[0].Severity)
	assert.Equal(t, edi.IssueUnknownSegment, result.Warnings[0].IssueType)
	assert.Equal(t, "ZZZ", result.Warnings[0].SegmentType)
}

func TestParse_OrphanSegmentsWarnAndContinue(t *testing.T) {
	result, err := edi.Parse(doc(
		"ST*837*0001",
		"HL*1**20*1",
		"SV1*HC:99213*500*UN*1",
		"CLM*CLAIM001*500",
		"SE*5*0001",
	), "orphan.837")
	require.NoError(t, err)
	require.Len(t, result.Claims, 1)
	assert.Empty(t, result.Claims[0].Lines)

	var orphan bool
	for _, w := range result.Warnings {
		if w.IssueType == edi.IssueOrphanSegment && w.SegmentType == "SV1" {
			orphan = true
		}
	}
	assert.True(t, orphan)
}

func TestParse_FatalErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"empty document", ""},
		{"whitespace only", "   \n\t "},
		{"no interchange header", "GS*HC*SENDER*RECEIVER~IEA*1*1~"},
		{"truncated header", "ISA*00*          *00*          *ZZ*SENDER"},
		{"missing trailer", isaHeader + "~ST*837*0001~SE*2*0001~"},
		{"invalid utf8", isaHeader + "~\xff\xfe~IEA*1*000000001~"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := edi.Parse(tc.doc, "bad.edi")
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, edi.IsFatal(err))
		})
	}
}

func TestIsFatal_WrappedError(t *testing.T) {
	_, err := edi.Parse("", "empty.edi")
	require.Error(t, err)

	wrapped := &wrapError{cause: err}
	assert.True(t, edi.IsFatal(wrapped))
	assert.False(t, edi.IsFatal(nil))
	assert.False(t, edi.IsFatal(assert.AnError))
}

type wrapError struct{ cause error }

func (e *wrapError) Error() string { return "ingest: " + e.cause.Error() }
func (e *wrapError) Unwrap() error { return e.cause }

func TestParseResult_WarningCount(t *testing.T) {
	result, err := edi.Parse(doc(
		"ZZZ*1",
		"ST*837*0001",
		"HL*1**20*1",
		"CLM*NOTOTAL",
		"SE*4*0001",
	), "warnings.837")
	require.NoError(t, err)
	require.Len(t, result.Claims, 1)
	assert.Equal(t, len(result.Warnings)+len(result.Claims[0].Warnings), result.WarningCount())
	assert.GreaterOrEqual(t, result.WarningCount(), 2)
}
