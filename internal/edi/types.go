package edi

import "time"

// Severity classifies a parse warning.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Issue types recorded on warnings.
const (
	IssueUnknownSegment         = "unknown_segment"
	IssueShortSegment           = "short_segment"
	IssueBadNumber              = "bad_number"
	IssueBadDate                = "bad_date"
	IssueOrphanSegment          = "orphan_segment"
	IssueUnsupportedTransaction = "unsupported_transaction"
	IssueMissingField           = "missing_field"
)

// Warning is a non-fatal data-quality issue recorded during parsing.
type Warning struct {
	Severity      Severity `json:"severity"`
	SegmentType   string   `json:"segment_type"`
	IssueType     string   `json:"issue_type"`
	Message       string   `json:"message"`
	ControlNumber string   `json:"claim_control_number,omitempty"`
}

// ParsedClaimLine is one service line of a parsed 837 claim, in source order.
type ParsedClaimLine struct {
	LineNumber    int
	RevenueCode   string
	ProcedureCode string
	Modifier      string
	ChargeAmount  float64
	UnitCount     float64
	UnitType      string
	ServiceDate   *time.Time
}

// ParsedClaim is a raw claim lifted out of an 837 transaction set.
type ParsedClaim struct {
	ControlNumber        string
	PatientControlNumber string
	PayerID              string
	TotalChargeAmount    float64
	HasHeaderTotal       bool
	FacilityCode         string
	FrequencyCode        string
	AssignmentCode       string
	StatementDate        *time.Time
	AdmissionDate        *time.Time
	DischargeDate        *time.Time
	ServiceDate          *time.Time
	PrincipalDiagnosis   string
	DiagnosisCodes       []string
	AttendingProvider    string
	OperatingProvider    string
	ReferringProvider    string
	Lines                []ParsedClaimLine
	IsIncomplete         bool
	Warnings             []Warning
}

// ParsedAdjustment is one CAS adjustment triplet attached to a claim payment.
type ParsedAdjustment struct {
	GroupCode  string
	ReasonCode string
	Amount     float64
	Quantity   float64
}

// ParsedRemittance is a raw claim payment lifted out of an 835 transaction set.
// ClaimControlNumber may reference a claim not yet seen; the parser makes no
// referential guarantee.
type ParsedRemittance struct {
	ControlNumber      string
	ClaimControlNumber string
	PayerID            string
	PayerName          string
	CheckNumber        string
	PaymentAmount      float64
	ChargeAmount       float64
	PaymentDate        *time.Time
	PaymentMethod      string
	StatusCode         string
	IsFinal            bool
	DenialReasonCodes  []string
	Adjustments        []ParsedAdjustment
	IsIncomplete       bool
	Warnings           []Warning
}

// PaymentBatch carries the BPR-level context shared by all claim payments in
// one 835 transaction set.
type PaymentBatch struct {
	TotalPaymentAmount float64
	PaymentMethod      string
	PaymentDate        *time.Time
	CheckNumber        string
	PayerID            string
	PayerName          string
}

// ParseResult is the self-contained outcome of parsing one EDI document.
type ParseResult struct {
	SourceName  string
	Claims      []ParsedClaim
	Remittances []ParsedRemittance
	Batches     []PaymentBatch
	Warnings    []Warning
}

// WarningCount returns document-level warnings plus the warnings attached to
// each parsed record.
func (r *ParseResult) WarningCount() int {
	n := len(r.Warnings)
	for i := range r.Claims {
		n += len(r.Claims[i].Warnings)
	}
	for i := range r.Remittances {
		n += len(r.Remittances[i].Warnings)
	}
	return n
}
