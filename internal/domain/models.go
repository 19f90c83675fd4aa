package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EDIFile stores metadata about an uploaded EDI document.
type EDIFile struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	FileName        string         `db:"file_name" json:"file_name"`
	OriginalName    string         `db:"original_name" json:"original_name"`
	TransactionSet  TransactionSet `db:"transaction_set" json:"transaction_set"`
	FileSize        int64          `db:"file_size" json:"file_size"`
	S3Bucket        string         `db:"s3_bucket" json:"s3_bucket"`
	S3Key           string         `db:"s3_key" json:"s3_key"`
	Status          FileStatus     `db:"status" json:"status"`
	IngestAttempts  int            `db:"ingest_attempts" json:"ingest_attempts"`
	IngestError     string         `db:"ingest_error" json:"ingest_error"`
	ClaimCount      int            `db:"claim_count" json:"claim_count"`
	RemittanceCount int            `db:"remittance_count" json:"remittance_count"`
	WarningCount    int            `db:"warning_count" json:"warning_count"`
	ErrorCount      int            `db:"error_count" json:"error_count"`
	IngestedAt      *time.Time     `db:"ingested_at" json:"ingested_at"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// Claim is the canonical shape of a parsed 837 claim.
type Claim struct {
	ID                   uuid.UUID       `db:"id" json:"id"`
	FileID               uuid.UUID       `db:"file_id" json:"file_id"`
	ControlNumber        string          `db:"control_number" json:"control_number"`
	PatientControlNumber string          `db:"patient_control_number" json:"patient_control_number"`
	PayerID              string          `db:"payer_id" json:"payer_id"`
	TotalChargeAmount    float64         `db:"total_charge_amount" json:"total_charge_amount"`
	FacilityCode         string          `db:"facility_code" json:"facility_code"`
	FrequencyCode        string          `db:"frequency_code" json:"frequency_code"`
	AssignmentCode       string          `db:"assignment_code" json:"assignment_code"`
	StatementDate        *time.Time      `db:"statement_date" json:"statement_date"`
	AdmissionDate        *time.Time      `db:"admission_date" json:"admission_date"`
	DischargeDate        *time.Time      `db:"discharge_date" json:"discharge_date"`
	ServiceDate          *time.Time      `db:"service_date" json:"service_date"`
	PrincipalDiagnosis   string          `db:"principal_diagnosis" json:"principal_diagnosis"`
	DiagnosisCodes       StringList      `db:"diagnosis_codes" json:"diagnosis_codes"`
	AttendingProvider    string          `db:"attending_provider" json:"attending_provider"`
	OperatingProvider    string          `db:"operating_provider" json:"operating_provider"`
	ReferringProvider    string          `db:"referring_provider" json:"referring_provider"`
	IsIncomplete         bool            `db:"is_incomplete" json:"is_incomplete"`
	Warnings             json.RawMessage `db:"warnings" json:"warnings"`
	Lines                []ClaimLine     `db:"-" json:"lines,omitempty"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at" json:"updated_at"`
}

// ClaimLine is a single service line belonging to a claim. Ordering matches
// the source document.
type ClaimLine struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	ClaimID       uuid.UUID  `db:"claim_id" json:"claim_id"`
	LineNumber    int        `db:"line_number" json:"line_number"`
	RevenueCode   string     `db:"revenue_code" json:"revenue_code"`
	ProcedureCode string     `db:"procedure_code" json:"procedure_code"`
	Modifier      string     `db:"modifier" json:"modifier"`
	ChargeAmount  float64    `db:"charge_amount" json:"charge_amount"`
	UnitCount     float64    `db:"unit_count" json:"unit_count"`
	UnitType      string     `db:"unit_type" json:"unit_type"`
	ServiceDate   *time.Time `db:"service_date" json:"service_date"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// Remittance is the canonical shape of a parsed 835 claim payment.
type Remittance struct {
	ID                 uuid.UUID              `db:"id" json:"id"`
	FileID             uuid.UUID              `db:"file_id" json:"file_id"`
	ControlNumber      string                 `db:"control_number" json:"control_number"`
	ClaimControlNumber string                 `db:"claim_control_number" json:"claim_control_number"`
	PayerID            string                 `db:"payer_id" json:"payer_id"`
	PayerName          string                 `db:"payer_name" json:"payer_name"`
	CheckNumber        string                 `db:"check_number" json:"check_number"`
	PaymentAmount      float64                `db:"payment_amount" json:"payment_amount"`
	ChargeAmount       float64                `db:"charge_amount" json:"charge_amount"`
	PaymentRate        float64                `db:"payment_rate" json:"payment_rate"`
	PaymentDate        *time.Time             `db:"payment_date" json:"payment_date"`
	PaymentMethod      string                 `db:"payment_method" json:"payment_method"`
	StatusCode         string                 `db:"status_code" json:"status_code"`
	IsFinal            bool                   `db:"is_final" json:"is_final"`
	HasDenial          bool                   `db:"has_denial" json:"has_denial"`
	DenialReasonCodes  StringList             `db:"denial_reason_codes" json:"denial_reason_codes"`
	IsIncomplete       bool                   `db:"is_incomplete" json:"is_incomplete"`
	Warnings           json.RawMessage        `db:"warnings" json:"warnings"`
	Adjustments        []RemittanceAdjustment `db:"-" json:"adjustments,omitempty"`
	CreatedAt          time.Time              `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time              `db:"updated_at" json:"updated_at"`
}

// RemittanceAdjustment is a single CAS adjustment entry on a remittance.
// Duplicates are preserved in source order; multiplicity feeds pattern detection.
type RemittanceAdjustment struct {
	ID           uuid.UUID `db:"id" json:"id"`
	RemittanceID uuid.UUID `db:"remittance_id" json:"remittance_id"`
	Position     int       `db:"position" json:"position"`
	GroupCode    string    `db:"group_code" json:"group_code"`
	ReasonCode   string    `db:"reason_code" json:"reason_code"`
	Amount       float64   `db:"amount" json:"amount"`
	Quantity     float64   `db:"quantity" json:"quantity"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ClaimEpisode is the reconciliation unit linking one claim to its remittance
// outcomes over time. Mutated only by the link service.
type ClaimEpisode struct {
	ID               uuid.UUID     `db:"id" json:"id"`
	ClaimID          uuid.UUID     `db:"claim_id" json:"claim_id"`
	ControlNumber    string        `db:"control_number" json:"control_number"`
	PayerID          string        `db:"payer_id" json:"payer_id"`
	Status           EpisodeStatus `db:"status" json:"status"`
	PaymentAmount    float64       `db:"payment_amount" json:"payment_amount"`
	AdjustmentAmount float64       `db:"adjustment_amount" json:"adjustment_amount"`
	ChargeAmount     float64       `db:"charge_amount" json:"charge_amount"`
	DenialCount      int           `db:"denial_count" json:"denial_count"`
	AdjustmentCount  int           `db:"adjustment_count" json:"adjustment_count"`
	RemittanceCount  int           `db:"remittance_count" json:"remittance_count"`
	LinkedAt         *time.Time    `db:"linked_at" json:"linked_at"`
	CompletedAt      *time.Time    `db:"completed_at" json:"completed_at"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

// DenialPattern is a recurring denial condition mined from linked episodes.
type DenialPattern struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	PayerID         string          `db:"payer_id" json:"payer_id"`
	PatternType     PatternType     `db:"pattern_type" json:"pattern_type"`
	Description     string          `db:"description" json:"description"`
	ReasonCode      string          `db:"reason_code" json:"reason_code"`
	ConditionKey    string          `db:"condition_key" json:"condition_key"`
	Conditions      json.RawMessage `db:"conditions" json:"conditions"`
	OccurrenceCount int             `db:"occurrence_count" json:"occurrence_count"`
	EpisodesTotal   int             `db:"episodes_total" json:"episodes_total"`
	Frequency       float64         `db:"frequency" json:"frequency"`
	ConfidenceScore float64         `db:"confidence_score" json:"confidence_score"`
	FirstSeenAt     time.Time       `db:"first_seen_at" json:"first_seen_at"`
	LastSeenAt      time.Time       `db:"last_seen_at" json:"last_seen_at"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// CARCCode is a claim adjustment reason code reference entry.
type CARCCode struct {
	Code        string    `db:"code" json:"code"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// DuplicateControlNumber reports a control number claimed by more than one stored claim.
type DuplicateControlNumber struct {
	ControlNumber string `db:"control_number" json:"control_number"`
	ClaimCount    int    `db:"claim_count" json:"claim_count"`
}

// Stats holds ingest-wide aggregate counters for the dashboard.
type Stats struct {
	TotalFiles          int `db:"total_files" json:"total_files"`
	TotalClaims         int `db:"total_claims" json:"total_claims"`
	TotalRemittances    int `db:"total_remittances" json:"total_remittances"`
	UnlinkedRemittances int `db:"unlinked_remittances" json:"unlinked_remittances"`
	PendingEpisodes     int `db:"pending_episodes" json:"pending_episodes"`
	LinkedEpisodes      int `db:"linked_episodes" json:"linked_episodes"`
	CompleteEpisodes    int `db:"complete_episodes" json:"complete_episodes"`
	DenialPatterns      int `db:"denial_patterns" json:"denial_patterns"`
}

// IngestSummary reports the outcome of ingesting one EDI document.
type IngestSummary struct {
	FileID            uuid.UUID `json:"file_id"`
	TransactionSet    string    `json:"transaction_set"`
	ClaimsParsed      int       `json:"claims_parsed"`
	RemittancesParsed int       `json:"remittances_parsed"`
	EpisodesLinked    int       `json:"episodes_linked"`
	Unlinked          int       `json:"unlinked"`
	Warnings          int       `json:"warnings"`
	Errors            int       `json:"errors"`
}

// DenialOccurrence is one denial observation joined across an episode, its
// remittance adjustments, and the claim it reconciles. Input to the pattern
// detector.
type DenialOccurrence struct {
	EpisodeID     uuid.UUID `db:"episode_id" json:"episode_id"`
	PayerID       string    `db:"payer_id" json:"payer_id"`
	ReasonCode    string    `db:"reason_code" json:"reason_code"`
	GroupCode     string    `db:"group_code" json:"group_code"`
	FacilityCode  string    `db:"facility_code" json:"facility_code"`
	ProcedureCode string    `db:"procedure_code" json:"procedure_code"`
	Amount        float64   `db:"amount" json:"amount"`
	SeenAt        time.Time `db:"seen_at" json:"seen_at"`
}

// PayerOverviewRow is one payer's reconciliation summary for reporting.
type PayerOverviewRow struct {
	PayerID       string  `db:"payer_id" json:"payer_id"`
	EpisodeCount  int     `db:"episode_count" json:"episode_count"`
	LinkedCount   int     `db:"linked_count" json:"linked_count"`
	CompleteCount int     `db:"complete_count" json:"complete_count"`
	DenialCount   int     `db:"denial_count" json:"denial_count"`
	TotalBilled   float64 `db:"total_billed" json:"total_billed"`
	TotalPaid     float64 `db:"total_paid" json:"total_paid"`
}

// DenialSummaryRow is one denial reason code's aggregate for reporting.
type DenialSummaryRow struct {
	PayerID     string  `db:"payer_id" json:"payer_id"`
	ReasonCode  string  `db:"reason_code" json:"reason_code"`
	Description string  `db:"description" json:"description"`
	Occurrences int     `db:"occurrences" json:"occurrences"`
	TotalAmount float64 `db:"total_amount" json:"total_amount"`
}
