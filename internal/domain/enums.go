package domain

// TransactionSet identifies the EDI transaction set of an ingested document.
type TransactionSet string

const (
	TransactionSet837     TransactionSet = "837"
	TransactionSet835     TransactionSet = "835"
	TransactionSetMixed   TransactionSet = "mixed"
	TransactionSetUnknown TransactionSet = "unknown"
)

// FileStatus represents the ingest lifecycle of an uploaded EDI document.
type FileStatus string

const (
	FileStatusQueued    FileStatus = "queued"
	FileStatusIngesting FileStatus = "ingesting"
	FileStatusIngested  FileStatus = "ingested"
	FileStatusFailed    FileStatus = "failed"
)

// EpisodeStatus is the reconciliation state of a claim episode.
type EpisodeStatus string

const (
	EpisodePending  EpisodeStatus = "PENDING"
	EpisodeLinked   EpisodeStatus = "LINKED"
	EpisodeComplete EpisodeStatus = "COMPLETE"
)

// PatternType classifies a detected denial pattern by the condition it groups on.
type PatternType string

const (
	PatternReasonCode    PatternType = "reason_code"
	PatternProcedureCode PatternType = "procedure_code"
	PatternFacility      PatternType = "facility"
)

// Adjustment group codes carried on CAS segments. CO and PR are the groups
// that can signal a denial.
const (
	AdjustmentGroupContractual   = "CO"
	AdjustmentGroupPatientResp   = "PR"
	AdjustmentGroupOtherAdjust   = "OA"
	AdjustmentGroupPayerInitiate = "PI"
)

// ClaimStatusDenied is the CLP02 status code for a denied claim payment.
const ClaimStatusDenied = "4"
