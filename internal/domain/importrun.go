package domain

import "time"

// Severity classifies a validation issue. The validator decides severity
// exactly once; downstream consumers branch on this enum, never on
// message text.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationIssue is one row-scoped diagnostic produced by the normalizer
// or validator. Critical is decided at creation time: critical issues
// block import readiness, warnings never do.
type ValidationIssue struct {
	Row      int      `json:"row"`
	Field    string   `json:"field,omitempty"`
	Severity Severity `json:"severity"`
	Critical bool     `json:"critical"`
	Message  string   `json:"message"`
	Value    string   `json:"value,omitempty"`
}

// QualitySummary aggregates per-record completeness into run-level 0-100
// scores.
type QualitySummary struct {
	Overall        int `json:"overall"`
	Companies      int `json:"companies"`
	Contacts       int `json:"contacts"`
	MediaRelevance int `json:"mediaRelevance"`
	Completeness   int `json:"completeness"`
}

// MediaSellerStats counts contacts by advertising/media decision-maker
// signals in their titles.
type MediaSellerStats struct {
	TotalContacts        int `json:"totalContacts"`
	HighValueContacts    int `json:"highValueContacts"`
	CLevelContacts       int `json:"cLevelContacts"`
	DecisionMakers       int `json:"decisionMakers"`
	ContactsWithEmail    int `json:"contactsWithEmail"`
	ContactsWithPhone    int `json:"contactsWithPhone"`
	ContactsWithLinkedIn int `json:"contactsWithLinkedIn"`
}

// MatchAction enumerates the matcher's per-record verdicts.
type MatchAction string

const (
	ActionCreate MatchAction = "create"
	ActionUpdate MatchAction = "update"
	ActionSkip   MatchAction = "skip"
)

// MatchDecision is the matcher's verdict for one normalized record,
// consumed exactly once by the executor. ExistingID is set for updates,
// Reason for skips.
type MatchDecision struct {
	Action     MatchAction `json:"action"`
	ExistingID string      `json:"existingId,omitempty"`
	Reason     string      `json:"reason,omitempty"`
}

// Phase enumerates pipeline progress phases in strict order.
type Phase string

const (
	PhaseUploading          Phase = "uploading"
	PhaseParsing            Phase = "parsing"
	PhaseValidating         Phase = "validating"
	PhaseImportingCompanies Phase = "importing_companies"
	PhaseImportingContacts  Phase = "importing_contacts"
	PhaseFinalizing         Phase = "finalizing"
)

// PhaseOrder returns the position of a phase in the pipeline, or -1 for
// an unknown phase. Used to reject backward transitions.
func PhaseOrder(p Phase) int {
	switch p {
	case PhaseUploading:
		return 0
	case PhaseParsing:
		return 1
	case PhaseValidating:
		return 2
	case PhaseImportingCompanies:
		return 3
	case PhaseImportingContacts:
		return 4
	case PhaseFinalizing:
		return 5
	default:
		return -1
	}
}

// ProgressEvent is one status update pushed to progress reporters during
// an import run.
type ProgressEvent struct {
	UploadID   string    `json:"upload_id"`
	Phase      Phase     `json:"phase"`
	Processed  int       `json:"processed"`
	Total      int       `json:"total"`
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
	Operation  string    `json:"current_operation,omitempty"`
	At         time.Time `json:"at"`
}

// ImportOutcome accumulates the result of one import run. It is created
// at the start of a run, mutated only by the executor, and frozen when
// the run ends.
type ImportOutcome struct {
	UploadID         string    `json:"upload_id"`
	CompaniesCreated int       `json:"companies_created"`
	CompaniesUpdated int       `json:"companies_updated"`
	CompaniesSkipped int       `json:"companies_skipped"`
	ContactsCreated  int       `json:"contacts_created"`
	ContactsUpdated  int       `json:"contacts_updated"`
	ContactsSkipped  int       `json:"contacts_skipped"`
	Errors           []string  `json:"errors"`
	Warnings         []string  `json:"warnings"`
	ProcessedAt      time.Time `json:"processed_at"`
	ExecutionTimeMs  int64     `json:"execution_time_ms"`
}

// Created returns the total created records across both entity types.
func (o *ImportOutcome) Created() int { return o.CompaniesCreated + o.ContactsCreated }

// Updated returns the total updated records across both entity types.
func (o *ImportOutcome) Updated() int { return o.CompaniesUpdated + o.ContactsUpdated }

// Skipped returns the total skipped records across both entity types.
func (o *ImportOutcome) Skipped() int { return o.CompaniesSkipped + o.ContactsSkipped }
