package importer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/seller-directory/internal/domain"
)

// previewLimit caps how many flattened rows travel back for display.
const previewLimit = 10

// Archiver stores the raw upload and the finished outcome for audit.
// Implementations must be safe to skip-fail; archival never blocks an
// import.
type Archiver interface {
	ArchiveSource(ctx context.Context, uploadID, fileName string, data []byte) error
	ArchiveOutcome(ctx context.Context, outcome *domain.ImportOutcome) error
}

// Service is the pipeline facade exposing the two external operations,
// Preview and Import, plus progress lookup for pollers.
type Service struct {
	decoder  *Decoder
	store    CorpusStore
	jobs     JobStore
	sessions SessionStore
	reporter Reporter
	progress *RedisReporter
	archiver Archiver
	log      Logger

	concurrency int
	runTimeout  time.Duration
}

// ServiceOption configures optional collaborators.
type ServiceOption func(*Service)

func WithJobStore(jobs JobStore) ServiceOption {
	return func(s *Service) { s.jobs = jobs }
}

func WithSessionStore(sessions SessionStore) ServiceOption {
	return func(s *Service) { s.sessions = sessions }
}

func WithProgress(progress *RedisReporter) ServiceOption {
	return func(s *Service) { s.progress = progress }
}

func WithArchiver(archiver Archiver) ServiceOption {
	return func(s *Service) { s.archiver = archiver }
}

func WithConcurrency(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithRunTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.runTimeout = d
		}
	}
}

func NewService(decoder *Decoder, store CorpusStore, reporter Reporter, log Logger, opts ...ServiceOption) *Service {
	s := &Service{
		decoder:     decoder,
		store:       store,
		reporter:    reporter,
		log:         log,
		concurrency: DefaultWorkerConcurrency,
		runTimeout:  10 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PreviewCounts breaks validation output down for the caller's gate.
type PreviewCounts struct {
	TotalCompanies int `json:"totalCompanies"`
	TotalContacts  int `json:"totalContacts"`
	TotalErrors    int `json:"totalErrors"`
	CriticalErrors int `json:"criticalErrors"`
	Warnings       int `json:"warnings"`
}

// PreviewSummary is the caller-facing digest of a previewed upload.
type PreviewSummary struct {
	TotalCompanies   int                      `json:"totalCompanies"`
	TotalContacts    int                      `json:"totalContacts"`
	Errors           int                      `json:"errors"`
	ValidationErrors []domain.ValidationIssue `json:"validationErrors"`
	Counts           PreviewCounts            `json:"counts"`
	Quality          domain.QualitySummary    `json:"quality"`
	MediaSellerStats domain.MediaSellerStats  `json:"mediaSellerStats"`
	ReadyForImport   bool                     `json:"readyForImport"`
}

// PreviewResult is the full Preview response: the normalized record
// sets the caller will submit back on confirm, a display sample of the
// raw rows, and the summary.
type PreviewResult struct {
	UploadID  string                     `json:"uploadId"`
	Companies []domain.NormalizedCompany `json:"companies"`
	Contacts  []domain.NormalizedContact `json:"contacts"`
	Preview   []map[string]interface{}   `json:"preview"`
	Summary   PreviewSummary             `json:"summary"`
}

// ImportSummary carries both the legacy combined rate and the separate
// counters, so callers decide how to combine skips and failures for
// display.
type ImportSummary struct {
	SuccessRate            int    `json:"successRate"`
	TotalProcessed         int    `json:"totalProcessed"`
	SuccessfulOperations   int    `json:"successfulOperations"`
	FailedOperations       int    `json:"failedOperations"`
	CreatedRecords         int    `json:"createdRecords"`
	UpdatedRecords         int    `json:"updatedRecords"`
	SkippedRecords         int    `json:"skippedRecords"`
	WarningCount           int    `json:"warningCount"`
	ExecutionTimeMs        int64  `json:"executionTimeMs"`
	ExecutionTimeFormatted string `json:"executionTimeFormatted"`
}

// ImportResults is the per-entity breakdown of one finished run.
type ImportResults struct {
	CompaniesCreated int           `json:"companiesCreated"`
	CompaniesUpdated int           `json:"companiesUpdated"`
	CompaniesSkipped int           `json:"companiesSkipped"`
	ContactsCreated  int           `json:"contactsCreated"`
	ContactsUpdated  int           `json:"contactsUpdated"`
	ContactsSkipped  int           `json:"contactsSkipped"`
	Errors           []string      `json:"errors"`
	Warnings         []string      `json:"warnings"`
	ProcessedAt      string        `json:"processedAt"`
	ExecutionTime    int64         `json:"executionTime"`
	UploadID         string        `json:"uploadId"`
	Summary          ImportSummary `json:"summary"`
}

// ImportResult is the Import response envelope.
type ImportResult struct {
	Success bool          `json:"success"`
	Results ImportResults `json:"results"`
}

// Preview decodes, normalizes, validates, and scores an upload without
// writing anything. Decode failures abort the call; row-scoped
// problems come back as data in the summary.
func (s *Service) Preview(ctx context.Context, data []byte, mimeType, fileName string) (*PreviewResult, error) {
	uploadID := uuid.New().String()

	s.report(ctx, uploadID, domain.PhaseUploading, 0, 0, "receiving file")

	s.report(ctx, uploadID, domain.PhaseParsing, 0, 0, "decoding file")
	set, err := s.decoder.Decode(data, mimeType)
	if err != nil {
		return nil, fmt.Errorf("decode upload: %w", err)
	}

	s.report(ctx, uploadID, domain.PhaseValidating, 0, len(set.Rows), "validating records")
	normalized := Normalize(set)
	issues := append(normalized.Issues, Validate(normalized.Companies, normalized.Contacts)...)
	quality, stats := Score(normalized.Companies, normalized.Contacts)

	var totalErrors, criticalErrors, warnings int
	for _, issue := range issues {
		switch {
		case issue.Critical:
			criticalErrors++
			totalErrors++
		case issue.Severity == domain.SeverityError:
			totalErrors++
		default:
			warnings++
		}
	}

	result := &PreviewResult{
		UploadID:  uploadID,
		Companies: normalized.Companies,
		Contacts:  normalized.Contacts,
		Preview:   previewRows(set),
		Summary: PreviewSummary{
			TotalCompanies:   len(normalized.Companies),
			TotalContacts:    len(normalized.Contacts),
			Errors:           totalErrors,
			ValidationErrors: issues,
			Counts: PreviewCounts{
				TotalCompanies: len(normalized.Companies),
				TotalContacts:  len(normalized.Contacts),
				TotalErrors:    totalErrors,
				CriticalErrors: criticalErrors,
				Warnings:       warnings,
			},
			Quality:          quality,
			MediaSellerStats: stats,
			ReadyForImport:   criticalErrors == 0,
		},
	}

	if s.sessions != nil {
		session := &UploadSession{
			UploadID:  uploadID,
			FileName:  fileName,
			MimeType:  mimeType,
			Companies: normalized.Companies,
			Contacts:  normalized.Contacts,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.sessions.Save(ctx, session); err != nil {
			s.log.Warn("could not save upload session", "upload_id", uploadID, "error", err)
		}
	}
	if s.archiver != nil {
		if err := s.archiver.ArchiveSource(ctx, uploadID, fileName, data); err != nil {
			s.log.Warn("could not archive source file", "upload_id", uploadID, "error", err)
		}
	}

	s.log.Info("preview complete",
		"upload_id", uploadID,
		"companies", len(normalized.Companies),
		"contacts", len(normalized.Contacts),
		"critical_errors", criticalErrors,
		"warnings", warnings,
	)
	return result, nil
}

// Import matches the submitted records against the corpus and applies
// the decisions. When the record sets are empty and uploadID names a
// stored session, the session's records are used instead, so a caller
// can confirm by id alone. The run carries an overall deadline;
// exceeding it ends the run like a cancellation, with a valid partial
// result.
func (s *Service) Import(ctx context.Context, uploadID string, companies []domain.NormalizedCompany, contacts []domain.NormalizedContact) (*ImportResult, error) {
	if uploadID == "" {
		uploadID = uuid.New().String()
	} else if len(companies) == 0 && len(contacts) == 0 {
		if s.sessions == nil {
			return nil, ErrSessionNotFound
		}
		session, err := s.sessions.Get(ctx, uploadID)
		if err != nil {
			return nil, err
		}
		companies = session.Companies
		contacts = session.Contacts
	}

	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	decisions, err := MatchBatch(runCtx, companies, contacts, s.store)
	if err != nil {
		return nil, fmt.Errorf("match batch: %w", err)
	}

	executor := NewExecutor(s.store, s.reporter, s.concurrency)
	outcome, execErr := executor.Execute(runCtx, uploadID, companies, decisions.Companies, contacts, decisions.Contacts)
	if execErr != nil && !errors.Is(execErr, context.Canceled) && !errors.Is(execErr, context.DeadlineExceeded) {
		return nil, execErr
	}
	if execErr != nil {
		s.log.Warn("import run cut short", "upload_id", uploadID, "error", execErr)
	}

	for _, w := range decisions.Warnings {
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("row %d: %s", w.Row, w.Message))
	}

	s.finalize(ctx, uploadID, outcome)
	return buildImportResult(outcome), nil
}

// finalize persists bookkeeping and archives the outcome. Failures
// here are logged, never surfaced; the import itself already
// succeeded or failed on its own terms.
func (s *Service) finalize(ctx context.Context, uploadID string, outcome *domain.ImportOutcome) {
	ctx = context.WithoutCancel(ctx)
	if s.jobs != nil {
		if err := s.jobs.SaveOutcome(ctx, outcome); err != nil {
			s.log.Error("could not persist import job", "upload_id", uploadID, "error", err)
		}
	}
	if s.archiver != nil {
		if err := s.archiver.ArchiveOutcome(ctx, outcome); err != nil {
			s.log.Warn("could not archive outcome", "upload_id", uploadID, "error", err)
		}
	}
	if s.sessions != nil {
		if err := s.sessions.Delete(ctx, uploadID); err != nil {
			s.log.Warn("could not delete upload session", "upload_id", uploadID, "error", err)
		}
	}
	s.log.Info("import complete",
		"upload_id", uploadID,
		"created", outcome.Created(),
		"updated", outcome.Updated(),
		"skipped", outcome.Skipped(),
		"failed", len(outcome.Errors),
		"execution_time_ms", outcome.ExecutionTimeMs,
	)
}

// Progress returns the latest recorded progress event for a run.
func (s *Service) Progress(ctx context.Context, uploadID string) (*domain.ProgressEvent, error) {
	if s.progress == nil {
		return nil, ErrSessionNotFound
	}
	return s.progress.Latest(ctx, uploadID)
}

func buildImportResult(outcome *domain.ImportOutcome) *ImportResult {
	successful := outcome.Created() + outcome.Updated()
	failed := len(outcome.Errors)
	totalProcessed := successful + failed

	rate := 100
	if totalProcessed > 0 {
		rate = int(math.Round(float64(successful) / float64(totalProcessed) * 100))
	}

	return &ImportResult{
		Success: failed == 0,
		Results: ImportResults{
			CompaniesCreated: outcome.CompaniesCreated,
			CompaniesUpdated: outcome.CompaniesUpdated,
			CompaniesSkipped: outcome.CompaniesSkipped,
			ContactsCreated:  outcome.ContactsCreated,
			ContactsUpdated:  outcome.ContactsUpdated,
			ContactsSkipped:  outcome.ContactsSkipped,
			Errors:           outcome.Errors,
			Warnings:         outcome.Warnings,
			ProcessedAt:      outcome.ProcessedAt.Format(time.RFC3339),
			ExecutionTime:    outcome.ExecutionTimeMs,
			UploadID:         outcome.UploadID,
			Summary: ImportSummary{
				SuccessRate:            rate,
				TotalProcessed:         totalProcessed,
				SuccessfulOperations:   successful,
				FailedOperations:       failed,
				CreatedRecords:         outcome.Created(),
				UpdatedRecords:         outcome.Updated(),
				SkippedRecords:         outcome.Skipped(),
				WarningCount:           len(outcome.Warnings),
				ExecutionTimeMs:        outcome.ExecutionTimeMs,
				ExecutionTimeFormatted: formatExecutionTime(outcome.ExecutionTimeMs),
			},
		},
	}
}

func formatExecutionTime(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", float64(ms)/1000)
}

func (s *Service) report(ctx context.Context, uploadID string, phase domain.Phase, processed, total int, operation string) {
	if s.reporter == nil {
		return
	}
	s.reporter.Report(ctx, domain.ProgressEvent{
		UploadID:  uploadID,
		Phase:     phase,
		Processed: processed,
		Total:     total,
		Operation: operation,
		At:        time.Now().UTC(),
	})
}

func previewRows(set *RowSet) []map[string]interface{} {
	n := len(set.Rows)
	if n > previewLimit {
		n = previewLimit
	}
	rows := make([]map[string]interface{}, 0, n)
	for _, row := range set.Rows[:n] {
		flat := make(map[string]interface{}, len(row.Fields)+1)
		for k, v := range row.Fields {
			flat[k] = v
		}
		flat["_row"] = row.Line
		rows = append(rows, flat)
	}
	return rows
}
