package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/seller-directory/internal/domain"
)

const happyPathCSV = "company_name,domain,first_name,last_name,email,title\n" +
	"Acme Inc,acme.com,,,,\n" +
	"Beta LLC,beta.com,,,,\n" +
	"Acme Inc,,Jane,Doe,jane@acme.com,CMO\n" +
	"Beta LLC,,John,Roe,,Manager\n"

func newTestService(corpus CorpusStore, opts ...ServiceOption) *Service {
	return NewService(NewDecoder(0), corpus, nil, nopLogger{}, opts...)
}

func TestPreview_HappyPath(t *testing.T) {
	svc := newTestService(newMockCorpus())

	result, err := svc.Preview(context.Background(), []byte(happyPathCSV), MimeCSV, "sellers.csv")
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}

	s := result.Summary
	if s.Counts.TotalCompanies != 2 || s.Counts.TotalContacts != 2 {
		t.Errorf("counts = %+v, want 2 companies and 2 contacts", s.Counts)
	}
	if s.Counts.CriticalErrors != 0 {
		t.Errorf("criticalErrors = %d, want 0 (%+v)", s.Counts.CriticalErrors, s.ValidationErrors)
	}
	if !s.ReadyForImport {
		t.Errorf("clean input must be ready for import")
	}
	if s.MediaSellerStats.CLevelContacts != 1 {
		t.Errorf("cLevelContacts = %d, want 1 (the CMO)", s.MediaSellerStats.CLevelContacts)
	}
	if result.UploadID == "" {
		t.Errorf("preview must assign an uploadId")
	}
}

func TestPreview_MissingRequiredTitle(t *testing.T) {
	csv := "company_name,first_name,last_name,email,title\n" +
		"Acme Inc,Jane,Doe,jane@acme.com,\n"
	svc := newTestService(newMockCorpus())

	result, err := svc.Preview(context.Background(), []byte(csv), MimeCSV, "")
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}

	s := result.Summary
	if s.ReadyForImport {
		t.Errorf("missing title must block import")
	}
	if s.Counts.CriticalErrors != 1 {
		t.Fatalf("criticalErrors = %d, want 1", s.Counts.CriticalErrors)
	}
	var found bool
	for _, issue := range s.ValidationErrors {
		if issue.Severity == domain.SeverityError && strings.Contains(issue.Message, "required") && issue.Row == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a required-title error on row 1: %+v", s.ValidationErrors)
	}
}

func TestPreview_ReadyForImportTracksCriticalErrors(t *testing.T) {
	inputs := []string{
		happyPathCSV,
		"company_name,title,email\nAcme Inc,,bad-email\n",
		"company_name,website\nAcme Inc,not a url\n",
	}
	svc := newTestService(newMockCorpus())

	for _, input := range inputs {
		result, err := svc.Preview(context.Background(), []byte(input), MimeCSV, "")
		if err != nil {
			t.Fatalf("Preview failed: %v", err)
		}
		want := result.Summary.Counts.CriticalErrors == 0
		if result.Summary.ReadyForImport != want {
			t.Errorf("readyForImport must equal (criticalErrors == 0): %+v", result.Summary.Counts)
		}
	}
}

func TestPreview_OversizedFile(t *testing.T) {
	svc := NewService(NewDecoder(64), newMockCorpus(), nil, nopLogger{})
	data := []byte(strings.Repeat("x", 65))

	_, err := svc.Preview(context.Background(), data, MimeCSV, "")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestPreview_Deterministic(t *testing.T) {
	svc := newTestService(newMockCorpus())
	ctx := context.Background()

	first, err := svc.Preview(ctx, []byte(happyPathCSV), MimeCSV, "")
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	second, _ := svc.Preview(ctx, []byte(happyPathCSV), MimeCSV, "")

	if len(first.Summary.ValidationErrors) != len(second.Summary.ValidationErrors) {
		t.Fatalf("issue lists differ across identical runs")
	}
	for i := range first.Summary.ValidationErrors {
		if first.Summary.ValidationErrors[i] != second.Summary.ValidationErrors[i] {
			t.Errorf("issue %d differs: %+v vs %+v", i,
				first.Summary.ValidationErrors[i], second.Summary.ValidationErrors[i])
		}
	}
	if first.Summary.Quality != second.Summary.Quality {
		t.Errorf("quality summary differs: %+v vs %+v", first.Summary.Quality, second.Summary.Quality)
	}
}

func TestImport_DuplicateWithinFile(t *testing.T) {
	csv := "company_name,domain\nAcme Inc,acme.com\nAcme Inc,acme.com\n"
	corpus := newMockCorpus()
	svc := newTestService(corpus)
	ctx := context.Background()

	preview, err := svc.Preview(ctx, []byte(csv), MimeCSV, "")
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	result, err := svc.Import(ctx, preview.UploadID, preview.Companies, preview.Contacts)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	r := result.Results
	if r.CompaniesCreated != 1 || r.CompaniesSkipped != 1 {
		t.Errorf("created = %d, skipped = %d; want 1 and 1", r.CompaniesCreated, r.CompaniesSkipped)
	}
	if len(corpus.companies) != 1 {
		t.Errorf("exactly one company must be persisted, got %d", len(corpus.companies))
	}
}

func TestImport_SecondRunCreatesNothing(t *testing.T) {
	corpus := newMockCorpus()
	svc := newTestService(corpus)
	ctx := context.Background()

	preview, err := svc.Preview(ctx, []byte(happyPathCSV), MimeCSV, "")
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if _, err := svc.Import(ctx, "", preview.Companies, preview.Contacts); err != nil {
		t.Fatalf("first Import failed: %v", err)
	}

	second, err := svc.Import(ctx, "", preview.Companies, preview.Contacts)
	if err != nil {
		t.Fatalf("second Import failed: %v", err)
	}
	r := second.Results
	if r.CompaniesCreated != 0 || r.ContactsCreated != 0 {
		t.Errorf("second run must create nothing: %+v", r)
	}
	if r.CompaniesUpdated+r.CompaniesSkipped != 2 {
		t.Errorf("second run should update or skip every company: %+v", r)
	}
}

func TestImport_SuccessRateAndCounters(t *testing.T) {
	corpus := newMockCorpus()
	corpus.failNames["Bad Co"] = true
	svc := newTestService(corpus)

	companies := []domain.NormalizedCompany{
		{Name: "Acme Inc", SourceRow: 1},
		{Name: "Bad Co", SourceRow: 2},
	}

	result, err := svc.Import(context.Background(), "", companies, nil)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	s := result.Results.Summary
	if s.SuccessfulOperations != 1 || s.FailedOperations != 1 || s.TotalProcessed != 2 {
		t.Errorf("operation counts wrong: %+v", s)
	}
	if s.SuccessRate != 50 {
		t.Errorf("successRate = %d, want 50", s.SuccessRate)
	}
	if s.CreatedRecords != 1 || s.SkippedRecords != 0 {
		t.Errorf("separate counters wrong: %+v", s)
	}
	if result.Success {
		t.Errorf("a run with write failures is not a success")
	}
}

func TestImport_EmptyRunIsFullSuccess(t *testing.T) {
	svc := newTestService(newMockCorpus())

	result, err := svc.Import(context.Background(), "", nil, nil)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Results.Summary.SuccessRate != 100 {
		t.Errorf("successRate with zero processed records is defined as 100, got %d",
			result.Results.Summary.SuccessRate)
	}
}

func TestImport_FromStoredSession(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	corpus := newMockCorpus()
	svc := newTestService(corpus, WithSessionStore(NewRedisSessionStore(client)))
	ctx := context.Background()

	preview, err := svc.Preview(ctx, []byte(happyPathCSV), MimeCSV, "sellers.csv")
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}

	// Confirm by id alone; the stored session supplies the records
	result, err := svc.Import(ctx, preview.UploadID, nil, nil)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Results.CompaniesCreated != 2 || result.Results.ContactsCreated != 2 {
		t.Errorf("session records not imported: %+v", result.Results)
	}

	// The session is consumed by a successful import
	if _, err := svc.Import(ctx, preview.UploadID, nil, nil); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound on reuse, got %v", err)
	}
}

func TestImport_AmbiguityWarningsSurface(t *testing.T) {
	corpus := newMockCorpus()
	corpus.companies = []domain.Company{
		{ID: "c1", Name: "Acme East", Domain: "acme.com"},
		{ID: "c2", Name: "Acme West", Domain: "acme.com"},
	}
	svc := newTestService(corpus)

	companies := []domain.NormalizedCompany{{Name: "Acme", Domain: "acme.com", SourceRow: 1}}
	result, err := svc.Import(context.Background(), "", companies, nil)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(result.Results.Warnings) != 1 {
		t.Fatalf("ambiguous match warning must surface: %+v", result.Results.Warnings)
	}
	if result.Results.Summary.WarningCount != 1 {
		t.Errorf("warningCount = %d, want 1", result.Results.Summary.WarningCount)
	}
}
