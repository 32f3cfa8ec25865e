package importer

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ignite/seller-directory/internal/domain"
)

func TestValidate_RequiredFields(t *testing.T) {
	companies := []domain.NormalizedCompany{{Name: "", SourceRow: 1}}
	contacts := []domain.NormalizedContact{{Title: "", Email: "jane@acme.com", SourceRow: 2}}

	issues := Validate(companies, contacts)
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d: %+v", len(issues), issues)
	}
	for _, issue := range issues {
		if issue.Severity != domain.SeverityError || !issue.Critical {
			t.Errorf("required-field violations must be critical errors: %+v", issue)
		}
		if !strings.Contains(issue.Message, "required") {
			t.Errorf("message must contain \"required\": %q", issue.Message)
		}
	}
	if issues[0].Row != 1 || issues[1].Row != 2 {
		t.Errorf("issues must come back in source-row order: %+v", issues)
	}
}

func TestValidate_EmailFormat(t *testing.T) {
	contacts := []domain.NormalizedContact{
		{Title: "CMO", Email: "not-an-email", SourceRow: 3},
		{Title: "CMO", Email: "jane@acme.com", SourceRow: 4},
	}

	issues := Validate(nil, contacts)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	if issues[0].Row != 3 || !strings.Contains(issues[0].Message, "invalid") {
		t.Errorf("bad email must yield an \"invalid\" error on its row: %+v", issues[0])
	}
	if !issues[0].Critical {
		t.Errorf("format violations are critical")
	}
}

func TestValidate_URLFormat(t *testing.T) {
	companies := []domain.NormalizedCompany{
		{Name: "Acme Inc", Website: "https://acme.com", SourceRow: 1},
		{Name: "Beta LLC", Website: "not a url at all", SourceRow: 2},
	}

	issues := Validate(companies, nil)
	if len(issues) != 1 || issues[0].Field != "website" {
		t.Fatalf("expected one website issue, got %+v", issues)
	}
	if !strings.Contains(issues[0].Message, "invalid") {
		t.Errorf("message must contain \"invalid\": %q", issues[0].Message)
	}
}

func TestValidate_UnresolvedCompanyReference(t *testing.T) {
	companies := []domain.NormalizedCompany{{Name: "Acme Inc", SourceRow: 1}}
	contacts := []domain.NormalizedContact{
		{Title: "CMO", CompanyName: "ACME   INC", SourceRow: 2},
		{Title: "Manager", CompanyName: "Gamma Corp", SourceRow: 3},
	}

	issues := Validate(companies, contacts)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d: %+v", len(issues), issues)
	}
	issue := issues[0]
	if issue.Row != 3 {
		t.Errorf("case-insensitive whitespace-collapsed match should resolve row 2: %+v", issue)
	}
	if issue.Severity != domain.SeverityWarning || issue.Critical {
		t.Errorf("unresolved reference is a non-blocking warning: %+v", issue)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	companies := []domain.NormalizedCompany{{Name: "", SourceRow: 1}}
	contacts := []domain.NormalizedContact{{Title: "", SourceRow: 2}, {Title: "CMO", CompanyName: "Nowhere", SourceRow: 3}}

	first := Validate(companies, contacts)
	second := Validate(companies, contacts)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("validation must be deterministic")
	}
}

func TestNameKey(t *testing.T) {
	if NameKey("  Acme   INC ") != "acme inc" {
		t.Errorf("NameKey should lowercase and collapse whitespace")
	}
	if NameKey("") != "" {
		t.Errorf("NameKey of empty string must be empty")
	}
}
