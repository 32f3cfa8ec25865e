package importer

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/ignite/seller-directory/internal/domain"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validate applies per-field and cross-field rules to a normalized batch.
// It is idempotent and side-effect-free: running it twice on the same
// input yields identical issue lists in source-row order. Severity and
// criticality are decided here, once; downstream code branches on the
// enum, never on message text.
func Validate(companies []domain.NormalizedCompany, contacts []domain.NormalizedContact) []domain.ValidationIssue {
	var issues []domain.ValidationIssue

	knownCompanies := make(map[string]bool, len(companies))
	for _, c := range companies {
		if c.Name != "" {
			knownCompanies[NameKey(c.Name)] = true
		}
	}

	for _, c := range companies {
		if strings.TrimSpace(c.Name) == "" {
			issues = append(issues, criticalIssue(c.SourceRow, "name", "company name is required", c.Name))
		}
		if c.Website != "" && !validURL(c.Website) {
			issues = append(issues, criticalIssue(c.SourceRow, "website", "invalid website URL", c.Website))
		}
	}

	for _, c := range contacts {
		if strings.TrimSpace(c.Title) == "" {
			issues = append(issues, criticalIssue(c.SourceRow, "title", "contact title is required", c.Title))
		}
		if c.Email != "" && !emailPattern.MatchString(c.Email) {
			issues = append(issues, criticalIssue(c.SourceRow, "email", "invalid email address", c.Email))
		}
		if c.LinkedinURL != "" && !validURL(c.LinkedinURL) {
			issues = append(issues, criticalIssue(c.SourceRow, "linkedinUrl", "invalid LinkedIn URL", c.LinkedinURL))
		}
		if c.CompanyName != "" && !knownCompanies[NameKey(c.CompanyName)] {
			// Carried through and resolved at import time against the
			// existing corpus; never blocks import.
			issues = append(issues, domain.ValidationIssue{
				Row:      c.SourceRow,
				Field:    "companyName",
				Severity: domain.SeverityWarning,
				Message:  fmt.Sprintf("unresolved company reference %q", c.CompanyName),
				Value:    c.CompanyName,
			})
		}
	}

	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Row < issues[j].Row })
	return issues
}

func criticalIssue(row int, field, message, value string) domain.ValidationIssue {
	return domain.ValidationIssue{
		Row:      row,
		Field:    field,
		Severity: domain.SeverityError,
		Critical: true,
		Message:  message,
		Value:    value,
	}
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// NameKey normalizes a company name for matching: lowercased with
// whitespace collapsed. Used by the validator, matcher, and corpus
// repositories so all three agree on identity.
func NameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
