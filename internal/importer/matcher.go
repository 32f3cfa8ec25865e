package importer

import (
	"context"
	"fmt"

	"github.com/ignite/seller-directory/internal/domain"
)

// SkipDuplicateInFile is the skip reason for a record matching an
// earlier record of the same upload.
const SkipDuplicateInFile = "duplicate within file"

// MatchResult holds decision lists aligned 1:1 with the input record
// sequences, plus any ambiguity warnings raised while matching.
type MatchResult struct {
	Companies []domain.MatchDecision
	Contacts  []domain.MatchDecision
	Warnings  []domain.ValidationIssue
}

// MatchBatch reconciles every normalized record against the existing
// corpus and the batch so far, deciding create, update, or skip per
// record. It performs read-only lookups and never writes.
//
// Company key precedence: normalized domain, then normalized name.
// Contact key precedence: email, then (first, last, company) composite.
// Ties update the first corpus match in scan order and log a warning.
func MatchBatch(ctx context.Context, companies []domain.NormalizedCompany, contacts []domain.NormalizedContact, idx CorpusIndex) (*MatchResult, error) {
	result := &MatchResult{
		Companies: make([]domain.MatchDecision, 0, len(companies)),
		Contacts:  make([]domain.MatchDecision, 0, len(contacts)),
	}

	seenDomains := make(map[string]bool)
	seenNames := make(map[string]bool)

	for _, c := range companies {
		nameKey := NameKey(c.Name)
		if (c.Domain != "" && seenDomains[c.Domain]) || (nameKey != "" && seenNames[nameKey]) {
			result.Companies = append(result.Companies, domain.MatchDecision{
				Action: domain.ActionSkip,
				Reason: SkipDuplicateInFile,
			})
			continue
		}
		if c.Domain != "" {
			seenDomains[c.Domain] = true
		}
		if nameKey != "" {
			seenNames[nameKey] = true
		}

		decision, err := matchCompany(ctx, c, nameKey, idx, result)
		if err != nil {
			return nil, err
		}
		result.Companies = append(result.Companies, decision)
	}

	seenEmails := make(map[string]bool)
	seenComposite := make(map[string]bool)

	for _, c := range contacts {
		composite := contactKey(c.FirstName, c.LastName, c.CompanyName)
		if (c.Email != "" && seenEmails[c.Email]) || (c.FirstName != "" && seenComposite[composite]) {
			result.Contacts = append(result.Contacts, domain.MatchDecision{
				Action: domain.ActionSkip,
				Reason: SkipDuplicateInFile,
			})
			continue
		}
		if c.Email != "" {
			seenEmails[c.Email] = true
		}
		if c.FirstName != "" {
			seenComposite[composite] = true
		}

		decision, err := matchContact(ctx, c, idx, result)
		if err != nil {
			return nil, err
		}
		result.Contacts = append(result.Contacts, decision)
	}
	return result, nil
}

func matchCompany(ctx context.Context, c domain.NormalizedCompany, nameKey string, idx CorpusIndex, result *MatchResult) (domain.MatchDecision, error) {
	if c.Domain != "" {
		existing, err := idx.CompaniesByDomain(ctx, c.Domain)
		if err != nil {
			return domain.MatchDecision{}, fmt.Errorf("match company by domain: %w", err)
		}
		if len(existing) > 0 {
			if len(existing) > 1 {
				result.Warnings = append(result.Warnings, ambiguousMatchIssue(c.SourceRow, "domain", c.Domain, len(existing)))
			}
			return domain.MatchDecision{Action: domain.ActionUpdate, ExistingID: existing[0].ID}, nil
		}
	}

	if nameKey != "" {
		existing, err := idx.CompaniesByName(ctx, nameKey)
		if err != nil {
			return domain.MatchDecision{}, fmt.Errorf("match company by name: %w", err)
		}
		if len(existing) > 0 {
			if len(existing) > 1 {
				result.Warnings = append(result.Warnings, ambiguousMatchIssue(c.SourceRow, "name", c.Name, len(existing)))
			}
			return domain.MatchDecision{Action: domain.ActionUpdate, ExistingID: existing[0].ID}, nil
		}
	}
	return domain.MatchDecision{Action: domain.ActionCreate}, nil
}

func matchContact(ctx context.Context, c domain.NormalizedContact, idx CorpusIndex, result *MatchResult) (domain.MatchDecision, error) {
	if c.Email != "" {
		existing, err := idx.ContactsByEmail(ctx, c.Email)
		if err != nil {
			return domain.MatchDecision{}, fmt.Errorf("match contact by email: %w", err)
		}
		if len(existing) > 0 {
			if len(existing) > 1 {
				result.Warnings = append(result.Warnings, ambiguousMatchIssue(c.SourceRow, "email", c.Email, len(existing)))
			}
			return domain.MatchDecision{Action: domain.ActionUpdate, ExistingID: existing[0].ID}, nil
		}
	}

	if c.FirstName != "" && c.LastName != "" {
		existing, err := idx.ContactsByName(ctx, c.FirstName, c.LastName, NameKey(c.CompanyName))
		if err != nil {
			return domain.MatchDecision{}, fmt.Errorf("match contact by name: %w", err)
		}
		if len(existing) > 0 {
			if len(existing) > 1 {
				result.Warnings = append(result.Warnings, ambiguousMatchIssue(c.SourceRow, "name", c.FirstName+" "+c.LastName, len(existing)))
			}
			return domain.MatchDecision{Action: domain.ActionUpdate, ExistingID: existing[0].ID}, nil
		}
	}
	return domain.MatchDecision{Action: domain.ActionCreate}, nil
}

func ambiguousMatchIssue(row int, field, value string, hits int) domain.ValidationIssue {
	return domain.ValidationIssue{
		Row:      row,
		Field:    field,
		Severity: domain.SeverityWarning,
		Message:  fmt.Sprintf("ambiguous match on %s (%d existing records), updating the first", field, hits),
		Value:    value,
	}
}

func contactKey(first, last, company string) string {
	return NameKey(first) + "|" + NameKey(last) + "|" + NameKey(company)
}
