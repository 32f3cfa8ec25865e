package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ignite/seller-directory/internal/domain"
)

// NormalizeResult is the output of running the normalizer over a decoded
// RowSet.
type NormalizeResult struct {
	Companies []domain.NormalizedCompany
	Contacts  []domain.NormalizedContact
	Issues    []domain.ValidationIssue
}

// Normalize maps every raw row onto the canonical Company/Contact shapes.
// A row carrying contact signals (email, title, or a person name column)
// binds its company column to the contact's company reference; otherwise a
// usable company name makes a company record. Rows producing neither a
// usable company name nor a usable contact title/email are dropped with a
// warning, never an error. Identical input always yields identical output.
func Normalize(set *RowSet) *NormalizeResult {
	mapping := MapHeaders(set.Headers)
	result := &NormalizeResult{}

	for _, row := range set.Rows {
		values := make(map[CanonicalField]string)
		for header, raw := range row.Fields {
			field, ok := mapping.Field(header)
			if !ok {
				continue
			}
			if s := cellString(raw); s != "" {
				values[field] = s
			}
		}

		contactShaped := values[FieldEmail] != "" || values[FieldTitle] != "" ||
			values[FieldFirstName] != "" || values[FieldLastName] != "" || values[FieldFullName] != ""
		companyName := strings.TrimSpace(values[FieldCompany])

		if contactShaped {
			contactUsable := values[FieldTitle] != "" || values[FieldEmail] != ""
			if !contactUsable {
				result.Issues = append(result.Issues, droppedRowIssue(row.Line))
				continue
			}
			result.Contacts = append(result.Contacts, normalizeContact(values, companyName, row.Line))

			// A row can describe both entities: contact fields plus
			// company-distinctive data yields a company record too.
			if companyName != "" && hasCompanyData(values) {
				result.Companies = append(result.Companies, normalizeCompany(values, companyName, row.Line))
			}
			continue
		}

		if companyName == "" {
			result.Issues = append(result.Issues, droppedRowIssue(row.Line))
			continue
		}
		result.Companies = append(result.Companies, normalizeCompany(values, companyName, row.Line))
	}
	return result
}

func droppedRowIssue(line int) domain.ValidationIssue {
	return domain.ValidationIssue{
		Row:      line,
		Severity: domain.SeverityWarning,
		Message:  "row produced no usable record",
	}
}

func hasCompanyData(values map[CanonicalField]string) bool {
	return values[FieldDomain] != "" || values[FieldIndustry] != "" ||
		values[FieldEmployeeCount] != "" || values[FieldRevenue] != "" ||
		values[FieldHeadquarters] != "" || values[FieldWebsite] != ""
}

func normalizeCompany(values map[CanonicalField]string, name string, line int) domain.NormalizedCompany {
	return domain.NormalizedCompany{
		Name:          name,
		Domain:        normalizeDomain(values[FieldDomain]),
		Industry:      values[FieldIndustry],
		EmployeeCount: parseEmployeeCount(values[FieldEmployeeCount]),
		Revenue:       parseRevenue(values[FieldRevenue]),
		Headquarters:  values[FieldHeadquarters],
		Website:       normalizeURL(values[FieldWebsite]),
		SourceRow:     line,
	}
}

func normalizeContact(values map[CanonicalField]string, companyName string, line int) domain.NormalizedContact {
	first, last := values[FieldFirstName], values[FieldLastName]
	if first == "" && last == "" {
		first, last = splitFullName(values[FieldFullName])
	}
	return domain.NormalizedContact{
		FirstName:   first,
		LastName:    last,
		Email:       normalizeEmail(values[FieldEmail]),
		Phone:       normalizePhone(values[FieldPhone]),
		Title:       values[FieldTitle],
		CompanyName: companyName,
		LinkedinURL: normalizeURL(values[FieldLinkedin]),
		Department:  values[FieldDepartment],
		SourceRow:   line,
	}
}

// cellString renders a raw cell as a trimmed string. Blank strings and
// null cells collapse to "".
func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}

func normalizeEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	return strings.Trim(email, "\"'<>")
}

func normalizePhone(raw string) string {
	var b strings.Builder
	for i, r := range raw {
		if r == '+' && i == 0 {
			b.WriteRune(r)
		} else if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeDomain lowercases and strips scheme, www prefix, and any path.
func normalizeDomain(raw string) string {
	d := strings.ToLower(strings.TrimSpace(raw))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	return d
}

// normalizeURL prepends https:// to bare domains so URL fields are always
// well-formed when the source looks like one.
func normalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if looksLikeDomain(u) {
		return "https://" + u
	}
	return u
}

func looksLikeDomain(s string) bool {
	if strings.ContainsAny(s, " \t") {
		return false
	}
	host := s
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	return strings.Contains(host, ".") && len(host) >= 4
}

// parseEmployeeCount coerces counts from plain numbers, float-parsed
// values ("250.0"), ranges ("51-200" uses the lower bound), and
// open-ended buckets ("1000+").
func parseEmployeeCount(raw string) *int {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return nil
	}
	if i := strings.Index(s, "-"); i > 0 {
		s = strings.TrimSpace(s[:i])
	}
	s = strings.TrimSuffix(s, "+")
	if i := strings.Index(s, "."); i > 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// parseRevenue coerces revenue figures, accepting currency symbols,
// thousands separators, and K/M/B suffixes.
func parseRevenue(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")

	multiplier := 1.0
	switch {
	case strings.HasSuffix(strings.ToUpper(s), "K"):
		multiplier, s = 1e3, s[:len(s)-1]
	case strings.HasSuffix(strings.ToUpper(s), "M"):
		multiplier, s = 1e6, s[:len(s)-1]
	case strings.HasSuffix(strings.ToUpper(s), "B"):
		multiplier, s = 1e9, s[:len(s)-1]
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return nil
	}
	f *= multiplier
	return &f
}

func splitFullName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
