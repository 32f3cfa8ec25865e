package importer

import "strings"

// CanonicalField is a normalized field name used across all import sources.
type CanonicalField string

const (
	// Shared: the company column on a company row is the company's own
	// name; on a contact row it is the foreign reference by name. The
	// normalizer decides which, based on row shape.
	FieldCompany CanonicalField = "company"

	// Company fields
	FieldDomain        CanonicalField = "domain"
	FieldIndustry      CanonicalField = "industry"
	FieldEmployeeCount CanonicalField = "employee_count"
	FieldRevenue       CanonicalField = "revenue"
	FieldHeadquarters  CanonicalField = "headquarters"
	FieldWebsite       CanonicalField = "website"

	// Contact fields
	FieldFirstName  CanonicalField = "first_name"
	FieldLastName   CanonicalField = "last_name"
	FieldFullName   CanonicalField = "full_name"
	FieldEmail      CanonicalField = "email"
	FieldPhone      CanonicalField = "phone"
	FieldTitle      CanonicalField = "title"
	FieldLinkedin   CanonicalField = "linkedin_url"
	FieldDepartment CanonicalField = "department"
)

// columnAliases maps normalized header names to canonical fields. When
// multiple raw headers mean the same thing, they all map here. Headers
// with no entry are ignored, not errors.
var columnAliases = map[string]CanonicalField{
	// Company name / company reference
	"company":      FieldCompany,
	"company_name": FieldCompany,
	"companyname":  FieldCompany,
	"organization": FieldCompany,
	"organisation": FieldCompany,
	"org":          FieldCompany,
	"business":     FieldCompany,
	"account":      FieldCompany,
	"name":         FieldCompany,

	// Domain
	"domain":         FieldDomain,
	"company_domain": FieldDomain,
	"email_domain":   FieldDomain,
	"web_domain":     FieldDomain,

	// Industry
	"industry": FieldIndustry,
	"sector":   FieldIndustry,
	"vertical": FieldIndustry,

	// Employee count / size
	"employee_count": FieldEmployeeCount,
	"employees":      FieldEmployeeCount,
	"headcount":      FieldEmployeeCount,
	"company_size":   FieldEmployeeCount,
	"size":           FieldEmployeeCount,
	"staff_count":    FieldEmployeeCount,
	"num_employees":  FieldEmployeeCount,

	// Revenue
	"revenue":        FieldRevenue,
	"annual_revenue": FieldRevenue,
	"turnover":       FieldRevenue,

	// Headquarters
	"headquarters": FieldHeadquarters,
	"hq":           FieldHeadquarters,
	"hq_location":  FieldHeadquarters,
	"head_office":  FieldHeadquarters,
	"location":     FieldHeadquarters,

	// Website
	"website":         FieldWebsite,
	"company_website": FieldWebsite,
	"url":             FieldWebsite,
	"web":             FieldWebsite,
	"homepage":        FieldWebsite,

	// First name
	"first_name": FieldFirstName,
	"firstname":  FieldFirstName,
	"fname":      FieldFirstName,
	"first":      FieldFirstName,
	"given_name": FieldFirstName,

	// Last name
	"last_name":   FieldLastName,
	"lastname":    FieldLastName,
	"lname":       FieldLastName,
	"last":        FieldLastName,
	"surname":     FieldLastName,
	"family_name": FieldLastName,

	// Full name (split by the normalizer)
	"full_name":    FieldFullName,
	"fullname":     FieldFullName,
	"contact_name": FieldFullName,
	"contact":      FieldFullName,

	// Email
	"email":         FieldEmail,
	"email_address": FieldEmail,
	"emailaddress":  FieldEmail,
	"e_mail":        FieldEmail,
	"mail":          FieldEmail,
	"work_email":    FieldEmail,
	"contact_email": FieldEmail,

	// Phone
	"phone":        FieldPhone,
	"phone_number": FieldPhone,
	"phonenumber":  FieldPhone,
	"mobile":       FieldPhone,
	"telephone":    FieldPhone,
	"tel":          FieldPhone,
	"cell":         FieldPhone,
	"direct_dial":  FieldPhone,

	// Title
	"title":       FieldTitle,
	"job_title":   FieldTitle,
	"jobtitle":    FieldTitle,
	"position":    FieldTitle,
	"role":        FieldTitle,
	"designation": FieldTitle,

	// LinkedIn
	"linkedin":         FieldLinkedin,
	"linkedin_url":     FieldLinkedin,
	"linkedinurl":      FieldLinkedin,
	"linkedin_profile": FieldLinkedin,

	// Department
	"department": FieldDepartment,
	"dept":       FieldDepartment,
	"team":       FieldDepartment,
	"function":   FieldDepartment,
}

// ColumnMapping holds the resolved mapping from source headers to
// canonical fields for one file.
type ColumnMapping struct {
	fields map[string]CanonicalField // source header -> canonical field
}

// MapHeaders resolves a header row against the alias table. Matching is
// case-insensitive with spaces and dashes collapsed to underscores.
// Unmatched headers are left out of the mapping (ignored downstream).
func MapHeaders(headers []string) *ColumnMapping {
	m := &ColumnMapping{fields: make(map[string]CanonicalField, len(headers))}
	for _, h := range headers {
		if field, ok := columnAliases[normalizeHeader(h)]; ok {
			// First matching header wins when two columns alias the same
			// field; header order keeps this deterministic.
			if !m.hasField(field) {
				m.fields[h] = field
			}
		}
	}
	return m
}

// Field returns the canonical field a source header maps to.
func (m *ColumnMapping) Field(header string) (CanonicalField, bool) {
	f, ok := m.fields[header]
	return f, ok
}

// HasField reports whether any source header maps to the canonical field.
func (m *ColumnMapping) HasField(field CanonicalField) bool {
	return m.hasField(field)
}

func (m *ColumnMapping) hasField(field CanonicalField) bool {
	for _, f := range m.fields {
		if f == field {
			return true
		}
	}
	return false
}

func normalizeHeader(header string) string {
	normalized := strings.ToLower(strings.TrimSpace(header))
	normalized = strings.Trim(normalized, "\"'")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")
	return normalized
}
