package domain

import "time"

// Contact represents a person in the directory corpus. CompanyID is set
// once the record is persisted; CompanyName is the by-name reference
// carried from the source file until then.
type Contact struct {
	ID          string    `json:"id" db:"id"`
	CompanyID   string    `json:"company_id" db:"company_id"`
	FirstName   string    `json:"first_name" db:"first_name"`
	LastName    string    `json:"last_name" db:"last_name"`
	Email       string    `json:"email" db:"email"`
	Phone       string    `json:"phone" db:"phone"`
	Title       string    `json:"title" db:"title"`
	CompanyName string    `json:"company_name" db:"company_name"`
	LinkedinURL string    `json:"linkedin_url" db:"linkedin_url"`
	Department  string    `json:"department" db:"department"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// NormalizedContact is a contact record after header aliasing and type
// coercion, prior to validation. CompanyName is a foreign reference by
// name, resolved at import time. SourceRow never changes after creation.
type NormalizedContact struct {
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Title       string `json:"title"`
	CompanyName string `json:"companyName,omitempty"`
	LinkedinURL string `json:"linkedinUrl,omitempty"`
	Department  string `json:"department,omitempty"`
	SourceRow   int    `json:"sourceRow"`
}
