package domain

import "time"

// Company represents an organization in the directory corpus.
type Company struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Domain        string    `json:"domain" db:"domain"`
	Industry      string    `json:"industry" db:"industry"`
	EmployeeCount *int      `json:"employee_count" db:"employee_count"`
	Revenue       *float64  `json:"revenue" db:"revenue"`
	Headquarters  string    `json:"headquarters" db:"headquarters"`
	Website       string    `json:"website" db:"website"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// NormalizedCompany is a company record after header aliasing and type
// coercion, prior to validation. SourceRow is the 1-based row in the
// uploaded file it came from and never changes after creation.
type NormalizedCompany struct {
	Name          string   `json:"name"`
	Domain        string   `json:"domain,omitempty"`
	Industry      string   `json:"industry,omitempty"`
	EmployeeCount *int     `json:"employeeCount,omitempty"`
	Revenue       *float64 `json:"revenue,omitempty"`
	Headquarters  string   `json:"headquarters,omitempty"`
	Website       string   `json:"website,omitempty"`
	SourceRow     int      `json:"sourceRow"`
}
