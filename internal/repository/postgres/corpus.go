package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ignite/seller-directory/internal/domain"
)

// nameKeySQL collapses whitespace and lowercases a name the same way
// importer.NameKey does, so SQL lookups and in-process keys agree.
const nameKeySQL = `lower(btrim(regexp_replace(%s, '\s+', ' ', 'g')))`

const companyColumns = `id, name, COALESCE(domain, ''), COALESCE(industry, ''),
	employee_count, revenue, COALESCE(headquarters, ''), COALESCE(website, ''),
	created_at, updated_at`

const contactColumns = `id, COALESCE(company_id, ''), COALESCE(first_name, ''),
	COALESCE(last_name, ''), COALESCE(email, ''), COALESCE(phone, ''),
	COALESCE(title, ''), COALESCE(company_name, ''), COALESCE(linkedin_url, ''),
	COALESCE(department, ''), created_at, updated_at`

// CorpusRepo implements importer.CorpusStore against PostgreSQL.
// Lookups order by created_at, id so ambiguous matches resolve
// deterministically.
type CorpusRepo struct{ db *sql.DB }

// NewCorpusRepo creates a Postgres-backed corpus repository.
func NewCorpusRepo(db *sql.DB) *CorpusRepo { return &CorpusRepo{db: db} }

func (r *CorpusRepo) CompaniesByDomain(ctx context.Context, dom string) ([]domain.Company, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+companyColumns+`
		FROM companies
		WHERE domain = $1
		ORDER BY created_at, id
	`, dom)
	if err != nil {
		return nil, fmt.Errorf("companies by domain: %w", err)
	}
	defer rows.Close()
	return scanCompanies(rows)
}

func (r *CorpusRepo) CompaniesByName(ctx context.Context, nameKey string) ([]domain.Company, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+companyColumns+`
		FROM companies
		WHERE `+fmt.Sprintf(nameKeySQL, "name")+` = $1
		ORDER BY created_at, id
	`, nameKey)
	if err != nil {
		return nil, fmt.Errorf("companies by name: %w", err)
	}
	defer rows.Close()
	return scanCompanies(rows)
}

func (r *CorpusRepo) ContactsByEmail(ctx context.Context, email string) ([]domain.Contact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE lower(email) = lower($1)
		ORDER BY created_at, id
	`, email)
	if err != nil {
		return nil, fmt.Errorf("contacts by email: %w", err)
	}
	defer rows.Close()
	return scanContacts(rows)
}

func (r *CorpusRepo) ContactsByName(ctx context.Context, first, last, companyKey string) ([]domain.Contact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE lower(first_name) = lower($1)
		  AND lower(last_name) = lower($2)
		  AND `+fmt.Sprintf(nameKeySQL, "company_name")+` = $3
		ORDER BY created_at, id
	`, first, last, companyKey)
	if err != nil {
		return nil, fmt.Errorf("contacts by name: %w", err)
	}
	defer rows.Close()
	return scanContacts(rows)
}

func (r *CorpusRepo) CreateCompany(ctx context.Context, c *domain.Company) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO companies (id, name, domain, industry, employee_count, revenue, headquarters, website, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, NULLIF($7, ''), NULLIF($8, ''), NOW(), NOW())
	`, c.ID, c.Name, c.Domain, c.Industry, c.EmployeeCount, c.Revenue, c.Headquarters, c.Website)
	if err != nil {
		return fmt.Errorf("create company: %w", err)
	}
	return nil
}

// UpdateCompany merges incoming fields onto an existing row. Empty and
// nil fields never overwrite existing data.
func (r *CorpusRepo) UpdateCompany(ctx context.Context, id string, fields domain.NormalizedCompany) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE companies SET
			name          = COALESCE(NULLIF($2, ''), name),
			domain        = COALESCE(NULLIF($3, ''), domain),
			industry      = COALESCE(NULLIF($4, ''), industry),
			employee_count = COALESCE($5, employee_count),
			revenue       = COALESCE($6, revenue),
			headquarters  = COALESCE(NULLIF($7, ''), headquarters),
			website       = COALESCE(NULLIF($8, ''), website),
			updated_at    = NOW()
		WHERE id = $1
	`, id, fields.Name, fields.Domain, fields.Industry, fields.EmployeeCount, fields.Revenue, fields.Headquarters, fields.Website)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("update company: id %s not found", id)
	}
	return nil
}

func (r *CorpusRepo) CreateContact(ctx context.Context, c *domain.Contact) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contacts (id, company_id, first_name, last_name, email, phone, title, company_name, linkedin_url, department, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), NOW(), NOW())
	`, c.ID, c.CompanyID, c.FirstName, c.LastName, c.Email, c.Phone, c.Title, c.CompanyName, c.LinkedinURL, c.Department)
	if err != nil {
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

func (r *CorpusRepo) UpdateContact(ctx context.Context, id string, fields domain.NormalizedContact) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE contacts SET
			first_name   = COALESCE(NULLIF($2, ''), first_name),
			last_name    = COALESCE(NULLIF($3, ''), last_name),
			email        = COALESCE(NULLIF($4, ''), email),
			phone        = COALESCE(NULLIF($5, ''), phone),
			title        = COALESCE(NULLIF($6, ''), title),
			company_name = COALESCE(NULLIF($7, ''), company_name),
			linkedin_url = COALESCE(NULLIF($8, ''), linkedin_url),
			department   = COALESCE(NULLIF($9, ''), department),
			updated_at   = NOW()
		WHERE id = $1
	`, id, fields.FirstName, fields.LastName, fields.Email, fields.Phone, fields.Title, fields.CompanyName, fields.LinkedinURL, fields.Department)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("update contact: id %s not found", id)
	}
	return nil
}

func scanCompanies(rows *sql.Rows) ([]domain.Company, error) {
	var out []domain.Company
	for rows.Next() {
		var c domain.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Domain, &c.Industry, &c.EmployeeCount,
			&c.Revenue, &c.Headquarters, &c.Website, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanContacts(rows *sql.Rows) ([]domain.Contact, error) {
	var out []domain.Contact
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.FirstName, &c.LastName, &c.Email,
			&c.Phone, &c.Title, &c.CompanyName, &c.LinkedinURL, &c.Department,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// JobRepo persists import run bookkeeping to the import_jobs table.
type JobRepo struct{ db *sql.DB }

func NewJobRepo(db *sql.DB) *JobRepo { return &JobRepo{db: db} }

func (r *JobRepo) SaveOutcome(ctx context.Context, outcome *domain.ImportOutcome) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO import_jobs (upload_id, companies_created, companies_updated, companies_skipped,
			contacts_created, contacts_updated, contacts_skipped, errors, warnings,
			processed_at, execution_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (upload_id) DO UPDATE SET
			companies_created = $2, companies_updated = $3, companies_skipped = $4,
			contacts_created = $5, contacts_updated = $6, contacts_skipped = $7,
			errors = $8, warnings = $9, processed_at = $10, execution_time_ms = $11
	`, outcome.UploadID, outcome.CompaniesCreated, outcome.CompaniesUpdated, outcome.CompaniesSkipped,
		outcome.ContactsCreated, outcome.ContactsUpdated, outcome.ContactsSkipped,
		pq.Array(outcome.Errors), pq.Array(outcome.Warnings),
		outcome.ProcessedAt, outcome.ExecutionTimeMs)
	if err != nil {
		return fmt.Errorf("save import job: %w", err)
	}
	return nil
}
