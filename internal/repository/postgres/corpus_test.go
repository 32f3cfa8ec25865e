package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ignite/seller-directory/internal/domain"
)

func companyRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "domain", "industry", "employee_count", "revenue",
		"headquarters", "website", "created_at", "updated_at",
	})
}

func TestCompaniesByDomain(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)SELECT .+ FROM companies\s+WHERE domain = \$1`).
		WithArgs("acme.com").
		WillReturnRows(companyRows().
			AddRow("c1", "Acme Inc", "acme.com", "Media", 250, nil, "NYC", "https://acme.com", now, now))

	repo := NewCorpusRepo(db)
	companies, err := repo.CompaniesByDomain(context.Background(), "acme.com")
	if err != nil {
		t.Fatalf("CompaniesByDomain failed: %v", err)
	}
	if len(companies) != 1 || companies[0].ID != "c1" {
		t.Errorf("unexpected result: %+v", companies)
	}
	if companies[0].EmployeeCount == nil || *companies[0].EmployeeCount != 250 {
		t.Errorf("employee count should scan into the pointer: %+v", companies[0].EmployeeCount)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCompaniesByName_UsesNameKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`regexp_replace\(name`).
		WithArgs("acme inc").
		WillReturnRows(companyRows())

	repo := NewCorpusRepo(db)
	if _, err := repo.CompaniesByName(context.Background(), "acme inc"); err != nil {
		t.Fatalf("CompaniesByName failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateCompany_AssignsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO companies`).
		WithArgs(sqlmock.AnyArg(), "Acme Inc", "acme.com", "", nil, nil, "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewCorpusRepo(db)
	c := &domain.Company{Name: "Acme Inc", Domain: "acme.com"}
	if err := repo.CreateCompany(context.Background(), c); err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}
	if c.ID == "" {
		t.Errorf("CreateCompany must fill in the generated ID")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateCompany_MergesGaps(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	// COALESCE(NULLIF(...)) keeps existing values where the incoming
	// field is blank
	mock.ExpectExec(`UPDATE companies SET\s+name\s+= COALESCE\(NULLIF\(\$2, ''\), name\)`).
		WithArgs("c1", "Acme Inc", "", "Media", nil, nil, "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewCorpusRepo(db)
	fields := domain.NormalizedCompany{Name: "Acme Inc", Industry: "Media"}
	if err := repo.UpdateCompany(context.Background(), "c1", fields); err != nil {
		t.Fatalf("UpdateCompany failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateCompany_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE companies`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewCorpusRepo(db)
	if err := repo.UpdateCompany(context.Background(), "missing", domain.NormalizedCompany{}); err == nil {
		t.Errorf("updating an unknown id must fail")
	}
}

func TestContactsByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "company_id", "first_name", "last_name", "email", "phone",
		"title", "company_name", "linkedin_url", "department", "created_at", "updated_at",
	}).AddRow("p1", "c1", "Jane", "Doe", "jane@acme.com", "", "CMO", "Acme Inc", "", "", now, now)

	mock.ExpectQuery(`(?s)SELECT .+ FROM contacts\s+WHERE lower\(email\) = lower\(\$1\)`).
		WithArgs("jane@acme.com").
		WillReturnRows(rows)

	repo := NewCorpusRepo(db)
	contacts, err := repo.ContactsByEmail(context.Background(), "jane@acme.com")
	if err != nil {
		t.Fatalf("ContactsByEmail failed: %v", err)
	}
	if len(contacts) != 1 || contacts[0].Title != "CMO" {
		t.Errorf("unexpected result: %+v", contacts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSaveOutcome_UpsertsJobRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO import_jobs`).
		WithArgs("up-1", 2, 1, 0, 3, 0, 1,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), int64(1234)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewJobRepo(db)
	outcome := &domain.ImportOutcome{
		UploadID:         "up-1",
		CompaniesCreated: 2,
		CompaniesUpdated: 1,
		ContactsCreated:  3,
		ContactsSkipped:  1,
		Errors:           []string{},
		Warnings:         []string{"row 4: ambiguous match"},
		ProcessedAt:      time.Now().UTC(),
		ExecutionTimeMs:  1234,
	}
	if err := repo.SaveOutcome(context.Background(), outcome); err != nil {
		t.Fatalf("SaveOutcome failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
