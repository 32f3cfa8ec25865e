package importer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ignite/seller-directory/internal/domain"
)

// mockCorpus is an in-memory corpus store for testing. Records keep
// insertion order so lookups have a stable scan order. failEmails and
// failNames force write failures for specific records, for exercising
// partial-failure behavior.
type mockCorpus struct {
	mu        sync.Mutex
	companies []domain.Company
	contacts  []domain.Contact

	failNames  map[string]bool // company names whose writes fail
	failEmails map[string]bool // contact emails whose writes fail

	nextID int
}

func newMockCorpus() *mockCorpus {
	return &mockCorpus{
		failNames:  make(map[string]bool),
		failEmails: make(map[string]bool),
	}
}

func (m *mockCorpus) id() string {
	m.nextID++
	return fmt.Sprintf("id-%d", m.nextID)
}

func (m *mockCorpus) CompaniesByDomain(_ context.Context, dom string) ([]domain.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Company
	for _, c := range m.companies {
		if c.Domain != "" && c.Domain == dom {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCorpus) CompaniesByName(_ context.Context, nameKey string) ([]domain.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Company
	for _, c := range m.companies {
		if NameKey(c.Name) == nameKey {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCorpus) ContactsByEmail(_ context.Context, email string) ([]domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Contact
	for _, c := range m.contacts {
		if c.Email != "" && strings.EqualFold(c.Email, email) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCorpus) ContactsByName(_ context.Context, first, last, companyKey string) ([]domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Contact
	for _, c := range m.contacts {
		if strings.EqualFold(c.FirstName, first) &&
			strings.EqualFold(c.LastName, last) &&
			NameKey(c.CompanyName) == companyKey {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCorpus) CreateCompany(_ context.Context, c *domain.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNames[c.Name] {
		return fmt.Errorf("forced write failure")
	}
	if c.ID == "" {
		c.ID = m.id()
	}
	m.companies = append(m.companies, *c)
	return nil
}

func (m *mockCorpus) UpdateCompany(_ context.Context, id string, fields domain.NormalizedCompany) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNames[fields.Name] {
		return fmt.Errorf("forced write failure")
	}
	for i := range m.companies {
		if m.companies[i].ID != id {
			continue
		}
		c := &m.companies[i]
		if fields.Name != "" {
			c.Name = fields.Name
		}
		if fields.Domain != "" {
			c.Domain = fields.Domain
		}
		if fields.Industry != "" {
			c.Industry = fields.Industry
		}
		if fields.Headquarters != "" {
			c.Headquarters = fields.Headquarters
		}
		if fields.Website != "" {
			c.Website = fields.Website
		}
		if fields.EmployeeCount != nil {
			c.EmployeeCount = fields.EmployeeCount
		}
		if fields.Revenue != nil {
			c.Revenue = fields.Revenue
		}
		return nil
	}
	return fmt.Errorf("company %s not found", id)
}

func (m *mockCorpus) CreateContact(_ context.Context, c *domain.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failEmails[c.Email] {
		return fmt.Errorf("forced write failure")
	}
	if c.ID == "" {
		c.ID = m.id()
	}
	m.contacts = append(m.contacts, *c)
	return nil
}

func (m *mockCorpus) UpdateContact(_ context.Context, id string, fields domain.NormalizedContact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failEmails[fields.Email] {
		return fmt.Errorf("forced write failure")
	}
	for i := range m.contacts {
		if m.contacts[i].ID != id {
			continue
		}
		c := &m.contacts[i]
		if fields.FirstName != "" {
			c.FirstName = fields.FirstName
		}
		if fields.LastName != "" {
			c.LastName = fields.LastName
		}
		if fields.Email != "" {
			c.Email = fields.Email
		}
		if fields.Phone != "" {
			c.Phone = fields.Phone
		}
		if fields.Title != "" {
			c.Title = fields.Title
		}
		if fields.CompanyName != "" {
			c.CompanyName = fields.CompanyName
		}
		if fields.LinkedinURL != "" {
			c.LinkedinURL = fields.LinkedinURL
		}
		if fields.Department != "" {
			c.Department = fields.Department
		}
		return nil
	}
	return fmt.Errorf("contact %s not found", id)
}

// nopLogger discards log output in tests.
type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
