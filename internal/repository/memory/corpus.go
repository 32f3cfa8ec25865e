package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/seller-directory/internal/domain"
	"github.com/ignite/seller-directory/internal/importer"
)

// CorpusStore is an in-memory importer.CorpusStore for development and
// tests. Records keep insertion order, so lookups return matches in a
// stable scan order.
type CorpusStore struct {
	mu        sync.RWMutex
	companies []domain.Company
	contacts  []domain.Contact
}

func NewCorpusStore() *CorpusStore { return &CorpusStore{} }

func (s *CorpusStore) CompaniesByDomain(_ context.Context, dom string) ([]domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Company
	for _, c := range s.companies {
		if c.Domain != "" && c.Domain == dom {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *CorpusStore) CompaniesByName(_ context.Context, nameKey string) ([]domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Company
	for _, c := range s.companies {
		if importer.NameKey(c.Name) == nameKey {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *CorpusStore) ContactsByEmail(_ context.Context, email string) ([]domain.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Contact
	for _, c := range s.contacts {
		if c.Email != "" && strings.EqualFold(c.Email, email) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *CorpusStore) ContactsByName(_ context.Context, first, last, companyKey string) ([]domain.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Contact
	for _, c := range s.contacts {
		if strings.EqualFold(c.FirstName, first) &&
			strings.EqualFold(c.LastName, last) &&
			importer.NameKey(c.CompanyName) == companyKey {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *CorpusStore) CreateCompany(_ context.Context, c *domain.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	s.companies = append(s.companies, *c)
	return nil
}

func (s *CorpusStore) UpdateCompany(_ context.Context, id string, fields domain.NormalizedCompany) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.companies {
		if s.companies[i].ID != id {
			continue
		}
		c := &s.companies[i]
		setString(&c.Name, fields.Name)
		setString(&c.Domain, fields.Domain)
		setString(&c.Industry, fields.Industry)
		setString(&c.Headquarters, fields.Headquarters)
		setString(&c.Website, fields.Website)
		if fields.EmployeeCount != nil {
			c.EmployeeCount = fields.EmployeeCount
		}
		if fields.Revenue != nil {
			c.Revenue = fields.Revenue
		}
		c.UpdatedAt = time.Now().UTC()
		return nil
	}
	return fmt.Errorf("update company: id %s not found", id)
}

func (s *CorpusStore) CreateContact(_ context.Context, c *domain.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	s.contacts = append(s.contacts, *c)
	return nil
}

func (s *CorpusStore) UpdateContact(_ context.Context, id string, fields domain.NormalizedContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.contacts {
		if s.contacts[i].ID != id {
			continue
		}
		c := &s.contacts[i]
		setString(&c.FirstName, fields.FirstName)
		setString(&c.LastName, fields.LastName)
		setString(&c.Email, fields.Email)
		setString(&c.Phone, fields.Phone)
		setString(&c.Title, fields.Title)
		setString(&c.CompanyName, fields.CompanyName)
		setString(&c.LinkedinURL, fields.LinkedinURL)
		setString(&c.Department, fields.Department)
		c.UpdatedAt = time.Now().UTC()
		return nil
	}
	return fmt.Errorf("update contact: id %s not found", id)
}

// Companies returns a snapshot copy of all stored companies.
func (s *CorpusStore) Companies() []domain.Company {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Company, len(s.companies))
	copy(out, s.companies)
	return out
}

// Contacts returns a snapshot copy of all stored contacts.
func (s *CorpusStore) Contacts() []domain.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Contact, len(s.contacts))
	copy(out, s.contacts)
	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
