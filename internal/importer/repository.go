package importer

import (
	"context"

	"github.com/ignite/seller-directory/internal/domain"
)

// CorpusIndex is the read side of the existing-records lookup. The
// matcher depends only on this interface and never writes.
//
// Lookups must return matches in stable corpus scan order so ambiguous
// matches resolve deterministically.
type CorpusIndex interface {
	// CompaniesByDomain returns companies whose normalized domain equals dom.
	CompaniesByDomain(ctx context.Context, dom string) ([]domain.Company, error)

	// CompaniesByName returns companies whose NameKey equals nameKey.
	CompaniesByName(ctx context.Context, nameKey string) ([]domain.Company, error)

	// ContactsByEmail returns contacts whose lowercased email equals email.
	ContactsByEmail(ctx context.Context, email string) ([]domain.Contact, error)

	// ContactsByName returns contacts matching the
	// (firstName, lastName, companyName) composite key.
	ContactsByName(ctx context.Context, first, last, companyKey string) ([]domain.Contact, error)
}

// CorpusStore extends CorpusIndex with the write methods the executor
// needs. One store instance is scoped to one run and passed explicitly;
// writes must be visible to subsequent reads within the same run.
type CorpusStore interface {
	CorpusIndex

	// CreateCompany inserts a new company and fills in its generated ID.
	CreateCompany(ctx context.Context, c *domain.Company) error

	// UpdateCompany merges non-empty normalized fields onto the existing
	// record. Empty/nil fields never overwrite existing data.
	UpdateCompany(ctx context.Context, id string, fields domain.NormalizedCompany) error

	// CreateContact inserts a new contact and fills in its generated ID.
	CreateContact(ctx context.Context, c *domain.Contact) error

	// UpdateContact merges non-empty normalized fields onto the existing
	// record, fill-in-the-gaps style.
	UpdateContact(ctx context.Context, id string, fields domain.NormalizedContact) error
}

// JobStore persists per-run bookkeeping for the import jobs table.
type JobStore interface {
	SaveOutcome(ctx context.Context, outcome *domain.ImportOutcome) error
}
