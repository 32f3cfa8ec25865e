package importer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ignite/seller-directory/internal/domain"
)

// DefaultWorkerConcurrency bounds the executor's write pool when the
// config does not say otherwise.
const DefaultWorkerConcurrency = 4

const progressEvery = 50

// Executor applies match decisions against the corpus store. Companies
// are written before any contact so by-name references resolve against
// this run's own writes. One record failing never aborts the run; the
// failure is recorded on the outcome and the run continues.
type Executor struct {
	store       CorpusStore
	reporter    Reporter
	concurrency int
}

func NewExecutor(store CorpusStore, reporter Reporter, concurrency int) *Executor {
	if concurrency < 1 {
		concurrency = DefaultWorkerConcurrency
	}
	return &Executor{store: store, reporter: reporter, concurrency: concurrency}
}

// runState is the mutable bookkeeping shared by the worker pool.
type runState struct {
	mu         sync.Mutex
	outcome    *domain.ImportOutcome
	companyIDs map[string]string // NameKey(company name) -> persisted ID
	processed  int
	successful int
	failed     int
}

func (s *runState) recordFailure(row int, err error) {
	s.mu.Lock()
	s.outcome.Errors = append(s.outcome.Errors, fmt.Sprintf("row %d: %v", row, err))
	s.failed++
	s.mu.Unlock()
}

// Execute runs the write phase of an import. Decisions must be aligned
// 1:1 with their record slices. Cancelling ctx stops new records from
// being dispatched; records already in flight complete their write so
// no partial record is ever persisted. The partial outcome is returned
// alongside ctx.Err in that case.
func (e *Executor) Execute(ctx context.Context, uploadID string, companies []domain.NormalizedCompany, companyDecisions []domain.MatchDecision, contacts []domain.NormalizedContact, contactDecisions []domain.MatchDecision) (*domain.ImportOutcome, error) {
	if len(companies) != len(companyDecisions) || len(contacts) != len(contactDecisions) {
		return nil, fmt.Errorf("decision count mismatch: %d/%d companies, %d/%d contacts",
			len(companyDecisions), len(companies), len(contactDecisions), len(contacts))
	}

	started := time.Now()
	outcome := &domain.ImportOutcome{
		UploadID:    uploadID,
		Errors:      []string{},
		Warnings:    []string{},
		ProcessedAt: started.UTC(),
	}
	state := &runState{
		outcome:    outcome,
		companyIDs: make(map[string]string, len(companies)),
	}
	total := len(companies) + len(contacts)

	e.report(ctx, uploadID, domain.PhaseImportingCompanies, total, state, "importing companies")
	cancelled := e.runPool(ctx, len(companies), func(writeCtx context.Context, i int) {
		e.applyCompany(writeCtx, companies[i], companyDecisions[i], state)
		e.maybeReport(ctx, uploadID, domain.PhaseImportingCompanies, total, state)
	})

	if !cancelled {
		e.report(ctx, uploadID, domain.PhaseImportingContacts, total, state, "importing contacts")
		cancelled = e.runPool(ctx, len(contacts), func(writeCtx context.Context, i int) {
			e.applyContact(writeCtx, contacts[i], contactDecisions[i], state)
			e.maybeReport(ctx, uploadID, domain.PhaseImportingContacts, total, state)
		})
	}

	outcome.ExecutionTimeMs = time.Since(started).Milliseconds()
	e.report(context.WithoutCancel(ctx), uploadID, domain.PhaseFinalizing, total, state, "finalizing")

	if cancelled {
		return outcome, ctx.Err()
	}
	return outcome, nil
}

// runPool dispatches records to a bounded worker pool, checking for
// cancellation before each dispatch. Workers receive a context detached
// from cancellation so an in-flight write always completes. Returns
// true when the run was cut short.
func (e *Executor) runPool(ctx context.Context, n int, work func(writeCtx context.Context, i int)) bool {
	writeCtx := context.WithoutCancel(ctx)
	g := &errgroup.Group{}
	g.SetLimit(e.concurrency)

	cancelled := false
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		i := i
		g.Go(func() error {
			work(writeCtx, i)
			return nil
		})
	}
	g.Wait()
	return cancelled
}

func (e *Executor) applyCompany(ctx context.Context, c domain.NormalizedCompany, decision domain.MatchDecision, state *runState) {
	switch decision.Action {
	case domain.ActionSkip:
		state.mu.Lock()
		state.outcome.CompaniesSkipped++
		state.processed++
		state.successful++
		state.mu.Unlock()
		return

	case domain.ActionUpdate:
		if err := e.store.UpdateCompany(ctx, decision.ExistingID, c); err != nil {
			state.recordFailure(c.SourceRow, fmt.Errorf("update company %q: %w", c.Name, err))
			state.mu.Lock()
			state.processed++
			state.mu.Unlock()
			return
		}
		state.mu.Lock()
		state.outcome.CompaniesUpdated++
		state.companyIDs[NameKey(c.Name)] = decision.ExistingID
		state.processed++
		state.successful++
		state.mu.Unlock()
		return

	case domain.ActionCreate:
		record := &domain.Company{
			Name:          c.Name,
			Domain:        c.Domain,
			Industry:      c.Industry,
			EmployeeCount: c.EmployeeCount,
			Revenue:       c.Revenue,
			Headquarters:  c.Headquarters,
			Website:       c.Website,
		}
		if err := e.store.CreateCompany(ctx, record); err != nil {
			state.recordFailure(c.SourceRow, fmt.Errorf("create company %q: %w", c.Name, err))
			state.mu.Lock()
			state.processed++
			state.mu.Unlock()
			return
		}
		state.mu.Lock()
		state.outcome.CompaniesCreated++
		state.companyIDs[NameKey(c.Name)] = record.ID
		state.processed++
		state.successful++
		state.mu.Unlock()
	}
}

func (e *Executor) applyContact(ctx context.Context, c domain.NormalizedContact, decision domain.MatchDecision, state *runState) {
	switch decision.Action {
	case domain.ActionSkip:
		state.mu.Lock()
		state.outcome.ContactsSkipped++
		state.processed++
		state.successful++
		state.mu.Unlock()
		return

	case domain.ActionUpdate:
		if err := e.store.UpdateContact(ctx, decision.ExistingID, c); err != nil {
			state.recordFailure(c.SourceRow, fmt.Errorf("update contact %q: %w", c.Email, err))
			state.mu.Lock()
			state.processed++
			state.mu.Unlock()
			return
		}
		state.mu.Lock()
		state.outcome.ContactsUpdated++
		state.processed++
		state.successful++
		state.mu.Unlock()
		return

	case domain.ActionCreate:
		record := &domain.Contact{
			CompanyID:   e.resolveCompanyID(ctx, c.CompanyName, state),
			FirstName:   c.FirstName,
			LastName:    c.LastName,
			Email:       c.Email,
			Phone:       c.Phone,
			Title:       c.Title,
			CompanyName: c.CompanyName,
			LinkedinURL: c.LinkedinURL,
			Department:  c.Department,
		}
		if err := e.store.CreateContact(ctx, record); err != nil {
			state.recordFailure(c.SourceRow, fmt.Errorf("create contact %q: %w", c.Email, err))
			state.mu.Lock()
			state.processed++
			state.mu.Unlock()
			return
		}
		state.mu.Lock()
		state.outcome.ContactsCreated++
		state.processed++
		state.successful++
		state.mu.Unlock()
	}
}

// resolveCompanyID maps a contact's by-name company reference to a
// persisted ID, preferring companies written earlier in this run.
// An unresolved reference is not an error; the contact is stored with
// the name reference only.
func (e *Executor) resolveCompanyID(ctx context.Context, companyName string, state *runState) string {
	key := NameKey(companyName)
	if key == "" {
		return ""
	}

	state.mu.Lock()
	id, ok := state.companyIDs[key]
	state.mu.Unlock()
	if ok {
		return id
	}

	existing, err := e.store.CompaniesByName(ctx, key)
	if err != nil || len(existing) == 0 {
		return ""
	}
	state.mu.Lock()
	state.companyIDs[key] = existing[0].ID
	state.mu.Unlock()
	return existing[0].ID
}

func (e *Executor) report(ctx context.Context, uploadID string, phase domain.Phase, total int, state *runState, operation string) {
	if e.reporter == nil {
		return
	}
	state.mu.Lock()
	event := domain.ProgressEvent{
		UploadID:   uploadID,
		Phase:      phase,
		Processed:  state.processed,
		Total:      total,
		Successful: state.successful,
		Failed:     state.failed,
		Operation:  operation,
		At:         time.Now().UTC(),
	}
	state.mu.Unlock()
	e.reporter.Report(ctx, event)
}

func (e *Executor) maybeReport(ctx context.Context, uploadID string, phase domain.Phase, total int, state *runState) {
	state.mu.Lock()
	due := state.processed%progressEvery == 0 && state.processed > 0
	state.mu.Unlock()
	if due {
		e.report(ctx, uploadID, phase, total, state, "")
	}
}
