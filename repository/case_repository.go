package repository

import (
	"errors"
	"sync"
	"time"

	"legalmitra-backend/models"
)

var ErrCaseNotFound = errors.New("case not found")

// CaseRepository holds the case records of one session in memory.
// Callers always receive copies; the repository owns the records.
type CaseRepository struct {
	mu      sync.RWMutex
	seq     *CaseSequence
	cases   map[string]*models.CaseRecord
	order   []string
	scheme  string
	nowFunc func() time.Time
}

// CaseRepositoryOption is a functional option for CaseRepository
type CaseRepositoryOption func(*CaseRepository)

// WithPermalinkScheme sets the scheme used for generated permalinks
func WithPermalinkScheme(scheme string) CaseRepositoryOption {
	return func(r *CaseRepository) {
		r.scheme = scheme
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) CaseRepositoryOption {
	return func(r *CaseRepository) {
		r.nowFunc = now
	}
}

// NewCaseRepository creates an empty case repository
func NewCaseRepository(opts ...CaseRepositoryOption) *CaseRepository {
	r := &CaseRepository{
		seq:     NewCaseSequence(),
		cases:   make(map[string]*models.CaseRecord),
		scheme:  DefaultPermalinkScheme,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create stores a new record at version 1 and returns a copy of it
func (r *CaseRepository) Create(scenario string, language models.Language, analysis string) *models.CaseRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	id := r.seq.Next()
	link := Permalink(r.scheme, id, 1, now)

	record := &models.CaseRecord{
		CaseID:           id,
		CreatedAt:        now,
		LastUpdatedAt:    now,
		ScenarioText:     scenario,
		Language:         language,
		AnalysisText:     analysis,
		Version:          1,
		EvidenceUpdates:  []models.EvidenceUpdate{},
		InitialPermalink: link,
		Permalink:        link,
	}

	r.cases[id] = record
	r.order = append(r.order, id)

	return record.Clone()
}

// Amend appends an evidence update and bumps the version by one
func (r *CaseRepository) Amend(caseID, evidence, impact string) (*models.CaseRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.cases[caseID]
	if !ok {
		return nil, ErrCaseNotFound
	}

	now := r.nowFunc()
	record.Version++
	record.LastUpdatedAt = now
	record.Permalink = Permalink(r.scheme, caseID, record.Version, now)
	record.EvidenceUpdates = append(record.EvidenceUpdates, models.EvidenceUpdate{
		Timestamp:    now,
		EvidenceText: evidence,
		ImpactText:   impact,
		Version:      record.Version,
		Permalink:    record.Permalink,
	})

	return record.Clone(), nil
}

// Get retrieves a copy of a record by case ID
func (r *CaseRepository) Get(caseID string) (*models.CaseRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.cases[caseID]
	if !ok {
		return nil, ErrCaseNotFound
	}
	return record.Clone(), nil
}

// All returns copies of every record in creation order
func (r *CaseRepository) All() []*models.CaseRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*models.CaseRecord, 0, len(r.order))
	for _, id := range r.order {
		records = append(records, r.cases[id].Clone())
	}
	return records
}

// Count returns the number of stored records
func (r *CaseRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}
