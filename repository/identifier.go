package repository

import (
	"fmt"
	"sync"
	"time"
)

// DefaultPermalinkScheme is used when no scheme is configured
const DefaultPermalinkScheme = "legalmitra"

const permalinkTimeLayout = "20060102150405"

// CaseSequence hands out case identifiers of the form CASE-NNNNNN.
// The counter starts at 1 and never repeats.
type CaseSequence struct {
	mu   sync.Mutex
	next int
}

// NewCaseSequence creates a sequence whose first identifier is CASE-000001
func NewCaseSequence() *CaseSequence {
	return &CaseSequence{next: 1}
}

// Next returns the next identifier and advances the counter
func (s *CaseSequence) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := FormatCaseID(s.next)
	s.next++
	return id
}

// FormatCaseID renders a sequence number as a case identifier
func FormatCaseID(n int) string {
	return fmt.Sprintf("CASE-%06d", n)
}

// Permalink builds the reference string for a case version. The timestamp is
// the instant the version was created, so the result is reproducible.
func Permalink(scheme, caseID string, version int, at time.Time) string {
	if scheme == "" {
		scheme = DefaultPermalinkScheme
	}
	return fmt.Sprintf("%s://case/%s/v%d/%s", scheme, caseID, version, at.Format(permalinkTimeLayout))
}
