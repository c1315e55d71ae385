// Package session keeps the per-client workspaces that own case state.
package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"legalmitra-backend/logger"
	"legalmitra-backend/repository"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("session limit reached")
)

// Session is one client's isolated workspace. Its repositories live exactly
// as long as the session does.
type Session struct {
	ID        string
	CreatedAt time.Time
	Cases     *repository.CaseRepository
	Jobs      *repository.JobRepository
	Files     *repository.FileRepository

	mu       sync.Mutex
	lastSeen time.Time
	ended    atomic.Bool
}

// Ended reports whether the session was deleted or expired. Work that
// captured the session earlier must not store anything once it is set.
func (s *Session) Ended() bool {
	return s.ended.Load()
}

// LastSeen returns when the session was last accessed
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// EvictionHook runs after a session is deleted or expires
type EvictionHook func(*Session)

// Manager is a TTL registry of sessions. Every access slides the expiry.
type Manager struct {
	cache       *cache.Cache
	ttl         time.Duration
	maxSessions int
	caseOpts    []repository.CaseRepositoryOption
	hooks       []EvictionHook
	log         *logger.Logger

	// serialises the limit check with insertion
	mu sync.Mutex
}

// ManagerOption is a functional option for Manager
type ManagerOption func(*Manager)

// WithMaxSessions caps the number of live sessions
func WithMaxSessions(n int) ManagerOption {
	return func(m *Manager) {
		m.maxSessions = n
	}
}

// WithCaseOptions configures every session's case repository
func WithCaseOptions(opts ...repository.CaseRepositoryOption) ManagerOption {
	return func(m *Manager) {
		m.caseOpts = append(m.caseOpts, opts...)
	}
}

// WithEvictionHook registers a cleanup callback
func WithEvictionHook(h EvictionHook) ManagerOption {
	return func(m *Manager) {
		m.hooks = append(m.hooks, h)
	}
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = l
	}
}

// NewManager creates a registry whose sessions expire after ttl of inactivity
func NewManager(ttl, cleanupInterval time.Duration, opts ...ManagerOption) *Manager {
	m := &Manager{
		cache: cache.New(ttl, cleanupInterval),
		ttl:   ttl,
		log:   logger.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.cache.OnEvicted(func(id string, v interface{}) {
		s, ok := v.(*Session)
		if !ok {
			return
		}
		s.ended.Store(true)
		cancelled := s.Jobs.CancelAll()
		m.log.Info("session ended", "session_id", id, "cases", s.Cases.Count(), "cancelled_jobs", cancelled)
		for _, h := range m.hooks {
			h(s)
		}
	})

	return m
}

// Create opens a new empty session
func (m *Manager) Create() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxSessions > 0 && m.cache.ItemCount() >= m.maxSessions {
		m.cache.DeleteExpired()
		if m.cache.ItemCount() >= m.maxSessions {
			return nil, ErrTooManySessions
		}
	}

	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		Cases:     repository.NewCaseRepository(m.caseOpts...),
		Jobs:      repository.NewJobRepository(),
		Files:     repository.NewFileRepository(),
		lastSeen:  now,
	}
	m.cache.Set(s.ID, s, m.ttl)

	m.log.Info("session created", "session_id", s.ID)
	return s, nil
}

// Get returns a live session and refreshes its expiry
func (m *Manager) Get(id string) (*Session, error) {
	v, found := m.cache.Get(id)
	if !found {
		return nil, ErrSessionNotFound
	}
	s, ok := v.(*Session)
	if !ok {
		return nil, ErrSessionNotFound
	}

	s.touch()
	m.cache.Set(id, s, m.ttl)
	return s, nil
}

// ExpiresAt returns when the session will expire without further access
func (m *Manager) ExpiresAt(id string) (time.Time, error) {
	_, exp, found := m.cache.GetWithExpiration(id)
	if !found {
		return time.Time{}, ErrSessionNotFound
	}
	return exp, nil
}

// Delete ends a session, running the eviction hooks
func (m *Manager) Delete(id string) error {
	if _, found := m.cache.Get(id); !found {
		return ErrSessionNotFound
	}
	m.cache.Delete(id)
	return nil
}

// Count returns the number of sessions held
func (m *Manager) Count() int {
	return m.cache.ItemCount()
}

// Close ends every session
func (m *Manager) Close() {
	for id := range m.cache.Items() {
		m.cache.Delete(id)
	}
}
