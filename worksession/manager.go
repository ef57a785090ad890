package worksession

import (
	"context"
	"log/slog"
	"sync"

	"garagedesk/infrastructure/audit"
	"garagedesk/infrastructure/draft"
	"garagedesk/infrastructure/rowcache"
	"garagedesk/models"
)

// Manager owns the live sessions for one row kind. Sessions outlive single
// HTTP requests so their guard flags and edit-mode selection stick, and the
// background driver refreshes every job a desk user has open.
type Manager struct {
	kind   models.RowKind
	be     Backend
	cache  *rowcache.Cache
	drafts *draft.Store
	audit  *audit.Service
	notify func(jobKey, kind string)

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager for one row kind.
func NewManager(kind models.RowKind, be Backend, cache *rowcache.Cache, drafts *draft.Store, auditSvc *audit.Service, notify func(jobKey, kind string)) *Manager {
	return &Manager{
		kind:     kind,
		be:       be,
		cache:    cache,
		drafts:   drafts,
		audit:    auditSvc,
		notify:   notify,
		sessions: make(map[string]*Session),
	}
}

// Session returns the live session for a job card, creating it on first
// view. The parent card fields refresh on every call so a renamed customer
// shows up without restarting the desk.
func (m *Manager) Session(card models.JobCard) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[card.JobCardNo]; ok {
		s.setCard(card)
		return s
	}
	s := New(card, m.kind, m.be, m.cache, m.drafts, m.audit, m.notify)
	m.sessions[card.JobCardNo] = s
	return s
}

// Lookup returns an existing session without creating one.
func (m *Manager) Lookup(jobKey string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[jobKey]
	return s, ok
}

// Sessions snapshots every open session.
func (m *Manager) Sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// RefreshAll polls the backend for every open session. Individual failures
// are logged and skipped; the affected job keeps its stale rows.
func (m *Manager) RefreshAll(ctx context.Context) {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		if err := s.RefreshRemote(ctx); err != nil {
			slog.Warn("poll refresh failed",
				slog.String("job_key", s.JobKey()),
				slog.String("kind", string(m.kind)),
				slog.Any("err", err))
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// Run drives RefreshAll until ctx is cancelled. Callers start it in a
// goroutine.
func (m *Manager) Run(ctx context.Context, driver rowcache.Driver) {
	driver.Run(ctx, m.RefreshAll)
}
