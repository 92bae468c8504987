package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"imagestudio/internal/infra"
	"imagestudio/internal/series"
)

// Manager keeps the in-memory session history and mirrors every mutation to
// the configured Store. All methods are safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	store    Store
	logger   infra.Logger
	sessions []GenerationSession
	current  *GenerationSession
}

// NewManager loads existing history from the store. A store that cannot be
// read (missing table, corrupt file) starts the manager with an empty list
// rather than failing, so one bad payload never blocks the studio.
func NewManager(ctx context.Context, store Store, logger infra.Logger) *Manager {
	m := &Manager{store: store, logger: logger}
	sessions, err := store.Load(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("session history unreadable, starting empty")
		sessions = nil
	}
	m.sessions = sessions
	return m
}

// CreateNew starts a fresh session and makes it current. The previous
// current session stays in the history if it was saved.
func (m *Manager) CreateNew() *GenerationSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := newSession()
	m.current = s
	return cloneSession(s)
}

// AddResult appends a generation outcome to the current session, creating
// one first if none is active.
func (m *Manager) AddResult(outcome series.Outcome) *GenerationSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		m.current = newSession()
	}
	m.current.Results = append(m.current.Results, outcome)
	return cloneSession(m.current)
}

// AddSavedImage records an uploaded asset ID against the current session.
func (m *Manager) AddSavedImage(assetID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		m.current = newSession()
	}
	m.current.SavedImages = append(m.current.SavedImages, assetID)
}

// SaveCurrent upserts the current session into the history by ID and
// persists the full list.
func (m *Manager) SaveCurrent(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	m.upsertLocked(*m.current)
	return m.persistLocked(ctx)
}

// Put upserts an externally supplied session into the history and persists
// the full list. Hosts that keep session state on their side push it here.
func (m *Manager) Put(ctx context.Context, s GenerationSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertLocked(s)
	return m.persistLocked(ctx)
}

// Load selects a saved session as the current one.
func (m *Manager) Load(id string) (*GenerationSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			s := m.sessions[i]
			m.current = &s
			return cloneSession(&s), true
		}
	}
	return nil, false
}

// Delete removes a session from the history and persists the change. The
// current pointer is cleared when it referenced the deleted session.
func (m *Manager) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}
	m.sessions = append(m.sessions[:idx], m.sessions[idx+1:]...)
	if m.current != nil && m.current.ID == id {
		m.current = nil
	}
	return true, m.persistLocked(ctx)
}

// Clear drops the whole history and the current session.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = nil
	m.current = nil
	return m.persistLocked(ctx)
}

// Sessions returns a copy of the saved history, newest first is not
// guaranteed; order follows save order.
func (m *Manager) Sessions() []GenerationSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]GenerationSession, len(m.sessions))
	copy(out, m.sessions)
	return out
}

// Current returns a copy of the active session, or nil when none exists.
func (m *Manager) Current() *GenerationSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneSession(m.current)
}

func (m *Manager) upsertLocked(s GenerationSession) {
	for i := range m.sessions {
		if m.sessions[i].ID == s.ID {
			m.sessions[i] = s
			return
		}
	}
	m.sessions = append(m.sessions, s)
}

func (m *Manager) persistLocked(ctx context.Context) error {
	if err := m.store.Save(ctx, m.sessions); err != nil {
		m.logger.Error().Err(err).Msg("persist session history")
		return err
	}
	return nil
}

func newSession() *GenerationSession {
	now := time.Now()
	short := strings.Split(uuid.NewString(), "-")[0]
	return &GenerationSession{
		ID:        fmt.Sprintf("session-%d-%s", now.UnixMilli(), short),
		Timestamp: now,
	}
}

func cloneSession(s *GenerationSession) *GenerationSession {
	if s == nil {
		return nil
	}
	out := *s
	out.Results = append([]series.Outcome(nil), s.Results...)
	out.SavedImages = append([]string(nil), s.SavedImages...)
	return &out
}
