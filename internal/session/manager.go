package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lox/airquality/internal/metrics"
	"github.com/lox/airquality/internal/models"
)

// MaxSessions bounds how many loaded sessions are kept in memory. The
// default session is never evicted.
const MaxSessions = 16

// Loader reads a directory or archive into a combined table.
type Loader interface {
	Load(source string) (*models.Combined, error)
}

// Manager owns the loaded sessions.
type Manager struct {
	loader Loader
	metSet models.MetSet
	logger *slog.Logger
	now    func() time.Time

	mu        sync.RWMutex
	sessions  map[string]*Session
	order     []string
	defaultID string

	// OnEvict, when set, is called with the id of every evicted session.
	OnEvict func(id string)
}

func NewManager(loader Loader, metSet models.MetSet, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		loader:   loader,
		metSet:   metSet,
		logger:   logger.With("component", "session"),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// MetSet returns the meteorological parameter set sessions are built with.
func (m *Manager) MetSet() models.MetSet { return m.metSet }

// Load reads source and registers a new session built from it. On error
// no session is added or replaced.
func (m *Manager) Load(source string) (*Session, error) {
	start := m.now()
	combined, err := m.loader.Load(source)
	if err != nil {
		metrics.LoadsTotal.WithLabelValues("error").Inc()
		m.logger.Warn("load failed", "source", source, "error", err)
		return nil, err
	}

	s := Build(uuid.NewString(), source, combined, m.metSet, m.now())
	metrics.LoadsTotal.WithLabelValues("ok").Inc()
	metrics.RowsLoaded.WithLabelValues("raw").Set(float64(s.RawRows))
	metrics.RowsLoaded.WithLabelValues("cleaned").Set(float64(len(s.Records)))
	m.logger.Info("session loaded",
		"session", s.ID,
		"source", source,
		"files", len(s.Files),
		"raw_rows", s.RawRows,
		"cleaned_rows", len(s.Records),
		"stations", len(s.Stations),
		"elapsed", time.Since(start),
	)

	m.add(s)
	return s, nil
}

// LoadDefault loads source and makes it the session served to requests
// without a session of their own.
func (m *Manager) LoadDefault(source string) (*Session, error) {
	s, err := m.Load(source)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.defaultID = s.ID
	m.mu.Unlock()
	return s, nil
}

func (m *Manager) add(s *Session) {
	var evicted []string

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.order = append(m.order, s.ID)
	for len(m.order) > MaxSessions {
		i := 0
		if m.order[0] == m.defaultID {
			i = 1
		}
		id := m.order[i]
		m.order = append(m.order[:i], m.order[i+1:]...)
		delete(m.sessions, id)
		evicted = append(evicted, id)
	}
	m.mu.Unlock()

	for _, id := range evicted {
		m.logger.Debug("session evicted", "session", id)
		if m.OnEvict != nil {
			m.OnEvict(id)
		}
	}
}

// Get returns the session with the given id, falling back to the default
// session. The boolean is false when neither exists.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.sessions[id]; ok {
		return s, true
	}
	s, ok := m.sessions[m.defaultID]
	return s, ok
}

// Default returns the default session, if one has been loaded.
func (m *Manager) Default() (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[m.defaultID]
	return s, ok
}

// Len returns the number of sessions held.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
