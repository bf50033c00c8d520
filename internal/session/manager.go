package session

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/AITutor/internal/adapter/utils"
	"github.com/akolanti/AITutor/internal/domain/chatModel"
	"github.com/akolanti/AITutor/internal/metrics"
	"github.com/akolanti/AITutor/internal/rag/prompt"
	"github.com/akolanti/AITutor/pkg/logger_i"
	"github.com/patrickmn/go-cache"
)

var logger = logger_i.NewLogger("Sessions")

const releaseTimeout = 30 * time.Second

// Manager owns the live sessions. Idle expiry is sliding: every Get pushes it out again.
type Manager struct {
	cache    *cache.Cache
	messages chatModel.MessageStore
	idle     time.Duration
	now      func() time.Time
	releases sync.WaitGroup
}

func NewManager(messages chatModel.MessageStore, idle, cleanup time.Duration) *Manager {
	m := &Manager{
		cache:    cache.New(idle, cleanup),
		messages: messages,
		idle:     idle,
		now:      time.Now,
	}
	m.cache.OnEvicted(m.onEvicted)
	return m
}

// Create starts a new session whose history holds only the greeting.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	now := m.now()
	s := newSession(utils.GetNewUUID(), now)
	greeting := chatModel.ChatMessage{Role: chatModel.RoleAssistant, Text: prompt.Greeting, At: now}
	if err := m.messages.InitNewChat(ctx, s.id, greeting); err != nil {
		return nil, err
	}
	m.cache.Set(s.id, s, m.idle)
	metrics.IncrementActiveSessions()
	logger.WithTrace(ctx).Info("session created", "sessionId", s.id)
	return s, nil
}

func (m *Manager) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	v, ok := m.cache.Get(id)
	if !ok {
		return nil, false
	}
	s := v.(*Session)
	if s.evicted.Load() {
		m.dropStale(id, s)
		return nil, false
	}
	// Set does not fire OnEvicted, so refreshing is safe.
	m.cache.Set(id, s, m.idle)
	// the janitor may have expired it between Get and Set
	if s.evicted.Load() {
		m.dropStale(id, s)
		return nil, false
	}
	return s, true
}

// dropStale removes an entry that Set put back after eviction. The session
// is already being released, so OnEvicted ignores it.
func (m *Manager) dropStale(id string, s *Session) {
	if v, ok := m.cache.Get(id); ok && v == s {
		m.cache.Delete(id)
	}
}

// Resolve returns the session for id, creating a fresh one when it is unknown
// or expired. A resumed session also refreshes its history TTL.
func (m *Manager) Resolve(ctx context.Context, id string) (*Session, bool, error) {
	if s, ok := m.Get(id); ok {
		if err := m.messages.Touch(ctx, id); err != nil {
			logger.WithTrace(ctx).Warn("could not refresh history ttl", "sessionId", id, "error", err)
		}
		return s, false, nil
	}
	s, err := m.Create(ctx)
	return s, err == nil, err
}

// End discards a session now. Its indices and history go with it.
func (m *Manager) End(id string) {
	m.cache.Delete(id)
}

func (m *Manager) Count() int {
	return m.cache.ItemCount()
}

// onEvicted is called from the janitor or from End. Releasing waits on the
// session lock, so it gets its own goroutine.
func (m *Manager) onEvicted(id string, v interface{}) {
	s, ok := v.(*Session)
	if !ok || !s.evicted.CompareAndSwap(false, true) {
		return
	}
	m.releases.Add(1)
	go func() {
		defer m.releases.Done()
		m.release(s)
	}()
}

// Close ends every live session and waits for their indices to be dropped,
// or for ctx to expire.
func (m *Manager) Close(ctx context.Context) error {
	for id := range m.cache.Items() {
		m.cache.Delete(id)
	}
	done := make(chan struct{})
	go func() {
		m.releases.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) release(s *Session) {
	// waits for an in-flight action of this session to finish
	s.Lock()
	defer s.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	log := logger.With("sessionId", s.id)
	for _, err := range s.release(ctx) {
		log.Error("failed to drop index", "error", err)
	}
	if err := m.messages.DeleteChat(ctx, s.id); err != nil {
		log.Error("failed to delete history", "error", err)
	}
	metrics.DecrementActiveSessions()
	log.Info("session released")
}
