// Package session holds the per-user conversation context: credential,
// education level and the two retrieval indices.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/domain/commonModels"
	"github.com/akolanti/AITutor/internal/rag/assembler"
	"github.com/akolanti/AITutor/internal/rag/embedding"
	"github.com/akolanti/AITutor/internal/rag/index"
	"github.com/akolanti/AITutor/internal/rag/llm"
	"github.com/akolanti/AITutor/internal/rag/prompt"
)

var ErrSessionEnded = errors.New("session ended")

// Clients are the provider clients built for one credential.
type Clients struct {
	Provider llm.Provider
	Embedder embedding.Embedder
}

// Session fields are guarded by the session lock. Every user action holds
// Lock for its whole duration so two actions of one session never interleave.
type Session struct {
	mu sync.Mutex

	id        string
	createdAt time.Time
	lastSeen  time.Time
	ended     bool
	// set by the manager as soon as the cache drops the entry, without the lock
	evicted atomic.Bool

	userKey string
	level   prompt.Level

	docIndex *index.Index
	webIndex *index.Index
	webURL   string
	summary  string

	clientKey string
	clients   *Clients
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		id:        id,
		createdAt: now,
		lastSeen:  now,
		level:     prompt.DefaultLevel,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Ended reports whether the session was discarded while the caller waited for the lock.
func (s *Session) Ended() bool { return s.ended }

func (s *Session) Level() prompt.Level     { return s.level }
func (s *Session) SetLevel(l prompt.Level) { s.level = l }

func (s *Session) SetUserKey(key string) {
	s.userKey = strings.TrimSpace(key)
}

// Credential resolves the API key for this session. A usable server key
// always wins over the one typed in by the user.
func (s *Session) Credential() string {
	if key := config.ServerCredential(); key != "" {
		return key
	}
	return s.userKey
}

func (s *Session) HasCredential() bool {
	return s.Credential() != ""
}

// CachedClients returns the clients built for key, if any.
func (s *Session) CachedClients(key string) (Clients, bool) {
	if s.clients == nil || s.clientKey != key {
		return Clients{}, false
	}
	return *s.clients, true
}

func (s *Session) SetClients(key string, c Clients) {
	s.clientKey = key
	s.clients = &c
}

func (s *Session) Index(source commonModels.Source) *index.Index {
	if source == commonModels.SourceWeb {
		return s.webIndex
	}
	return s.docIndex
}

// ReplaceIndex installs idx for its source and drops the collection of the
// index it replaces.
func (s *Session) ReplaceIndex(ctx context.Context, idx *index.Index) error {
	var old *index.Index
	if idx.Source() == commonModels.SourceWeb {
		old, s.webIndex = s.webIndex, idx
	} else {
		old, s.docIndex = s.docIndex, idx
	}
	if old == nil {
		return nil
	}
	return old.Drop(ctx)
}

// Retrievers lists the indices that exist, document first then web.
func (s *Session) Retrievers() []assembler.Retriever {
	out := make([]assembler.Retriever, 0, 2)
	if s.docIndex != nil {
		out = append(out, s.docIndex)
	}
	if s.webIndex != nil {
		out = append(out, s.webIndex)
	}
	return out
}

func (s *Session) SetWebSummary(url, summary string) {
	s.webURL = url
	s.summary = summary
}

// State is a read-only copy of the session for rendering.
type State struct {
	ID            string    `json:"id"`
	Level         string    `json:"level"`
	HasCredential bool      `json:"has_credential"`
	ServerKey     bool      `json:"server_key"`
	DocumentName  string    `json:"document_name,omitempty"`
	WebURL        string    `json:"web_url,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (s *Session) State() State {
	st := State{
		ID:            s.id,
		Level:         s.level.String(),
		HasCredential: s.HasCredential(),
		ServerKey:     config.ServerCredential() != "",
		WebURL:        s.webURL,
		Summary:       s.summary,
		CreatedAt:     s.createdAt,
	}
	if s.docIndex != nil {
		st.DocumentName = s.docIndex.Document().Name
	}
	return st
}

// release drops everything the session owns outside the process.
func (s *Session) release(ctx context.Context) []error {
	s.ended = true
	var errs []error
	for _, idx := range []*index.Index{s.docIndex, s.webIndex} {
		if idx == nil {
			continue
		}
		if err := idx.Drop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.docIndex, s.webIndex = nil, nil
	s.clients = nil
	return errs
}
