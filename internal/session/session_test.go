package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/data/store"
	"github.com/akolanti/AITutor/internal/domain/chatModel"
	"github.com/akolanti/AITutor/internal/domain/commonModels"
	"github.com/akolanti/AITutor/internal/rag/index"
	"github.com/akolanti/AITutor/internal/rag/prompt"
	"github.com/akolanti/AITutor/internal/rag/vectorDB/memoryDB"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type constEmbedder struct{}

func (constEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (constEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	out := make([][]float32, len(chunks))
	for i := range chunks {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func buildIndex(t *testing.T, db *memoryDB.Store, sessionId string, source commonModels.Source, name string) *index.Index {
	t.Helper()
	ctx := context.Background()
	chunks := []commonModels.DocChunk{{Label: "Part 1", Chunk: "text of " + name}}
	idx, err := index.Build(ctx, db, constEmbedder{}, index.CollectionName(sessionId, source), commonModels.Document{Name: name}, source, chunks)
	require.NoError(t, err)
	return idx
}

func collectionExists(db *memoryDB.Store, name string) bool {
	_, err := db.Search(context.Background(), name, []float32{1, 0}, 1)
	return err == nil
}

func TestManager_CreateSeedsGreeting(t *testing.T) {
	messages := store.InitMessageStore()
	m := NewManager(messages, time.Hour, time.Hour)

	s, err := m.Create(context.Background())
	require.NoError(t, err)

	history, err := messages.GetMessageHistory(context.Background(), s.ID())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, chatModel.RoleAssistant, history[0].Role)
	assert.Equal(t, prompt.Greeting, history[0].Text)
	assert.Equal(t, prompt.Doctorate, s.Level())
}

func TestManager_ResolveReusesKnownSession(t *testing.T) {
	m := NewManager(store.InitMessageStore(), time.Hour, time.Hour)
	ctx := context.Background()

	first, created, err := m.Resolve(ctx, "")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := m.Resolve(ctx, first.ID())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, first, again)

	other, created, err := m.Resolve(ctx, "unknown-id")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID(), other.ID())
}

func TestSession_ReplaceIndexDropsOld(t *testing.T) {
	db := memoryDB.NewStore()
	s := newSession("s1", time.Now())
	ctx := context.Background()

	first := buildIndex(t, db, "s1", commonModels.SourceDocument, "first.pdf")
	require.NoError(t, s.ReplaceIndex(ctx, first))
	assert.True(t, collectionExists(db, first.CollectionName()))

	second := buildIndex(t, db, "s1", commonModels.SourceDocument, "second.pdf")
	require.NoError(t, s.ReplaceIndex(ctx, second))

	assert.False(t, collectionExists(db, first.CollectionName()))
	assert.True(t, collectionExists(db, second.CollectionName()))
	assert.Same(t, second, s.Index(commonModels.SourceDocument))
	assert.Nil(t, s.Index(commonModels.SourceWeb))
	assert.Equal(t, "second.pdf", s.State().DocumentName)
}

func TestSession_RetrieversDocumentThenWeb(t *testing.T) {
	db := memoryDB.NewStore()
	s := newSession("s1", time.Now())
	ctx := context.Background()

	assert.Empty(t, s.Retrievers())

	web := buildIndex(t, db, "s1", commonModels.SourceWeb, "page")
	require.NoError(t, s.ReplaceIndex(ctx, web))
	require.Len(t, s.Retrievers(), 1)

	doc := buildIndex(t, db, "s1", commonModels.SourceDocument, "notes.pdf")
	require.NoError(t, s.ReplaceIndex(ctx, doc))

	retrievers := s.Retrievers()
	require.Len(t, retrievers, 2)
	assert.Same(t, doc, retrievers[0])
	assert.Same(t, web, retrievers[1])
}

func TestSession_CredentialResolution(t *testing.T) {
	savedProvider, savedGoogle := config.LLMProvider, config.GoogleAPIKey
	t.Cleanup(func() { config.LLMProvider, config.GoogleAPIKey = savedProvider, savedGoogle })
	config.LLMProvider = config.ProviderGemini

	s := newSession("s1", time.Now())

	config.GoogleAPIKey = ""
	assert.False(t, s.HasCredential())

	s.SetUserKey("  user-key ")
	assert.Equal(t, "user-key", s.Credential())

	config.GoogleAPIKey = config.PlaceholderAPIKey
	assert.Equal(t, "user-key", s.Credential())

	config.GoogleAPIKey = "server-key"
	assert.Equal(t, "server-key", s.Credential())
}

func TestSession_ClientsCachedPerKey(t *testing.T) {
	s := newSession("s1", time.Now())
	_, ok := s.CachedClients("k1")
	assert.False(t, ok)

	s.SetClients("k1", Clients{Embedder: constEmbedder{}})
	c, ok := s.CachedClients("k1")
	assert.True(t, ok)
	assert.NotNil(t, c.Embedder)

	_, ok = s.CachedClients("k2")
	assert.False(t, ok)
}

func TestManager_EndReleasesEverything(t *testing.T) {
	db := memoryDB.NewStore()
	messages := store.InitMessageStore()
	m := NewManager(messages, time.Hour, time.Hour)
	ctx := context.Background()

	s, err := m.Create(ctx)
	require.NoError(t, err)

	s.Lock()
	doc := buildIndex(t, db, s.ID(), commonModels.SourceDocument, "notes.pdf")
	require.NoError(t, s.ReplaceIndex(ctx, doc))
	s.Unlock()

	m.End(s.ID())

	_, ok := m.Get(s.ID())
	assert.False(t, ok)

	assert.Eventually(t, func() bool {
		s.Lock()
		defer s.Unlock()
		return s.Ended()
	}, time.Second, 10*time.Millisecond)

	assert.False(t, collectionExists(db, doc.CollectionName()))
	assert.Eventually(t, func() bool {
		history, _ := messages.GetMessageHistory(ctx, s.ID())
		return len(history) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestManager_IdleExpiry(t *testing.T) {
	messages := store.InitMessageStore()
	m := NewManager(messages, 50*time.Millisecond, 10*time.Millisecond)

	s, err := m.Create(context.Background())
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		s.Lock()
		defer s.Unlock()
		return s.Ended()
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, m.Count())
}

func TestManager_CloseDropsAllIndices(t *testing.T) {
	db := memoryDB.NewStore()
	m := NewManager(store.InitMessageStore(), time.Hour, time.Hour)
	ctx := context.Background()

	var names []string
	for i := 0; i < 3; i++ {
		s, err := m.Create(ctx)
		require.NoError(t, err)
		s.Lock()
		idx := buildIndex(t, db, s.ID(), commonModels.SourceWeb, "https://example.com")
		require.NoError(t, s.ReplaceIndex(ctx, idx))
		s.Unlock()
		names = append(names, idx.CollectionName())
	}

	closeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, m.Close(closeCtx))

	assert.Equal(t, 0, m.Count())
	for _, name := range names {
		assert.False(t, collectionExists(db, name), name)
	}
}

type countingMessages struct {
	*store.InMemoryMessageStore
	mu      sync.Mutex
	deletes int
	touches int
}

func (c *countingMessages) DeleteChat(ctx context.Context, sessionId string) error {
	c.mu.Lock()
	c.deletes++
	c.mu.Unlock()
	return c.InMemoryMessageStore.DeleteChat(ctx, sessionId)
}

func (c *countingMessages) Touch(ctx context.Context, sessionId string) error {
	c.mu.Lock()
	c.touches++
	c.mu.Unlock()
	return nil
}

func (c *countingMessages) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deletes, c.touches
}

func TestManager_ResolveSkipsSessionReinsertedAfterEviction(t *testing.T) {
	messages := &countingMessages{InMemoryMessageStore: store.InitMessageStore()}
	m := NewManager(messages, time.Hour, time.Hour)
	ctx := context.Background()

	stale, err := m.Create(ctx)
	require.NoError(t, err)

	// the janitor evicts it, then a Get that raced with it puts it back
	m.cache.Delete(stale.ID())
	m.cache.Set(stale.ID(), stale, time.Hour)

	fresh, created, err := m.Resolve(ctx, stale.ID())
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotSame(t, stale, fresh)

	_, ok := m.Get(stale.ID())
	assert.False(t, ok)

	assert.Eventually(t, func() bool {
		stale.Lock()
		defer stale.Unlock()
		return stale.Ended()
	}, time.Second, 10*time.Millisecond)
	require.NoError(t, m.Close(ctx))

	deletes, _ := messages.counts()
	// once for the stale session, once for the fresh one on Close
	assert.Equal(t, 2, deletes)
}

func TestManager_ResolveRefreshesHistory(t *testing.T) {
	messages := &countingMessages{InMemoryMessageStore: store.InitMessageStore()}
	m := NewManager(messages, time.Hour, time.Hour)
	ctx := context.Background()

	s, _, err := m.Resolve(ctx, "")
	require.NoError(t, err)
	_, touches := messages.counts()
	assert.Zero(t, touches)

	for i := 0; i < 3; i++ {
		_, created, err := m.Resolve(ctx, s.ID())
		require.NoError(t, err)
		assert.False(t, created)
	}
	_, touches = messages.counts()
	assert.Equal(t, 3, touches)
}
