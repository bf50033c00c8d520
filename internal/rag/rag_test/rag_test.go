package rag_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/data/store"
	"github.com/akolanti/AITutor/internal/domain/chatModel"
	"github.com/akolanti/AITutor/internal/domain/commonModels"
	"github.com/akolanti/AITutor/internal/domain/jobModel"
	"github.com/akolanti/AITutor/internal/rag"
	"github.com/akolanti/AITutor/internal/rag/ingest"
	"github.com/akolanti/AITutor/internal/rag/prompt"
	"github.com/akolanti/AITutor/internal/rag/vectorDB/memoryDB"
	"github.com/akolanti/AITutor/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type harness struct {
	service   rag.Service
	sessions  *session.Manager
	messages  *store.InMemoryMessageStore
	summaries *store.InMemorySummaryCache
	db        *memoryDB.Store
	provider  *MockProvider
	embedder  *MockEmbedder
	fetcher   *MockFetcher
	factories int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	savedProvider, savedKey := config.LLMProvider, config.GoogleAPIKey
	t.Cleanup(func() { config.LLMProvider, config.GoogleAPIKey = savedProvider, savedKey })
	config.LLMProvider = config.ProviderGemini
	config.GoogleAPIKey = ""

	h := &harness{
		messages:  store.InitMessageStore(),
		summaries: store.InitInMemorySummaryCache(),
		db:        memoryDB.NewStore(),
		provider:  &MockProvider{Reply: "an answer"},
		embedder:  &MockEmbedder{},
		fetcher:   &MockFetcher{Pages: map[string]ingest.WebPage{}},
	}
	h.sessions = session.NewManager(h.messages, time.Hour, time.Hour)
	h.service = rag.NewService(rag.Dependencies{
		VectorDB:  h.db,
		Messages:  h.messages,
		Summaries: h.summaries,
		Fetcher:   h.fetcher,
		Clients: func(ctx context.Context, apiKey string) (session.Clients, error) {
			h.factories++
			return session.Clients{Provider: h.provider, Embedder: h.embedder}, nil
		},
	})
	return h
}

func (h *harness) newSession(t *testing.T, withKey bool) *session.Session {
	t.Helper()
	s, err := h.sessions.Create(context.Background())
	require.NoError(t, err)
	if withKey {
		s.Lock()
		s.SetUserKey("user-key")
		s.Unlock()
	}
	return s
}

func writeUpload(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestChat_NoSourcesStillSendsRequest(t *testing.T) {
	h := newHarness(t)
	s := h.newSession(t, true)

	res, err := h.service.Chat(context.Background(), s, "What is a goroutine?")
	require.NoError(t, err)
	assert.Equal(t, "an answer", res.Reply)
	assert.Empty(t, res.Sources)

	require.Equal(t, 1, h.provider.Calls())
	req := h.provider.Last()
	assert.Empty(t, req.Documents)
	assert.Equal(t, "What is a goroutine?", req.Message)
	assert.Equal(t, prompt.Preamble(prompt.Doctorate), req.Preamble)
	require.Len(t, req.History, 1)
	assert.Equal(t, prompt.Greeting, req.History[0].Text)

	history, err := h.messages.GetMessageHistory(context.Background(), s.ID())
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, chatModel.RoleUser, history[1].Role)
	assert.Equal(t, "What is a goroutine?", history[1].Text)
	assert.Equal(t, chatModel.RoleAssistant, history[2].Role)
	assert.Equal(t, "an answer", history[2].Text)
}

func TestChat_MissingCredentialSendsNothing(t *testing.T) {
	h := newHarness(t)
	s := h.newSession(t, false)

	_, err := h.service.Chat(context.Background(), s, "hello")
	require.ErrorIs(t, err, rag.ErrMissingCredential)
	assert.Equal(t, 0, h.provider.Calls())

	code, msg, retry := rag.Describe(err)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Please add your API key to continue.", msg)
	assert.False(t, retry)

	history, _ := h.messages.GetMessageHistory(context.Background(), s.ID())
	assert.Len(t, history, 1)
}

func TestChat_ServerKeyWins(t *testing.T) {
	h := newHarness(t)
	config.GoogleAPIKey = "server-key"
	s := h.newSession(t, false)

	_, err := h.service.Chat(context.Background(), s, "hello")
	require.NoError(t, err)
	assert.Equal(t, 1, h.provider.Calls())
}

func TestChat_ProviderFailureAppendsNothing(t *testing.T) {
	h := newHarness(t)
	h.provider.Err = errors.New("quota exceeded")
	s := h.newSession(t, true)

	_, err := h.service.Chat(context.Background(), s, "hello")
	require.Error(t, err)

	history, _ := h.messages.GetMessageHistory(context.Background(), s.ID())
	assert.Len(t, history, 1)
}

func TestChat_LevelChangesPreamble(t *testing.T) {
	h := newHarness(t)
	s := h.newSession(t, true)
	s.Lock()
	s.SetLevel(prompt.Kindergarten)
	s.Unlock()

	_, err := h.service.Chat(context.Background(), s, "hello")
	require.NoError(t, err)
	assert.Contains(t, h.provider.Last().Preamble, "kindergarten")
}

func TestChat_ClientsReusedAcrossTurns(t *testing.T) {
	h := newHarness(t)
	s := h.newSession(t, true)

	for i := 0; i < 3; i++ {
		_, err := h.service.Chat(context.Background(), s, "hello")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, h.factories)
}

func TestIngestDocument_GroundsLaterChats(t *testing.T) {
	h := newHarness(t)
	s := h.newSession(t, true)

	text := strings.Repeat("gopher ", 300) + strings.Repeat("python ", 300)
	path := writeUpload(t, "notes.txt", text)

	job := h.service.IngestDocument(context.Background(), s, jobModel.Job{
		Id:      "job-1",
		JobType: jobModel.JobTypeIngestDocument,
		JobPayload: jobModel.JobPayload{
			IngestFileName: "notes.txt",
			IngestPath:     path,
		},
	})
	require.Equal(t, jobModel.JobStatusComplete, job.Status, job.Error.Message)
	assert.Equal(t, 5, job.JobPayload.ChunkCount)
	assert.NoFileExists(t, path)

	res, err := h.service.Chat(context.Background(), s, "tell me about the gopher")
	require.NoError(t, err)

	docs := h.provider.Last().Documents
	require.Len(t, docs, config.RetrievalTopK)
	for _, d := range docs {
		assert.Equal(t, commonModels.SourceDocument, d.Source)
		assert.Equal(t, "notes.txt", d.Doc.Name)
	}
	require.Len(t, res.Sources, len(docs))
	for _, src := range res.Sources {
		assert.True(t, strings.HasPrefix(src, "notes.txt - Page 1 Part "), src)
	}
}

func TestIngestDocument_ReplacesPreviousIndex(t *testing.T) {
	h := newHarness(t)
	s := h.newSession(t, true)

	first := h.service.IngestDocument(context.Background(), s, jobModel.Job{JobPayload: jobModel.JobPayload{
		IngestFileName: "first.txt", IngestPath: writeUpload(t, "first.txt", "gopher"),
	}})
	require.Equal(t, jobModel.JobStatusComplete, first.Status)
	s.Lock()
	oldCollection := s.Index(commonModels.SourceDocument).CollectionName()
	s.Unlock()

	second := h.service.IngestDocument(context.Background(), s, jobModel.Job{JobPayload: jobModel.JobPayload{
		IngestFileName: "second.txt", IngestPath: writeUpload(t, "second.txt", "python"),
	}})
	require.Equal(t, jobModel.JobStatusComplete, second.Status)

	_, err := h.db.Search(context.Background(), oldCollection, []float32{1, 1, 1}, 1)
	assert.Error(t, err, "replaced collection should be dropped")

	s.Lock()
	assert.Equal(t, "second.txt", s.State().DocumentName)
	s.Unlock()
}

func TestIngestDocument_EmbeddingFailureIsVerbatim(t *testing.T) {
	h := newHarness(t)
	h.embedder.OnBatch = func(chunks []string) ([][]float32, error) {
		return nil, status.Error(codes.ResourceExhausted, "quota")
	}
	s := h.newSession(t, true)

	job := h.service.IngestDocument(context.Background(), s, jobModel.Job{JobPayload: jobModel.JobPayload{
		IngestFileName: "a.txt", IngestPath: writeUpload(t, "a.txt", "gopher"),
	}})
	assert.Equal(t, jobModel.JobStatusError, job.Status)
	assert.True(t, strings.HasPrefix(job.Error.Message, "Error: "))
	assert.Contains(t, job.Error.Message, "quota")
	assert.True(t, job.Error.Retry)

	s.Lock()
	assert.Nil(t, s.Index(commonModels.SourceDocument))
	s.Unlock()
}

func TestIngestDocument_Unsupported(t *testing.T) {
	h := newHarness(t)
	s := h.newSession(t, true)

	job := h.service.IngestDocument(context.Background(), s, jobModel.Job{JobPayload: jobModel.JobPayload{
		IngestFileName: "a.exe", IngestPath: writeUpload(t, "a.exe", "MZ"),
	}})
	assert.Equal(t, jobModel.JobStatusError, job.Status)
	assert.Equal(t, http.StatusUnsupportedMediaType, job.Error.Code)
}

func TestIngestDocument_EmptyText(t *testing.T) {
	h := newHarness(t)
	s := h.newSession(t, true)

	job := h.service.IngestDocument(context.Background(), s, jobModel.Job{JobPayload: jobModel.JobPayload{
		IngestFileName: "empty.txt", IngestPath: writeUpload(t, "empty.txt", ""),
	}})
	assert.Equal(t, jobModel.JobStatusError, job.Status)
	assert.Equal(t, "Error: "+ingest.ErrNoText.Error(), job.Error.Message)

	s.Lock()
	defer s.Unlock()
	assert.Nil(t, s.Index(commonModels.SourceDocument))
}

func TestIngestWebPage_InvalidURLCreatesNoIndex(t *testing.T) {
	h := newHarness(t)
	s := h.newSession(t, true)

	for raw, want := range map[string]string{
		"ftp://x": "Error: Invalid URL format.",
		"   ":     "Please enter a URL.",
	} {
		job := h.service.IngestWebPage(context.Background(), s, jobModel.Job{JobPayload: jobModel.JobPayload{IngestURL: raw}})
		assert.Equal(t, jobModel.JobStatusError, job.Status)
		assert.Equal(t, want, job.Error.Message)
		assert.Equal(t, http.StatusBadRequest, job.Error.Code)
	}

	assert.Equal(t, 0, h.fetcher.Calls)
	s.Lock()
	assert.Nil(t, s.Index(commonModels.SourceWeb))
	s.Unlock()
}

func TestIngestWebPage_SummarizesAndCaches(t *testing.T) {
	h := newHarness(t)
	h.provider.Reply = "the summary"
	pageURL := "https://example.com/go"
	h.fetcher.Pages[pageURL] = ingest.WebPage{
		URL:   pageURL,
		Title: "Go",
		Text:  strings.Repeat("gopher ", 500),
	}
	s := h.newSession(t, true)

	job := h.service.IngestWebPage(context.Background(), s, jobModel.Job{JobPayload: jobModel.JobPayload{IngestURL: pageURL}})
	require.Equal(t, jobModel.JobStatusComplete, job.Status, job.Error.Message)
	assert.Equal(t, "the summary", job.JobPayload.Summary)

	req := h.provider.Last()
	assert.Equal(t, prompt.SummaryQuestion, req.Message)
	assert.LessOrEqual(t, len(req.Documents), config.SummaryTopK)
	require.NotEmpty(t, req.Documents)
	assert.True(t, strings.HasPrefix(req.Documents[0].Label, "Web Part "))

	s.Lock()
	st := s.State()
	s.Unlock()
	assert.Equal(t, "the summary", st.Summary)
	assert.Equal(t, pageURL, st.WebURL)

	cached, ok := h.summaries.GetSummary(context.Background(), pageURL)
	assert.True(t, ok)
	assert.Equal(t, "the summary", cached)

	calls := h.provider.Calls()
	job = h.service.IngestWebPage(context.Background(), s, jobModel.Job{JobPayload: jobModel.JobPayload{IngestURL: pageURL}})
	require.Equal(t, jobModel.JobStatusComplete, job.Status)
	assert.Equal(t, calls, h.provider.Calls(), "cached summary should not call the model")
}

func TestChat_DocumentThenWebOrder(t *testing.T) {
	h := newHarness(t)
	pageURL := "https://example.com/go"
	h.fetcher.Pages[pageURL] = ingest.WebPage{URL: pageURL, Text: "gopher web"}
	s := h.newSession(t, true)

	web := h.service.IngestWebPage(context.Background(), s, jobModel.Job{JobPayload: jobModel.JobPayload{IngestURL: pageURL}})
	require.Equal(t, jobModel.JobStatusComplete, web.Status)
	doc := h.service.IngestDocument(context.Background(), s, jobModel.Job{JobPayload: jobModel.JobPayload{
		IngestFileName: "a.txt", IngestPath: writeUpload(t, "a.txt", "gopher doc"),
	}})
	require.Equal(t, jobModel.JobStatusComplete, doc.Status)

	_, err := h.service.Chat(context.Background(), s, "gopher")
	require.NoError(t, err)

	docs := h.provider.Last().Documents
	require.Len(t, docs, 2)
	assert.Equal(t, commonModels.SourceDocument, docs[0].Source)
	assert.Equal(t, commonModels.SourceWeb, docs[1].Source)
}

func TestIngestWebPage_SummaryFailureKeepsOldIndex(t *testing.T) {
	h := newHarness(t)
	good, bad := "https://example.com/good", "https://example.com/bad"
	h.fetcher.Pages[good] = ingest.WebPage{URL: good, Text: "gopher"}
	h.fetcher.Pages[bad] = ingest.WebPage{URL: bad, Text: "python"}
	s := h.newSession(t, true)

	job := h.service.IngestWebPage(context.Background(), s, jobModel.Job{JobPayload: jobModel.JobPayload{IngestURL: good}})
	require.Equal(t, jobModel.JobStatusComplete, job.Status)

	h.provider.Err = errors.New("model overloaded")
	job = h.service.IngestWebPage(context.Background(), s, jobModel.Job{JobPayload: jobModel.JobPayload{IngestURL: bad}})
	assert.Equal(t, jobModel.JobStatusError, job.Status)
	assert.Equal(t, "Error: model overloaded", job.Error.Message)

	s.Lock()
	defer s.Unlock()
	assert.Equal(t, good, s.State().WebURL)
	assert.Equal(t, good, s.Index(commonModels.SourceWeb).Document().SourceURL)
}

func TestEndedSessionRejectsWork(t *testing.T) {
	h := newHarness(t)
	s := h.newSession(t, true)
	h.sessions.End(s.ID())

	assert.Eventually(t, func() bool {
		s.Lock()
		defer s.Unlock()
		return s.Ended()
	}, time.Second, 10*time.Millisecond)

	_, err := h.service.Chat(context.Background(), s, "hello")
	assert.ErrorIs(t, err, session.ErrSessionEnded)
}
