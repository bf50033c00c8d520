package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/AITutor/internal/api"
	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/data/store"
	"github.com/akolanti/AITutor/internal/domain/jobModel"
	"github.com/akolanti/AITutor/internal/handlers"
	"github.com/akolanti/AITutor/internal/job"
	"github.com/akolanti/AITutor/internal/middleware"
	"github.com/akolanti/AITutor/internal/rag"
	"github.com/akolanti/AITutor/internal/session"
	"github.com/akolanti/AITutor/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type fakeQueue struct {
	mu   sync.Mutex
	jobs map[string]jobModel.Job
	full bool
}

func (q *fakeQueue) Enqueue(ctx context.Context, j jobModel.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.full {
		return job.ErrQueueFull
	}
	q.jobs[j.Id] = j
	return nil
}

func (q *fakeQueue) GetJob(ctx context.Context, id string) (jobModel.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	return j, ok
}

func (q *fakeQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

type fakeRag struct {
	reply   rag.ChatResult
	err     error
	lastMsg string
}

func (f *fakeRag) Chat(ctx context.Context, sess *session.Session, message string) (rag.ChatResult, error) {
	f.lastMsg = message
	return f.reply, f.err
}

func (f *fakeRag) IngestDocument(ctx context.Context, sess *session.Session, job jobModel.Job) jobModel.Job {
	return job
}

func (f *fakeRag) IngestWebPage(ctx context.Context, sess *session.Session, job jobModel.Job) jobModel.Job {
	return job
}

type harness struct {
	router http.Handler
	queue  *fakeQueue
	rag    *fakeRag
}

func newHarness(t *testing.T, limiter *middleware.IPRateLimiter) *harness {
	t.Helper()
	prevGoogle, prevOpenAI := config.GoogleAPIKey, config.OpenAIAPIKey
	config.GoogleAPIKey, config.OpenAIAPIKey = "", ""
	t.Cleanup(func() { config.GoogleAPIKey, config.OpenAIAPIKey = prevGoogle, prevOpenAI })

	messages := store.InitMessageStore()
	sessions := session.NewManager(messages, time.Hour, time.Hour)
	h := &harness{
		queue: &fakeQueue{jobs: map[string]jobModel.Job{}},
		rag:   &fakeRag{},
	}
	handler := handlers.New(handlers.Config{
		Jobs:     h.queue,
		Rag:      h.rag,
		Messages: messages,
		Sessions: sessions,
		UI:       ui.Handler(),
	})
	h.router = NewRouter(handler, middleware.New(sessions, limiter))
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

// start opens a session and returns its cookie.
func (h *harness) start(t *testing.T) (*http.Cookie, api.SessionResponse) {
	t.Helper()
	rec := h.do(t, http.MethodGet, "/session", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == config.SessionCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "session cookie not set")

	var state api.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	return cookie, state
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) api.JobOutgoingError {
	t.Helper()
	var res api.JobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.Error)
	return *res.Error
}

func TestSession_CreatedWithGreetingAndReused(t *testing.T) {
	h := newHarness(t, nil)
	cookie, state := h.start(t)

	assert.Equal(t, cookie.Value, state.Id)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "Doctorate", state.Level)
	assert.False(t, state.HasCredential)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, "Assistant", state.Messages[0].Role)

	rec := h.do(t, http.MethodGet, "/session", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies(), "known session must not be reissued")

	var again api.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &again))
	assert.Equal(t, state.Id, again.Id)
}

func TestSession_SettingsAndEnd(t *testing.T) {
	h := newHarness(t, nil)
	cookie, _ := h.start(t)

	rec := h.do(t, http.MethodPut, "/session/level", api.LevelRequest{Level: "high school"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var state api.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, "High School", state.Level)

	rec = h.do(t, http.MethodPut, "/session/credential", api.CredentialRequest{APIKey: "  user-key "}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.True(t, state.HasCredential)
	assert.False(t, state.ServerKey)

	rec = h.do(t, http.MethodDelete, "/session", nil, cookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// the old cookie now starts a fresh session
	rec = h.do(t, http.MethodGet, "/session", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.NotEqual(t, cookie.Value, state.Id)
	assert.False(t, state.HasCredential)
}

func TestChat_ReplyAndInlineErrors(t *testing.T) {
	h := newHarness(t, nil)
	cookie, _ := h.start(t)

	h.rag.reply = rag.ChatResult{Reply: "42"}
	rec := h.do(t, http.MethodPost, "/chat", api.ChatRequest{Message: "meaning of life?"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var res api.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "42", res.Reply)
	assert.NotNil(t, res.Sources)
	assert.Equal(t, "meaning of life?", h.rag.lastMsg)

	h.rag.err = rag.ErrMissingCredential
	rec = h.do(t, http.MethodPost, "/chat", api.ChatRequest{Message: "hi"}, cookie)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, rag.MsgMissingCredential, decodeError(t, rec).Message)

	rec = h.do(t, http.MethodPost, "/chat", "not an object", cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestWeb_Validation(t *testing.T) {
	h := newHarness(t, nil)
	cookie, _ := h.start(t)

	rec := h.do(t, http.MethodPost, "/ingest/web", api.IngestWebRequest{URL: "ftp://x"}, cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, rag.MsgInvalidURL, decodeError(t, rec).Message)

	rec = h.do(t, http.MethodPost, "/ingest/web", api.IngestWebRequest{URL: "  "}, cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, rag.MsgEmptyURL, decodeError(t, rec).Message)

	rec = h.do(t, http.MethodPost, "/ingest/web", api.IngestWebRequest{URL: "https://go.dev/doc"}, cookie)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, rag.MsgMissingCredential, decodeError(t, rec).Message)

	assert.Zero(t, h.queue.count(), "nothing should be queued")
}

func TestIngestWeb_QueuesAndReportsStatus(t *testing.T) {
	h := newHarness(t, nil)
	cookie, state := h.start(t)
	h.do(t, http.MethodPut, "/session/credential", api.CredentialRequest{APIKey: "user-key"}, cookie)

	rec := h.do(t, http.MethodPost, "/ingest/web", api.IngestWebRequest{URL: "https://go.dev/doc"}, cookie)
	require.Equal(t, http.StatusAccepted, rec.Code)
	var queued api.InitJobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &queued))
	assert.Equal(t, "/status/"+queued.Id, queued.StatusURL)

	queuedJob, ok := h.queue.GetJob(context.Background(), queued.Id)
	require.True(t, ok)
	assert.Equal(t, state.Id, queuedJob.SessionId)
	assert.Equal(t, jobModel.JobTypeIngestWeb, queuedJob.JobType)
	assert.Equal(t, "https://go.dev/doc", queuedJob.JobPayload.IngestURL)

	rec = h.do(t, http.MethodGet, queued.StatusURL, nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var status api.JobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, string(jobModel.JobStatusQueued), status.Result.Status)

	other, _ := h.start(t)
	rec = h.do(t, http.MethodGet, queued.StatusURL, nil, other)
	assert.Equal(t, http.StatusNotFound, rec.Code, "jobs of another session must be hidden")

	rec = h.do(t, http.MethodGet, "/status/unknown", nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIngestWeb_FullQueue(t *testing.T) {
	h := newHarness(t, nil)
	cookie, _ := h.start(t)
	h.do(t, http.MethodPut, "/session/credential", api.CredentialRequest{APIKey: "user-key"}, cookie)
	h.queue.full = true

	rec := h.do(t, http.MethodPost, "/ingest/web", api.IngestWebRequest{URL: "https://go.dev/doc"}, cookie)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestIngestDocument_UnsupportedType(t *testing.T) {
	h := newHarness(t, nil)
	cookie, _ := h.start(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("document", "setup.exe")
	require.NoError(t, err)
	_, _ = part.Write([]byte("MZ"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/ingest/document", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Zero(t, h.queue.count())
}

func TestIngestDocument_MissingFile(t *testing.T) {
	h := newHarness(t, nil)
	cookie, _ := h.start(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/ingest/document", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMiddleware_TraceIdPropagated(t *testing.T) {
	h := newHarness(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Trace-Id", "trace-123")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "trace-123", rec.Header().Get("X-Trace-Id"))
	assert.Empty(t, rec.Result().Cookies(), "probes must not start sessions")

	rec = h.do(t, http.MethodGet, "/health", nil, nil)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-Id"))
}

func TestMiddleware_RateLimit(t *testing.T) {
	h := newHarness(t, middleware.NewIPRateLimiter(rate.Every(time.Hour), 1))

	rec := h.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.True(t, strings.Contains(decodeError(t, rec).Message, "Rate limit"))
}

func TestIndex_ServesUI(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.do(t, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AI Tutor")
}
