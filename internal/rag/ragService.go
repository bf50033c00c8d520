package rag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/akolanti/AITutor/internal/adapter/utils"
	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/domain/chatModel"
	"github.com/akolanti/AITutor/internal/domain/commonModels"
	"github.com/akolanti/AITutor/internal/domain/jobModel"
	"github.com/akolanti/AITutor/internal/metrics"
	"github.com/akolanti/AITutor/internal/rag/assembler"
	"github.com/akolanti/AITutor/internal/rag/chunker"
	"github.com/akolanti/AITutor/internal/rag/index"
	"github.com/akolanti/AITutor/internal/rag/ingest"
	"github.com/akolanti/AITutor/internal/rag/llm"
	"github.com/akolanti/AITutor/internal/rag/prompt"
	"github.com/akolanti/AITutor/internal/rag/vectorDB"
	"github.com/akolanti/AITutor/internal/session"
	"github.com/akolanti/AITutor/pkg/logger_i"
)

// Service is what handlers and workers call. Every method takes the session
// lock for its whole run, so actions of one session are serialized.
type Service interface {
	Chat(ctx context.Context, sess *session.Session, message string) (ChatResult, error)
	IngestDocument(ctx context.Context, sess *session.Session, job jobModel.Job) jobModel.Job
	IngestWebPage(ctx context.Context, sess *session.Session, job jobModel.Job) jobModel.Job
}

type ChatResult struct {
	Reply   string
	Sources []string
}

type Dependencies struct {
	VectorDB  vectorDB.DataProcessor
	Messages  chatModel.MessageStore
	Summaries chatModel.SummaryCache
	Fetcher   ingest.Fetcher
	Clients   ClientFactory
}

type service struct {
	vectorDB  vectorDB.DataProcessor
	messages  chatModel.MessageStore
	summaries chatModel.SummaryCache
	fetcher   ingest.Fetcher
	clients   ClientFactory
	logger    *logger_i.Logger
}

func NewService(deps Dependencies) Service {
	return &service{
		vectorDB:  deps.VectorDB,
		messages:  deps.Messages,
		summaries: deps.Summaries,
		fetcher:   deps.Fetcher,
		clients:   deps.Clients,
		logger:    logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) Chat(ctx context.Context, sess *session.Session, message string) (ChatResult, error) {
	sess.Lock()
	defer sess.Unlock()
	if sess.Ended() {
		return ChatResult{}, session.ErrSessionEnded
	}

	log := s.logger.WithTrace(ctx).With("sessionId", sess.ID())
	message = strings.TrimSpace(message)
	if message == "" {
		return ChatResult{}, ErrEmptyMessage
	}

	clients, err := s.clientsFor(ctx, sess)
	if err != nil {
		return ChatResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, config.ChatTimeout)
	defer cancel()

	documents, err := assembler.Assemble(ctx, message, config.RetrievalTopK, sess.Retrievers()...)
	if err != nil {
		log.Error("context assembly failed", "error", err)
		metrics.CaptureChatTurn("error", false)
		return ChatResult{}, fmt.Errorf("retrieving context: %w", err)
	}
	grounded := len(documents) > 0

	history, err := s.messages.GetMessageHistory(ctx, sess.ID())
	if err != nil {
		metrics.CaptureChatTurn("error", grounded)
		return ChatResult{}, fmt.Errorf("reading history: %w", err)
	}

	log.Debug("sending chat", "documents", len(documents), "history", len(history), "level", sess.Level().String())
	start := time.Now()
	reply, err := clients.Provider.Chat(ctx, llm.ChatRequest{
		Preamble:  prompt.Preamble(sess.Level()),
		History:   history,
		Message:   message,
		Documents: documents,
	})
	metrics.CaptureExecutionMetrics("llm_generation", time.Since(start))
	if err != nil {
		log.Error("chat failed", "error", err)
		metrics.CaptureChatTurn("error", grounded)
		return ChatResult{}, err
	}

	now := time.Now()
	err = s.messages.Append(ctx, sess.ID(),
		chatModel.ChatMessage{Role: chatModel.RoleUser, Text: message, At: now},
		chatModel.ChatMessage{Role: chatModel.RoleAssistant, Text: reply, At: now},
	)
	if err != nil {
		metrics.CaptureChatTurn("error", grounded)
		return ChatResult{}, fmt.Errorf("saving history: %w", err)
	}

	metrics.CaptureChatTurn("ok", grounded)
	return ChatResult{Reply: reply, Sources: sourceTitles(documents)}, nil
}

func (s *service) IngestDocument(ctx context.Context, sess *session.Session, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()
	// the upload is only needed until it is indexed
	defer s.removeUpload(job.JobPayload.IngestPath)

	sess.Lock()
	defer sess.Unlock()
	if sess.Ended() {
		return s.jobError(ctx, job, session.ErrSessionEnded)
	}

	log := s.logger.WithTrace(ctx).With("jobId", job.Id, "sessionId", sess.ID())
	clients, err := s.clientsFor(ctx, sess)
	if err != nil {
		return s.jobError(ctx, job, err)
	}

	job = logOutput(job, jobModel.Extracting, log)
	pages, docType, err := ingest.ExtractDocument(ctx, job.JobPayload.IngestPath)
	if err != nil {
		return s.jobError(ctx, job, err)
	}

	job = logOutput(job, jobModel.Chunking, log)
	chunks := chunker.ChunkPages(pages, config.ChunkWindowSize)
	if len(chunks) == 0 {
		return s.jobError(ctx, job, ingest.ErrNoText)
	}

	doc := commonModels.Document{
		Id:                  utils.GetNewUUID(),
		Name:                job.JobPayload.IngestFileName,
		LastIngestTimestamp: time.Now(),
		ContentType:         docType,
	}

	job = logOutput(job, jobModel.EmbeddingAPICall, log)
	idx, err := index.Build(ctx, s.vectorDB, clients.Embedder, index.CollectionName(sess.ID(), commonModels.SourceDocument), doc, commonModels.SourceDocument, chunks)
	if err != nil {
		return s.jobError(ctx, job, err)
	}

	job = logOutput(job, jobModel.VectorDBCall, log)
	s.install(ctx, sess, idx, log)

	job.JobPayload.ChunkCount = idx.ChunkCount()
	return complete(job)
}

func (s *service) IngestWebPage(ctx context.Context, sess *session.Session, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("web_ingestion", time.Since(start)) }()

	sess.Lock()
	defer sess.Unlock()
	if sess.Ended() {
		return s.jobError(ctx, job, session.ErrSessionEnded)
	}

	log := s.logger.WithTrace(ctx).With("jobId", job.Id, "sessionId", sess.ID())
	pageURL, err := ingest.ValidateURL(job.JobPayload.IngestURL)
	if err != nil {
		return s.jobError(ctx, job, err)
	}

	clients, err := s.clientsFor(ctx, sess)
	if err != nil {
		return s.jobError(ctx, job, err)
	}

	job = logOutput(job, jobModel.Fetching, log)
	fetchStart := time.Now()
	page, err := s.fetcher.Fetch(ctx, pageURL)
	metrics.CaptureExecutionMetrics("web_fetch", time.Since(fetchStart))
	if err != nil {
		return s.jobError(ctx, job, err)
	}

	job = logOutput(job, jobModel.Chunking, log)
	chunks := chunker.ChunkWeb(page.Text, config.ChunkWindowSize)
	if len(chunks) == 0 {
		return s.jobError(ctx, job, ingest.ErrNoText)
	}

	doc := commonModels.Document{
		Id:                  utils.GetNewUUID(),
		Name:                page.Title,
		SourceURL:           page.URL,
		LastIngestTimestamp: time.Now(),
		ContentType:         commonModels.WEB,
	}

	job = logOutput(job, jobModel.EmbeddingAPICall, log)
	idx, err := index.Build(ctx, s.vectorDB, clients.Embedder, index.CollectionName(sess.ID(), commonModels.SourceWeb), doc, commonModels.SourceWeb, chunks)
	if err != nil {
		return s.jobError(ctx, job, err)
	}

	job = logOutput(job, jobModel.LLMCall, log)
	summary, err := s.summarize(ctx, clients.Provider, idx, page.URL)
	if err != nil {
		// keep the previous web index when the new one cannot be summarized
		if dropErr := idx.Drop(context.WithoutCancel(ctx)); dropErr != nil {
			log.Error("could not drop unused web index", "error", dropErr)
		}
		return s.jobError(ctx, job, err)
	}

	job = logOutput(job, jobModel.VectorDBCall, log)
	s.install(ctx, sess, idx, log)
	sess.SetWebSummary(page.URL, summary)

	job.JobPayload.ChunkCount = idx.ChunkCount()
	job.JobPayload.Summary = summary
	return complete(job)
}

// summarize answers the fixed summary question from the page's top chunks.
// Summaries are cached per URL.
func (s *service) summarize(ctx context.Context, provider llm.Provider, idx *index.Index, url string) (string, error) {
	if cached, ok := s.summaries.GetSummary(ctx, url); ok {
		return cached, nil
	}

	documents, err := assembler.Retrieve(ctx, idx, prompt.SummaryQuestion, config.SummaryTopK)
	if err != nil {
		return "", err
	}

	start := time.Now()
	summary, err := provider.Chat(ctx, llm.ChatRequest{
		Preamble:  prompt.SummaryPreamble,
		Message:   prompt.SummaryQuestion,
		Documents: documents,
	})
	metrics.CaptureExecutionMetrics("llm_generation", time.Since(start))
	if err != nil {
		return "", err
	}

	if err := s.summaries.SaveSummary(ctx, url, summary); err != nil {
		s.logger.WithTrace(ctx).Warn("could not cache summary", "url", url, "error", err)
	}
	return summary, nil
}

func (s *service) install(ctx context.Context, sess *session.Session, idx *index.Index, log *logger_i.Logger) {
	if err := sess.ReplaceIndex(ctx, idx); err != nil {
		log.Error("could not drop replaced index", "error", err)
	}
	metrics.CaptureIngestedChunks(string(idx.Source()), idx.ChunkCount())
}

// clientsFor builds (or reuses) the provider clients for the session's credential.
func (s *service) clientsFor(ctx context.Context, sess *session.Session) (session.Clients, error) {
	key := sess.Credential()
	if key == "" {
		return session.Clients{}, ErrMissingCredential
	}
	if c, ok := sess.CachedClients(key); ok {
		return c, nil
	}
	c, err := s.clients(ctx, key)
	if err != nil {
		return session.Clients{}, err
	}
	sess.SetClients(key, c)
	return c, nil
}

func (s *service) removeUpload(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("could not remove upload", "path", path, "error", err)
	}
}

func sourceTitles(documents []commonModels.DocChunk) []string {
	titles := make([]string, 0, len(documents))
	for _, d := range documents {
		titles = append(titles, llm.DocumentTitle(d))
	}
	return titles
}
