package handlers

import (
	"context"
	"net/http"

	"github.com/akolanti/AITutor/internal/domain/chatModel"
	"github.com/akolanti/AITutor/internal/domain/jobModel"
	"github.com/akolanti/AITutor/internal/rag"
	"github.com/akolanti/AITutor/pkg/logger_i"
)

var logRH = logger_i.NewLogger("RequestHandler")

// JobQueue accepts ingestion jobs and reports on them.
type JobQueue interface {
	Enqueue(ctx context.Context, job jobModel.Job) error
	GetJob(ctx context.Context, id string) (jobModel.Job, bool)
}

// SessionEnder discards a session.
type SessionEnder interface {
	End(id string)
}

type Handler struct {
	jobs     JobQueue
	rag      rag.Service
	messages chatModel.MessageStore
	sessions SessionEnder
	ui       http.Handler
}

type Config struct {
	Jobs     JobQueue
	Rag      rag.Service
	Messages chatModel.MessageStore
	Sessions SessionEnder
	UI       http.Handler
}

func New(cfg Config) *Handler {
	return &Handler{
		jobs:     cfg.Jobs,
		rag:      cfg.Rag,
		messages: cfg.Messages,
		sessions: cfg.Sessions,
		ui:       cfg.UI,
	}
}
