// @title           AI Tutor API
// @version         1.0
// @description     Session based study assistant. Chat is grounded in an uploaded document and a fetched web page.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.email   ank.github@gmail.com

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/customHttpClient"
	"github.com/akolanti/AITutor/internal/data/store"
	jobmodel "github.com/akolanti/AITutor/internal/domain/jobModel"
	"github.com/akolanti/AITutor/internal/handlers"
	"github.com/akolanti/AITutor/internal/job"
	"github.com/akolanti/AITutor/internal/middleware"
	"github.com/akolanti/AITutor/internal/rag"
	"github.com/akolanti/AITutor/internal/rag/ingest"
	"github.com/akolanti/AITutor/internal/rag/vectorDB"
	"github.com/akolanti/AITutor/internal/rag/vectorDB/memoryDB"
	"github.com/akolanti/AITutor/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/AITutor/internal/server"
	"github.com/akolanti/AITutor/internal/session"
	"github.com/akolanti/AITutor/internal/ui"
	"github.com/akolanti/AITutor/internal/worker"
	"github.com/akolanti/AITutor/pkg/logger_i"
)

var (
	listenAddr        string
	envFile           string
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.StringVar(&envFile, "env-file", ".env", "optional file with environment overrides")
	flag.Parse()

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	if err := config.Load(envFile); err != nil {
		logger.Error("could not load environment file", "file", envFile, "error", err)
		os.Exit(1)
	}

	clientFactory, err := rag.ProviderClients(config.LLMProvider)
	if err != nil {
		logger.Error("invalid provider", "error", err)
		os.Exit(1)
	}
	logger.Info("Using llm provider", "provider", config.LLMProvider, "serverKey", config.ServerCredential() != "")

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	stores := store.Open(serviceContext)

	var vectorStore vectorDB.DataProcessor
	if qdrant := qdrantDB.GetQuadrantClient(serviceContext); qdrant != nil {
		vectorStore = qdrant
	} else {
		logger.Warn("Qdrant is offline, indices are kept in memory")
		vectorStore = memoryDB.NewStore()
	}

	sessions := session.NewManager(stores.Messages, config.SessionIdleTimeout, config.SessionCleanupInterval)

	ragService := rag.NewService(rag.Dependencies{
		VectorDB:  vectorStore,
		Messages:  stores.Messages,
		Summaries: stores.Summaries,
		Fetcher:   ingest.NewHTTPFetcher(customHttpClient.GetClient()),
		Clients:   clientFactory,
	})

	//init buffered job channel
	jobService := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobmodel.Job, config.BufferLimit),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          stores.Jobs,
	})

	//init worker pool
	stopWorkerChannel = make(chan bool)
	worker.InitServices(jobService, ragService, sessions)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	limiter := middleware.DefaultRateLimiter()
	go sweepLimiter(serviceContext, limiter)

	handler := handlers.New(handlers.Config{
		Jobs:     jobService,
		Rag:      ragService,
		Messages: stores.Messages,
		Sessions: sessions,
		UI:       ui.Handler(),
	})
	router := server.NewRouter(handler, middleware.New(sessions, limiter))

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		Sessions:         sessions,
		CloseServices:    closeExternalServices,
	}
	srv := server.New(listenAddr, router)
	go srv.ShutDownHandler(shutdownParams)
	go srv.Run()

	<-stopExecution
	logger.Info("Server stopped")
}

func sweepLimiter(ctx context.Context, limiter *middleware.IPRateLimiter) {
	ticker := time.NewTicker(config.SessionCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			limiter.Sweep(config.SessionIdleTimeout)
		case <-ctx.Done():
			return
		}
	}
}
