package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/job"
	"github.com/akolanti/AITutor/internal/metrics"
	"github.com/akolanti/AITutor/internal/rag"
	"github.com/akolanti/AITutor/internal/session"
	"github.com/akolanti/AITutor/pkg/logger_i"
)

// SessionLookup finds the live session a job belongs to.
type SessionLookup interface {
	Get(id string) (*session.Session, bool)
}

var (
	_jobService        *job.Service
	stopWorkerChannel  chan bool
	workerWaitGroup    *sync.WaitGroup
	dispatcherChannel  chan bool
	currentWorkerCount int64
	logger             = logger_i.NewLogger("WorkerPool")
	_ragService        rag.Service
	_sessions          SessionLookup
	minWorkerCount     = config.MinWorkerCount
	idleWorkerTimeout  = config.IdleWorkerTimeout
)

func InitServices(jobService *job.Service, ragService rag.Service, sessions SessionLookup) {
	_jobService = jobService
	_ragService = ragService
	_sessions = sessions
	dispatcherChannel = jobService.DispatcherChannel
}

func InitWorkerPool(stopWorkerChan chan bool, waitGroup *sync.WaitGroup) {
	stopWorkerChannel = stopWorkerChan
	workerWaitGroup = waitGroup
	logger.Info("Initializing worker pool")
	createWorker()
	go dispatcher()
}

func dispatcher() {
	logger.Info("Dispatcher started")
	for {
		select {
		case <-dispatcherChannel:
			if atomic.LoadInt64(&currentWorkerCount) < config.MaxWorkerCount {
				logger.Info("Creating new worker", "workerCount", atomic.LoadInt64(&currentWorkerCount))
				createWorker()
			}
		case <-stopWorkerChannel:
			return
		}
	}
}

func createWorker() {
	workerWaitGroup.Add(1)
	atomic.AddInt64(&currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	go worker()
	logger.Debug("Created new worker")
}

func worker() {
	for {
		select {
		case currentJob := <-_jobService.JobChannel:
			metrics.DecrementJobsInQueue()
			executeJob(currentJob)

		case <-stopWorkerChannel:
			removeWorker("Stop worker signal received")
			return

		case <-time.After(idleWorkerTimeout):
			if count, ok := tryRetire(); ok {
				workerDone("Idle worker timeout", count)
				return
			}
		}
	}
}

// tryRetire takes one worker off the count unless that would go below minWorkerCount.
func tryRetire() (int64, bool) {
	for {
		n := atomic.LoadInt64(&currentWorkerCount)
		if n <= atomic.LoadInt64(&minWorkerCount) {
			return n, false
		}
		if atomic.CompareAndSwapInt64(&currentWorkerCount, n, n-1) {
			return n - 1, true
		}
	}
}
