package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/AITutor/internal/config"
	jobmodel "github.com/akolanti/AITutor/internal/domain/jobModel"
	"github.com/akolanti/AITutor/internal/metrics"
	"github.com/akolanti/AITutor/internal/session"
	"github.com/akolanti/AITutor/pkg/logger_i"
)

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.IngestJobTimeout)
	defer cancel()
	log := logger.WithTrace(ctx).With("jobId", job.Id, "jobType", job.JobType)
	log.Debug("Processing job")

	job.Status = jobmodel.JobStatusRunning
	saveJobState(ctx, job, log)

	sess, ok := _sessions.Get(job.SessionId)
	if !ok {
		job = failJob(job, session.ErrSessionEnded)
	} else {
		switch job.JobType {
		case jobmodel.JobTypeIngestDocument:
			job = _ragService.IngestDocument(ctx, sess, job)
		case jobmodel.JobTypeIngestWeb:
			job = _ragService.IngestWebPage(ctx, sess, job)
		default:
			log.Error("unknown job type")
			job = failJob(job, errUnknownJobType)
		}
	}

	job.EndTime = time.Now()
	saveJobState(ctx, job, log)
	log.Info("Job finished", "status", job.Status, "duration", job.EndTime.Sub(start))
}

func removeWorker(reason string) {
	workerDone(reason, atomic.AddInt64(&currentWorkerCount, -1))
}

func workerDone(reason string, count int64) {
	metrics.DecrementActiveWorkerCount()
	logger.Info("Removed worker", "reason", reason, "workerCount", count)
	workerWaitGroup.Done()
}

func saveJobState(ctx context.Context, job jobmodel.Job, log *logger_i.Logger) {
	// a cancelled job context must not stop the final status from being written
	if err := _jobService.JobStore.SaveJob(context.WithoutCancel(ctx), job); err != nil {
		log.Error("Failed to update job status", "err", err)
	}
}
