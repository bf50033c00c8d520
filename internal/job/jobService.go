package job

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/akolanti/AITutor/internal/adapter/utils"
	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/domain/jobModel"
	"github.com/akolanti/AITutor/internal/metrics"
	"github.com/akolanti/AITutor/pkg/logger_i"
)

var logger = logger_i.NewLogger("JobService")

var ErrQueueFull = errors.New("job queue is full")

var enqueueWait = config.EnqueueWaitTimeout

type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
	}
}

// NewIngestJob fills in the bookkeeping fields of a queued ingestion job.
func NewIngestJob(ctx context.Context, sessionId string, jobType jobModel.JobType, payload jobModel.JobPayload) jobModel.Job {
	traceId, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return jobModel.Job{
		Id:          utils.GetNewUUID(),
		SessionId:   sessionId,
		TraceId:     traceId,
		JobType:     jobType,
		JobPayload:  payload,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
		CurrentStep: jobModel.IngestInit,
	}
}

// Enqueue records the job and hands it to the worker pool. Every ingestion
// job also asks the dispatcher for another worker, since ingestion spends
// most of its time waiting on external calls. Idle workers retire on their own.
func (s *Service) Enqueue(ctx context.Context, job jobModel.Job) error {
	log := logger.WithTrace(ctx).With("jobId", job.Id, "jobType", job.JobType)

	if err := s.JobStore.SaveJob(ctx, job); err != nil {
		log.Error("could not save queued job", "error", err)
		return err
	}

	wait := time.NewTimer(enqueueWait)
	defer wait.Stop()
	select {
	case s.JobChannel <- job:
	case <-wait.C:
		log.Warn("job queue is full")
		s.JobStore.DeleteJob(context.WithoutCancel(ctx), job.Id)
		return ErrQueueFull
	case <-ctx.Done():
		s.JobStore.DeleteJob(context.WithoutCancel(ctx), job.Id)
		return ErrQueueFull
	}
	metrics.IncrementJobsInQueue()
	log.Info("Created new job")

	count := atomic.AddInt64(&s.RequestCount, 1)
	if count%config.RequestsPerNewWorkerCount == 0 || job.JobType == jobModel.JobTypeIngestDocument || job.JobType == jobModel.JobTypeIngestWeb {
		metrics.StartDispatcherSignalCount()
		select {
		case s.DispatcherChannel <- true:
		default:
			// a signal is already pending
		}
	}
	return nil
}

func (s *Service) GetJob(ctx context.Context, id string) (jobModel.Job, bool) {
	if id == "" {
		return jobModel.Job{}, false
	}
	return s.JobStore.GetJob(ctx, id)
}
