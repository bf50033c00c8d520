package store

import (
	"context"
	"time"

	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/domain/jobModel"
	"github.com/akolanti/AITutor/pkg/logger_i"
	"github.com/patrickmn/go-cache"
)

var inMemLogger = logger_i.NewLogger("InMem Store")

// InMemoryJobStore keeps jobs for the same TTL the Redis store uses, so
// finished jobs do not pile up when Redis is offline.
type InMemoryJobStore struct {
	jobs *cache.Cache
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return newInMemoryJobStore(config.RedisJobStoreTTL)
}

func newInMemoryJobStore(ttl time.Duration) *InMemoryJobStore {
	return &InMemoryJobStore{jobs: cache.New(ttl, config.SessionCleanupInterval)}
}

func (store *InMemoryJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	store.jobs.SetDefault(job.Id, job)
	inMemLogger.WithTrace(ctx).Debug("Saved job to store", "jobId", job.Id, "status", job.Status)
	return nil
}

func (store *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	v, found := store.jobs.Get(jobId)
	if !found {
		return jobModel.Job{}, false
	}
	job, ok := v.(jobModel.Job)
	return job, ok
}

func (store *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	store.jobs.Delete(jobID)
}
