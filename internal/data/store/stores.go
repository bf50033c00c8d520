package store

import (
	"context"

	"github.com/akolanti/AITutor/internal/domain/chatModel"
	"github.com/akolanti/AITutor/internal/domain/jobModel"
)

// Stores groups the persistence backends. Each one is Redis backed when Redis
// answers at startup, in-memory otherwise.
type Stores struct {
	Jobs      jobModel.JobStore
	Messages  chatModel.MessageStore
	Summaries chatModel.SummaryCache
}

func Open(ctx context.Context) Stores {
	var s Stores
	if js := GetRedisJobStore(ctx); js != nil {
		s.Jobs = js
	} else {
		inMemLogger.Warn("using in-memory job store")
		s.Jobs = InitInMemoryJobStore()
	}
	if ms := GetRedisMessageStore(ctx); ms != nil {
		s.Messages = ms
	} else {
		inMemLogger.Warn("using in-memory message store")
		s.Messages = InitMessageStore()
	}
	if sc := GetRedisSummaryCache(ctx); sc != nil {
		s.Summaries = sc
	} else {
		inMemLogger.Warn("using in-memory summary cache")
		s.Summaries = InitInMemorySummaryCache()
	}
	return s
}
