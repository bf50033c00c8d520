package worker

import (
	"errors"
	"net/http"

	jobmodel "github.com/akolanti/AITutor/internal/domain/jobModel"
	"github.com/akolanti/AITutor/internal/rag"
)

var errUnknownJobType = errors.New("unknown job type")

func failJob(job jobmodel.Job, err error) jobmodel.Job {
	code, message, retry := rag.Describe(err)
	if errors.Is(err, errUnknownJobType) {
		code = http.StatusBadRequest
	}
	job.Status = jobmodel.JobStatusError
	job.CurrentStep = jobmodel.Error
	job.Error = jobmodel.JobError{Code: code, Message: message, Retry: retry}
	return job
}
