package rag

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/AITutor/internal/domain/jobModel"
	"github.com/akolanti/AITutor/internal/rag/ingest"
	"github.com/akolanti/AITutor/internal/session"
	"github.com/akolanti/AITutor/pkg/logger_i"
	"github.com/openai/openai-go"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrMissingCredential = errors.New("missing api key")
	ErrEmptyMessage      = errors.New("empty message")
)

const (
	MsgMissingCredential = "Please add your API key to continue."
	MsgInvalidURL        = "Error: Invalid URL format."
	MsgEmptyURL          = "Please enter a URL."
)

// Describe turns an error into the status code, user facing message and
// retry hint shown by the UI. External failures are passed through verbatim.
func Describe(err error) (int, string, bool) {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return http.StatusUnauthorized, MsgMissingCredential, false
	case errors.Is(err, ingest.ErrEmptyURL):
		return http.StatusBadRequest, MsgEmptyURL, false
	case errors.Is(err, ingest.ErrInvalidURL):
		return http.StatusBadRequest, MsgInvalidURL, false
	case errors.Is(err, ErrEmptyMessage):
		return http.StatusBadRequest, "Please enter a message.", false
	case errors.Is(err, session.ErrSessionEnded):
		return http.StatusGone, "Error: " + err.Error(), false
	case errors.Is(err, ingest.ErrUnsupportedDocument):
		return http.StatusUnsupportedMediaType, "Error: " + err.Error(), false
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Error: " + err.Error(), true
	}
	if canRetry(err) {
		return http.StatusTooManyRequests, "Error: " + err.Error(), true
	}
	return http.StatusBadGateway, "Error: " + err.Error(), false
}

// canRetry reports provider throttling or a temporarily unavailable backend.
// The server never retries; the flag only tells the client it may.
func canRetry(err error) bool {
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.ResourceExhausted, codes.Unavailable:
			return true
		}
	}

	var oaErr *openai.Error
	if errors.As(err, &oaErr) {
		return oaErr.StatusCode == http.StatusTooManyRequests || oaErr.StatusCode >= http.StatusInternalServerError
	}

	var gErr genai.APIError
	if errors.As(err, &gErr) {
		return gErr.Code == http.StatusTooManyRequests || gErr.Code == http.StatusServiceUnavailable
	}
	var gErrPtr *genai.APIError
	if errors.As(err, &gErrPtr) {
		return gErrPtr.Code == http.StatusTooManyRequests || gErrPtr.Code == http.StatusServiceUnavailable
	}
	return false
}

func complete(job jobModel.Job) jobModel.Job {
	job.CurrentStep = jobModel.Complete
	job.Status = jobModel.JobStatusComplete
	return job
}

func logOutput(job jobModel.Job, step jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = step
	log.Debug("ingestion step", "step", job.CurrentStep)
	return job
}

func (s *service) jobError(ctx context.Context, job jobModel.Job, err error) jobModel.Job {
	code, message, retry := Describe(err)
	s.logger.WithTrace(ctx).Error("job failed", "jobId", job.Id, "step", job.CurrentStep, "error", err)

	job.Error = jobModel.JobError{
		Code:    code,
		Message: message,
		Retry:   retry,
	}
	job.CurrentStep = jobModel.Error
	job.Status = jobModel.JobStatusError
	return job
}
