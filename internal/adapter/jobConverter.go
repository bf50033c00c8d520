package adapter

import (
	"fmt"
	"time"

	"github.com/akolanti/AITutor/internal/api"
	"github.com/akolanti/AITutor/internal/domain/chatModel"
	"github.com/akolanti/AITutor/internal/domain/jobModel"
	"github.com/akolanti/AITutor/internal/rag"
	"github.com/akolanti/AITutor/internal/rag/prompt"
	"github.com/akolanti/AITutor/internal/session"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("/status/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	return api.JobResponse{
		Id:        job.Id,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result: api.Result{
			Status: string(job.Status),
			Step:   string(job.CurrentStep),
			Ingest: toIngestResult(job),
		},
	}
}

func toIngestResult(job jobModel.Job) *api.IngestResult {
	if job.Status != jobModel.JobStatusComplete {
		return nil
	}
	return &api.IngestResult{
		FileName:   job.JobPayload.IngestFileName,
		URL:        job.JobPayload.IngestURL,
		ChunkCount: job.JobPayload.ChunkCount,
		Summary:    job.JobPayload.Summary,
	}
}

func ToChatResponse(res rag.ChatResult) api.ChatResponse {
	sources := res.Sources
	if sources == nil {
		sources = []string{}
	}
	return api.ChatResponse{Reply: res.Reply, Sources: sources}
}

func ToSessionResponse(state session.State, history []chatModel.ChatMessage) api.SessionResponse {
	levels := prompt.Levels()
	names := make([]string, len(levels))
	for i, l := range levels {
		names[i] = l.String()
	}

	messages := make([]api.Message, len(history))
	for i, m := range history {
		messages[i] = api.Message{Role: string(m.Role), Text: m.Text, At: m.At}
	}

	return api.SessionResponse{
		Id:            state.ID,
		Level:         state.Level,
		Levels:        names,
		HasCredential: state.HasCredential,
		ServerKey:     state.ServerKey,
		DocumentName:  state.DocumentName,
		WebURL:        state.WebURL,
		Summary:       state.Summary,
		Messages:      messages,
	}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}

// FromError builds the error envelope for a failed synchronous action.
func FromError(id string, err error) (int, api.JobResponse) {
	code, message, retry := rag.Describe(err)
	res := BadRequest(id, message, code)
	res.Error.Retry = retry
	return code, res
}
