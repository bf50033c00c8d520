package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Error: Invalid URL format."`
	Retry   bool   `json:"can_retry" example:"false"`
}

type IngestResult struct {
	FileName   string `json:"file_name,omitempty" example:"lecture-3.pdf"`
	URL        string `json:"url,omitempty" example:"https://go.dev/doc/effective_go"`
	ChunkCount int    `json:"chunk_count" example:"12"`
	Summary    string `json:"summary,omitempty"`
}

type Result struct {
	Status string        `json:"status" example:"COMPLETE"`
	Step   string        `json:"step,omitempty" example:"Chunking"`
	Ingest *IngestResult `json:"ingest,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type ChatResponse struct {
	Reply   string   `json:"reply"`
	Sources []string `json:"sources"`
}

type Message struct {
	Role string    `json:"role" example:"Assistant"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

type SessionResponse struct {
	Id            string    `json:"id"`
	Level         string    `json:"level" example:"Doctorate"`
	Levels        []string  `json:"levels"`
	HasCredential bool      `json:"has_credential"`
	ServerKey     bool      `json:"server_key"`
	DocumentName  string    `json:"document_name,omitempty"`
	WebURL        string    `json:"web_url,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	Messages      []Message `json:"messages"`
}

// requests---------------------

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

type CredentialRequest struct {
	APIKey string `json:"api_key"`
}

type LevelRequest struct {
	Level string `json:"level" validate:"required" example:"High School"`
}

type IngestWebRequest struct {
	URL string `json:"url" validate:"required" example:"https://go.dev/doc/effective_go"`
}
