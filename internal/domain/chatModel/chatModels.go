package chatModel

import (
	"context"
	"time"
)

type Role string

const (
	RoleUser      Role = "User"
	RoleAssistant Role = "Assistant"
)

type ChatMessage struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// MessageStore keeps the append-only history of every live session.
type MessageStore interface {
	InitNewChat(ctx context.Context, sessionId string, greeting ChatMessage) error
	Append(ctx context.Context, sessionId string, messages ...ChatMessage) error
	GetMessageHistory(ctx context.Context, sessionId string) ([]ChatMessage, error)
	DeleteChat(ctx context.Context, sessionId string) error
	// Touch keeps the history alive for as long as its session is in use.
	Touch(ctx context.Context, sessionId string) error
}

// SummaryCache remembers web page summaries by URL.
type SummaryCache interface {
	GetSummary(ctx context.Context, url string) (string, bool)
	SaveSummary(ctx context.Context, url string, summary string) error
}
