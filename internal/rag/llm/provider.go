package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/AITutor/internal/domain/chatModel"
	"github.com/akolanti/AITutor/internal/domain/commonModels"
)

// ChatRequest is everything one chat turn sends to the model.
type ChatRequest struct {
	Preamble  string
	History   []chatModel.ChatMessage
	Message   string
	Documents []commonModels.DocChunk
}

type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

// UserTurn renders the grounding documents ahead of the user's message.
// Without documents the message is sent as is.
func UserTurn(req ChatRequest) string {
	if len(req.Documents) == 0 {
		return req.Message
	}
	var b strings.Builder
	b.WriteString("Documents:\n")
	for _, d := range req.Documents {
		fmt.Fprintf(&b, "[%s] %s\n", DocumentTitle(d), d.Chunk)
	}
	fmt.Fprintf(&b, "\nUser Question: %s", req.Message)
	return b.String()
}

// DocumentTitle is the label a chunk is cited by.
func DocumentTitle(d commonModels.DocChunk) string {
	if d.Doc.Name == "" {
		return d.Label
	}
	return d.Doc.Name + " - " + d.Label
}
