package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/domain/chatModel"
	"github.com/akolanti/AITutor/internal/rag/llm"
	"github.com/akolanti/AITutor/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger = logger_i.NewLogger("llm_gemini")

func NewClient(ctx context.Context, apiKey string, modelName string) (llm.Provider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		logger.Error("Error creating Gemini client", "error", err)
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	logger.Debug("Gemini client created", "model", modelName)
	return &llmClient{client: c, modelName: modelName}, nil
}

func (c *llmClient) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	log := logger.WithTrace(ctx)

	contentConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(config.ModelTemperature),
	}
	if req.Preamble != "" {
		contentConfig.SystemInstruction = genai.NewContentFromText(req.Preamble, genai.RoleUser)
	}

	contents := toContents(req.History)
	contents = append(contents, genai.NewContentFromText(llm.UserTurn(req), genai.RoleUser))

	log.Debug("Gemini request", "history", len(req.History), "documents", len(req.Documents))
	result, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, contentConfig)
	if err != nil {
		log.Error("Gemini generation failed", "error", err)
		return "", err
	}
	return result.Text(), nil
}

// Gemini rejects a conversation that opens with a model turn, so the
// greeting (and anything else before the first user message) is skipped.
func toContents(history []chatModel.ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	seenUser := false
	for _, m := range history {
		switch m.Role {
		case chatModel.RoleUser:
			seenUser = true
			contents = append(contents, genai.NewContentFromText(m.Text, genai.RoleUser))
		case chatModel.RoleAssistant:
			if !seenUser {
				continue
			}
			contents = append(contents, genai.NewContentFromText(m.Text, genai.RoleModel))
		}
	}
	return contents
}
