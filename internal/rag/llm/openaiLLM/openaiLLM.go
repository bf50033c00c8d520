package openaiLLM

import (
	"context"
	"errors"

	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/domain/chatModel"
	"github.com/akolanti/AITutor/internal/rag/llm"
	"github.com/akolanti/AITutor/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger = logger_i.NewLogger("llm_openai")

type llmClient struct {
	api   openai.Client
	model openai.ChatModel
}

func NewClient(apiKey string, modelName string, opts ...option.RequestOption) (llm.Provider, error) {
	if apiKey == "" {
		return nil, errors.New("openai: empty api key")
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &llmClient{api: openai.NewClient(opts...), model: openai.ChatModel(modelName)}, nil
}

func (c *llmClient) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	log := logger.WithTrace(ctx)

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    toMessages(req),
		Temperature: openai.Float(float64(config.ModelTemperature)),
	})
	if err != nil {
		log.Error("OpenAI completion failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func toMessages(req llm.ChatRequest) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	if req.Preamble != "" {
		messages = append(messages, openai.SystemMessage(req.Preamble))
	}
	for _, m := range req.History {
		if m.Role == chatModel.RoleUser {
			messages = append(messages, openai.UserMessage(m.Text))
		} else {
			messages = append(messages, openai.AssistantMessage(m.Text))
		}
	}
	return append(messages, openai.UserMessage(llm.UserTurn(req)))
}
