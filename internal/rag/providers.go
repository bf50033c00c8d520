package rag

import (
	"context"
	"fmt"

	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/AITutor/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/AITutor/internal/rag/llm/gemini"
	"github.com/akolanti/AITutor/internal/rag/llm/openaiLLM"
	"github.com/akolanti/AITutor/internal/session"
)

// ClientFactory builds chat and embedding clients for one API key.
type ClientFactory func(ctx context.Context, apiKey string) (session.Clients, error)

// ProviderClients returns the factory for the configured provider name.
func ProviderClients(provider string) (ClientFactory, error) {
	switch provider {
	case config.ProviderGemini:
		return geminiClients, nil
	case config.ProviderOpenAI:
		return openAIClients, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}

func geminiClients(ctx context.Context, apiKey string) (session.Clients, error) {
	provider, err := gemini.NewClient(ctx, apiKey, config.GeminiModelName)
	if err != nil {
		return session.Clients{}, err
	}
	embedder, err := googleEmbedding.NewClient(ctx, apiKey, config.GoogleEmbeddingModel)
	if err != nil {
		return session.Clients{}, err
	}
	return session.Clients{Provider: provider, Embedder: embedder}, nil
}

func openAIClients(ctx context.Context, apiKey string) (session.Clients, error) {
	provider, err := openaiLLM.NewClient(apiKey, config.OpenAIModelName)
	if err != nil {
		return session.Clients{}, err
	}
	embedder, err := openaiEmbedding.NewClient(apiKey, config.OpenAIEmbeddingModel)
	if err != nil {
		return session.Clients{}, err
	}
	return session.Clients{Provider: provider, Embedder: embedder}, nil
}
