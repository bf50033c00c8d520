package googleEmbedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/rag/embedding"
	"github.com/akolanti/AITutor/pkg/logger_i"
	"google.golang.org/genai"
)

const (
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
)

var logger = logger_i.NewLogger("google_embedding")
var dimension int32 = config.EmbeddingOutputDimensionality

type client struct {
	genAi *genai.Client
	model string
}

// NewClient builds an embedder bound to one API key.
func NewClient(ctx context.Context, apiKey string, modelName string) (embedding.Embedder, error) {
	if apiKey == "" {
		return nil, errors.New("google embedding: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		logger.Error("Error creating Google Embedding client", "error", err)
		return nil, fmt.Errorf("google embedding client: %w", err)
	}
	logger.Debug("Google Embedding client created", "model", modelName)
	return &client{genAi: c, model: modelName}, nil
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := logger.WithTrace(ctx)
	log.Debug("embedding query", "length", len(query))

	result, err := c.doCall(ctx, genai.Text(query), taskQuery)
	if err != nil {
		log.Error("Error getting query embedding from Google", "error", err)
		return nil, err
	}
	if len(result.Embeddings) == 0 || result.Embeddings[0] == nil {
		return nil, errors.New("google embedding: empty response")
	}
	return result.Embeddings[0].Values, nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := logger.WithTrace(ctx).With("batch", len(chunks))
	if len(chunks) == 0 {
		return [][]float32{}, nil
	}

	res, err := c.doCall(ctx, getContent(chunks), taskDocument)
	if err != nil {
		log.Error("Error getting Embeddings from Google", "error", err)
		return nil, err
	}
	if len(res.Embeddings) != len(chunks) {
		return nil, fmt.Errorf("google embedding: got %d vectors for %d chunks", len(res.Embeddings), len(chunks))
	}

	embeddingResults := make([][]float32, 0, len(res.Embeddings))
	for _, r := range res.Embeddings {
		embeddingResults = append(embeddingResults, r.Values)
	}
	return embeddingResults, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content, taskType string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: taskType})
}

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))

	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}
