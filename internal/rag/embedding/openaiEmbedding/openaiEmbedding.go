package openaiEmbedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/rag/embedding"
	"github.com/akolanti/AITutor/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger = logger_i.NewLogger("openai_embedding")

type client struct {
	api   openai.Client
	model openai.EmbeddingModel
}

func NewClient(apiKey string, modelName string, opts ...option.RequestOption) (embedding.Embedder, error) {
	if apiKey == "" {
		return nil, errors.New("openai embedding: empty api key")
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &client{api: openai.NewClient(opts...), model: openai.EmbeddingModel(modelName)}, nil
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return [][]float32{}, nil
	}
	return c.embed(ctx, chunks)
}

func (c *client) embed(ctx context.Context, input []string) ([][]float32, error) {
	log := logger.WithTrace(ctx)
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: input},
		Model:      c.model,
		Dimensions: openai.Int(int64(config.EmbeddingOutputDimensionality)),
	})
	if err != nil {
		log.Error("Error getting Embeddings from OpenAI", "error", err)
		return nil, err
	}
	if len(resp.Data) != len(input) {
		return nil, fmt.Errorf("openai embedding: got %d vectors for %d inputs", len(resp.Data), len(input))
	}

	vectors := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(vectors) {
			return nil, fmt.Errorf("openai embedding: index %d out of range", d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		vectors[d.Index] = vec
	}
	return vectors, nil
}
