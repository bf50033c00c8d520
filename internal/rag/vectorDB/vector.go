package vectorDB

import (
	"context"

	"github.com/akolanti/AITutor/internal/domain/commonModels"
)

// DataProcessor is the backing store of every session index.
type DataProcessor interface {
	Search(ctx context.Context, collectionName string, vectorVal []float32, limit int) ([]commonModels.DocChunk, error)

	CreateCollection(ctx context.Context, collectionName string) error
	DropCollection(ctx context.Context, collectionName string) error
	UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.DocChunk, vectors [][]float32) error
}
