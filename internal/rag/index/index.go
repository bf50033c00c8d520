// Package index builds and queries the per-session retrieval indices.
// An Index is an opaque handle: it owns a collection in the vector store
// and the embedder that produced its vectors, and nothing else.
package index

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/AITutor/internal/adapter/utils"
	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/domain/commonModels"
	"github.com/akolanti/AITutor/internal/metrics"
	"github.com/akolanti/AITutor/internal/rag/embedding"
	"github.com/akolanti/AITutor/internal/rag/vectorDB"
	"github.com/akolanti/AITutor/pkg/logger_i"
)

var logger = logger_i.NewLogger("Index")

type Index struct {
	collection string
	source     commonModels.Source
	document   commonModels.Document
	chunkCount int
	db         vectorDB.DataProcessor
	embedder   embedding.Embedder
}

func (i *Index) Source() commonModels.Source     { return i.source }
func (i *Index) Document() commonModels.Document { return i.document }
func (i *Index) ChunkCount() int                 { return i.chunkCount }
func (i *Index) CollectionName() string          { return i.collection }

// Query returns at most k chunks nearest to query. Errors from the embedder
// or the store are returned unchanged.
func (i *Index) Query(ctx context.Context, query string, k int) ([]commonModels.DocChunk, error) {
	if k <= 0 {
		return []commonModels.DocChunk{}, nil
	}
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	vec, err := i.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}
	matches, err := i.db.Search(ctx, i.collection, vec, k)
	if err != nil {
		return nil, err
	}
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Drop deletes the backing collection.
func (i *Index) Drop(ctx context.Context) error {
	return i.db.DropCollection(ctx, i.collection)
}

// CollectionName is unique per build so a replacement never shares storage
// with the index it replaces.
func CollectionName(sessionId string, source commonModels.Source) string {
	return fmt.Sprintf("%s-%s-%s-%s", config.CollectionPrefix, sessionId, source, utils.GetNewUUID())
}

// Build embeds chunks in batches and stores them in a fresh collection.
// On failure the partial collection is dropped.
func Build(ctx context.Context, db vectorDB.DataProcessor, embedder embedding.Embedder, collectionName string, doc commonModels.Document, source commonModels.Source, chunks []commonModels.DocChunk) (*Index, error) {
	log := logger.WithTrace(ctx).With("collection", collectionName, "chunks", len(chunks))

	if err := db.CreateCollection(ctx, collectionName); err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	for i := range chunks {
		chunks[i].ChunkId = utils.GetNewUUID()
		chunks[i].Doc = doc
		chunks[i].Source = source
	}

	if err := BatchIngest(ctx, chunks, collectionName, db, embedder); err != nil {
		if dropErr := db.DropCollection(context.WithoutCancel(ctx), collectionName); dropErr != nil {
			log.Error("could not drop partial collection", "error", dropErr)
		}
		return nil, err
	}

	log.Info("index built")
	return &Index{
		collection: collectionName,
		source:     source,
		document:   doc,
		chunkCount: len(chunks),
		db:         db,
		embedder:   embedder,
	}, nil
}

func BatchIngest(ctx context.Context, chunks []commonModels.DocChunk, collectionName string, db vectorDB.DataProcessor, embedder embedding.Embedder) error {
	log := logger.WithTrace(ctx)
	batchSize := config.IngestBatchSize

	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		currentBatch := chunks[i:end]

		texts := make([]string, len(currentBatch))
		for j, c := range currentBatch {
			texts[j] = c.Chunk
		}

		log.Debug("Starting embedding call", "batch", len(currentBatch))
		start := time.Now()
		vectors, err := embedder.BatchEmbedding(ctx, texts)
		metrics.CaptureExecutionMetrics("embedding", time.Since(start))
		if err != nil {
			return fmt.Errorf("embedding batch failed: %w", err)
		}
		if len(vectors) != len(currentBatch) {
			return errors.New("embedding batch returned the wrong number of vectors")
		}

		if err := db.UpsertBatch(ctx, collectionName, currentBatch, vectors); err != nil {
			return fmt.Errorf("upserting to vector store failed: %w", err)
		}
	}
	return nil
}
