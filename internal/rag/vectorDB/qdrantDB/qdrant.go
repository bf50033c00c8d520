package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/domain/commonModels"
	"github.com/akolanti/AITutor/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

var logger = logger_i.NewLogger("Qdrant")
var dimension = uint64(config.EmbeddingOutputDimensionality)

type ClientHolder struct {
	QObj *qdrant.Client
}

// GetQuadrantClient connects and health-checks Qdrant. It returns nil when
// the server is unreachable so the caller can fall back to the in-memory store.
func GetQuadrantClient(ctx context.Context) *ClientHolder {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     config.QdrantAddress,
		Port:     config.QdrantPort,
		APIKey:   config.QdrantAPIKey,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate", "error", err)
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, config.QdrantConnectionTimeout)
	defer cancel()
	if _, err := client.HealthCheck(pingCtx); err != nil {
		logger.Error("Qdrant is offline", "host", config.QdrantAddress, "port", config.QdrantPort, "error", err)
		_ = client.Close()
		return nil
	}

	logger.Info("Qdrant connected", "host", config.QdrantAddress)
	go closeQdrant(ctx, client)
	return &ClientHolder{QObj: client}
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant", "error", err)
	}
	logger.Info("Closed Qdrant")
}

func (db *ClientHolder) Search(ctx context.Context, collectionName string, vectorFloat []float32, limit int) ([]commonModels.DocChunk, error) {
	loggr := logger.WithTrace(ctx).With("collection", collectionName)
	if limit <= 0 {
		return nil, nil
	}
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(vectorFloat...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant", "error", err)
		return nil, err
	}

	matches := make([]commonModels.DocChunk, 0, len(result))
	for _, hit := range result {
		matches = append(matches, fromPayload(hit.Payload))
	}
	loggr.Debug("Found matches", "count", len(matches))
	return matches, nil
}

func (db *ClientHolder) CreateCollection(ctx context.Context, collectionName string) error {
	return createCollection(ctx, db.QObj, collectionName)
}

func (db *ClientHolder) DropCollection(ctx context.Context, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}
	exists, err := db.QObj.CollectionExists(ctx, collectionName)
	if err != nil || !exists {
		return err
	}
	return db.QObj.DeleteCollection(ctx, collectionName)
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(toPayload(chunk)),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func toPayload(chunk commonModels.DocChunk) map[string]any {
	return map[string]any{
		"content":       chunk.Chunk,
		"label":         chunk.Label,
		"source":        string(chunk.Source),
		"page_num":      chunk.PageNum,
		"chunk_order":   chunk.ChunkPageOrder,
		"chunk_id":      chunk.ChunkId,
		"source_doc_id": chunk.Doc.Id,
		"doc_name":      chunk.Doc.Name,
		"source_url":    chunk.Doc.SourceURL,
		"content_type":  string(chunk.Doc.ContentType),
		"ingested_at":   chunk.Doc.LastIngestTimestamp.Unix(),
	}
}

func fromPayload(p map[string]*qdrant.Value) commonModels.DocChunk {
	return commonModels.DocChunk{
		ChunkId:        p["chunk_id"].GetStringValue(),
		Label:          p["label"].GetStringValue(),
		Chunk:          p["content"].GetStringValue(),
		Source:         commonModels.Source(p["source"].GetStringValue()),
		PageNum:        int(p["page_num"].GetIntegerValue()),
		ChunkPageOrder: int(p["chunk_order"].GetIntegerValue()),
		Doc: commonModels.Document{
			Id:                  p["source_doc_id"].GetStringValue(),
			Name:                p["doc_name"].GetStringValue(),
			SourceURL:           p["source_url"].GetStringValue(),
			ContentType:         commonModels.DocType(p["content_type"].GetStringValue()),
			LastIngestTimestamp: time.Unix(p["ingested_at"].GetIntegerValue(), 0),
		},
	}
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}
