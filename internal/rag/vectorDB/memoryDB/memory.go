package memoryDB

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/akolanti/AITutor/internal/domain/commonModels"
	"github.com/akolanti/AITutor/pkg/logger_i"
)

var logger = logger_i.NewLogger("InMem VectorDB")

// Store is a brute-force cosine index used when Qdrant is offline.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

type collection struct {
	chunks  []commonModels.DocChunk
	vectors [][]float32
}

func NewStore() *Store {
	return &Store{collections: make(map[string]*collection)}
}

func (s *Store) CreateCollection(ctx context.Context, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collectionName]; !ok {
		s.collections[collectionName] = &collection{}
	}
	return nil
}

func (s *Store) DropCollection(ctx context.Context, collectionName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, collectionName)
	return nil
}

func (s *Store) UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[collectionName]
	if !ok {
		return fmt.Errorf("collection %q does not exist", collectionName)
	}
	c.chunks = append(c.chunks, chunks...)
	c.vectors = append(c.vectors, vectors...)
	logger.Debug("upserted", "collection", collectionName, "count", len(chunks))
	return nil
}

func (s *Store) Search(ctx context.Context, collectionName string, vectorVal []float32, limit int) ([]commonModels.DocChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[collectionName]
	if !ok {
		return nil, fmt.Errorf("collection %q does not exist", collectionName)
	}
	if limit <= 0 {
		return nil, nil
	}

	idxs := make([]int, len(c.vectors))
	scores := make([]float64, len(c.vectors))
	for i, v := range c.vectors {
		idxs[i] = i
		scores[i] = cosine(vectorVal, v)
	}
	sort.SliceStable(idxs, func(a, b int) bool { return scores[idxs[a]] > scores[idxs[b]] })

	if limit > len(idxs) {
		limit = len(idxs)
	}
	matches := make([]commonModels.DocChunk, 0, limit)
	for _, i := range idxs[:limit] {
		matches = append(matches, c.chunks[i])
	}
	return matches, nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
