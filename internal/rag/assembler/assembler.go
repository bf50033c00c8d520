// Package assembler gathers grounding context for a chat turn.
package assembler

import (
	"context"

	"github.com/akolanti/AITutor/internal/domain/commonModels"
)

// Retriever is the only capability the assembler needs from an index.
type Retriever interface {
	Query(ctx context.Context, query string, k int) ([]commonModels.DocChunk, error)
}

// Retrieve asks one index for its top k chunks. Any index error is returned as is.
func Retrieve(ctx context.Context, index Retriever, query string, k int) ([]commonModels.DocChunk, error) {
	if k <= 0 {
		return []commonModels.DocChunk{}, nil
	}
	chunks, err := index.Query(ctx, query, k)
	if err != nil {
		return nil, err
	}
	if len(chunks) > k {
		chunks = chunks[:k]
	}
	return chunks, nil
}

// Assemble queries each present index in the given order and concatenates
// the results. Nil entries are skipped. No re-ranking or deduplication.
// With no index at all the result is an empty, non-nil slice.
func Assemble(ctx context.Context, query string, k int, indices ...Retriever) ([]commonModels.DocChunk, error) {
	k = max(k, 0)
	documents := make([]commonModels.DocChunk, 0, k*len(indices))
	for _, index := range indices {
		if index == nil {
			continue
		}
		chunks, err := Retrieve(ctx, index, query, k)
		if err != nil {
			return nil, err
		}
		documents = append(documents, chunks...)
	}
	return documents, nil
}
