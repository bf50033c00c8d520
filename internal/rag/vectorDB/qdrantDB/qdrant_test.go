package qdrantDB

import (
	"testing"
	"time"

	"github.com/akolanti/AITutor/internal/domain/commonModels"
	"github.com/qdrant/go-client/qdrant"
)

func TestPayloadRoundTrip(t *testing.T) {
	in := commonModels.DocChunk{
		ChunkId:        "6f1c2a4e-3b0f-4c53-9d55-1c1a9a0a7e10",
		Label:          "Page 2 Part 3",
		Chunk:          "mitochondria",
		Source:         commonModels.SourceDocument,
		PageNum:        2,
		ChunkPageOrder: 3,
		Doc: commonModels.Document{
			Id:                  "doc-1",
			Name:                "bio.pdf",
			ContentType:         commonModels.PDF,
			LastIngestTimestamp: time.Unix(1700000000, 0),
		},
	}

	out := fromPayload(qdrant.NewValueMap(toPayload(in)))

	if out.Label != in.Label || out.Chunk != in.Chunk || out.Source != in.Source {
		t.Errorf("text fields lost: %+v", out)
	}
	if out.PageNum != 2 || out.ChunkPageOrder != 3 {
		t.Errorf("positions lost: page %d order %d", out.PageNum, out.ChunkPageOrder)
	}
	if out.Doc.Name != "bio.pdf" || !out.Doc.LastIngestTimestamp.Equal(in.Doc.LastIngestTimestamp) {
		t.Errorf("document lost: %+v", out.Doc)
	}
}

func TestFromPayload_MissingKeys(t *testing.T) {
	out := fromPayload(map[string]*qdrant.Value{})
	if out.Label != "" || out.PageNum != 0 {
		t.Errorf("expected zero chunk, got %+v", out)
	}
}
