package commonModels

import "time"

type Document struct {
	Id                  string    `json:"source_doc_id"`
	Name                string    `json:"doc_name"`
	SourceURL           string    `json:"source_url,omitempty"`
	LastIngestTimestamp time.Time `json:"ingested_at"`
	ContentType         DocType   `json:"contentType"`
}

// DocChunk is the retrievable unit. Label and Chunk never change after ingestion.
type DocChunk struct {
	Doc            Document `json:"doc"`
	ChunkId        string   `json:"chunk_id"`
	Label          string   `json:"label"`
	Chunk          string   `json:"content"`
	Source         Source   `json:"source"`
	PageNum        int      `json:"page_num"`
	ChunkPageOrder int      `json:"chunk_order"`
}

// Page is the text of one extracted page, 1-based.
type Page struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var TXT DocType = "TXT"
var WEB DocType = "WEB"
var ERR DocType = "ERROR"

// Source identifies which of the two per-session indices a chunk belongs to.
type Source string

const (
	SourceDocument Source = "document"
	SourceWeb      Source = "web"
)
