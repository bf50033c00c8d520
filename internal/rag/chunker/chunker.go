// Package chunker splits extracted text into fixed-size, non-overlapping windows.
//
// A window is measured in characters (code points), never in bytes, and a
// window boundary never falls inside a UTF-8 sequence. No normalisation,
// overlap or sentence awareness is applied: concatenating the chunks in
// order gives back the input exactly.
package chunker

import (
	"fmt"
	"unicode/utf8"

	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/domain/commonModels"
)

// Split returns consecutive windowSize-character substrings of text.
// The final substring may be shorter. Empty text yields nil.
func Split(text string, windowSize int) []string {
	if windowSize <= 0 {
		windowSize = config.ChunkWindowSize
	}
	if text == "" {
		return nil
	}

	parts := make([]string, 0, utf8.RuneCountInString(text)/windowSize+1)
	start, count := 0, 0
	for i := 0; i < len(text); {
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
		count++
		if count == windowSize {
			parts = append(parts, text[start:i])
			start, count = i, 0
		}
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	return parts
}

// Chunk splits text and labels the windows "Part 1", "Part 2", ...
func Chunk(text string, windowSize int) []commonModels.DocChunk {
	return label(Split(text, windowSize), func(part int) string {
		return fmt.Sprintf("Part %d", part)
	}, 1)
}

// ChunkPages splits every page independently; part numbers restart on each page.
func ChunkPages(pages []commonModels.Page, windowSize int) []commonModels.DocChunk {
	var chunks []commonModels.DocChunk
	for _, page := range pages {
		pageNum := page.Number
		chunks = append(chunks, label(Split(page.Content, windowSize), func(part int) string {
			return fmt.Sprintf("Page %d Part %d", pageNum, part)
		}, pageNum)...)
	}
	return chunks
}

// ChunkWeb splits the readable text of a fetched page into "Web Part n" windows.
func ChunkWeb(text string, windowSize int) []commonModels.DocChunk {
	chunks := label(Split(text, windowSize), func(part int) string {
		return fmt.Sprintf("Web Part %d", part)
	}, 1)
	for i := range chunks {
		chunks[i].Source = commonModels.SourceWeb
	}
	return chunks
}

func label(parts []string, name func(part int) string, pageNum int) []commonModels.DocChunk {
	if len(parts) == 0 {
		return nil
	}
	chunks := make([]commonModels.DocChunk, len(parts))
	for i, text := range parts {
		chunks[i] = commonModels.DocChunk{
			Label:          name(i + 1),
			Chunk:          text,
			Source:         commonModels.SourceDocument,
			PageNum:        pageNum,
			ChunkPageOrder: i + 1,
		}
	}
	return chunks
}
